package realtime

import "time"

const (
	// DefaultURL is the companion service endpoint on the local machine.
	DefaultURL = "ws://localhost:8765"

	// DefaultHandshakeAck is the system message the companion sends to
	// confirm a live connection.
	DefaultHandshakeAck = "Connected to PAT Teleprompter"

	defaultClientName = "prompter"
	defaultRetryDelay = 2 * time.Second
)

type Config struct {
	URL          string
	ClientName   string
	HandshakeAck string
	Retry        RetryConfig
}

// RetryConfig controls the reconnect policy. MaxAttempts of zero means the
// client retries forever, which is the right default for a local companion
// service that may simply not be running yet.
type RetryConfig struct {
	Delay       time.Duration
	MaxAttempts int
}

func normalizeConfig(cfg Config) Config {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.ClientName == "" {
		cfg.ClientName = defaultClientName
	}
	if cfg.HandshakeAck == "" {
		cfg.HandshakeAck = DefaultHandshakeAck
	}
	if cfg.Retry.Delay <= 0 {
		cfg.Retry.Delay = defaultRetryDelay
	}
	if cfg.Retry.MaxAttempts < 0 {
		cfg.Retry.MaxAttempts = 0
	}
	return cfg
}
