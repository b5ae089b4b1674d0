package bootstrap

import (
	"testing"
	"time"

	"github.com/pat-apps/teleprompter/internal/realtime"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.CompanionURL != "" {
		t.Errorf("companion URL should defer to settings, got %q", cfg.CompanionURL)
	}
	if cfg.HandshakeAck != realtime.DefaultHandshakeAck {
		t.Errorf("unexpected handshake ack %q", cfg.HandshakeAck)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("expected 2s retry delay, got %s", cfg.RetryDelay)
	}
	if cfg.RetryMaxAttempts != 0 {
		t.Errorf("expected unlimited retries, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.WorkerEnabled {
		t.Error("worker should be disabled by default")
	}
	if cfg.SettingsPath != "conf/settings.json" {
		t.Errorf("unexpected settings path %q", cfg.SettingsPath)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("COMPANION_URL", "ws://10.1.2.3:8765")
	t.Setenv("RETRY_DELAY", "500ms")
	t.Setenv("RETRY_MAX_ATTEMPTS", "4")
	t.Setenv("WORKER_ENABLED", "true")
	t.Setenv("WORKER_COMMAND", "python3 worker.py --fast")

	cfg := LoadConfig()

	if cfg.CompanionURL != "ws://10.1.2.3:8765" {
		t.Errorf("unexpected companion URL %q", cfg.CompanionURL)
	}
	if cfg.RetryDelay != 500*time.Millisecond {
		t.Errorf("unexpected retry delay %s", cfg.RetryDelay)
	}
	if cfg.RetryMaxAttempts != 4 {
		t.Errorf("unexpected max attempts %d", cfg.RetryMaxAttempts)
	}
	if !cfg.WorkerEnabled {
		t.Error("worker should be enabled")
	}
	want := []string{"python3", "worker.py", "--fast"}
	if len(cfg.WorkerCommand) != len(want) {
		t.Fatalf("unexpected command %v", cfg.WorkerCommand)
	}
	for i := range want {
		if cfg.WorkerCommand[i] != want[i] {
			t.Errorf("command[%d] = %q, want %q", i, cfg.WorkerCommand[i], want[i])
		}
	}
}

func TestLoadConfig_BadValuesFallBack(t *testing.T) {
	t.Setenv("RETRY_DELAY", "soon")
	t.Setenv("RETRY_MAX_ATTEMPTS", "many")

	cfg := LoadConfig()

	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("bad duration should fall back, got %s", cfg.RetryDelay)
	}
	if cfg.RetryMaxAttempts != 0 {
		t.Errorf("bad int should fall back, got %d", cfg.RetryMaxAttempts)
	}
}
