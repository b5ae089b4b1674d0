package bootstrap

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/fx"

	"github.com/pat-apps/teleprompter/internal/api"
	"github.com/pat-apps/teleprompter/internal/realtime"
	"github.com/pat-apps/teleprompter/internal/settings"
	"github.com/pat-apps/teleprompter/internal/supervisor"
)

func NewLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)
	return logger
}

func ProvideSettings(cfg *Config, logger *slog.Logger) (*settings.Store, error) {
	store := settings.NewStore(cfg.SettingsPath)
	if err := store.Load(); err != nil {
		return nil, err
	}
	logger.Info("settings loaded", "path", cfg.SettingsPath)
	return store, nil
}

func ProvideAPIClient(cfg *Config, store *settings.Store, logger *slog.Logger) *api.Client {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = store.Get().APIBaseURL
	}
	return api.New(baseURL, logger)
}

// ProvideRealtimeClient wires the client with a console observer: the stand-in
// for the display layer, which just logs what a UI would render. Environment
// values win over the settings file.
func ProvideRealtimeClient(cfg *Config, store *settings.Store, logger *slog.Logger) *realtime.Client {
	prefs := store.Get()
	url := cfg.CompanionURL
	if url == "" {
		url = prefs.ServerURL
	}
	name := cfg.ClientName
	if name == "" {
		name = prefs.ClientName
	}

	display := logger.With("component", "display")
	cb := realtime.Callbacks{
		OnStateChange: func(state realtime.ConnState) {
			display.Info("connection state", "state", state)
		},
		OnTranscription: func(text string) {
			display.Info("transcription", "text", text)
		},
		OnSystemNotice: func(message string) {
			display.Info("notice", "message", message)
		},
	}
	return realtime.New(realtime.Config{
		URL:          url,
		ClientName:   name,
		HandshakeAck: cfg.HandshakeAck,
		Retry: realtime.RetryConfig{
			Delay:       cfg.RetryDelay,
			MaxAttempts: cfg.RetryMaxAttempts,
		},
	}, cb, logger)
}

func ProvideSupervisor(cfg *Config, logger *slog.Logger) *supervisor.Supervisor {
	return supervisor.New(supervisor.Config{
		Command:      cfg.WorkerCommand,
		Dir:          cfg.WorkerDir,
		RestartDelay: cfg.WorkerRestartDelay,
	}, logger)
}

func StartRealtime(lc fx.Lifecycle, client *realtime.Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			client.Connect()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			client.Disconnect()
			return nil
		},
	})
}

// ProbeAPI checks the companion REST API once at startup so a dead server
// shows up in the logs immediately instead of on first user action.
func ProbeAPI(lc fx.Lifecycle, client *api.Client, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				products, err := client.ListProducts(context.Background())
				if err != nil {
					logger.Warn("companion API unreachable", "error", err)
					return
				}
				logger.Info("companion API reachable", "products", len(products))
			}()
			return nil
		},
	})
}

func StartSupervisor(lc fx.Lifecycle, cfg *Config, sup *supervisor.Supervisor) {
	if !cfg.WorkerEnabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return sup.Start(context.Background())
		},
		OnStop: func(ctx context.Context) error {
			sup.Stop()
			return nil
		},
	})
}

var ClientModule = fx.Options(
	fx.Provide(
		ProvideSettings,
		ProvideAPIClient,
		ProvideRealtimeClient,
		ProvideSupervisor,
	),
	fx.Invoke(StartRealtime, StartSupervisor, ProbeAPI),
)

func Run() {
	fx.New(
		fx.Provide(LoadConfig, NewLogger),
		ClientModule,
	).Run()
}
