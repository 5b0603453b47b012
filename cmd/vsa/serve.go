package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/vsarchitect/vsa/internal/boot"
	"github.com/vsarchitect/vsa/internal/completion"
	"github.com/vsarchitect/vsa/internal/config"
	"github.com/vsarchitect/vsa/internal/db"
	"github.com/vsarchitect/vsa/internal/gateway"
	"github.com/vsarchitect/vsa/internal/handlers"
	"github.com/vsarchitect/vsa/internal/logger"
	"github.com/vsarchitect/vsa/internal/prompt"
	"github.com/vsarchitect/vsa/internal/server"
	"github.com/vsarchitect/vsa/internal/settings"
	"github.com/vsarchitect/vsa/internal/storage"
	"github.com/vsarchitect/vsa/internal/version"
)

const storageConnectTimeout = 10 * time.Second

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		app := fx.New(serveOptions(configPath)...)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

func serveOptions(path string) []fx.Option {
	return []fx.Option{
		serveGraph(path),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	}
}

// serveGraph holds the providers and invocations of the server process.
func serveGraph(path string) fx.Option {
	return fx.Options(
		fx.Provide(
			provideConfig(path),
			boot.ProvideRuntimeConfig,
			provideLogger,

			providePromptLibrary,
			provideStorage,
			fx.Annotate(provideGateway, fx.As(new(completion.Sender))),
			provideCompletionService,
			func(svc *completion.Service) settings.Generator { return svc },
			provideSettingsService,

			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(handlers.NewSwaggerHandler),
			provideServerHandler(handlers.NewAIHandler),
			provideServerHandler(handlers.NewSettingsHandler),

			provideServer,
		),
		fx.Invoke(
			loadSettings,
			startServer,
		),
	)
}

func provideConfig(path string) func() (config.Config, error) {
	return func() (config.Config, error) {
		cfg, err := config.Load(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func providePromptLibrary(cfg config.Config) (prompt.Library, error) {
	if cfg.Prompts.File == "" {
		return prompt.DefaultLibrary(), nil
	}
	return prompt.LoadLibrary(cfg.Prompts.File)
}

func provideStorage(lc fx.Lifecycle, log *slog.Logger, cfg config.Config, rc *boot.RuntimeConfig) (storage.Provider, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storageConnectTimeout)
	defer cancel()
	store, closeStore, err := openStorage(ctx, log, cfg, rc.StorageDriver)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeStore()
			return nil
		},
	})
	return store, nil
}

// openStorage builds the settings store for driver. The returned func
// releases any connection it holds.
func openStorage(ctx context.Context, log *slog.Logger, cfg config.Config, driver string) (storage.Provider, func(), error) {
	switch driver {
	case config.StorageDriverMemory:
		log.Warn("settings are kept in memory and will not survive a restart")
		return storage.NewMemoryProvider(), func() {}, nil
	case config.StorageDriverPostgres:
		pool, err := db.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		return db.NewSnapshotStore(log, pool), pool.Close, nil
	default:
		store, err := storage.NewFileProvider(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("file storage: %w", err)
		}
		return store, func() {}, nil
	}
}

func provideGateway(log *slog.Logger, cfg config.Config, rc *boot.RuntimeConfig) *gateway.Client {
	return gateway.NewClient(log, gateway.Config{
		BaseURL:  rc.GatewayBaseURL,
		SiteURL:  rc.SiteURL,
		AppTitle: cfg.Gateway.AppTitle,
		Timeout:  rc.GatewayTimeout,
	})
}

func provideCompletionService(log *slog.Logger, sender completion.Sender, lib prompt.Library, cfg config.Config) *completion.Service {
	return completion.NewService(log, sender, lib.System, cfg.Gateway.DefaultModel)
}

func provideSettingsService(log *slog.Logger, store storage.Provider, gen settings.Generator, lib prompt.Library, rc *boot.RuntimeConfig) *settings.Service {
	return settings.NewService(log, store, gen, lib, rc.SettingsKey)
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	RuntimeConfig  *boot.RuntimeConfig
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.RuntimeConfig.ServerAddr, server.Options{
		AllowedOrigins: params.Config.Server.AllowedOrigins,
	}, params.ServerHandlers...)
}

func loadSettings(lc fx.Lifecycle, svc *settings.Service, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			loaded := svc.Load(ctx)
			logger.Info("settings loaded",
				slog.Bool("configured", loaded.AI.APIKey != ""),
				slog.String("model", loaded.AI.Model),
			)
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting Virtual Service Architect %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
