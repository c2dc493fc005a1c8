package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	protocolinadapter "siav/internal/modules/protocol/adapter/in"
	protocoldomain "siav/internal/modules/protocol/domain"
	protocolusecase "siav/internal/modules/protocol/usecase"
	sessioninadapter "siav/internal/modules/session/adapter/in"
	sessionoutadapter "siav/internal/modules/session/adapter/out"
	sessionout "siav/internal/modules/session/port/out"
	sessionservice "siav/internal/modules/session/service"
	sessionusecase "siav/internal/modules/session/usecase"
	"siav/internal/platform/clock"
	"siav/internal/platform/config"
	"siav/internal/platform/id"
	"siav/internal/platform/logging"
	"siav/internal/platform/metrics"
	"siav/internal/platform/realtime"
	uiapp "siav/internal/ui/app"
)

// Mode selects which outbound adapters a process needs.
type Mode int

const (
	// ModeCLI is a one-shot command: no ticks, no fan-out.
	ModeCLI Mode = iota
	// ModeTUI drives the terminal screen and logs to a file.
	ModeTUI
	// ModeServe exposes the HTTP API and websocket stream.
	ModeServe
)

type App struct {
	Config      config.Config
	Logger      *slog.Logger
	Registry    *prometheus.Registry
	Hub         *realtime.Hub
	SessionCLI  sessioninadapter.CLIHandler
	SessionHTTP *sessioninadapter.HTTPHandler
	ProtocolCLI protocolinadapter.CLIHandler

	cues    *sessionoutadapter.ChannelNotifier
	syncer  *sessioninadapter.SyncWorker
	redis   *redis.Client
	closers []func()
}

func New(ctx context.Context, cfg config.Config, mode Mode) (*App, error) {
	logger, logCloser, err := newLogger(cfg, mode)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger}
	if logCloser != nil {
		app.closers = append(app.closers, logCloser)
	}

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	engineMetrics := metrics.New(app.Registry)

	store, err := sessionoutadapter.NewSQLiteLogStore(cfg.DBPath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("open log store: %w", err)
	}
	app.closers = append(app.closers, func() { _ = store.Close() })

	deps := sessionusecase.Deps{
		Active:  sessionoutadapter.NewFileActiveSessionStore(cfg.ActivePath),
		Index:   store,
		Queue:   store,
		Reports: sessionoutadapter.NewMarkdownReportWriter(cfg.ReportDir),
		Logger:  logger,
	}
	if mode != ModeCLI {
		ticker := sessionoutadapter.NewIntervalTicker(cfg.TickInterval)
		deps.Ticks = ticker
		app.closers = append(app.closers, ticker.Stop)
	}

	if cfg.DatabaseURL != "" {
		sink := sessionoutadapter.NewPostgresReconnectingSink(cfg.DatabaseURL, cfg.SyncInterval, logger)
		if err := sink.Connect(ctx); err != nil {
			// Logs still reach the offline queue; the sink redials on later use.
			logger.Warn("remote log sink unavailable", "err", err)
		}
		deps.Sink = sink
		app.closers = append(app.closers, sink.Close)
	}

	notifiers := sessionoutadapter.MultiNotifier{sessionoutadapter.NewLogNotifier(logger)}
	switch mode {
	case ModeTUI:
		app.cues = sessionoutadapter.NewChannelNotifier(16)
		notifiers = append(notifiers, app.cues)
	case ModeServe:
		app.Hub = realtime.NewHub(logger)
		app.closers = append(app.closers, app.Hub.Close)
		broadcaster := sessionoutadapter.NewWSBroadcaster(app.Hub)
		deps.Renderer = broadcaster
		notifiers = append(notifiers, app.cueFanOut(ctx, broadcaster))
	}
	deps.Notifier = notifiers

	svc := sessionservice.NewSessionService(
		clock.SystemClock{},
		id.NewULID(),
		protocoldomain.Defibrillator(cfg.Defibrillator),
		logger,
		engineMetrics,
	)
	sessionUC := sessionusecase.NewInteractor(svc, deps)

	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)
	app.SessionHTTP = sessioninadapter.NewHTTPHandler(sessionUC)
	if mode == ModeServe && deps.Sink != nil {
		app.syncer = sessioninadapter.NewSyncWorker(sessionUC, sessionoutadapter.NewIntervalTicker(cfg.SyncInterval), logger)
	}
	app.ProtocolCLI = protocolinadapter.NewCLIHandler(protocolusecase.NewInteractor())
	return app, nil
}

// cueFanOut publishes cues on redis when configured so every serve replica
// relays them to its websocket clients. Without redis the local hub gets them
// directly.
func (a *App) cueFanOut(ctx context.Context, local sessionout.Notifier) sessionout.Notifier {
	if a.Config.RedisURL == "" {
		return local
	}
	client, err := realtime.NewRedisClient(ctx, a.Config.RedisURL)
	if err != nil {
		a.Logger.Warn("redis unavailable, cues stay local", "err", err)
		return local
	}
	a.redis = client
	a.closers = append(a.closers, func() { _ = client.Close() })
	return sessionoutadapter.NewRedisNotifier(client, sessionoutadapter.CueChannel)
}

// Close releases adapters in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func RunTUI(ctx context.Context, app *App) error {
	cues := make(chan string, 16)
	bridgeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if app.cues != nil {
		go func() {
			for {
				select {
				case <-bridgeCtx.Done():
					return
				case msg := <-app.cues.Cues():
					select {
					case cues <- msg.Cue:
					default:
					}
				}
			}
		}()
	}

	model := uiapp.NewModel(app.SessionCLI, cues)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// newLogger keeps the terminal clean in TUI mode by writing to
// <data>/.siav/siav.log instead of stderr.
func newLogger(cfg config.Config, mode Mode) (*slog.Logger, func(), error) {
	if mode != ModeTUI {
		return logging.New(cfg.LogLevel, cfg.LogFormat), nil, nil
	}
	path := filepath.Join(cfg.DataDir, ".siav", "siav.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.NewWithWriter(f, cfg.LogLevel, cfg.LogFormat), func() { _ = f.Close() }, nil
}
