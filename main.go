package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/texpad/internal/artifact"
	"github.com/debemdeboas/texpad/internal/compile"
	"github.com/debemdeboas/texpad/internal/config"
	"github.com/debemdeboas/texpad/internal/db"
	"github.com/debemdeboas/texpad/internal/editor"
	"github.com/debemdeboas/texpad/internal/logger"
	"github.com/debemdeboas/texpad/internal/metrics"
	"github.com/debemdeboas/texpad/internal/render"
	"github.com/debemdeboas/texpad/internal/repository/draft"
	"github.com/debemdeboas/texpad/internal/server"
	"github.com/debemdeboas/texpad/internal/theme"
	"github.com/debemdeboas/texpad/internal/tui"
	"github.com/debemdeboas/texpad/internal/watch"
)

type options struct {
	configPath string
	watchPath  string
	runAction  string
	headless   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "texpad.yaml", "Path to the configuration file (.yaml or .toml)")
	flag.StringVar(&opts.watchPath, "watch", "", "Follow this .tex file and load every saved change")
	flag.StringVar(&opts.runAction, "run", "", "Run one action (compile or export) on the stored document and exit")
	flag.BoolVar(&opts.headless, "headless", false, "Run without the terminal UI until interrupted")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.ErrLoadConfig, err)
		os.Exit(1)
	}

	// The terminal UI owns the screen, so only headless runs log to stderr.
	logFile := cfg.Logging.File
	if opts.headless || opts.runAction != "" {
		logFile = ""
	}
	log, logCloser, err := logger.New(cfg.Logging.Level, logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	setLoggers(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, log); err != nil {
		log.Error().Err(err).Msg("texpad exited with an error")
		stop()
		logCloser.Close()
		os.Exit(1)
	}
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l.With().Str("component", "config").Logger())
	db.SetLogger(l.With().Str("component", "db").Logger())
	draft.SetLogger(l.With().Str("component", "draft").Logger())
	editor.SetLogger(l.With().Str("component", "editor").Logger())
	artifact.SetLogger(l.With().Str("component", "artifact").Logger())
	compile.SetLogger(l.With().Str("component", "compile").Logger())
	render.SetLogger(l.With().Str("component", "render").Logger())
	server.SetLogger(l.With().Str("component", "server").Logger())
	watch.SetLogger(l.With().Str("component", "watch").Logger())
	tui.SetLogger(l.With().Str("component", "tui").Logger())
}

func run(ctx context.Context, cfg *config.Config, opts options, log zerolog.Logger) error {
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	if cfg.Server.Enabled {
		if err := a.startServer(ctx); err != nil {
			return err
		}
	}

	if opts.watchPath != "" {
		if err := a.startWatcher(ctx, opts.watchPath); err != nil {
			return fmt.Errorf("%s: %w", config.ErrStartWatcher, err)
		}
	}

	switch {
	case opts.runAction != "":
		action, err := compile.ParseAction(opts.runAction)
		if err != nil {
			return err
		}
		status := a.orch.RunDocument(ctx, action, a.session)
		if status.Phase == compile.Failed {
			return errors.New(status.Message)
		}
		return nil
	case opts.headless:
		log.Info().Msg("Running headless, interrupt to exit")
		<-ctx.Done()
		return nil
	default:
		return a.runUI(ctx)
	}
}

type app struct {
	cfg *config.Config
	log zerolog.Logger

	store       draft.Repository
	storeCloser io.Closer

	autosaver *editor.Autosaver
	session   *editor.Session

	registry *artifact.Registry
	mirror   *artifact.MirrorSink
	recorder *metrics.PrometheusRecorder
	orch     *compile.Orchestrator

	server  *server.Server
	watcher *watch.Watcher
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	store, closer, err := draft.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrOpenDraftStore, err)
	}
	a.store, a.storeCloser = store, closer

	a.recorder = metrics.NewPrometheusRecorder(nil)

	a.autosaver = editor.NewAutosaver(store, cfg.Document.StorageKey, cfg.Document.SaveDelay)
	a.autosaver.SetObserver(a.recorder.ObserveAutosave)

	a.session = editor.NewSession(a.autosaver, cfg.Document.Filename)
	a.session.Initialize()
	a.session.OnChange(a.autosaver.Schedule)

	a.registry = artifact.NewRegistry()
	var sink artifact.Sink = artifact.NewFileSink(a.registry, cfg.Artifacts.PreviewPath, cfg.Artifacts.DownloadDir)
	if cfg.Artifacts.Mirror.Enabled {
		uploader, err := artifact.NewS3Uploader(ctx, cfg.Artifacts.Mirror)
		if err != nil {
			a.storeCloser.Close()
			return nil, err
		}
		a.mirror = artifact.NewMirrorSink(sink, a.registry, uploader, cfg.Artifacts.Mirror.Prefix)
		sink = a.mirror
	}

	a.orch = compile.New(
		compile.NewHTTPClient(cfg.Service),
		a.registry,
		sink,
		compile.NewLogPresenter(log.With().Str("component", "status").Logger()),
		compile.WithRecorder(a.recorder),
		compile.WithExportFilename(cfg.Artifacts.ExportFilename),
	)

	log.Info().
		Str("service", cfg.Service.BaseURL).
		Str("storage", cfg.Storage.Driver).
		Str("filename", a.session.Filename()).
		Bool("mirror", cfg.Artifacts.Mirror.Enabled).
		Msg("texpad ready")
	return a, nil
}

func (a *app) startServer(ctx context.Context) error {
	a.server = server.New(a.cfg.Server, a.orch, a.recorder.Handler())
	a.orch.AddPresenter(a.server)

	l, err := net.Listen("tcp", a.cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStartServer, err)
	}
	go func() {
		if err := a.server.Serve(l); err != nil {
			a.log.Error().Err(err).Msg(config.ErrStartServer)
		}
	}()
	return nil
}

func (a *app) startWatcher(ctx context.Context, path string) error {
	opts := []watch.Option{watch.WithObserver(a.recorder.ObserveWatch)}
	if a.cfg.Watch.CompileOnSave {
		opts = append(opts, watch.WithCompileOnSave(func(ctx context.Context) {
			a.orch.RunDocument(ctx, compile.Compile, a.session)
		}, a.cfg.Watch.MinInterval))
	}

	w, err := watch.NewWatcher(path, a.session, opts...)
	if err != nil {
		return err
	}
	// The file on disk wins over the restored draft.
	if err := w.Sync(); err != nil {
		w.Stop()
		return err
	}
	w.Start(ctx)
	a.watcher = w
	return nil
}

func (a *app) runUI(ctx context.Context) error {
	syntaxTheme := theme.ResolveSyntaxTheme(a.cfg.Editor.SyntaxTheme, lipgloss.HasDarkBackground())
	model := tui.New(ctx, a.session, a.orch, tui.Options{
		SyntaxTheme: syntaxTheme,
		LineNumbers: a.cfg.Editor.LineNumbers,
		Engine:      a.cfg.Service.Engine,
	})
	render.WarmCache(a.session.Value(), syntaxTheme)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	presenter := tui.NewPresenter(program)
	a.orch.AddPresenter(presenter)
	a.session.OnChange(presenter.DocumentChanged)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("%s: %w", config.ErrRunUI, err)
	}
	return nil
}

// close tears down in reverse order of construction. In-flight runs settle before their
// references are released, and pending edits are flushed before the store closes.
func (a *app) close() {
	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			a.log.Warn().Err(err).Msg("Error stopping watcher")
		}
	}
	a.orch.Close()
	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.log.Warn().Err(err).Msg("Error stopping companion server")
		}
		cancel()
	}

	if a.autosaver.Pending() {
		a.log.Info().Msg("Saving unsaved changes")
	}
	a.autosaver.Close()
	if a.mirror != nil {
		a.mirror.Wait()
	}
	if n := a.registry.RevokeAll(); n > 0 {
		a.log.Debug().Int("refs", n).Msg("Revoked outstanding artifacts")
	}
	if err := a.storeCloser.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Error closing draft store")
	}
	a.log.Info().Msg("texpad stopped")
}
