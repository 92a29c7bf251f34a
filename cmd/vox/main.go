package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	audioimpl "github.com/foxseedlab/vox/external/audio"
	configloader "github.com/foxseedlab/vox/external/config"
	"github.com/foxseedlab/vox/external/discord"
	"github.com/foxseedlab/vox/external/httpserver"
	notifyimpl "github.com/foxseedlab/vox/external/notify"
	outputimpl "github.com/foxseedlab/vox/external/output"
	"github.com/foxseedlab/vox/external/phrases"
	recognizerimpl "github.com/foxseedlab/vox/external/recognizer"
	repositoryimpl "github.com/foxseedlab/vox/external/repository"
	"github.com/foxseedlab/vox/external/translator"
	webhookimpl "github.com/foxseedlab/vox/external/webhook"
	"github.com/foxseedlab/vox/internal/config"
	discordpkg "github.com/foxseedlab/vox/internal/discord"
	"github.com/foxseedlab/vox/internal/metrics"
	"github.com/foxseedlab/vox/internal/output"
	"github.com/foxseedlab/vox/internal/pipeline"
	"github.com/foxseedlab/vox/internal/recognizer"
	"github.com/foxseedlab/vox/internal/repository"
	"github.com/foxseedlab/vox/internal/session"
	"github.com/foxseedlab/vox/internal/translation"
	"github.com/samber/do/v2"
)

const (
	discordConnectTimeout = 20 * time.Second
	statusTimeout         = 5 * time.Second
	shutdownTimeout       = 15 * time.Second
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "recognizer", cfg.RecognizerProvider, "microphone", cfg.MicrophoneSource, "sinks", cfg.OutputSinks)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, injector); err != nil {
		slog.Error("vox exited with error", "error", err)
		os.Exit(1)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	metrics.RegisterDI(injector)
	repositoryimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	recognizerimpl.RegisterDI(injector)
	translator.RegisterDI(injector)
	phrases.RegisterDI(injector)
	translation.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	outputimpl.RegisterDI(injector)
	notifyimpl.RegisterDI(injector)
	session.RegisterDI(injector)
	pipeline.RegisterDI(injector)
	httpserver.RegisterDI(injector)

	return injector
}

func run(ctx context.Context, cfg *config.Config, injector do.Injector) error {
	if cfg.UsesDiscord() {
		dc, err := do.Invoke[discordpkg.Client](injector)
		if err != nil {
			return err
		}
		connectCtx, cancel := context.WithTimeout(ctx, discordConnectTimeout)
		err = dc.Connect(connectCtx)
		cancel()
		if err != nil {
			return err
		}
		slog.Info("startup: discord connected")
		defer func() {
			if err := dc.Close(); err != nil {
				slog.Error("discord close failed", "error", err)
			}
		}()
	}

	rec, err := do.Invoke[recognizer.Recognizer](injector)
	if err != nil {
		return err
	}
	go checkRecognizer(ctx, rec)

	p, err := do.Invoke[*pipeline.Pipeline](injector)
	if err != nil {
		return err
	}
	if err := p.RecoverHistory(ctx); err != nil {
		slog.Warn("failed to recover history", "error", err)
	}

	if cfg.MetricsAddr != "" {
		srv, err := do.Invoke[*httpserver.Server](injector)
		if err != nil {
			return err
		}
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("http server shutdown failed", "error", err)
			}
		}()
	}

	if err := p.Start(ctx); err != nil {
		return err
	}
	slog.Info("startup: listening", "activation_phrase", cfg.ActivationPhrase, "deactivation_phrase", cfg.DeactivationPhrase)

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := p.Close(shutdownCtx); err != nil {
		slog.Error("pipeline close failed", "error", err)
	}
	closeResources(injector, rec)
	return nil
}

func checkRecognizer(ctx context.Context, rec recognizer.Recognizer) {
	checker, ok := rec.(recognizer.StatusChecker)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()
	status, err := checker.Status(ctx)
	if err != nil {
		slog.Warn("recognizer is not reachable yet", "error", err)
		return
	}
	slog.Info("recognizer status", "status", status)
}

func closeResources(injector do.Injector, rec recognizer.Recognizer) {
	if sink, err := do.Invoke[output.Sink](injector); err == nil {
		if c, ok := sink.(io.Closer); ok {
			if err := c.Close(); err != nil {
				slog.Error("failed to close output sinks", "error", err)
			}
		}
	}
	if c, ok := rec.(io.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Error("failed to close recognizer", "error", err)
		}
	}
	if repo, err := do.Invoke[repository.Repository](injector); err == nil {
		if c, ok := repo.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
