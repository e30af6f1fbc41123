package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mateai/mate/internal/app"
	"github.com/mateai/mate/internal/config"
	"github.com/mateai/mate/internal/llm"
	"github.com/mateai/mate/internal/practice"
	"github.com/mateai/mate/internal/release"
	"github.com/mateai/mate/internal/tutor"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file next to the config.
	logPath := os.DevNull
	if dir, err := config.Dir(); err == nil {
		if err := os.MkdirAll(dir, 0o700); err == nil {
			logPath = filepath.Join(dir, "mate.log")
		}
	}
	log, err := newLogger(cfg, logPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	eventRepo := st.EventRepo()

	gw, err := newGateway(cfg, log)
	if err != nil {
		return err
	}

	var t practice.Tutor
	llmReady := true
	if cfg.Tutor.RemoteURL != "" {
		t = tutor.NewRemote(cfg.Tutor.RemoteURL, gw.Session(), 0, log)
	} else {
		provider, err := llm.NewProvider(ctx, cfg.LLM, eventRepo, log)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Proveedor de IA no configurado:", err)
			fmt.Fprintln(os.Stderr, "La práctica con IA no estará disponible.")
			log.Warn("llm provider unavailable", "error", err)
			llmReady = false
		}
		t = tutor.New(provider, tutor.DefaultConfig(), gw, log)
	}

	ctrl := practice.New(practice.Options{
		Tutor:  t,
		Sink:   gw,
		Events: eventRepo,
		Limits: practice.Limits{
			MaxAttempts:         cfg.Practice.MaxAttempts,
			AssignedMaxAttempts: cfg.Practice.AssignedMaxAttempts,
			HintSlots:           cfg.Practice.HintSlots,
		},
		Student:      gw.Session().User(),
		DefaultCount: cfg.Practice.DefaultCount,
		Logger:       log,
	})

	return app.Run(app.Options{
		Gateway:    gw,
		Controller: ctrl,
		History:    eventRepo,
		LLMReady:   llmReady,
		Release:    release.NewChecker(cfg.Release.Owner, cfg.Release.Repo),
		Version:    version,
		Logger:     log,
	})
}
