package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mateai/mate/internal/gateway"
	"github.com/mateai/mate/internal/llm"
	"github.com/mateai/mate/internal/server"
	"github.com/mateai/mate/internal/tutor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the AI orchestration HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		log, err := newLogger(cfg, "stderr")
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

		provider, err := llm.NewProvider(cmd.Context(), cfg.LLM, eventRepo, log)
		if err != nil {
			return fmt.Errorf("llm provider: %w", err)
		}

		gwCfg := gateway.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout, Logger: log}
		srv := server.New(server.Options{
			Provider: provider,
			Tutor:    tutor.DefaultConfig(),
			History: func(token string) tutor.HistorySource {
				if token == "" {
					return nil
				}
				return gateway.NewClient(gwCfg, gateway.NewTokenSession(token))
			},
			JWTSecret:      cfg.Server.JWTSecret,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Events:         eventRepo,
			Retention:      cfg.Server.EventRetention,
			Mode:           cfg.Mode,
			Logger:         log,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides MATE_SERVER_ADDR)")
}
