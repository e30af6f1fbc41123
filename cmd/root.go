package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mateai/mate/internal/config"
	"github.com/mateai/mate/internal/gateway"
	"github.com/mateai/mate/internal/logger"
	"github.com/mateai/mate/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mate",
	Short: "AI math practice for students",
	Long: `Mate AI: práctica de matemáticas con ejercicios generados por IA,
pistas, corrección y reportes para estudiantes y profesores.

Para practicar con IA define una clave de proveedor, por ejemplo
ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY u OPENROUTER_API_KEY,
o apunta MATE_TUTOR_URL a un servicio "mate serve".`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MATE_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides MATE_CONFIG env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the layered configuration; --db wins over every
// other source of the database path.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path, or the default
// XDG path when none is set.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

func openStore(cfg config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func newLogger(cfg config.Config, output string) (*logger.Logger, error) {
	if cfg.LogFile != "" {
		output = cfg.LogFile
	}
	log, err := logger.New(logger.Options{Mode: cfg.Mode, Level: cfg.LogLevel, OutputPath: output})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// newGateway builds a backend client whose session persists in the
// user's config directory.
func newGateway(cfg config.Config, log *logger.Logger) (*gateway.Client, error) {
	path, err := config.SessionPath()
	if err != nil {
		return nil, err
	}
	sess, err := gateway.NewSession(gateway.FileStore{Path: path})
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return gateway.NewClient(gateway.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  log,
	}, sess), nil
}

// requireLogin returns the logged-in user or an error telling how to
// log in.
func requireLogin(gw *gateway.Client) (*gateway.User, error) {
	u := gw.Session().User()
	if !gw.Session().LoggedIn() || u == nil {
		return nil, fmt.Errorf("no hay una sesión activa; ejecuta \"mate login\"")
	}
	return u, nil
}
