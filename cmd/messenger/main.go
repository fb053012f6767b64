package main

import (
	"desktop-messenger/internal/notify"
	"desktop-messenger/internal/storage"
	"desktop-messenger/internal/tui"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/caarlos0/env/v6"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// EnvConfig defines process wide fields parsed from environment variables
type EnvConfig struct {
	LogFile string `env:"MESSENGER_LOG_FILE" envDefault:"messenger.log"`
}

var (
	dbPath    string
	debugMode bool
)

var rootCmd = &cobra.Command{
	Use:           "messenger",
	Short:         "Terminal messenger with direct and group chats",
	RunE:          runClient,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database file (overrides MESSENGER_DB_PATH)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(seedCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger writes to a file so log lines never land on the terminal UI
func newLogger() (*zap.Logger, error) {
	cfg := EnvConfig{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("cannot parse env config: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	if debugMode {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.OutputPaths = []string{cfg.LogFile}
	zcfg.ErrorOutputPaths = []string{cfg.LogFile}

	return zcfg.Build()
}

// openStore parses storage config from the environment, --db wins over MESSENGER_DB_PATH
func openStore(sugar *zap.SugaredLogger) (*storage.Store, error) {
	cfg := storage.Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("cannot parse env config: %w", err)
	}
	if dbPath != "" {
		cfg.Path = dbPath
	}

	store, err := storage.New(sugar, cfg, storage.ConnectionTimeout(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("cannot create Store instance: %w", err)
	}
	return store, nil
}

func runClient(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	sugar := logger.Sugar()
	sugar.Info("Application is starting")

	store, err := openStore(sugar)
	if err != nil {
		return err
	}
	defer store.Close()

	uiCfg := tui.EnvConfig{}
	if err := env.Parse(&uiCfg); err != nil {
		return fmt.Errorf("cannot parse env config: %w", err)
	}

	m := tui.New(sugar, store,
		tui.WithEnvConfig(uiCfg),
		tui.WithNotifier(notify.New(sugar, uiCfg.Notify)),
	)
	defer m.Close()

	p := tea.NewProgram(m)
	m.Attach(p.Send)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}

	sugar.Info("Application stopped")

	return nil
}
