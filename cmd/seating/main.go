package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/limaJavier/seating/internal/config"
	"github.com/limaJavier/seating/internal/logger"
	"github.com/limaJavier/seating/internal/service"
	"github.com/limaJavier/seating/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Exit codes of the commands that arrange rooms
const (
	exitArranged           = 10
	exitNoArrangement      = 20
	exitVerificationFailed = 15
)

var (
	configPath string

	cfg       *config.Config
	zapLogger *zap.Logger
)

// exitCode lets a command finish with a specific status after the deferred cleanup has run
type exitCode int

func (code exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(code))
}

var rootCmd = &cobra.Command{
	Use:   "seating",
	Short: "Exam seating arrangements without same-branch neighbours",
	Long: `seating assigns the students of one or more branches to the seats of an
exam room so that no two students of the same branch sit next to each other.

Arrangements are stored so roll numbers can be looked up and checked for
duplicates later. Run "seating serve" to expose the same operations over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("cannot load configuration: %v", err)
		}

		zapLogger, err = logger.New(cfg.LogLevel, cfg.Environment)
		if err != nil {
			return fmt.Errorf("cannot initialize logger: %v", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON or YAML configuration file; SEATING_* environment variables override it")

	rootCmd.AddCommand(assignCmd, batchCmd, lookupCmd, checkCmd, reportCmd, serveCmd)
}

func main() {
	err := rootCmd.Execute()
	if zapLogger != nil {
		_ = zapLogger.Sync()
	}

	var code exitCode
	if errors.As(err, &code) {
		os.Exit(int(code))
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openService opens the configured store and builds a service over it. The returned function closes the store
func openService() (service.SeatingService, func(), error) {
	storeConfig := store.DefaultConfig(cfg.StorePath)
	if cfg.InMemory {
		storeConfig = store.InMemoryConfig()
	}
	storeConfig.Logger = zapLogger

	arrangementStore, err := store.Open(storeConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open arrangement store: %v", err)
	}

	closeStore := func() {
		if err := arrangementStore.Close(); err != nil {
			zapLogger.Error("Failed to close arrangement store", zap.Error(err))
		}
	}
	return service.NewSeatingService(arrangementStore, service.OptionsFromConfig(cfg), zapLogger), closeStore, nil
}
