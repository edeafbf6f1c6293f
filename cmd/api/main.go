package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tenaflow/tena-api/internal/config"
	"github.com/tenaflow/tena-api/internal/logging"
	"github.com/tenaflow/tena-api/internal/utils"
)

var (
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tena-api",
	Short: "TENA Flow hospital and doctor booking API",
	Long: `tena-api serves the TENA Flow REST API: accounts, hospitals, doctors,
bookings, Telebirr receipt payments, the health assistant and the admin
dashboard.

Run without a subcommand to start the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		if logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		utils.InitJWT(cfg.JWT.Secret, cfg.JWT.Expiry)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server until SIGINT or SIGTERM",
	RunE:  runServe,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo hospitals and doctors into the configured store",
	RunE:  runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (environment variables take precedence)")
	rootCmd.AddCommand(serveCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
