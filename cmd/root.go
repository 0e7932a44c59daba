package cmd

import (
	"complaint_tracker_backend/internal/app"
	"complaint_tracker_backend/internal/config"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	configDir    string
	forceMigrate bool
)

var rootCmd = &cobra.Command{
	Use:          "complaint-tracker",
	Short:        "Campus complaint tracker API: filing, triage, status history and feedback",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "configs", "directory holding config.yaml")
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().BoolVar(&forceMigrate, "migrate", false, "run AutoMigrate on startup even in release mode")
	}
	rootCmd.AddCommand(serveCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.ForceMigrate = forceMigrate

	application, err := app.NewApp(cfg, configDir)
	if err != nil {
		return err
	}
	return application.Run()
}
