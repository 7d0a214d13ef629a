/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sony-level/ktp-tester/internal/config"
)

var (
	// Global flags
	configFile string
	verbose    bool
	logFile    string

	// Loaded in PersistentPreRunE
	cfg        *config.Config
	configPath string
	logger     *log.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ktp",
	Short: "Fetch, install and run Python project repositories",
	Long: `ktp (KTP project tester) runs a Python project straight from its
repository URL.

It clones the repository (optionally pinned to a commit), creates an
isolated virtual environment, installs requirements.txt, finds the entry
file and runs it while streaming its output. Projects that depend on
Streamlit are started as a local web app and opened in the browser.

Examples:
  ktp run https://github.com/user/repo
  ktp run https://github.com/user/repo/commit/1a2b3c4
  ktp run https://github.com/user/repo --keep --verbose
  ktp clean --older-than 24h`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, configPath, err = config.Load(config.LoadOptions{ConfigFile: configFile})
		if err != nil {
			return err
		}

		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: config.AppName})
		level, _ := cfg.LogLevel()
		if verbose {
			level = log.DebugLevel
		}
		logger.SetLevel(level)

		if configPath != "" {
			logger.Debug("config loaded", "path", configPath)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Persistent flags - available to all subcommands
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./.ktp.yaml, then $XDG_CONFIG_HOME/ktp/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug diagnostics")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write the run log to this file")
}
