package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/config"
)

var (
	port         string
	host         string
	settingsPath string
	dataDir      string
	logLevel     string
	strictStore  bool
	development  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "websearch",
	Short: "Web search plugin with live query suggestions",
	Long: `websearch opens search engine URLs for an action keyword and merges
live query suggestions from a suggestion provider into the results.

Run "websearch serve" to expose the HTTP and stream API, or
"websearch query" for a one-shot lookup.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (overrides STORE_PATH)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Plugin data directory (overrides DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&strictStore, "strict", false, "Fail on unreadable settings instead of using defaults")
	rootCmd.PersistentFlags().BoolVar(&development, "dev", false, "Development logging and gin debug mode")

	serveCmd.Flags().StringVar(&port, "port", "", "Server port (overrides PORT)")
	serveCmd.Flags().StringVar(&host, "host", "", "Server host (overrides HOST)")

	queryCmd.Flags().DurationVar(&queryWait, "wait", 0, "Wait this long for suggestions that arrive after the first results")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(sourcesCmd)
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if port != "" {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if settingsPath != "" {
		cfg.Store.Path = settingsPath
	}
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if strictStore {
		cfg.Store.Strict = true
	}
	if development {
		cfg.Logging.Development = true
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
