package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/avoropai/argus/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "argus",
	Short: "Argus - Iterative evidence gathering for attributed claims",
	Long: `Argus watches attributed public statements and separates rhetoric
from action.

For each batch of claims it runs a bounded research loop: search for
corroborating evidence, judge whether a verifiable action occurred,
build a falsifiable strategic thesis, and subject that thesis to an
adversarial critique before anything is published.

Every briefing carries its evidence, its competing explanations, and
a condition under which the thesis would be wrong. Argus prefers an
honest "no thesis" over a confident guess.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Argus.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("argus v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.argus/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.argus")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match ARGUS_*
	viper.SetEnvPrefix("ARGUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig materializes the effective configuration: defaults, then the
// config file, then ARGUS_* environment variables, then well-known API key
// variables.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	// Search keys: ARGUS_SEARCH_API_KEYS takes a comma-separated list,
	// TAVILY_API_KEY supplies a single key.
	if len(cfg.Search.APIKeys) == 0 {
		if raw := os.Getenv("ARGUS_SEARCH_API_KEYS"); raw != "" {
			for _, key := range strings.Split(raw, ",") {
				if key = strings.TrimSpace(key); key != "" {
					cfg.Search.APIKeys = append(cfg.Search.APIKeys, key)
				}
			}
		} else if key := os.Getenv("TAVILY_API_KEY"); key != "" {
			cfg.Search.APIKeys = []string{key}
		}
	}

	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "ollama":
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	if verbose {
		cfg.Output.Verbose = true
		if cfg.Log.Level == "info" {
			cfg.Log.Level = "debug"
		}
	}

	return cfg, nil
}
