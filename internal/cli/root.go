package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/topicalmd/contentpipe/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "contentpipe",
	Short: "Contentpipe - multi-agent affiliate content pipeline",
	Long: `Contentpipe researches content gaps, writes affiliate articles with a
chain of LLM agents, validates and scores them, and pushes the results
to the content store as published documents or drafts.

Stages: Research -> Outline -> Write -> Validate -> Edit -> Publish.`,
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
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("contentpipe v" + model.PipelineVersion)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.contentpipe/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.contentpipe")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CONTENTPIPE_*
	viper.SetEnvPrefix("CONTENTPIPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the effective configuration: defaults, then config
// file / CONTENTPIPE_* env overrides, then provider credentials from their
// conventional environment variables.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	overrideString(&cfg.Models.Research, "models.research")
	overrideString(&cfg.Models.Outline, "models.outline")
	overrideString(&cfg.Models.Writer, "models.writer")
	overrideString(&cfg.Models.Editor, "models.editor")
	overrideString(&cfg.Models.Default, "models.default")
	overrideInt(&cfg.Pipeline.PublishThreshold, "pipeline.publish_threshold")
	overrideInt(&cfg.Pipeline.MaxArticles, "pipeline.max_articles")
	overrideInt(&cfg.Pipeline.MaxLenientIssues, "pipeline.max_lenient_issues")
	overrideString(&cfg.Pipeline.CatalogPath, "pipeline.catalog_path")
	overrideString(&cfg.Sanity.ProjectID, "sanity.project_id")
	overrideString(&cfg.Sanity.Dataset, "sanity.dataset")

	// Credentials come from env only, never from the config file
	cfg.LLM.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.LLM.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.LLM.GoogleKey = os.Getenv("GOOGLE_API_KEY")
	cfg.Sanity.Token = os.Getenv("SANITY_API_TOKEN")
	if id := firstEnv("SANITY_PROJECT_ID", "NEXT_PUBLIC_SANITY_PROJECT_ID"); id != "" {
		cfg.Sanity.ProjectID = id
	}
	if ds := firstEnv("SANITY_DATASET", "NEXT_PUBLIC_SANITY_DATASET"); ds != "" {
		cfg.Sanity.Dataset = ds
	}

	cfg.Output.Verbose = verbose
	return cfg
}

func overrideString(dst *string, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetString(key)
	}
}

func overrideInt(dst *int, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetInt(key)
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
