package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/paperpush/internal"
	"codeberg.org/snonux/paperpush/internal/model"
)

// flagKeys maps flag names to their viper keys.
var flagKeys = map[string]string{
	"topics":            "search.topics",
	"topics-file":       "search.topics_file",
	"limit":             "search.limit",
	"backend":           "model.backend",
	"gemini-model":      "model.gemini_model",
	"deepseek-model":    "model.deepseek_model",
	"deepseek-base-url": "model.deepseek_base_url",
	"retry-attempts":    "model.retry_attempts",
	"retry-delay":       "model.retry_delay",
	"cache-file":        "cache.file",
	"webhook":           "notify.webhook",
	"push-interval":     "notify.interval",
	"label":             "notify.label",
	"banner-image":      "notify.banner_image",
	"log-level":         "log.level",
}

// legacyEnv lists environment variable names kept from older deployments.
var legacyEnv = map[string]string{
	"search.topics":  "QUERYS",
	"search.limit":   "LIMITS",
	"notify.webhook": "FEISHU_URL",
	"model.api_key":  "API_KEY",
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "paperpush",
		Short: "Daily arXiv paper push",
		Long: `paperpush searches arXiv for the newest papers on a set of topics,
keeps the ones a language model judges relevant, translates their abstracts
and pushes one message per paper to a Feishu webhook.

Translations are cached in a JSON file so each paper is translated once.

Examples:
  paperpush                                  # Run with $HOME/.paperpush.yaml
  paperpush --topics cs.IR,cs.AI --limit 20  # Override the search
  paperpush --backend deepseek               # Use DeepSeek instead of Gemini
  paperpush --archive                        # Rotate the cache file`,
		Args:    cobra.NoArgs,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.paperpush.yaml)")

	// Local flags
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available models for the selected backend and exit")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move the cache file into an archive directory and exit")

	// Search flags
	cmd.Flags().StringVarP(&flags.Topics, "topics", "t", flags.Topics, "Comma separated arXiv search topics")
	cmd.Flags().StringVar(&flags.TopicsFile, "topics-file", "", "Read additional topics from file (one per line)")
	cmd.Flags().IntVarP(&flags.Limit, "limit", "n", flags.Limit, "Maximum results per topic")

	// Model flags
	cmd.Flags().StringVarP(&flags.Backend, "backend", "b", flags.Backend, "Model backend: gemini or deepseek")
	cmd.Flags().StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model name")
	cmd.Flags().StringVar(&flags.DeepSeekModel, "deepseek-model", flags.DeepSeekModel, "DeepSeek model name")
	cmd.Flags().StringVar(&flags.DeepSeekBaseURL, "deepseek-base-url", flags.DeepSeekBaseURL, "DeepSeek API base URL")
	cmd.Flags().IntVar(&flags.RetryAttempts, "retry-attempts", flags.RetryAttempts, "Attempts per model call")
	cmd.Flags().DurationVar(&flags.RetryDelay, "retry-delay", flags.RetryDelay, "Base delay between model call attempts (grows linearly)")

	// Cache flags
	cmd.Flags().StringVar(&flags.CacheFile, "cache-file", flags.CacheFile, "Translation cache file")

	// Notification flags
	cmd.Flags().StringVar(&flags.Webhook, "webhook", "", "Feishu bot webhook URL (empty logs messages instead)")
	cmd.Flags().DurationVar(&flags.PushInterval, "push-interval", flags.PushInterval, "Minimum time between two pushes")
	cmd.Flags().StringVar(&flags.Label, "label", flags.Label, "Topic group label used in message titles")
	cmd.Flags().StringVar(&flags.BannerImage, "banner-image", "", "Feishu image key shown above each message")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	for name, key := range flagKeys {
		viper.BindPFlag(key, cmd.Flags().Lookup(name))
	}
	for key, env := range legacyEnv {
		prefixed := "PAPERPUSH_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		viper.BindEnv(key, prefixed, env)
	}
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".paperpush" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".paperpush")
	}

	// Environment variables, e.g. PAPERPUSH_SEARCH_LIMIT
	viper.SetEnvPrefix("PAPERPUSH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// Resolve copies the merged configuration (flags, environment, config file,
// defaults) back into flags.
func Resolve(flags *Flags) {
	setString := func(dst *string, key string) {
		if viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}
	setString(&flags.Topics, "search.topics")
	setString(&flags.TopicsFile, "search.topics_file")
	setString(&flags.Backend, "model.backend")
	setString(&flags.GeminiModel, "model.gemini_model")
	setString(&flags.DeepSeekModel, "model.deepseek_model")
	setString(&flags.DeepSeekBaseURL, "model.deepseek_base_url")
	setString(&flags.CacheFile, "cache.file")
	setString(&flags.Webhook, "notify.webhook")
	setString(&flags.Label, "notify.label")
	setString(&flags.BannerImage, "notify.banner_image")
	setString(&flags.LogLevel, "log.level")

	if viper.IsSet("search.limit") {
		flags.Limit = viper.GetInt("search.limit")
	}
	if viper.IsSet("model.retry_attempts") {
		flags.RetryAttempts = viper.GetInt("model.retry_attempts")
	}
	if viper.IsSet("model.retry_delay") {
		flags.RetryDelay = viper.GetDuration("model.retry_delay")
	}
	if viper.IsSet("notify.interval") {
		flags.PushInterval = viper.GetDuration("notify.interval")
	}

	flags.Backend = strings.ToLower(strings.TrimSpace(flags.Backend))
}

// GetAPIKey retrieves the model API key from environment or config
func GetAPIKey(backend string) string {
	// PAPERPUSH_API_KEY, API_KEY or model.api_key in the config file
	if key := viper.GetString("model.api_key"); key != "" {
		return key
	}

	// Then the vendor variable for the selected backend
	switch backend {
	case model.BackendDeepSeek:
		return os.Getenv("DEEPSEEK_API_KEY")
	default:
		return os.Getenv("GEMINI_API_KEY")
	}
}
