package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/o1-assessor/internal/assessment"
	"github.com/spigell/o1-assessor/internal/report"
)

const (
	app       = "o1-assessor"
	envPrefix = "O1_ASSESSOR"
)

type Config struct {
	CriteriaFile string            `mapstructure:"criteria-file" json:"criteria-file"`
	Deadline     time.Duration     `mapstructure:"deadline" json:"deadline"`
	Verbose      bool              `mapstructure:"verbose" json:"verbose"`
	Format       string            `mapstructure:"format" json:"format"`
	Policy       assessment.Policy `mapstructure:"policy" json:"policy"`
	AI           *AIConfig         `mapstructure:"ai" json:"ai"`
}

type AIConfig struct {
	Provider          string        `mapstructure:"provider" json:"provider"`
	RequestsPerMinute int           `mapstructure:"requests-per-minute" json:"requests-per-minute"`
	Burst             int           `mapstructure:"burst" json:"burst"`
	MaxLogLength      int           `mapstructure:"max-log-length" json:"max-log-length"`
	Gemini            *GeminiConfig `mapstructure:"gemini" json:"gemini"`
	OpenAI            *OpenAIConfig `mapstructure:"openai" json:"openai"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file" json:"api-key-file"`
	APIKey     string `mapstructure:"api-key" json:"-"`
	Model      string `mapstructure:"model" json:"model"`
	MaxRetries int    `mapstructure:"max-retries" json:"max-retries"`
}

type OpenAIConfig struct {
	APIKeyFile string `mapstructure:"api-key-file" json:"api-key-file"`
	APIKey     string `mapstructure:"api-key" json:"-"`
	Model      string `mapstructure:"model" json:"model"`
	BaseURL    string `mapstructure:"base-url" json:"base-url"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "o1-assessor rates a résumé against the O-1A visa criteria with an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig()
		},
	}
)

// Execute executes the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", app, err)
		return exitCode(err)
	}
	return 0
}

func init() {
	setDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is o1-assessor.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("criteria-file", "c", "", "criteria catalog in YAML or JSON (default is the built-in O-1A catalog)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("criteria-file", rootCmd.PersistentFlags().Lookup("criteria-file"))
}

func setDefaults(v *viper.Viper) {
	policy := assessment.DefaultPolicy()

	v.SetDefault("deadline", 60*time.Second)
	v.SetDefault("verbose", false)
	v.SetDefault("format", string(report.FormatJSON))
	v.SetDefault("policy.positive-rating", policy.PositiveRating)
	v.SetDefault("policy.super-rating", policy.SuperRating)
	v.SetDefault("policy.high-count", policy.HighCount)
	v.SetDefault("policy.medium-count", policy.MediumCount)
	v.SetDefault("ai.provider", providerGemini)
	v.SetDefault("ai.requests-per-minute", 0)
	v.SetDefault("ai.burst", 1)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.model", "gemini-2.5-pro")
	v.SetDefault("ai.gemini.max-retries", 0)
	v.SetDefault("ai.openai.api-key-file", "")
	v.SetDefault("ai.openai.api-key", "")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.openai.base-url", "")
}

func initConfig() error {
	// A missing .env is normal; only malformed files are reported.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %q: %w", cfgFile, err)
		}
		return nil
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is required")
	}

	var errs []error
	if c.Deadline < 0 {
		errs = append(errs, fmt.Errorf("deadline must not be negative, got %s", c.Deadline))
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if err := c.Policy.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("policy: %w", err))
	}

	if c.AI == nil {
		errs = append(errs, errors.New("ai configuration is required"))
		return errors.Join(errs...)
	}

	switch normalizeProvider(c.AI.Provider) {
	case providerGemini:
		if c.AI.Gemini == nil || strings.TrimSpace(c.AI.Gemini.Model) == "" {
			errs = append(errs, errors.New("ai.gemini.model is required"))
		} else if c.AI.Gemini.MaxRetries < 0 {
			errs = append(errs, errors.New("ai.gemini.max-retries must not be negative"))
		}
	case providerOpenAI:
		if c.AI.OpenAI == nil || strings.TrimSpace(c.AI.OpenAI.Model) == "" {
			errs = append(errs, errors.New("ai.openai.model is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported ai provider: %s", c.AI.Provider))
	}

	if c.AI.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("ai.requests-per-minute must not be negative"))
	}

	return errors.Join(errs...)
}
