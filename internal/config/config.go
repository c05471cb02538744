package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Conf holds the application configuration, making it accessible globally.
var Conf *Config

// Config struct is the top-level configuration structure.
type Config struct {
	Slack       SlackConfig       `mapstructure:"slack"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Quiz        QuizConfig        `mapstructure:"quiz"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Image       ImageConfig       `mapstructure:"image"`
}

// SlackConfig holds credentials for the Slack Web API.
type SlackConfig struct {
	BotToken string `mapstructure:"bot_token"`
}

// DatabaseConfig holds database connection settings. Driver is either
// "postgres" or "sqlite"; sqlite only reads DSN.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	DSN      string `mapstructure:"dsn"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// QuizConfig controls quiz generation and the random-quiz scheduler.
type QuizConfig struct {
	// Frequency is the base interval between scheduled random quizzes.
	Frequency time.Duration `mapstructure:"frequency"`
	// Jitter is the maximum random delay added on top of Frequency so
	// everyone's quiz does not land on the same tick.
	Jitter       time.Duration `mapstructure:"jitter"`
	MessagesFile string        `mapstructure:"messages_file"`
}

// ScoringConfig holds the point formula parameters.
type ScoringConfig struct {
	BaseCorrect     int `mapstructure:"base_correct"`
	BaseIncorrect   int `mapstructure:"base_incorrect"`
	StreakBonusStep int `mapstructure:"streak_bonus_step"`
	StreakBonusCap  int `mapstructure:"streak_bonus_cap"`
}

// LeaderboardConfig holds ranking policy settings.
type LeaderboardConfig struct {
	// Ranking is "score" (cumulative points) or "percentage" (accuracy).
	Ranking     string `mapstructure:"ranking"`
	MinAttempts int    `mapstructure:"min_attempts"`
	Limit       int    `mapstructure:"limit"`
}

// ImageConfig holds grid composition settings.
type ImageConfig struct {
	QuadrantSize int           `mapstructure:"quadrant_size"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	JPEGQuality  int           `mapstructure:"jpeg_quality"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "facesinq")
	v.SetDefault("database.password", "facesinq")
	v.SetDefault("database.dbname", "facesinq")
	v.SetDefault("database.dsn", "facesinq.db")

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	// Quiz defaults
	v.SetDefault("quiz.frequency", time.Hour)
	v.SetDefault("quiz.jitter", 10*time.Minute)
	v.SetDefault("quiz.messages_file", "config/messages.yaml")

	// Scoring defaults; see the scoring service for how these combine.
	v.SetDefault("scoring.base_correct", 10)
	v.SetDefault("scoring.base_incorrect", 2)
	v.SetDefault("scoring.streak_bonus_step", 5)
	v.SetDefault("scoring.streak_bonus_cap", 10)

	// Leaderboard defaults
	v.SetDefault("leaderboard.ranking", "score")
	v.SetDefault("leaderboard.min_attempts", 10)
	v.SetDefault("leaderboard.limit", 10)

	// Image defaults
	v.SetDefault("image.quadrant_size", 400)
	v.SetDefault("image.fetch_timeout", 5*time.Second)
	v.SetDefault("image.jpeg_quality", 85)
}

// Init initializes the configuration with Viper.
func Init(projectRoot string, log *zap.Logger) error {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config") // Name of config file (without extension)
	v.SetConfigType("yaml")   // Type of config file

	// --- Environment Variable Binding ---
	v.SetEnvPrefix("FACESINQ") // e.g., FACESINQ_SLACK_BOT_TOKEN
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read the initial configuration from the file.
	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal the config into our global Conf variable
	if err := v.Unmarshal(&Conf); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Set up a watch for configuration changes for hot-reloading
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		if err := v.Unmarshal(&Conf); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
		}
	})

	log.Info("Configuration loaded successfully")
	return nil
}

// Default returns a Config populated with the built-in defaults, without
// touching files or the environment. Used by tests and as a fallback when
// Init has not run.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		panic(fmt.Sprintf("default config does not unmarshal: %v", err))
	}
	return &c
}
