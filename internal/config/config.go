package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      App      `mapstructure:"app"`
	Pod      Pod      `mapstructure:"pod"`
	AI       AI       `mapstructure:"ai"`
	Google   Google   `mapstructure:"google"`
	Store    Store    `mapstructure:"store"`
	Email    Email    `mapstructure:"email"`
	Server   Server   `mapstructure:"server"`
	Schedule Schedule `mapstructure:"schedule"`
	Logging  Logging  `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug   bool   `mapstructure:"debug"`
	DataDir string `mapstructure:"data_dir"`
}

// Pod describes the team, its meetings and the documents it writes to
type Pod struct {
	Name                 string   `mapstructure:"name"`
	LeaderEmail          string   `mapstructure:"leader_email"`
	MeetingTitles        []string `mapstructure:"meeting_titles"`
	Keywords             []string `mapstructure:"keywords"`
	LookbackDays         int      `mapstructure:"lookback_days"`
	SearchDays           int      `mapstructure:"search_days"`
	FolderID             string   `mapstructure:"folder_id"`
	MatchMode            string   `mapstructure:"match_mode"`
	CustomPatterns       []string `mapstructure:"custom_patterns"`
	MaxDocuments         int      `mapstructure:"max_documents"`
	ProcessedKey         string   `mapstructure:"processed_key"`
	ContextDocID         string   `mapstructure:"context_doc_id"`
	WeeklyDocID          string   `mapstructure:"weekly_doc_id"`
	ArchiveDocID         string   `mapstructure:"archive_doc_id"`
	Section              string   `mapstructure:"section"`
	Timezone             string   `mapstructure:"timezone"`
	EmailAllParticipants bool     `mapstructure:"email_all_participants"`
	SubjectPrefix        string   `mapstructure:"subject_prefix"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	Timeout         string  `mapstructure:"timeout"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxInputChars   int     `mapstructure:"max_input_chars"`
}

// Google holds Workspace API access configuration
type Google struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	CalendarID      string `mapstructure:"calendar_id"`
	Subject         string `mapstructure:"subject"` // User impersonated with domain-wide delegation
	ExportBaseURL   string `mapstructure:"export_base_url"`
}

// Store selects the processed-meetings backend
type Store struct {
	Driver      string      `mapstructure:"driver"`
	SQLitePath  string      `mapstructure:"sqlite_path"`
	PostgresDSN string      `mapstructure:"postgres_dsn"`
	Redis       RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Email holds outgoing mail configuration
type Email struct {
	Provider string     `mapstructure:"provider"`
	From     string     `mapstructure:"from"`
	SMTP     SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Server holds the trigger server configuration
type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	TriggerToken    string        `mapstructure:"trigger_token"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Schedule holds the daily trigger configuration
type Schedule struct {
	Enabled   bool `mapstructure:"enabled"`
	DailyHour int  `mapstructure:"daily_hour"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Email providers
const (
	ProviderGmail = "gmail"
	ProviderSMTP  = "smtp"
)

// Load reads .env, the config file and the environment. It does not
// validate; call Validate before running the pipeline.
func Load(configFile string) (Config, error) {
	viper.Reset()

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".podbrief")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(&config); err != nil {
		return Config{}, fmt.Errorf("error post-processing config: %w", err)
	}

	return config, nil
}

// setDefaults sets default configuration values. Every key gets a default
// so AutomaticEnv can override it.
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".podbrief")

	// Pod defaults
	viper.SetDefault("pod.name", "")
	viper.SetDefault("pod.leader_email", "")
	viper.SetDefault("pod.meeting_titles", []string{})
	viper.SetDefault("pod.keywords", []string{"RHEL", "Cloud Pod", "Strategy", "Journey"})
	viper.SetDefault("pod.lookback_days", 3)
	viper.SetDefault("pod.search_days", 7)
	viper.SetDefault("pod.folder_id", "")
	viper.SetDefault("pod.match_mode", "strict")
	viper.SetDefault("pod.custom_patterns", []string{})
	viper.SetDefault("pod.max_documents", 500)
	viper.SetDefault("pod.processed_key", "PROCESSED_MEETINGS")
	viper.SetDefault("pod.context_doc_id", "")
	viper.SetDefault("pod.weekly_doc_id", "")
	viper.SetDefault("pod.archive_doc_id", "")
	viper.SetDefault("pod.section", "POD Meetings")
	viper.SetDefault("pod.timezone", "Local")
	viper.SetDefault("pod.email_all_participants", false)
	viper.SetDefault("pod.subject_prefix", "[Pod Update]")

	// AI defaults
	viper.SetDefault("ai.gemini.api_key", "")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", "120s")
	viper.SetDefault("ai.gemini.max_output_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.gemini.max_input_chars", 100000)

	// Google defaults
	viper.SetDefault("google.credentials_file", "")
	viper.SetDefault("google.calendar_id", "primary")
	viper.SetDefault("google.subject", "")
	viper.SetDefault("google.export_base_url", "https://docs.google.com")

	// Store defaults
	viper.SetDefault("store.driver", "sqlite")
	viper.SetDefault("store.sqlite_path", "")
	viper.SetDefault("store.postgres_dsn", "")
	viper.SetDefault("store.redis.addr", "localhost:6379")
	viper.SetDefault("store.redis.password", "")
	viper.SetDefault("store.redis.db", 0)

	// Email defaults
	viper.SetDefault("email.provider", ProviderGmail)
	viper.SetDefault("email.from", "")
	viper.SetDefault("email.smtp.host", "")
	viper.SetDefault("email.smtp.port", 587)
	viper.SetDefault("email.smtp.username", "")
	viper.SetDefault("email.smtp.password", "")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.trigger_token", "")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "30m")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Schedule defaults
	viper.SetDefault("schedule.enabled", true)
	viper.SetDefault("schedule.daily_hour", 8)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("google.credentials_file", []string{
		"GOOGLE_APPLICATION_CREDENTIALS",
	})

	bindEnvKeys("pod.leader_email", []string{
		"POD_LEADER_EMAIL",
	})

	// Store
	bindEnvKeys("store.postgres_dsn", []string{
		"DATABASE_URL",
		"POSTGRES_DSN",
	})

	bindEnvKeys("store.redis.addr", []string{
		"REDIS_ADDR",
	})

	// Email SMTP
	bindEnvKeys("email.smtp.host", []string{
		"SMTP_HOST",
		"EMAIL_SMTP_HOST",
	})

	bindEnvKeys("email.smtp.username", []string{
		"SMTP_USERNAME",
		"EMAIL_USERNAME",
	})

	bindEnvKeys("email.smtp.password", []string{
		"SMTP_PASSWORD",
		"EMAIL_PASSWORD",
	})

	bindEnvKeys("server.trigger_token", []string{
		"PODBRIEF_TRIGGER_TOKEN",
		"TRIGGER_TOKEN",
	})

	// General settings
	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"PODBRIEF_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.Store.SQLitePath == "" {
		config.Store.SQLitePath = config.App.DataDir
	}
	config.Store.SQLitePath = expandPath(config.Store.SQLitePath)
	if config.Google.CredentialsFile != "" {
		config.Google.CredentialsFile = expandPath(config.Google.CredentialsFile)
	}

	config.Pod.MeetingTitles = trimAll(config.Pod.MeetingTitles)
	config.Pod.Keywords = trimAll(config.Pod.Keywords)
	config.Pod.CustomPatterns = trimAll(config.Pod.CustomPatterns)
	config.Pod.MatchMode = strings.ToLower(strings.TrimSpace(config.Pod.MatchMode))

	// Validate durations
	durations := map[string]string{
		"ai.gemini.timeout": config.AI.Gemini.Timeout,
	}
	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	if _, err := time.LoadLocation(config.Pod.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", config.Pod.Timezone, err)
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Validate reports missing required settings as an error and suspicious
// ones as warnings.
func (c Config) Validate() (warnings []string, err error) {
	var errors []string

	if len(c.Pod.MeetingTitles) == 0 {
		errors = append(errors, "At least one meeting title is required. Set pod.meeting_titles in the config file")
	}
	if c.Pod.WeeklyDocID == "" {
		errors = append(errors, "Weekly summary document ID is required. Set pod.weekly_doc_id")
	}
	if c.Pod.ArchiveDocID == "" {
		errors = append(errors, "Transcript archive document ID is required. Set pod.archive_doc_id")
	}
	if c.Pod.LeaderEmail == "" {
		errors = append(errors, "Pod leader email is required. Set POD_LEADER_EMAIL or pod.leader_email")
	}
	if !isValidAPIKey(c.AI.Gemini.APIKey) {
		errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://aistudio.google.com/app/apikey")
	}

	switch c.Pod.MatchMode {
	case "strict", "flexible":
	default:
		errors = append(errors, fmt.Sprintf("Unknown match mode: %s. Supported: strict, flexible", c.Pod.MatchMode))
	}

	switch c.Store.Driver {
	case "sqlite", "":
	case "postgres":
		if c.Store.PostgresDSN == "" {
			errors = append(errors, "Postgres store requires a DSN. Set DATABASE_URL or store.postgres_dsn")
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			errors = append(errors, "Redis store requires an address. Set REDIS_ADDR or store.redis.addr")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown store driver: %s. Supported: sqlite, postgres, redis", c.Store.Driver))
	}

	switch c.Email.Provider {
	case ProviderGmail:
	case ProviderSMTP:
		if c.Email.SMTP.Host == "" {
			errors = append(errors, "SMTP host is required when email.provider is smtp")
		}
		if c.Email.From == "" && c.Email.SMTP.Username == "" {
			errors = append(errors, "SMTP requires email.from or an SMTP username")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown email provider: %s. Supported: gmail, smtp", c.Email.Provider))
	}

	if c.Schedule.DailyHour < 0 || c.Schedule.DailyHour > 23 {
		errors = append(errors, fmt.Sprintf("schedule.daily_hour must be between 0 and 23, got %d", c.Schedule.DailyHour))
	}

	if c.Pod.ContextDocID == "" {
		warnings = append(warnings, "OKR context document ID not set, summaries will be generated without OKR context")
	}
	if c.Pod.LookbackDays < 1 || c.Pod.LookbackDays > 30 {
		warnings = append(warnings, fmt.Sprintf("Lookback days should be between 1 and 30, got %d", c.Pod.LookbackDays))
	}
	if c.AI.Gemini.MaxOutputTokens > 8192 {
		warnings = append(warnings, fmt.Sprintf("Gemini max output tokens is capped at 8192, got %d", c.AI.Gemini.MaxOutputTokens))
	}

	if len(errors) > 0 {
		return warnings, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}
	return warnings, nil
}

// Location returns the pod timezone. Load has already checked the name.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Pod.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// GeminiTimeout returns the parsed per-call timeout.
func (c Config) GeminiTimeout() time.Duration {
	d, _ := time.ParseDuration(c.AI.Gemini.Timeout)
	return d
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key", "YOUR_API_KEY", "YOUR_GEMINI_API_KEY_HERE", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears viper state (useful for testing)
func Reset() {
	viper.Reset()
}
