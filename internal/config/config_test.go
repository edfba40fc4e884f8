package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points config discovery at an empty home and clears variables
// that would leak in from the developer environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range []string{
		"GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "GOOGLE_AI_API_KEY",
		"POD_LEADER_EMAIL", "DATABASE_URL", "POSTGRES_DSN", "REDIS_ADDR",
		"GOOGLE_APPLICATION_CREDENTIALS", "PODBRIEF_TRIGGER_TOKEN", "TRIGGER_TOKEN",
		"SMTP_HOST", "SMTP_USERNAME", "SMTP_PASSWORD",
	} {
		t.Setenv(key, "")
	}
	t.Cleanup(Reset)
	return dir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "podbrief.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Pod.LookbackDays != 3 || cfg.Pod.SearchDays != 7 || cfg.Pod.MaxDocuments != 500 {
		t.Errorf("Unexpected pod defaults %+v", cfg.Pod)
	}
	if cfg.Pod.MatchMode != "strict" || cfg.Pod.ProcessedKey != "PROCESSED_MEETINGS" || cfg.Pod.Section != "POD Meetings" {
		t.Errorf("Unexpected pod defaults %+v", cfg.Pod)
	}
	if cfg.AI.Gemini.MaxOutputTokens != 8192 || cfg.AI.Gemini.MaxInputChars != 100000 {
		t.Errorf("Unexpected gemini defaults %+v", cfg.AI.Gemini)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.SQLitePath != ".podbrief" {
		t.Errorf("Unexpected store defaults %+v", cfg.Store)
	}
	if cfg.Server.Port != 8080 || cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Unexpected server defaults %+v", cfg.Server)
	}
	if cfg.Schedule.DailyHour != 8 || !cfg.Schedule.Enabled {
		t.Errorf("Unexpected schedule defaults %+v", cfg.Schedule)
	}
	if cfg.GeminiTimeout() != 120*time.Second {
		t.Errorf("Unexpected gemini timeout %v", cfg.GeminiTimeout())
	}
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
pod:
  leader_email: file@example.com
  meeting_titles:
    - " Pod Weekly Sync "
    - ""
    - Program Call
  weekly_doc_id: weekly-doc
  archive_doc_id: archive-doc
  timezone: Europe/Prague
  match_mode: FLEXIBLE
store:
  driver: redis
`)

	t.Setenv("POD_LEADER_EMAIL", "env@example.com")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("POD_LOOKBACK_DAYS", "5")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Pod.LeaderEmail != "env@example.com" {
		t.Errorf("Expected env to override leader email, got %q", cfg.Pod.LeaderEmail)
	}
	if cfg.AI.Gemini.APIKey != "test-key" {
		t.Errorf("Expected API key from env, got %q", cfg.AI.Gemini.APIKey)
	}
	if cfg.Pod.LookbackDays != 5 {
		t.Errorf("Expected lookback 5, got %d", cfg.Pod.LookbackDays)
	}
	if got := strings.Join(cfg.Pod.MeetingTitles, "|"); got != "Pod Weekly Sync|Program Call" {
		t.Errorf("Expected trimmed titles, got %q", got)
	}
	if cfg.Pod.MatchMode != "flexible" {
		t.Errorf("Expected lowercased match mode, got %q", cfg.Pod.MatchMode)
	}
	if cfg.Store.Redis.Addr != "cache:6379" {
		t.Errorf("Expected redis addr from env, got %q", cfg.Store.Redis.Addr)
	}
	if cfg.Location().String() != "Europe/Prague" {
		t.Errorf("Unexpected location %v", cfg.Location())
	}

	warnings, err := cfg.Validate()
	if err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "OKR context") {
		t.Errorf("Expected only the context document warning, got %v", warnings)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid timezone", "pod:\n  timezone: Mars/Olympus\n", "invalid timezone"},
		{"invalid duration", "ai:\n  gemini:\n    timeout: soon\n", "invalid duration"},
		{"malformed yaml", "pod: [\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			_, err := Load(writeConfig(t, dir, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func validConfig() Config {
	return Config{
		Pod: Pod{
			LeaderEmail:   "lead@example.com",
			MeetingTitles: []string{"Pod Weekly Sync"},
			LookbackDays:  3,
			MatchMode:     "strict",
			ContextDocID:  "okr",
			WeeklyDocID:   "weekly",
			ArchiveDocID:  "archive",
			Timezone:      "UTC",
		},
		AI:       AI{Gemini: GeminiConfig{APIKey: "key", MaxOutputTokens: 8192}},
		Store:    Store{Driver: "sqlite"},
		Email:    Email{Provider: ProviderGmail},
		Schedule: Schedule{DailyHour: 8},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     string
		wantWarning string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no meeting titles", mutate: func(c *Config) { c.Pod.MeetingTitles = nil }, wantErr: "meeting title"},
		{name: "no weekly doc", mutate: func(c *Config) { c.Pod.WeeklyDocID = "" }, wantErr: "Weekly summary document"},
		{name: "no archive doc", mutate: func(c *Config) { c.Pod.ArchiveDocID = "" }, wantErr: "archive document"},
		{name: "no leader", mutate: func(c *Config) { c.Pod.LeaderEmail = "" }, wantErr: "leader email"},
		{name: "placeholder api key", mutate: func(c *Config) { c.AI.Gemini.APIKey = "YOUR_GEMINI_API_KEY_HERE" }, wantErr: "Gemini API key"},
		{name: "unknown match mode", mutate: func(c *Config) { c.Pod.MatchMode = "fuzzy" }, wantErr: "Unknown match mode"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store.Driver = "postgres" }, wantErr: "DSN"},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mongo" }, wantErr: "Unknown store driver"},
		{name: "smtp without host", mutate: func(c *Config) { c.Email.Provider = ProviderSMTP }, wantErr: "SMTP host"},
		{name: "bad hour", mutate: func(c *Config) { c.Schedule.DailyHour = 24 }, wantErr: "daily_hour"},
		{name: "no context doc", mutate: func(c *Config) { c.Pod.ContextDocID = "" }, wantWarning: "OKR context"},
		{name: "lookback too long", mutate: func(c *Config) { c.Pod.LookbackDays = 31 }, wantWarning: "Lookback days"},
		{name: "lookback zero", mutate: func(c *Config) { c.Pod.LookbackDays = 0 }, wantWarning: "Lookback days"},
		{name: "too many tokens", mutate: func(c *Config) { c.AI.Gemini.MaxOutputTokens = 10000 }, wantWarning: "8192"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			warnings, err := cfg.Validate()

			if tt.wantErr == "" && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}

			joined := strings.Join(warnings, "\n")
			if tt.wantWarning == "" && len(warnings) > 0 {
				t.Errorf("Expected no warnings, got %v", warnings)
			}
			if tt.wantWarning != "" && !strings.Contains(joined, tt.wantWarning) {
				t.Errorf("Expected warning containing %q, got %v", tt.wantWarning, warnings)
			}
		})
	}
}
