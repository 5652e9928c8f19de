/*
Package config loads the auditor configuration: an embedded YAML default,
an optional user YAML file laid over it, then environment overrides.
*/
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shanehull/labourscan/internal/types"
)

//go:embed default.yaml
var defaultYAML []byte

type Timeouts struct {
	Search   time.Duration `yaml:"search"`
	Download time.Duration `yaml:"download"`
	Market   time.Duration `yaml:"market"`
	PDF      time.Duration `yaml:"pdf"`
}

// Periods are the fiscal labels interpolated into search queries.
type Periods struct {
	Quarter      string `yaml:"quarter"`
	Presentation string `yaml:"presentation"`
	Annual       string `yaml:"annual"`
}

type Gemini struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type Email struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	SMTPUser   string `yaml:"smtp_user"`
	SMTPPass   string `yaml:"smtp_pass"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

type Config struct {
	DataDir            string   `yaml:"data_dir"`
	MaxAttempts        int      `yaml:"max_attempts"`
	LeadWindow         int      `yaml:"lead_window"`
	MinTextLength      int      `yaml:"min_text_length"`
	MinSynthesisLength int      `yaml:"min_synthesis_length"`
	Timeouts           Timeouts `yaml:"timeouts"`
	Periods            Periods  `yaml:"periods"`
	Gemini             Gemini   `yaml:"gemini"`
	TavilyAPIKey       string   `yaml:"tavily_api_key"`
	DatabaseURL        string   `yaml:"database_url"`
	Email              Email    `yaml:"email"`

	Conglomerates []types.Conglomerate `yaml:"conglomerates"`
	Aliases       []types.AliasRule    `yaml:"aliases"`
	Triggers      []string             `yaml:"triggers"`
	Sector        map[string][]string  `yaml:"sector"`
}

// Load reads .env (if present), the embedded defaults, the optional YAML file
// at path, and finally environment variables.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}

	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&c.TavilyAPIKey, "TAVILY_API_KEY")
	setString(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.Gemini.Model, "GEMINI_MODEL")
	setString(&c.DataDir, "LABOURSCAN_DATA_DIR")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.Email.SMTPServer, "SMTP_SERVER")
	setString(&c.Email.SMTPUser, "SMTP_USER")
	setString(&c.Email.SMTPPass, "SMTP_PASS")
	setString(&c.Email.ToEmail, "SMTP_TO")
	setString(&c.Email.FromEmail, "SMTP_FROM")

	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Email.SMTPPort = port
		}
	}
}

func (c *Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.LeadWindow < 1 {
		return fmt.Errorf("lead_window must be positive, got %d", c.LeadWindow)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	return nil
}

// RawDir holds downloaded and verified source documents.
func (c *Config) RawDir() string {
	return filepath.Join(c.DataDir, "01_raw")
}

// StructuredDir holds rendered reports and the tracking table.
func (c *Config) StructuredDir() string {
	return filepath.Join(c.DataDir, "03_structured")
}

func (c *Config) EmailEnabled() bool {
	return c.Email.SMTPServer != "" && c.Email.SMTPUser != "" && c.Email.SMTPPass != "" && c.Email.ToEmail != ""
}
