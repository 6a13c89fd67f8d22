package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	OCRProviderLandingAI = "landingai"
	OCRProviderLocal     = "local"

	LLMProviderMistral  = "mistral"
	LLMProviderGigaChat = "gigachat"
)

type Config struct {
	Server   ServerConfig
	Pipeline PipelineConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Mistral  MistralConfig
	GigaChat GigaChatConfig
	Database DatabaseConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	Host         string
	Port         string
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

type PipelineConfig struct {
	OutputRoot      string
	DownloadTimeout time.Duration
}

type OCRConfig struct {
	Provider      string
	APIKey        string
	URL           string
	Timeout       time.Duration
	HaltOnFailure bool
}

type LLMConfig struct {
	Provider  string
	MaxTokens int
	Timeout   time.Duration
}

type MistralConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the connection string in URL form, as expected by the migrator.
// Credentials are escaped, so passwords may contain any character.
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

func loadEnvFiles() {
	// .env is optional; plain environment variables work too (Docker/K8s)
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
}

// LoadDatabase reads only the DB_* settings, for tools that never touch the pipeline.
func LoadDatabase() DatabaseConfig {
	loadEnvFiles()
	return databaseFromEnv()
}

func databaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Enabled:  getBool("DB_ENABLED", false),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "floify"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func Load() (*Config, error) {
	loadEnvFiles()

	debug := getBool("DEBUG", true)

	level := getEnv("LOG_LEVEL", "info")
	if debug {
		level = "debug"
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("HOST", "0.0.0.0"),
			Port:         getEnv("PORT", "7777"),
			Debug:        debug,
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", time.Minute),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 15*time.Minute),
		},
		Pipeline: PipelineConfig{
			OutputRoot:      getEnv("OUTPUT_ROOT", "."),
			DownloadTimeout: getDuration("DOWNLOAD_TIMEOUT", 180*time.Second),
		},
		OCR: OCRConfig{
			Provider:      strings.ToLower(getEnv("OCR_PROVIDER", OCRProviderLandingAI)),
			APIKey:        getEnv("LANDINGAI_API_KEY", ""),
			URL:           getEnv("LANDINGAI_URL", "https://api.va.landing.ai/v1/tools/agentic-document-analysis"),
			Timeout:       getDuration("OCR_TIMEOUT", 600*time.Second),
			HaltOnFailure: getBool("OCR_HALT_ON_FAILURE", false),
		},
		LLM: LLMConfig{
			Provider:  strings.ToLower(getEnv("LLM_PROVIDER", LLMProviderMistral)),
			MaxTokens: getInt("LLM_MAX_TOKENS", 4000),
			Timeout:   getDuration("LLM_TIMEOUT", 300*time.Second),
		},
		Mistral: MistralConfig{
			APIKey:  getEnv("MISTRAL_API_KEY", ""),
			BaseURL: getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
			Model:   getEnv("MISTRAL_MODEL", "mistral-large-latest"),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: getBool("GIGACHAT_INSECURE_SKIP_VERIFY", false),
		},
		Database: databaseFromEnv(),
		Logger: LoggerConfig{
			Level:  level,
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks provider selections and that the selected providers have credentials.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Server.Port)
	}

	switch c.OCR.Provider {
	case OCRProviderLandingAI:
		if c.OCR.APIKey == "" {
			return fmt.Errorf("LANDINGAI_API_KEY is required for OCR provider %q", c.OCR.Provider)
		}
	case OCRProviderLocal:
	default:
		return fmt.Errorf("unknown OCR_PROVIDER %q (supported: %s, %s)", c.OCR.Provider, OCRProviderLandingAI, OCRProviderLocal)
	}

	switch c.LLM.Provider {
	case LLMProviderMistral:
		if c.Mistral.APIKey == "" {
			return fmt.Errorf("MISTRAL_API_KEY is required for LLM provider %q", c.LLM.Provider)
		}
	case LLMProviderGigaChat:
		if c.GigaChat.APIKey == "" {
			return fmt.Errorf("GIGACHAT_API_KEY is required for LLM provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (supported: %s, %s)", c.LLM.Provider, LLMProviderMistral, LLMProviderGigaChat)
	}

	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLM.MaxTokens)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.ToLower(value) == "true"
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

// getDuration accepts Go durations ("90s", "10m") or a bare number of seconds.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
