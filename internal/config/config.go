package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr     string
	DBPath         string
	CatalogCSV     string
	PhotoPath      string
	LogLevel       string
	LogFormat      string
	LogFile        string
	RequestTimeout time.Duration
	OutboundProxy  string
	Timezone       string
	DefaultCity    string

	UploadBackend string
	VisionBackend string

	MetisAPIKey     string
	MetisBotID      string
	MetisStorageURL string
	MetisSessionURL string

	CompletionURL       string
	CompletionAPIKey    string
	CompletionModel     string
	CompletionMaxTokens int

	ClaudeAPIKey string
	ClaudeModel  string

	GeminiAPIKey string
	GeminiModel  string

	S3 S3Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PrefsTTL      time.Duration
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	PublicURL       string
	KeyPrefix       string
	ForcePathStyle  bool
	AccessKeyID     string
	SecretAccessKey string
}

var defaults = map[string]any{
	"LISTEN_ADDR":           ":8080",
	"DB_PATH":               "/data/roomplants.db",
	"PHOTO_LOCAL_PATH":      "/data/uploads",
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "json",
	"REQUEST_TIMEOUT":       "60s",
	"TIMEZONE":              "Asia/Tehran",
	"DEFAULT_CITY":          "Tehran",
	"UPLOAD_BACKEND":        "metis",
	"VISION_BACKEND":        "metis",
	"METIS_STORAGE_URL":     "https://api.metisai.ir/api/v1/storage",
	"METIS_SESSION_URL":     "https://api.metisai.ir/api/v1/chat/session",
	"COMPLETION_URL":        "https://api.metisai.ir/openai/v1/chat/completions",
	"COMPLETION_MODEL":      "gpt-4o",
	"COMPLETION_MAX_TOKENS": 500,
	"CLAUDE_MODEL":          "claude-opus-4-6",
	"GEMINI_MODEL":          "gemini-2.5-flash",
	"PREFS_TTL":             "720h",
}

// Load reads configuration from the process environment, after merging in a
// .env file from the working directory if one exists. Values already set in
// the environment win over the file.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	cfg := &Config{
		ListenAddr:     v.GetString("LISTEN_ADDR"),
		DBPath:         v.GetString("DB_PATH"),
		CatalogCSV:     v.GetString("CATALOG_CSV"),
		PhotoPath:      v.GetString("PHOTO_LOCAL_PATH"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		LogFile:        v.GetString("LOG_FILE"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		OutboundProxy:  v.GetString("OUTBOUND_PROXY"),
		Timezone:       v.GetString("TIMEZONE"),
		DefaultCity:    v.GetString("DEFAULT_CITY"),

		UploadBackend: strings.ToLower(v.GetString("UPLOAD_BACKEND")),
		VisionBackend: strings.ToLower(v.GetString("VISION_BACKEND")),

		MetisAPIKey:     v.GetString("METIS_API_KEY"),
		MetisBotID:      v.GetString("METIS_BOT_ID"),
		MetisStorageURL: v.GetString("METIS_STORAGE_URL"),
		MetisSessionURL: v.GetString("METIS_SESSION_URL"),

		CompletionURL:       v.GetString("COMPLETION_URL"),
		CompletionAPIKey:    v.GetString("COMPLETION_API_KEY"),
		CompletionModel:     v.GetString("COMPLETION_MODEL"),
		CompletionMaxTokens: v.GetInt("COMPLETION_MAX_TOKENS"),

		ClaudeAPIKey: v.GetString("CLAUDE_API_KEY"),
		ClaudeModel:  v.GetString("CLAUDE_MODEL"),

		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
		GeminiModel:  v.GetString("GEMINI_MODEL"),

		S3: S3Config{
			Bucket:          v.GetString("S3_BUCKET"),
			Region:          v.GetString("S3_REGION"),
			Endpoint:        v.GetString("S3_ENDPOINT"),
			PublicURL:       v.GetString("S3_PUBLIC_URL"),
			KeyPrefix:       strings.Trim(v.GetString("S3_KEY_PREFIX"), "/"),
			ForcePathStyle:  v.GetBool("S3_FORCE_PATH_STYLE"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		},

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		PrefsTTL:      v.GetDuration("PREFS_TTL"),
	}

	// The completion endpoint is Metis' OpenAI wrapper by default, so the
	// Metis key doubles as its credential.
	if cfg.CompletionAPIKey == "" {
		cfg.CompletionAPIKey = cfg.MetisAPIKey
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Validate reports missing credentials for the selected backends. A non-nil
// error is a fatal startup condition.
func (c *Config) Validate() error {
	var errs []error

	switch c.UploadBackend {
	case "metis":
		if c.MetisAPIKey == "" {
			errs = append(errs, errors.New("METIS_API_KEY is required when UPLOAD_BACKEND=metis"))
		}
	case "s3":
		if c.S3.Bucket == "" || c.S3.Region == "" {
			errs = append(errs, errors.New("S3_BUCKET and S3_REGION are required when UPLOAD_BACKEND=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown UPLOAD_BACKEND %q", c.UploadBackend))
	}

	switch c.VisionBackend {
	case "metis":
		if c.MetisAPIKey == "" {
			errs = append(errs, errors.New("METIS_API_KEY is required when VISION_BACKEND=metis"))
		}
		if c.MetisBotID == "" {
			errs = append(errs, errors.New("METIS_BOT_ID is required when VISION_BACKEND=metis"))
		}
	case "completion":
		if c.CompletionAPIKey == "" {
			errs = append(errs, errors.New("COMPLETION_API_KEY or METIS_API_KEY is required when VISION_BACKEND=completion"))
		}
	case "claude":
		if c.ClaudeAPIKey == "" {
			errs = append(errs, errors.New("CLAUDE_API_KEY is required when VISION_BACKEND=claude"))
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when VISION_BACKEND=gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown VISION_BACKEND %q", c.VisionBackend))
	}

	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
