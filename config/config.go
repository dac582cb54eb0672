package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pivolan/ridership_clipper/gologger"
)

var logger = gologger.NewLogger()

// DefaultBoundaries are the four ridership eras around the 2020 lockdown
const DefaultBoundaries = "pre-lockdown=2019-01-01..2020-03-22;" +
	"lockdown=2020-03-22..2021-06-08;" +
	"recovery=2021-06-08..2022-03-01;" +
	"post-lockdown=2022-03-01..2024-01-01"

type Config struct {
	InputPath    string
	OutputPath   string
	OutputFormat string `validate:"oneof=csv parquet"`
	ReportDir    string
	UploadDir    string `validate:"required"`

	DateColumn  string `validate:"required"`
	DateFormat  string `validate:"required"`
	ClipColumns []string
	LowerFrac   float64 `validate:"gte=0,lt=1"`
	UpperFrac   float64 `validate:"gte=0,lt=1"`
	Boundaries  string  `validate:"required"`

	DbDsn    string
	DbTable  string
	TgToken  string
	HTTPPort string `validate:"required,numeric"`
}

var (
	config *Config
	once   sync.Once
)

// GetConfig returns the process-wide configuration, loaded once
func GetConfig() *Config {
	once.Do(func() {
		cfg, err := Load()
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid configuration")
		}
		config = cfg
	})
	return config
}

// Load reads .env when present, then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{
		InputPath:    os.Getenv("INPUT_PATH"),
		OutputPath:   os.Getenv("OUTPUT_PATH"),
		OutputFormat: getEnvOrDefault("OUTPUT_FORMAT", "csv"),
		ReportDir:    getEnvOrDefault("REPORT_DIR", "report"),
		UploadDir:    getEnvOrDefault("UPLOAD_DIR", "uploads"),
		DateColumn:   getEnvOrDefault("DATE_COLUMN", "Date"),
		DateFormat:   getEnvOrDefault("DATE_FORMAT", "2006-01-02"),
		ClipColumns:  splitList(os.Getenv("CLIP_COLUMNS")),
		Boundaries:   getEnvOrDefault("BOUNDARIES", DefaultBoundaries),
		DbDsn:        os.Getenv("DB_DSN"),
		DbTable:      getEnvOrDefault("DB_TABLE", "ridership_clipped"),
		TgToken:      os.Getenv("TG_TOKEN"),
		HTTPPort:     getEnvOrDefault("HTTP_PORT", "8005"),
	}

	var err error
	if cfg.LowerFrac, err = getEnvFloat("LOWER_FRAC", 0.05); err != nil {
		return nil, err
	}
	if cfg.UpperFrac, err = getEnvFloat("UPPER_FRAC", 0.05); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func getEnvOrDefault(env, defaultVal string) string {
	if e := os.Getenv(env); e != "" {
		return e
	}
	return defaultVal
}

func getEnvFloat(env string, defaultVal float64) (float64, error) {
	e := os.Getenv(env)
	if e == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseFloat(e, 64)
	if err != nil {
		return 0, errors.New(env + ": " + err.Error())
	}
	return v, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
