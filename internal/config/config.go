package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/denisok6893-rgb/casa-match/internal/matching"
)

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	SQLite    SQLiteConfig    `mapstructure:"sqlite"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Store     StoreConfig     `mapstructure:"store"`
	Matching  matching.Params `mapstructure:"matching"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type HTTPConfig struct {
	Address string `mapstructure:"address"`
}

type SQLiteConfig struct {
	Path     string `mapstructure:"path"`
	SeedPath string `mapstructure:"seed_path"`
}

type OpenAIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
	Model   string `mapstructure:"model"`
}

type ExtractorConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type StoreConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional config.yaml, an optional
// .env file, and the environment (env wins, keys like HTTP_ADDRESS).
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Viper's AutomaticEnv does not surface env-only keys through
	// Unmarshal unless they are bound; the token is the one secret that
	// normally arrives only via environment.
	if cfg.OpenAI.Token == "" {
		cfg.OpenAI.Token = os.Getenv("OPENAI_TOKEN")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.address", ":8080")
	v.SetDefault("sqlite.path", "data/casa-match.db")
	v.SetDefault("sqlite.seed_path", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.token", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("extractor.timeout", 20*time.Second)
	v.SetDefault("store.timeout", 5*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	p := matching.DefaultParams()
	v.SetDefault("matching.location_threshold", p.LocationThreshold)
	v.SetDefault("matching.price_deviation_slope", p.PriceDeviationSlope)
	v.SetDefault("matching.ground_floor_default", p.GroundFloorDefault)
	v.SetDefault("matching.score_threshold", p.ScoreThreshold)
	v.SetDefault("matching.result_limit", p.ResultLimit)
	v.SetDefault("matching.weights.price", p.Weights.Price)
	v.SetDefault("matching.weights.location", p.Weights.Location)
	v.SetDefault("matching.weights.rooms", p.Weights.Rooms)
	v.SetDefault("matching.weights.bathrooms", p.Weights.Bathrooms)
	v.SetDefault("matching.weights.garden", p.Weights.Garden)
	v.SetDefault("matching.weights.amenities", p.Weights.Amenities)
}
