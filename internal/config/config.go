package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Media    MediaConfig    `yaml:"media"`
	Auth     AuthConfig     `yaml:"auth"`
	Rooms    RoomsConfig    `yaml:"rooms"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address" env:"HTTP_ADDRESS" env-default:""`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_DSN"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// MediaConfig holds the credentials for the external media platform that the
// session tokens are minted against.
type MediaConfig struct {
	APIKey    string        `yaml:"api_key" env:"LIVEKIT_API_KEY"`
	APISecret string        `yaml:"api_secret" env:"LIVEKIT_API_SECRET"`
	URL       string        `yaml:"url" env:"LIVEKIT_URL"`
	TokenTTL  time.Duration `yaml:"token_ttl" env-default:"6h"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env-default:"24h"`
}

type RoomsConfig struct {
	TTL              time.Duration `yaml:"ttl" env-default:"24h"`
	SweepInterval    time.Duration `yaml:"sweep_interval" env-default:"10m"`
	JoinRateLimit    int           `yaml:"join_rate_limit" env-default:"10"`
	JoinRateWindow   time.Duration `yaml:"join_rate_window" env-default:"1m"`
	LobbyPollSeconds int           `yaml:"lobby_poll_seconds" env-default:"3"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	cfg.setDefaults()

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Rooms.TTL <= 0 {
		c.Rooms.TTL = 24 * time.Hour
	}
	if c.Rooms.JoinRateLimit <= 0 {
		c.Rooms.JoinRateLimit = 10
	}
	if c.Rooms.JoinRateWindow <= 0 {
		c.Rooms.JoinRateWindow = time.Minute
	}
	if c.Rooms.LobbyPollSeconds <= 0 {
		c.Rooms.LobbyPollSeconds = 3
	}
}
