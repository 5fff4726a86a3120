package config

import (
	"net"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Server struct {
	Host        string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port        string `envconfig:"PORT" default:"8000"`
	ReadTimeout int    `envconfig:"SERVER_TIMEOUT" default:"10"`
}

type Db struct {
	Path             string        `envconfig:"DB_PATH" default:"emails.db"`
	FallbackPaths    []string      `envconfig:"DB_FALLBACK_PATHS"`
	DisableFallbacks bool          `envconfig:"DB_DISABLE_FALLBACKS" default:"false"`
	ConnTimeout      time.Duration `envconfig:"DB_CONN_TIMEOUT" default:"5s"`
}

type Redis struct {
	Addr      string `envconfig:"REDIS_ADDR"`
	Password  string `envconfig:"REDIS_PASSWORD"`
	DB        int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"vibe:subscribers"`
}

type Admin struct {
	Username string `envconfig:"ADMIN_USERNAME" default:"admin"`
	Password string `envconfig:"ADMIN_PASSWORD" default:"admin"`
}

type Telegram struct {
	BotToken string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   string        `envconfig:"TELEGRAM_CHAT_ID"`
	APIURL   string        `envconfig:"TELEGRAM_API_URL" default:"https://api.telegram.org"`
	Timeout  time.Duration `envconfig:"TELEGRAM_TIMEOUT" default:"10s"`
}

type Agent struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
}

type Consolidation struct {
	Enabled  bool   `envconfig:"CONSOLIDATE_ENABLED" default:"true"`
	Schedule string `envconfig:"CONSOLIDATE_SCHEDULE" default:"@every 10m"`
}

type Log struct {
	Path     string `envconfig:"LOG_PATH" default:"logs/vibe.log"`
	HTTPPath string `envconfig:"HTTP_LOG_PATH" default:"logs/http.log"`
	Level    string `envconfig:"LOG_LEVEL" default:"debug"`
}

type Config struct {
	Server        Server
	DB            Db
	Redis         Redis
	Admin         Admin
	Telegram      Telegram
	Agent         Agent
	Consolidation Consolidation
	Log           Log
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}
