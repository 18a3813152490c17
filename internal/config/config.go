package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config se construye una sola vez en main y se inyecta hacia abajo.
type Config struct {
	AppName string `envconfig:"APP_NAME" default:"petshop-api"`
	Port    string `envconfig:"PORT" default:"8080"`

	HTTP      HTTP      `envconfig:"HTTP"`
	DB        DB        `envconfig:"DB"`
	Log       Log       `envconfig:"LOG"`
	RateLimit RateLimit `envconfig:"RATE_LIMIT"`
}

type HTTP struct {
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"5s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DB: si DSN viene vacío el router usa el store in-memory (modo dev).
type DB struct {
	DSN             string        `envconfig:"DSN"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxIdleTime time.Duration `envconfig:"CONN_MAX_IDLE_TIME" default:"5m"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"30m"`
	PingTimeout     time.Duration `envconfig:"PING_TIMEOUT" default:"3s"`
	AutoMigrate     bool          `envconfig:"AUTO_MIGRATE" default:"false"`
}

type Log struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"text"`
}

// RateLimit: RPS <= 0 desactiva el limitador.
type RateLimit struct {
	RPS   float64 `envconfig:"RPS" default:"50"`
	Burst int     `envconfig:"BURST" default:"100"`
}

func (c Config) Addr() string {
	return ":" + c.Port
}

// Load lee un .env opcional y luego el entorno. Las variables ya exportadas ganan al .env.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if c.DB.MaxIdleConns > c.DB.MaxOpenConns && c.DB.MaxOpenConns > 0 {
		c.DB.MaxIdleConns = c.DB.MaxOpenConns
	}
	return c, nil
}
