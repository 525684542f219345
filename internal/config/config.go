package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/Wyydra/tourcast/internal/core/service"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

type Config struct {
	Host      string `env:"HOST"`
	Port      int    `env:"PORT,default=8080" validate:"min=1,max=65535"`
	LogLevel  string `env:"LOG_LEVEL,default=info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFormat string `env:"LOG_FORMAT,default=console" validate:"oneof=console json"`

	PingInterval    time.Duration `env:"PING_INTERVAL,default=30s" validate:"gt=0"`
	SendQueueSize   int           `env:"SEND_QUEUE_SIZE,default=64" validate:"min=1"`
	MaxMessageBytes int64         `env:"MAX_MESSAGE_BYTES,default=65536" validate:"min=1"`
	WriteWait       time.Duration `env:"WRITE_WAIT,default=10s" validate:"gt=0"`
	AllowedOrigins  string        `env:"ALLOWED_ORIGINS,default=*" validate:"required"`

	GuideLeavePolicy    string `env:"GUIDE_LEAVE_POLICY,default=close-tour" validate:"oneof=close-tour keep-tour"`
	DuplicateUserPolicy string `env:"DUPLICATE_USER_POLICY,default=reject" validate:"oneof=reject replace"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s" validate:"gt=0"`
}

var validate = validator.New()

// Load reads envFile into the process environment when it exists, then
// builds the config from the environment. Variables already set win over
// the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return FromEnvSet(es)
}

func FromEnvSet(es env.EnvSet) (Config, error) {
	var cfg Config
	if err := env.Unmarshal(es, &cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Origins splits ALLOWED_ORIGINS on commas, dropping blanks.
func (c Config) Origins() []string {
	return lo.Compact(lo.Map(strings.Split(c.AllowedOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	}))
}

func (c Config) HubOptions() service.Options {
	return service.Options{
		PingInterval:        c.PingInterval,
		GuideLeavePolicy:    service.GuideLeavePolicy(c.GuideLeavePolicy),
		DuplicateUserPolicy: service.DuplicateUserPolicy(c.DuplicateUserPolicy),
	}
}
