package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"todo_server/internal/protocol"
	"todo_server/internal/server"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const envPrefix = "TASKSRV"

var (
	ErrInvalidMode = errors.New("server.mode must be sequential or concurrent")
	ErrInvalidCost = fmt.Errorf("auth.bcrypt_cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
	ErrInvalidPort = errors.New("port must be within [1, 65535]")
)

// Config is the resolved process configuration.
type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Audit  AuditConfig
	Admin  AdminConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	Mode          server.Mode
	Limits        protocol.Limits
	ShutdownGrace time.Duration
}

// Addr joins host and port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type AuthConfig struct {
	BcryptCost         int
	UnifyFailureStatus bool
}

type AuditConfig struct {
	Enabled bool
	Path    string
}

// AdminConfig configures the gin listener; port 0 disables it.
type AdminConfig struct {
	Port int
}

type LogConfig struct {
	Level string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", string(server.ModeConcurrent))
	v.SetDefault("server.read_buffer_bytes", protocol.DefaultReadChunk)
	v.SetDefault("server.max_header_bytes", protocol.DefaultMaxHeader)
	v.SetDefault("server.max_body_bytes", protocol.DefaultMaxBody)
	v.SetDefault("server.shutdown_grace", "3s")
	v.SetDefault("auth.bcrypt_cost", bcrypt.MinCost)
	v.SetDefault("auth.unify_failure_status", false)
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.path", "audit.db")
	v.SetDefault("admin.port", 3001)
	v.SetDefault("log.level", "info")
}

// Load reads configs/config.yml (optional) and TASKSRV_* environment
// variables, with an optional .env loaded first.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath("configs")
	v.SetConfigName("config")
	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
			Mode: server.Mode(strings.ToLower(v.GetString("server.mode"))),
			Limits: protocol.Limits{
				ReadChunk: v.GetInt("server.read_buffer_bytes"),
				MaxHeader: v.GetInt("server.max_header_bytes"),
				MaxBody:   v.GetInt("server.max_body_bytes"),
			},
			ShutdownGrace: v.GetDuration("server.shutdown_grace"),
		},
		Auth: AuthConfig{
			BcryptCost:         v.GetInt("auth.bcrypt_cost"),
			UnifyFailureStatus: v.GetBool("auth.unify_failure_status"),
		},
		Audit: AuditConfig{
			Enabled: v.GetBool("audit.enabled"),
			Path:    v.GetString("audit.path"),
		},
		Admin: AdminConfig{Port: v.GetInt("admin.port")},
		Log:   LogConfig{Level: v.GetString("log.level")},
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Server.Mode {
	case server.ModeSequential, server.ModeConcurrent:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Server.Mode)
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("%w: %d", ErrInvalidCost, c.Auth.BcryptCost)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %w: %d", ErrInvalidPort, c.Server.Port)
	}
	if c.Admin.Port < 0 || c.Admin.Port > 65535 {
		return fmt.Errorf("admin.port %w: %d", ErrInvalidPort, c.Admin.Port)
	}
	return nil
}
