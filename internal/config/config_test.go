package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"todo_server/internal/protocol"
	"todo_server/internal/server"

	"github.com/spf13/viper"
)

// newViper points a fresh instance at dir, optionally writing config.yml there.
func newViper(t *testing.T, yml string) *viper.Viper {
	t.Helper()
	dir := t.TempDir()
	if yml != "" {
		if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(newViper(t, ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Server.Addr(); got != "0.0.0.0:3000" {
		t.Fatalf("addr = %q", got)
	}
	if cfg.Server.Mode != server.ModeConcurrent {
		t.Fatalf("mode = %q", cfg.Server.Mode)
	}
	if cfg.Server.Limits != protocol.DefaultLimits() {
		t.Fatalf("limits = %+v", cfg.Server.Limits)
	}
	if cfg.Server.ShutdownGrace != 3*time.Second {
		t.Fatalf("grace = %v", cfg.Server.ShutdownGrace)
	}
	if cfg.Auth.BcryptCost != 4 || cfg.Auth.UnifyFailureStatus {
		t.Fatalf("auth = %+v", cfg.Auth)
	}
	if cfg.Audit.Enabled || cfg.Admin.Port != 3001 || cfg.Log.Level != "info" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	v := newViper(t, `
server:
  port: 4000
  mode: sequential
  max_body_bytes: 128
auth:
  unify_failure_status: true
audit:
  enabled: true
  path: /tmp/a.db
`)
	t.Setenv("TASKSRV_SERVER_PORT", "4100")
	t.Setenv("TASKSRV_LOG_LEVEL", "debug")

	cfg, err := load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 4100 {
		t.Fatalf("env should win over file, port = %d", cfg.Server.Port)
	}
	if cfg.Server.Mode != server.ModeSequential || cfg.Server.Limits.MaxBody != 128 {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if !cfg.Auth.UnifyFailureStatus || !cfg.Audit.Enabled || cfg.Audit.Path != "/tmp/a.db" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"bad mode", map[string]string{"TASKSRV_SERVER_MODE": "parallel"}, ErrInvalidMode},
		{"cost too low", map[string]string{"TASKSRV_AUTH_BCRYPT_COST": "3"}, ErrInvalidCost},
		{"cost too high", map[string]string{"TASKSRV_AUTH_BCRYPT_COST": "32"}, ErrInvalidCost},
		{"port zero", map[string]string{"TASKSRV_SERVER_PORT": "0"}, ErrInvalidPort},
		{"admin port", map[string]string{"TASKSRV_ADMIN_PORT": "70000"}, ErrInvalidPort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, val := range tt.env {
				t.Setenv(k, val)
			}
			_, err := load(newViper(t, ""))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	if _, err := load(newViper(t, "server: [unterminated")); err == nil {
		t.Fatal("expected a parse error")
	}
}
