package server

import (
	"net"
	"time"

	"github.com/kingrea/tourdesk/internal/config"
)

const (
	// DefaultMaxBodyBytes limits request payloads to 1 MB.
	DefaultMaxBodyBytes int64 = 1 << 20
	// DefaultReadTimeout guards hung clients.
	DefaultReadTimeout = 15 * time.Second
	// DefaultWriteTimeout bounds handler writes.
	DefaultWriteTimeout = 15 * time.Second
	// DefaultIdleTimeout bounds keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second
	// DefaultShutdownTimeout bounds draining once Serve's context ends.
	DefaultShutdownTimeout = 5 * time.Second
)

// Settings captures runtime configuration for the HTTP server.
type Settings struct {
	Addr         string
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	ShutdownTimeout time.Duration
}

// SettingsFromConfig builds Settings from the project's .tourdesk config.
// Environment overrides are already applied by config.Load.
func SettingsFromConfig(cfg *config.Config) Settings {
	settings := Settings{Addr: config.DefaultServerAddr}
	if cfg != nil {
		settings.Addr = cfg.ServerAddr()
		settings.MaxBodyBytes = cfg.Project.Server.MaxBodyBytes
	}
	settings.normalize()
	return settings
}

func (s *Settings) normalize() {
	if s == nil {
		return
	}
	if _, _, err := net.SplitHostPort(s.Addr); err != nil {
		s.Addr = config.DefaultServerAddr
	}
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout <= 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// URL returns the HTTP base URL for the configured address.
func (s Settings) URL() string {
	return "http://" + s.Addr
}
