package session

import (
	"os"
	"strings"

	"github.com/jask/watchdeck/internal/config"
)

// Session carries the resolved caller identity for the lifetime of the
// process. The username rides on every backend write; the TUI reads it at
// the moment each call is issued.
type Session struct {
	username string
}

// Resolve determines the acting username: the configured env var wins,
// then the config value, then the operating system login.
func Resolve(cfg config.Config) *Session {
	if env := strings.TrimSpace(cfg.Auth.UsernameEnv); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return &Session{username: v}
		}
	}
	if v := strings.TrimSpace(cfg.Auth.Username); v != "" {
		return &Session{username: v}
	}
	if v := os.Getenv("USER"); v != "" {
		return &Session{username: v}
	}
	return &Session{username: "local"}
}

func (s *Session) Username() string { return s.username }
