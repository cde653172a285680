// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestIsLocalhost(t *testing.T) {
	tests := []struct {
		host     string
		expected bool
	}{
		{"", true},
		{"localhost", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"app.localhost", true},
		{"example.com", false},
		{"localhost.com", false}, // not a real localhost
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsLocalhost(tt.host))
		})
	}
}

func TestShouldUseTLS(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		host     string
		expected bool
	}{
		{"off mode", "off", "example.com", false},
		{"acme mode", "acme", "localhost", true},
		{"selfsigned mode", "selfsigned", "localhost", true},
		{"manual mode", "manual", "localhost", true},
		{"auto mode with localhost", "auto", "localhost", false},
		{"auto mode with remote host", "auto", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shouldUseTLS(tt.mode, tt.host))
		})
	}
}

func TestBuildBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		expected string
	}{
		{
			name: "localhost HTTP default port",
			cfg: &Config{
				Server: ServerConfig{Host: "localhost", Port: 80},
				TLS:    TLSConfig{Mode: "off"},
			},
			expected: "http://localhost",
		},
		{
			name: "localhost HTTP custom port",
			cfg: &Config{
				Server: ServerConfig{Host: "localhost", Port: 8080},
				TLS:    TLSConfig{Mode: "off"},
			},
			expected: "http://localhost:8080",
		},
		{
			name: "acme ignores port",
			cfg: &Config{
				Server: ServerConfig{Host: "example.com", Port: 8080},
				TLS:    TLSConfig{Mode: "acme"},
			},
			expected: "https://example.com",
		},
		{
			name: "selfsigned custom port",
			cfg: &Config{
				Server: ServerConfig{Host: "example.com", Port: 8443},
				TLS:    TLSConfig{Mode: "selfsigned"},
			},
			expected: "https://example.com:8443",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildBaseURL(tt.cfg))
		})
	}
}

func TestNewFromCLI_Defaults(t *testing.T) {
	var cfg *Config
	cmd := &cli.Command{
		Flags: Flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg = NewFromCLI(cmd)
			return nil
		},
	}

	err := cmd.Run(context.Background(), []string{"server"})

	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "_session", cfg.Session.CookieName)
	assert.Equal(t, 0, cfg.MagicLink.ExpiryHours)
}

func TestNewFromCLI_Overrides(t *testing.T) {
	var cfg *Config
	cmd := &cli.Command{
		Flags: Flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg = NewFromCLI(cmd)
			return nil
		},
	}

	err := cmd.Run(context.Background(), []string{
		"server",
		"--base-url", "https://walkthewalk.app",
		"--magic-link-expiry-hours", "168",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://walkthewalk.app", cfg.Server.BaseURL)
	assert.Equal(t, 168, cfg.MagicLink.ExpiryHours)
}
