/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, "--tls-key"},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }, "--tls-key"},
		{"port too low", func(c *Config) { c.port = 0 }, "invalid port"},
		{"port too high", func(c *Config) { c.port = 65536 }, "invalid port"},
		{"zero countdown", func(c *Config) { c.countdown = 0 }, "invalid countdown"},
		{"zero tick", func(c *Config) { c.tickInterval = 0 }, "invalid tick"},
		{"negative session timeout", func(c *Config) { c.sessionTimeout = -time.Second }, "invalid session timeout"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(cfg)

			err := cfg.validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestConfig_Scheme(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestNewCmd_Defaults(t *testing.T) {
	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, "0.0.0.0", cfg.bind)
	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, defaultCountdown, cfg.countdown)
	assert.Equal(t, time.Second, cfg.tickInterval)
	assert.Equal(t, time.Hour, cfg.sessionTimeout)
	assert.NoError(t, cfg.validate())
}

func TestNewCmd_ReadsEnvironment(t *testing.T) {
	t.Setenv("FLIPFIND_COUNTDOWN", "15")
	t.Setenv("FLIPFIND_TICK", "500ms")
	t.Setenv("FLIPFIND_PORT", "9000")

	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, 15, cfg.countdown)
	assert.Equal(t, 500*time.Millisecond, cfg.tickInterval)
	assert.Equal(t, 9000, cfg.port)
}

func TestNewCmd_FlagsOverrideDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)

	require.NoError(t, cmd.Flags().Parse([]string{"--countdown", "20", "--prefix", "/games", "--cors-origin", "https://a.example", "--cors-origin", "https://b.example"}))

	assert.Equal(t, 20, cfg.countdown)
	assert.Equal(t, "/games", cfg.prefix)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.corsOrigins)
}
