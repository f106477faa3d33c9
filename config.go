/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	corsOrigins    []string
	countdown      int
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	sound          string
	tickInterval   time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.countdown < 1 {
		return fmt.Errorf("invalid countdown (must be at least 1): %d", c.countdown)
	}
	if c.tickInterval <= 0 {
		return fmt.Errorf("invalid tick interval (must be positive): %s", c.tickInterval)
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must not be negative): %s", c.sessionTimeout)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FLIPFIND")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "flipfind",
		Short:         "A countdown and scorekeeper for Flip & Find, served as a single webapp.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: FLIPFIND_BIND)")
	fs.StringSliceVar(&cfg.corsOrigins, "cors-origin", nil, "origin allowed to read game state, can be repeated (env: FLIPFIND_CORS_ORIGIN)")
	fs.IntVar(&cfg.countdown, "countdown", defaultCountdown, "length of each round, in ticks (env: FLIPFIND_COUNTDOWN)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: FLIPFIND_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: FLIPFIND_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: FLIPFIND_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle games are ended (env: FLIPFIND_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.sound, "sound", "", "path to a loopable audio file to use instead of the built-in stress cue (env: FLIPFIND_SOUND)")
	fs.DurationVar(&cfg.tickInterval, "tick", defaultTickInterval, "time between countdown ticks (env: FLIPFIND_TICK)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: FLIPFIND_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: FLIPFIND_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: FLIPFIND_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: FLIPFIND_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("flipfind v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
