/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const logDate string = `2006-01-02T15:04:05.000-07:00`

func setupLogging() {
	zerolog.TimeFieldFormat = logDate
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: logDate,
		NoColor:    true,
	})
}

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Info().Msgf(format, args...)
}

func logErr(err error) {
	log.Error().Err(err).Msg("SERVE")
}

func newPage(prefix, title, body, href string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon(html.EscapeString(prefix)))
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:pointer;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", html.EscapeString(title)))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"%s\">%s</a></body></html>", html.EscapeString(href), body))

	return htmlBody.String()
}
