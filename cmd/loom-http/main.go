package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/LoomSoftware/http-component/internal/config"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI is the root command line.
type CLI struct {
	config.Flags `embed:""`

	Version kong.VersionFlag `help:"Print version and exit."`

	Send  SendCmd  `cmd:"" help:"Send one request and print the response."`
	Serve ServeCmd `cmd:"" help:"Run the inspect server."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("loom-http"),
		kong.Description("HTTP message toolkit: send requests and inspect how requests are understood."),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("%s (%s, %s)", version, commit, date)},
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Flags))
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		h = slog.NewJSONHandler(w, opts)
	}

	return slog.New(h)
}

func stdoutLogger(cfg *config.Config) *slog.Logger {
	return newLogger(cfg, os.Stdout)
}
