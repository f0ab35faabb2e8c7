package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/goccy/go-json"

	"github.com/LoomSoftware/http-component/internal/client"
	"github.com/LoomSoftware/http-component/internal/config"
	"github.com/LoomSoftware/http-component/internal/header"
	"github.com/LoomSoftware/http-component/internal/message"
	"github.com/LoomSoftware/http-component/internal/transport"
)

// SendCmd sends one request through the client.
type SendCmd struct {
	Method   string   `arg:"" help:"Request method, e.g. GET or POST."`
	Endpoint string   `arg:"" help:"Bare host[:port][/path][?query] (https assumed) or a full URL."`
	Header   []string `short:"H" help:"Request header as 'Name: value'. Repeatable."`
	Data     string   `short:"d" help:"Request body."`
	Include  bool     `short:"i" help:"Print response headers."`
	JSON     bool     `help:"Print the decoded body (JSON object or form data) instead of the raw body."`
}

// Run executes the command.
func (s *SendCmd) Run(flags *config.Flags) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)
	cfg.WarnPermissions(logger)

	headers, err := parseHeaderFlags(s.Header)
	if err != nil {
		return err
	}

	c := client.New(transport.NewHTTP(cfg, logger, nil), logger).
		WithBodyMemoryLimit(cfg.Client.BodyMemoryLimit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	resp, err := c.Do(ctx, strings.ToUpper(s.Method), s.Endpoint, headers, s.Data)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body().Close() }()

	return printResponse(os.Stdout, resp, s.Include, s.JSON)
}

// parseHeaderFlags turns repeated "Name: value" flags into a header store.
func parseHeaderFlags(lines []string) (header.Store, error) {
	h := header.New()
	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return header.Store{}, fmt.Errorf("invalid header %q: want \"Name: value\"", line)
		}
		h = h.WithAdded(name, strings.TrimSpace(value))
	}
	return h, nil
}

func printResponse(w io.Writer, resp *message.Response, include, decode bool) error {
	fmt.Fprintf(w, "HTTP %d\n", resp.StatusCode())
	if include {
		for _, line := range resp.FlatHeaders() {
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w)

	if !decode {
		body, err := resp.Body().Contents()
		if err != nil {
			return err
		}
		_, err = w.Write(body)
		return err
	}

	data, err := resp.Data()
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode decoded body: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}
