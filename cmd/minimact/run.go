package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minimact/client-go/internal/telemetry"
	"github.com/minimact/client-go/pkg/orchestrator"
	"github.com/minimact/client-go/pkg/orchestrator/debugserver"
	"github.com/minimact/client-go/pkg/vdom"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var (
		hubURL     string
		debugAddr  string
		sentryDSN  string
		statefulRc bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to a hub and run the client runtime until interrupted",
		Long: `run dials the given hub URL, hydrates the document it serves,
and keeps the connection alive with automatic reconnect until the
process receives an interrupt signal.

Examples:
  minimact run --hub wss://example.com/minimact
  minimact run --hub wss://example.com/minimact --debug-addr :9091`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(hubURL, debugAddr, sentryDSN, statefulRc)
		},
	}

	cmd.Flags().StringVar(&hubURL, "hub", "", "hub WebSocket URL (required)")
	cmd.Flags().StringVar(&debugAddr, "debug-addr", "", "address to serve /metrics and /snapshot on, e.g. :9091 (disabled if empty)")
	cmd.Flags().StringVar(&sentryDSN, "sentry-dsn", os.Getenv("MINIMACT_SENTRY_DSN"), "Sentry DSN for fatal-error reporting (disabled if empty)")
	cmd.Flags().BoolVar(&statefulRc, "stateful-reconnect", true, "request the resend-on-reconnect handshake version")
	_ = cmd.MarkFlagRequired("hub")

	return cmd
}

func runClient(hubURL, debugAddr, sentryDSN string, statefulReconnect bool) error {
	reporter, err := telemetry.NewReporter(sentryDSN)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer reporter.Flush(5 * time.Second)

	o := orchestrator.New(orchestrator.Config{
		TransportURL:      hubURL,
		StatefulReconnect: statefulReconnect,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := o.Start(ctx); err != nil {
		reporter.ReportError(err)
		return fmt.Errorf("start transport: %w", err)
	}
	defer o.Stop()

	// The initial document comes from the same hub connection's SSR
	// response in production; a bare document here simply gives
	// RegisterComponent somewhere to walk.
	doc, err := vdom.ParseFragment("")
	if err != nil {
		return fmt.Errorf("parse initial document: %w", err)
	}
	if _, err := o.Boot(ctx, doc); err != nil {
		reporter.ReportError(err)
		return fmt.Errorf("boot: %w", err)
	}

	if debugAddr != "" {
		go func() {
			if err := debugserver.ListenAndServe(debugAddr, o); err != nil {
				fmt.Fprintf(os.Stderr, "debug server: %v\n", err)
			}
		}()
	}

	<-ctx.Done()
	return nil
}
