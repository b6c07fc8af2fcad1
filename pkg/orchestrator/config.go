package orchestrator

import (
	"log/slog"
	"time"

	"github.com/minimact/client-go/pkg/buffer"
	"github.com/minimact/client-go/pkg/transport"
)

// Config configures an Orchestrator's Transport, Buffer, and Hint Queue.
type Config struct {
	// TransportURL is the hub endpoint to dial, e.g. "wss://host/minimact".
	TransportURL string

	TransferFormat    transport.TransferFormat
	StatefulReconnect bool
	MaxRedirects      int
	RetryDelays       []*time.Duration
	HandshakeTimeout  time.Duration

	Buffer buffer.Config

	// HintTTL bounds how long a queued hint stays eligible for matching.
	// Zero selects hint.MaxTTL.
	HintTTL time.Duration

	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

func (c Config) transportConfig() transport.Config {
	return transport.Config{
		URL:               c.TransportURL,
		MaxRedirects:      c.MaxRedirects,
		RetryDelays:       c.RetryDelays,
		HandshakeTimeout:  c.HandshakeTimeout,
		StatefulReconnect: c.StatefulReconnect,
		Logger:            c.Logger,
	}
}
