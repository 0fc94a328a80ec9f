package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kisanmandi/mandi-backend/pkg/config"
	"github.com/kisanmandi/mandi-backend/pkg/logger"
)

const (
	connectWait   = 5 * time.Second
	maxReconnects = 5
	reconnectWait = 2 * time.Second
)

// conn is the subset of *nats.Conn the client relies on.
type conn interface {
	PublishMsg(msg *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Status() nats.Status
	Close()
}

// Client publishes outbox envelopes to NATS subjects.
type Client struct {
	nc conn
}

// New connects to the configured NATS server.
func New(ctx context.Context, cfg config.NATSConfig, logg *logger.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("nats url is required")
	}
	opts := []nats.Option{
		nats.Name(cfg.ClientName),
		nats.Timeout(connectWait),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if logg != nil && err != nil {
				logg.Warn(ctx, "nats disconnected: "+err.Error())
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			if logg != nil {
				logg.Info(ctx, "nats reconnected to "+nc.ConnectedUrl())
			}
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", cfg.URL, err)
	}
	if logg != nil {
		logg.Info(ctx, "nats connection established")
	}
	return &Client{nc: nc}, nil
}

// Publish sends data with headers and waits for the server to acknowledge the flush.
func (c *Client) Publish(ctx context.Context, subject string, data []byte, headers map[string]string) error {
	if c == nil || c.nc == nil {
		return errors.New("nats client not initialized")
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	for key, value := range headers {
		msg.Header.Set(key, value)
	}
	if err := c.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	if err := c.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush after %s: %w", subject, err)
	}
	return nil
}

// Ping reports whether the connection is usable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.nc == nil {
		return errors.New("nats client not initialized")
	}
	if status := c.nc.Status(); status != nats.CONNECTED {
		return fmt.Errorf("nats connection status %s", status)
	}
	return c.nc.FlushWithContext(ctx)
}

// Close drops the connection.
func (c *Client) Close() {
	if c != nil && c.nc != nil {
		c.nc.Close()
	}
}
