package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
)

type fakeConn struct {
	published []*nats.Msg
	status    nats.Status
	flushErr  error
	closed    bool
}

func (f *fakeConn) PublishMsg(msg *nats.Msg) error {
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error { return f.flushErr }

func (f *fakeConn) Status() nats.Status { return f.status }

func (f *fakeConn) Close() { f.closed = true }

func TestPublishSetsHeadersAndFlushes(t *testing.T) {
	fc := &fakeConn{status: nats.CONNECTED}
	client := &Client{nc: fc}

	err := client.Publish(context.Background(), "mandi.events.listing.bid_placed", []byte(`{}`), map[string]string{
		"event_type": "bid_placed",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fc.published))
	}
	msg := fc.published[0]
	if msg.Subject != "mandi.events.listing.bid_placed" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if msg.Header.Get("event_type") != "bid_placed" {
		t.Fatalf("missing header, got %v", msg.Header)
	}
}

func TestPublishSurfacesFlushError(t *testing.T) {
	fc := &fakeConn{status: nats.CONNECTED, flushErr: errors.New("timeout")}
	client := &Client{nc: fc}
	if err := client.Publish(context.Background(), "s", nil, nil); err == nil {
		t.Fatal("expected flush error")
	}
}

func TestPingRequiresConnectedStatus(t *testing.T) {
	client := &Client{nc: &fakeConn{status: nats.RECONNECTING}}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail while reconnecting")
	}
	client = &Client{nc: &fakeConn{status: nats.CONNECTED}}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestCloseNilSafe(t *testing.T) {
	var client *Client
	client.Close()
	fc := &fakeConn{}
	(&Client{nc: fc}).Close()
	if !fc.closed {
		t.Fatal("expected connection to close")
	}
}
