package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/rs/zerolog"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Format: FormatJSON, Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithListingID(ctx, "listing-9")
	ctx = log.WithActor(ctx, "user-1", "buyer")

	log.Error(ctx, "boom", errors.New("boom"))

	out := buf.String()
	for _, want := range []string{`"request_id":"req-123"`, `"listing_id":"listing-9"`, `"user_id":"user-1"`, `"actor_role":"buyer"`, `"stack"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in entry=%s", want, out)
		}
	}
}

func TestLoggerErrorCodes(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Format: FormatJSON, Output: buf})

	log.Error(context.Background(), "bid rejected", pkgerrors.New(pkgerrors.CodeValidation, "bid too low"))
	out := buf.String()
	if !strings.Contains(out, `"error_code":"VALIDATION_ERROR"`) {
		t.Fatalf("expected error_code; entry=%s", out)
	}
	if strings.Contains(out, `"stack"`) {
		t.Fatalf("business rejections should not carry a stack; entry=%s", out)
	}

	buf.Reset()
	log.Error(context.Background(), "settle failed", pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("conn reset"), "insert transaction"))
	if !strings.Contains(buf.String(), `"stack"`) {
		t.Fatalf("dependency failures should carry a stack; entry=%s", buf.String())
	}
}

func TestWithFieldsOrdersKeys(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Format: FormatJSON, Output: buf})
	ctx := log.WithFields(context.Background(), Fields{"zeta": 1, "alpha": 2, "mid": 3})
	log.Info(ctx, "ordered")

	out := buf.String()
	a, m, z := strings.Index(out, `"alpha"`), strings.Index(out, `"mid"`), strings.Index(out, `"zeta"`)
	if a < 0 || !(a < m && m < z) {
		t.Fatalf("expected sorted fields; entry=%s", out)
	}
}

func TestLoggerWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Format: FormatJSON, Output: buf, WarnStack: true})
	log.Warn(context.Background(), "warny")
	if !bytes.Contains(buf.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("expected stack when warn stack enabled")
	}

	buf.Reset()
	quiet := New(Options{ServiceName: "test", Format: FormatJSON, Output: buf})
	quiet.Warn(context.Background(), "warny")
	if bytes.Contains(buf.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("did not expect stack when warn stack disabled")
	}
}

func TestLoggerLevelFiltersDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: buf})
	log.Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug entry to be filtered, got %s", buf.String())
	}
}

func TestParseLevelDefaults(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"invalid": zerolog.InfoLevel,
		" WARN ":  zerolog.WarnLevel,
		"debug":   zerolog.DebugLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerTagsInstance(t *testing.T) {
	t.Setenv("MANDI_INSTANCE_ID", "api-3")
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Format: FormatJSON, Output: buf})
	log.Info(context.Background(), "ready")
	if !strings.Contains(buf.String(), `"instance":"api-3"`) {
		t.Fatalf("expected instance field; entry=%s", buf.String())
	}
}
