package env

import "testing"

func TestGetPrefersFirstSetKey(t *testing.T) {
	t.Setenv("MANDI_LOG_FORMAT", "")
	t.Setenv("LOG_FORMAT", "console")
	if got := Get("json", "MANDI_LOG_FORMAT", "LOG_FORMAT"); got != "console" {
		t.Fatalf("expected console got %q", got)
	}
	t.Setenv("MANDI_LOG_FORMAT", "json")
	if got := Get("console", "MANDI_LOG_FORMAT", "LOG_FORMAT"); got != "json" {
		t.Fatalf("expected json got %q", got)
	}
}

func TestGetFallback(t *testing.T) {
	t.Setenv("MANDI_UNSET_FOR_TEST", "")
	if got := Get("fallback", "MANDI_UNSET_FOR_TEST"); got != "fallback" {
		t.Fatalf("expected fallback got %q", got)
	}
}
