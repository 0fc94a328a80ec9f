package instance

import "testing"

func TestGetID(t *testing.T) {
	t.Setenv("MANDI_INSTANCE_ID", "")
	t.Setenv("HOSTNAME", "")
	if got := GetID(); got != "local" {
		t.Fatalf("expected local got %q", got)
	}
	t.Setenv("HOSTNAME", "cron-7f9c")
	if got := GetID(); got != "cron-7f9c" {
		t.Fatalf("expected hostname got %q", got)
	}
	t.Setenv("MANDI_INSTANCE_ID", "worker-2")
	if got := GetID(); got != "worker-2" {
		t.Fatalf("expected override got %q", got)
	}
}
