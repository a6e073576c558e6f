package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fhuszti/music-delivery-ms-go/internal/api_context"
)

func TestNew_RequestAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Format: "json", Level: "debug"})

	ctx := context.WithValue(context.Background(), api_context.IDKey, "track-1")
	ctx = context.WithValue(ctx, api_context.AuthUserIDKey, "user-123")
	ctx = context.WithValue(ctx, api_context.AuthTierKey, "premium")
	l.InfoContext(ctx, "uploaded")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	want := map[string]string{
		"msg":   "uploaded",
		"svc":   "music-delivery",
		"asset": "track-1",
		"uid":   "user-123",
		"tier":  "premium",
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v; want %q", k, rec[k], v)
		}
	}
}

func TestNew_SystemContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Format: "text"})

	l.InfoContext(context.Background(), "worker started")

	line := buf.String()
	if !strings.Contains(line, "uid=system") {
		t.Errorf("line %q should carry uid=system", line)
	}
	if strings.Contains(line, "asset=") || strings.Contains(line, "tier=") {
		t.Errorf("line %q should not carry request attributes", line)
	}
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Level: "warn"})

	l.InfoContext(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	l.WarnContext(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn line missing: %q", buf.String())
	}
}

func TestWrappersUseInstalledLogger(t *testing.T) {
	prev := std
	defer func() { std = prev }()

	var buf bytes.Buffer
	std = New(&buf, Options{Level: "debug"})

	Debugf(context.Background(), "variant %dkbps", 192)
	if !strings.Contains(buf.String(), "variant 192kbps") {
		t.Errorf("Debugf output = %q", buf.String())
	}
}
