package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestStdLogger_JSONIncludesBaseAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatJSON, App: "petshop-api", Output: &buf})

	l.With(Fields{"request_id": "r-1"}).Info("appointment created", Fields{"appointment_id": int64(3), "err": errors.New("boom")})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid json line %q: %v", buf.String(), err)
	}
	if entry["app"] != "petshop-api" || entry["request_id"] != "r-1" || entry["msg"] != "appointment created" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	if entry["err"] != "boom" {
		t.Fatalf("expected error rendered as string, got %#v", entry["err"])
	}
}

func TestStdLogger_LevelFilterAndTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Output: &buf})

	l.Info("hidden", nil)
	l.Warn("shown", Fields{"b": 2, "a": 1})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info must be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "a=1 b=2 level=warn msg=shown") {
		t.Fatalf("expected sorted text output, got %q", out)
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf})

	ctx := WithContext(context.Background(), l)
	if FromContext(ctx, nil) != l {
		t.Fatalf("expected logger from context")
	}
	if FromContext(context.Background(), nil) == nil {
		t.Fatalf("expected nop fallback")
	}
}

func TestParse(t *testing.T) {
	if ParseLevel("WARNING") != Warn || ParseLevel("bogus") != Info {
		t.Fatalf("unexpected level parsing")
	}
	if ParseFormat("JSON") != FormatJSON || ParseFormat("") != FormatText {
		t.Fatalf("unexpected format parsing")
	}
}
