package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shpitdev/deckschema/internal/app"
	"github.com/shpitdev/deckschema/internal/version"
)

func run(t *testing.T, cfg app.Config, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(&cfg)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, app.Config{}, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != version.Current {
		t.Fatalf("output=%q want=%q", out, version.Current)
	}
}

func TestMatchCommand(t *testing.T) {
	out, err := run(t, app.Config{}, "match", "TABDIMS")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !strings.HasPrefix(out, "TABDIMS: keyword TABDIMS") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := run(t, app.Config{}, "match"); err == nil {
		t.Fatalf("expected match without names to fail")
	}
}

func TestBatchRequiresFlags(t *testing.T) {
	if _, err := run(t, app.Config{}, "batch"); err == nil {
		t.Fatalf("expected missing --input and --output to fail")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("WORKERS", "3")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("FAIL_FAST", "true")
	t.Setenv("LENIENT_REGEX", "")
	t.Setenv("UNIT_SYSTEM", " FIELD ")
	t.Setenv("DECK_SCHEMA_DIR", "")
	t.Setenv("DECK_TIMEOUT", "1m")

	cfg, err := loadConfigFromEnv()
	if err != nil {
		t.Fatalf("loadConfigFromEnv: %v", err)
	}
	want := app.Config{Workers: 3, RateLimitRPS: 2.5, FailFast: true, Units: "FIELD", DeckTimeout: time.Minute}
	if cfg != want {
		t.Fatalf("config=%+v want=%+v", cfg, want)
	}

	t.Setenv("WORKERS", "many")
	if _, err := loadConfigFromEnv(); err == nil || !strings.Contains(err.Error(), "WORKERS") {
		t.Fatalf("expected an invalid WORKERS error, got %v", err)
	}
}
