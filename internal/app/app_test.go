package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shpitdev/deckschema/internal/app"
)

const deckText = `RUNSPEC
FIELD
DIMENS
 1 1 2 /
GRID
PORO
 2*0.3 /
SCHEDULE
TSTEP
 10 /
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestCheck(t *testing.T) {
	var logs bytes.Buffer
	if err := app.Check(context.Background(), app.Config{}, &logs); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !strings.Contains(logs.String(), "schemas loaded: source=built-in") {
		t.Fatalf("unexpected log %q", logs.String())
	}
}

func TestCheck_SchemaDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "PROBE.json", `{"name": "PROBE", "deck_name_regex": "P[", "size": 1}`)

	if err := app.Check(context.Background(), app.Config{SchemaDir: dir}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected the malformed expression to fail")
	}

	var logs bytes.Buffer
	if err := app.Check(context.Background(), app.Config{SchemaDir: dir, LenientRegex: true}, &logs); err != nil {
		t.Fatalf("Check: %v", err)
	}
	out := logs.String()
	if !strings.Contains(out, "malformed-regex") || !strings.Contains(out, "warnings=1") {
		t.Fatalf("unexpected log %q", out)
	}
}

func TestMatch(t *testing.T) {
	var out bytes.Buffer
	if err := app.Match(context.Background(), app.Config{}, []string{"PERMZ", "DIMESN", "1ABC"}, &out); err != nil {
		t.Fatalf("Match: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out.String())
	}
	if !strings.HasPrefix(lines[0], "PERMZ: ") || !strings.Contains(lines[0], "PERMX") {
		t.Fatalf("unexpected line %q", lines[0])
	}
	if !strings.Contains(lines[1], "did you mean DIMENS") {
		t.Fatalf("unexpected line %q", lines[1])
	}
	if lines[2] != "1ABC: not a valid deck keyword" {
		t.Fatalf("unexpected line %q", lines[2])
	}
}

func TestRunParse(t *testing.T) {
	dir := t.TempDir()
	deckPath := writeFile(t, dir, "CASE.DATA", deckText)

	var out, logs bytes.Buffer
	if err := app.RunParse(context.Background(), app.Config{}, deckPath, "", &out, &logs); err != nil {
		t.Fatalf("RunParse: %v", err)
	}
	if !strings.Contains(out.String(), "PORO     occurrences=1 records=1") {
		t.Fatalf("unexpected summary %q", out.String())
	}
	if !strings.Contains(logs.String(), "parse complete: keywords=7") {
		t.Fatalf("unexpected log %q", logs.String())
	}

	csvPath := filepath.Join(dir, "values.csv")
	if err := app.RunParse(context.Background(), app.Config{Units: "metric"}, deckPath, csvPath, &out, &logs); err != nil {
		t.Fatalf("RunParse: %v", err)
	}
	b, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "\nTSTEP,0,9,0,data,0,DOUBLE,10,864000,Time,false\n") {
		t.Fatalf("unexpected csv %q", b)
	}

	if err := app.RunParse(context.Background(), app.Config{Units: "LAB"}, deckPath, "", &out, &logs); err == nil {
		t.Fatalf("expected an unknown unit system to fail")
	}
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "CASE.DATA", deckText)
	list := writeFile(t, dir, "decks.csv", "deck\nCASE.DATA\nMISSING.DATA\n")
	outPath := filepath.Join(dir, "summary.csv")

	var logs bytes.Buffer
	if err := app.RunBatch(context.Background(), app.Config{Workers: 2}, list, outPath, &logs); err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if !strings.Contains(logs.String(), "batch complete: decks=2 ok=1 error=1") {
		t.Fatalf("unexpected log %q", logs.String())
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "deck,status,keywords") {
		t.Fatalf("unexpected summary %q", b)
	}
	if !strings.Contains(lines[1], ",ok,7,0,0,,") || !strings.Contains(lines[2], ",error,") {
		t.Fatalf("unexpected rows %q", lines[1:])
	}
}
