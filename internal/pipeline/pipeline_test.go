package pipeline_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shpitdev/deckschema/internal/pipeline"
	"github.com/shpitdev/deckschema/keywords"
	"github.com/shpitdev/deckschema/pkg/diag"
	"github.com/shpitdev/deckschema/pkg/parser"
	"github.com/shpitdev/deckschema/pkg/registry"
)

func session(t *testing.T) func(diag.Sink) *parser.Session {
	t.Helper()
	reg := registry.New()
	if _, err := reg.LoadFS(context.Background(), keywords.FS, ".", registry.LoadOptions{}); err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	return func(sink diag.Sink) *parser.Session {
		return parser.New(reg, parser.Options{Sink: sink})
	}
}

func TestRows(t *testing.T) {
	d, err := session(t)(nil).ParseReader(context.Background(), strings.NewReader("METRIC\nTSTEP\n 2*1 /\nTSTEP\n 5 /\n"), "x")
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	rows := pipeline.Rows(d)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Keyword != "TSTEP" || rows[0].Occurrence != 0 || rows[0].Line != 2 || rows[0].Item != "data" {
		t.Fatalf("unexpected row[0]: %#v", rows[0])
	}
	if rows[1].Index != 1 || rows[1].SI != "86400" || rows[1].Dimension != "Time" {
		t.Fatalf("unexpected row[1]: %#v", rows[1])
	}
	if rows[2].Occurrence != 1 || rows[2].Value != "5" {
		t.Fatalf("unexpected row[2]: %#v", rows[2])
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := pipeline.WriteCSV(&buf, []pipeline.Row{{
		Keyword: "PORO",
		Item:    "data",
		Type:    "DOUBLE",
		Value:   "0.25",
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "keyword,occurrence,line,record,item,index,type,value,si,dimension,defaulted\n") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "\nPORO,0,0,0,data,0,DOUBLE,0.25,,,false\n") {
		t.Fatalf("unexpected body: %q", out)
	}
}

func TestParseDecks(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "GOOD.DATA")
	if err := os.WriteFile(good, []byte("RUNSPEC\nDIMENS\n 1 1 1 /\nGRID\nBOGUS\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	missing := filepath.Join(dir, "MISSING.DATA")

	var all diag.Collector
	rows, err := pipeline.ParseDecks(context.Background(), []string{good, missing}, pipeline.ParseDeck(session(t), &all), pipeline.Options{Workers: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Deck != good || rows[0].Status != "ok" || rows[0].Keywords != 3 || rows[0].Warnings != 1 {
		t.Fatalf("unexpected row[0]: %#v", rows[0])
	}
	if rows[1].Deck != missing || rows[1].Status != "error" || rows[1].Error == "" {
		t.Fatalf("unexpected row[1]: %#v", rows[1])
	}
	if len(all.Diagnostics()) != 1 {
		t.Fatalf("expected the shared sink to see the warning, got %v", all.Diagnostics())
	}

	_, err = pipeline.ParseDecks(context.Background(), []string{missing}, pipeline.ParseDeck(session(t), nil), pipeline.Options{FailFast: true})
	if err == nil {
		t.Fatalf("expected fail-fast error")
	}
}

func TestSummaryFields(t *testing.T) {
	s := pipeline.Summary{Deck: "A.DATA", Status: "ok", Keywords: 4, Warnings: 1}
	got := strings.Join(s.Fields(), ",")
	if got != "A.DATA,ok,4,1,0,,0" {
		t.Fatalf("unexpected fields %q", got)
	}
	if len(pipeline.SummaryHeader()) != len(s.Fields()) {
		t.Fatalf("header and fields disagree")
	}
}
