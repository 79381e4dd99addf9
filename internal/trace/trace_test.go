package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		kind  Kind
		want  bool
	}{
		{LevelOff, ScopeDriver, KindError, false},
		{LevelError, ScopeLine, KindError, true},
		{LevelError, ScopeDriver, KindSpanBegin, false},
		{LevelPhase, ScopeDriver, KindSpanBegin, true},
		{LevelPhase, ScopeFile, KindSpanBegin, false},
		{LevelDetail, ScopeFile, KindPoint, true},
		{LevelDetail, ScopeLine, KindPoint, false},
		{LevelDebug, ScopeLine, KindPoint, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope, tt.kind); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s, %s) = %v, want %v", tt.level, tt.scope, tt.kind, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "ERROR", "Phase", "detail", "debug"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(verbose) succeeded, want error")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	root := Begin(tr, ScopeDriver, "fmt", 0)
	file := Begin(tr, ScopeFile, "file", root.ID()).WithExtra("changed", "true")
	Point(tr, ScopeLine, "line", "dropped at detail", file.ID())
	file.End("a.vic")
	root.End("")

	out := buf.String()
	if got := strings.Count(out, "\n"); got != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", got, out)
	}
	if !strings.Contains(out, "→ driver fmt") {
		t.Errorf("missing driver begin:\n%s", out)
	}
	if !strings.Contains(out, "← file file (a.vic) {changed=true}") {
		t.Errorf("missing file end:\n%s", out)
	}
	if strings.Contains(out, "dropped at detail") {
		t.Errorf("line event leaked at detail level:\n%s", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelError, FormatNDJSON)

	sp := Begin(tr, ScopeDriver, "fmt", 0)
	Error(tr, ScopeFile, "write", errors.New("disk full"), sp.ID())
	Error(tr, ScopeFile, "write", nil, sp.ID())
	sp.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d events, want 1:\n%s", len(lines), buf.String())
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("bad ndjson: %v", err)
	}
	if ev["kind"] != "error" || ev["detail"] != "disk full" {
		t.Errorf("unexpected event %v", ev)
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Error("tracer at LevelOff is enabled")
	}
	if sp := Begin(tr, ScopeDriver, "x", 0); sp.ID() != 0 {
		t.Errorf("nop span has id %d", sp.ID())
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Fatal("FromContext did not return the attached tracer")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatal("FromContext without tracer should be Nop")
	}
	sp := Begin(tr, ScopeDriver, "root", 0)
	ctx = WithSpan(ctx, sp)
	if CurrentSpan(ctx) != sp.ID() {
		t.Errorf("CurrentSpan = %d, want %d", CurrentSpan(ctx), sp.ID())
	}
}
