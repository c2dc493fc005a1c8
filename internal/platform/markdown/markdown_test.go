package markdown_test

import (
	"strings"
	"testing"

	"siav/internal/platform/markdown"
)

var block = markdown.Block{Start: "<!-- gen:start -->", End: "<!-- gen:end -->"}

func TestBlockReplaceAppendsWhenMissing(t *testing.T) {
	t.Parallel()
	got := block.Replace("# Title\n", "generated")
	want := "# Title\n\n<!-- gen:start -->\ngenerated\n<!-- gen:end -->\n"
	if got != want {
		t.Fatalf("got=%q want=%q", got, want)
	}
	if got := block.Replace("  ", "x"); got != "<!-- gen:start -->\nx\n<!-- gen:end -->\n" {
		t.Fatalf("empty body got=%q", got)
	}
}

func TestBlockReplaceKeepsSurroundingText(t *testing.T) {
	t.Parallel()
	body := "intro\n<!-- gen:start -->\nold\n<!-- gen:end -->\nhand notes\n"
	got := block.Replace(body, "new")
	if !strings.HasPrefix(got, "intro\n") || !strings.HasSuffix(got, "hand notes\n") {
		t.Fatalf("surrounding text lost: %q", got)
	}
	if strings.Contains(got, "old") || !strings.Contains(got, "\nnew\n") {
		t.Fatalf("block not replaced: %q", got)
	}
}

func TestFrontmatterRoundTrip(t *testing.T) {
	t.Parallel()
	rendered, err := markdown.RenderFrontmatter([]markdown.Field{
		{Key: "id", Value: "s1"},
		{Key: "patient", Value: nil},
		{Key: "shocks", Value: 2},
	}, "body\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(rendered, "patient") {
		t.Fatalf("nil field rendered: %q", rendered)
	}
	meta, body, err := markdown.SplitFrontmatter(rendered)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if meta["id"] != "s1" || meta["shocks"] != 2 {
		t.Fatalf("unexpected meta: %#v", meta)
	}
	if strings.TrimLeft(body, "\n") != "body\n" {
		t.Fatalf("body got=%q", body)
	}
}

func TestFrontmatterKeepsFieldOrder(t *testing.T) {
	t.Parallel()
	rendered, err := markdown.RenderFrontmatter([]markdown.Field{
		{Key: "schema_version", Value: 1},
		{Key: "id", Value: "s1"},
		{Key: "rosc", Value: true},
	}, "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "---\nschema_version: 1\nid: s1\nrosc: true\n---\n\n"
	if rendered != want {
		t.Fatalf("got=%q want=%q", rendered, want)
	}
}

func TestSplitFrontmatterEdgeCases(t *testing.T) {
	t.Parallel()
	meta, body, err := markdown.SplitFrontmatter("no block here\n")
	if err != nil || len(meta) != 0 || body != "no block here\n" {
		t.Fatalf("plain content: meta=%v body=%q err=%v", meta, body, err)
	}
	meta, _, err = markdown.SplitFrontmatter("---\r\nid: s2\r\n---\r\nbody\r\n")
	if err != nil || meta["id"] != "s2" {
		t.Fatalf("crlf: meta=%v err=%v", meta, err)
	}
	if _, _, err := markdown.SplitFrontmatter("---\nid: s3\nbody without fence\n"); err == nil {
		t.Fatal("expected missing fence error")
	}
}
