package blocktype

import (
	"strings"
	"testing"

	"lessons/internal/domain"
)

func TestBuiltinTagsRegistered(t *testing.T) {
	r := NewBuiltinRegistry()
	for _, tag := range []string{
		"heading", "paragraph", "markdown", "definition",
		"step-sequence", "worked-example", "memory-trick", "callout-box",
	} {
		if !r.Has(tag) {
			t.Errorf("builtin %q not registered", tag)
		}
	}
}

func TestHeadingDefault(t *testing.T) {
	d, _ := NewBuiltinRegistry().Resolve("heading")
	state, err := d.CreateDefault(nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := d.ExtractData(state)["text"]; got != "New heading" {
		t.Fatalf("default heading text = %v", got)
	}
}

func TestHeadingRoundTrip(t *testing.T) {
	d, _ := NewBuiltinRegistry().Resolve("heading")
	state, err := d.CreateDefault(domain.BlockData{"text": "Fractions"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := d.ExtractData(state)["text"]; got != "Fractions" {
		t.Fatalf("extract = %v", got)
	}
	if html := d.RenderPreview(state); !strings.Contains(html, "Fractions") {
		t.Fatalf("preview %q missing text", html)
	}
}

func TestPopulateUpdatesState(t *testing.T) {
	d, _ := NewBuiltinRegistry().Resolve("paragraph")
	state, _ := d.CreateDefault(nil)
	state, err := d.Populate(state, domain.BlockData{"text": "updated"})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	if got := d.ExtractData(state)["text"]; got != "updated" {
		t.Fatalf("extract = %v", got)
	}
}

func TestPreviewEscapesHTML(t *testing.T) {
	d, _ := NewBuiltinRegistry().Resolve("paragraph")
	state, _ := d.CreateDefault(domain.BlockData{"text": `<script>alert("x")</script>`})
	html := d.RenderPreview(state)
	if strings.Contains(html, "<script>") {
		t.Fatalf("preview leaks raw HTML: %q", html)
	}
}

func TestStepSequenceFromWire(t *testing.T) {
	d, _ := NewBuiltinRegistry().Resolve("step-sequence")
	// JSON decoding yields []any, in-process callers pass []string.
	for _, steps := range []any{
		[]any{"one", "two"},
		[]string{"one", "two"},
	} {
		state, err := d.CreateDefault(domain.BlockData{"steps": steps})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		html := d.RenderPreview(state)
		if !strings.Contains(html, "<li>one</li>") || !strings.Contains(html, "<li>two</li>") {
			t.Fatalf("preview %q missing steps", html)
		}
		out, ok := d.ExtractData(state)["steps"].([]any)
		if !ok || len(out) != 2 {
			t.Fatalf("extracted steps = %v", out)
		}
	}
}

func TestMarkdownRendersToHTML(t *testing.T) {
	d, _ := NewBuiltinRegistry().Resolve("markdown")
	state, _ := d.CreateDefault(domain.BlockData{"text": "some **bold** text"})
	html := d.RenderPreview(state)
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Fatalf("preview %q not converted", html)
	}
}

func TestCalloutStyleValidation(t *testing.T) {
	d, _ := NewBuiltinRegistry().Resolve("callout-box")

	state, err := d.CreateDefault(domain.BlockData{"text": "hi", "style": "warning"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(d.RenderPreview(state), "callout-warning") {
		t.Fatal("style not reflected in preview")
	}

	if _, err := d.CreateDefault(domain.BlockData{"style": "sparkly"}); err == nil {
		t.Fatal("invalid style accepted")
	}
}

func TestCalloutRejectedPopulateLeavesStateIntact(t *testing.T) {
	d, _ := NewBuiltinRegistry().Resolve("callout-box")
	state, err := d.CreateDefault(domain.BlockData{"text": "original", "style": "tip"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A payload with a valid text but an invalid style must apply neither.
	if _, err := d.Populate(state, domain.BlockData{"text": "mutated", "style": "sparkly"}); err == nil {
		t.Fatal("invalid style accepted")
	}
	out := d.ExtractData(state)
	if out["text"] != "original" || out["style"] != "tip" {
		t.Fatalf("rejected populate changed state: %+v", out)
	}
}

func TestWorkedExampleRoundTrip(t *testing.T) {
	d, _ := NewBuiltinRegistry().Resolve("worked-example")
	in := domain.BlockData{"problem": "2+2", "solution": "add", "answer": "4"}
	state, err := d.CreateDefault(in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	out := d.ExtractData(state)
	for k, v := range in {
		if out[k] != v {
			t.Errorf("%s = %v, want %v", k, out[k], v)
		}
	}
}
