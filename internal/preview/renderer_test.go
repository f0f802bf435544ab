package preview

import (
	"strings"
	"testing"

	"lessons/internal/blocktype"
	"lessons/internal/domain"
)

func addBlock(t *testing.T, r *blocktype.Registry, doc *domain.Document, id, tag string, data domain.BlockData) {
	t.Helper()
	d, err := r.Resolve(tag)
	if err != nil {
		t.Fatalf("resolve %s: %v", tag, err)
	}
	state, err := d.CreateDefault(data)
	if err != nil {
		t.Fatalf("create %s: %v", tag, err)
	}
	if err := doc.InsertBlock(domain.Block{ID: id, Type: tag, State: state}, doc.Len()); err != nil {
		t.Fatalf("insert %s: %v", id, err)
	}
}

func TestRenderDocumentOrder(t *testing.T) {
	reg := blocktype.NewBuiltinRegistry()
	doc := domain.NewDocument()
	addBlock(t, reg, doc, "b1", "heading", domain.BlockData{"text": "Fractions"})
	addBlock(t, reg, doc, "b2", "paragraph", domain.BlockData{"text": "A fraction has two parts."})
	addBlock(t, reg, doc, "b3", "callout-box", domain.BlockData{"text": "Remember!", "style": "tip"})

	html := NewRenderer(reg).Render(doc)

	if !strings.HasPrefix(html, `<section class="lesson-preview">`) || !strings.HasSuffix(html, "</section>") {
		t.Fatalf("missing preview wrapper: %q", html)
	}
	h := strings.Index(html, "Fractions")
	p := strings.Index(html, "two parts")
	c := strings.Index(html, "Remember!")
	if h == -1 || p == -1 || c == -1 || !(h < p && p < c) {
		t.Fatalf("blocks out of document order: %q", html)
	}
	for _, id := range []string{"b1", "b2", "b3"} {
		if !strings.Contains(html, `data-block-id="`+id+`"`) {
			t.Errorf("block %s container missing", id)
		}
	}
}

func TestRenderIsPure(t *testing.T) {
	reg := blocktype.NewBuiltinRegistry()
	doc := domain.NewDocument()
	addBlock(t, reg, doc, "b1", "heading", nil)
	addBlock(t, reg, doc, "b2", "step-sequence", domain.BlockData{"steps": []string{"one", "two"}})

	r := NewRenderer(reg)
	if first, second := r.Render(doc), r.Render(doc); first != second {
		t.Fatalf("render not stable:\n%q\n%q", first, second)
	}
}

func TestRenderUnknownTypePlaceholder(t *testing.T) {
	reg := blocktype.NewBuiltinRegistry()
	doc := domain.NewDocument()
	addBlock(t, reg, doc, "b1", "heading", nil)
	if err := doc.InsertBlock(domain.Block{ID: "b2", Type: "hologram"}, 1); err != nil {
		t.Fatalf("insert: %v", err)
	}
	addBlock(t, reg, doc, "b3", "paragraph", domain.BlockData{"text": "still here"})

	html := NewRenderer(reg).Render(doc)
	if !strings.Contains(html, `<div class="block-missing">`) || !strings.Contains(html, "hologram") {
		t.Fatalf("no placeholder for unknown type: %q", html)
	}
	// The rest of the document still renders.
	if !strings.Contains(html, "still here") {
		t.Fatalf("unknown type aborted the preview: %q", html)
	}
}

func TestRenderEmptyDocument(t *testing.T) {
	reg := blocktype.NewBuiltinRegistry()
	html := NewRenderer(reg).Render(domain.NewDocument())
	if html != `<section class="lesson-preview"></section>` {
		t.Fatalf("got %q", html)
	}
}
