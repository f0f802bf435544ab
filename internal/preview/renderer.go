package preview

import (
	"fmt"
	"html"
	"log"
	"strings"

	"lessons/internal/blocktype"
	"lessons/internal/domain"
)

// Renderer projects a document to preview HTML. It holds no state beyond
// the registry reference: rendering the same document twice yields
// byte-identical output.
type Renderer struct {
	registry *blocktype.Registry
}

// NewRenderer creates a renderer over the given registry.
func NewRenderer(registry *blocktype.Registry) *Renderer {
	return &Renderer{registry: registry}
}

// Render returns the full preview markup for doc, each block wrapped in a
// container carrying its ID and type. A block whose type no longer
// resolves renders a visible placeholder instead of failing the whole
// preview.
func (r *Renderer) Render(doc *domain.Document) string {
	var b strings.Builder
	b.WriteString(`<section class="lesson-preview">`)
	for _, block := range doc.Blocks() {
		b.WriteString(fmt.Sprintf(`<div class="block block-%s" data-block-id=%q>`,
			html.EscapeString(block.Type), block.ID))
		d, err := r.registry.Resolve(block.Type)
		if err != nil {
			log.Printf("[PREVIEW] block %s: %v", block.ID, err)
			b.WriteString(fmt.Sprintf(`<div class="block-missing">Unknown block type %q</div>`,
				html.EscapeString(block.Type)))
		} else {
			b.WriteString(d.RenderPreview(block.State))
		}
		b.WriteString("</div>")
	}
	b.WriteString("</section>")
	return b.String()
}
