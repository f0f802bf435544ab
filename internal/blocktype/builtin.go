package blocktype

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"

	"lessons/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Built-in block types — the lesson authoring vocabulary
// ─────────────────────────────────────────────────────────────

// RegisterBuiltins registers every built-in lesson block type.
func RegisterBuiltins(r *Registry) {
	r.Register("heading", headingDescriptor())
	r.Register("paragraph", paragraphDescriptor())
	r.Register("markdown", markdownDescriptor())
	r.Register("definition", definitionDescriptor())
	r.Register("step-sequence", stepSequenceDescriptor())
	r.Register("worked-example", workedExampleDescriptor())
	r.Register("memory-trick", memoryTrickDescriptor())
	r.Register("callout-box", calloutDescriptor())
}

// NewBuiltinRegistry returns a registry pre-loaded with the built-ins.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// ── heading ────────────────────────────────────────────────

type HeadingState struct {
	Text string
}

func headingDescriptor() Descriptor {
	return Descriptor{
		CreateDefault: func(initial domain.BlockData) (any, error) {
			s := &HeadingState{Text: "New heading"}
			return populateHeading(s, initial)
		},
		Populate: func(state any, data domain.BlockData) (any, error) {
			return populateHeading(state.(*HeadingState), data)
		},
		ExtractData: func(state any) domain.BlockData {
			return domain.BlockData{"text": state.(*HeadingState).Text}
		},
		RenderPreview: func(state any) string {
			return fmt.Sprintf(`<h2 class="block-heading">%s</h2>`, html.EscapeString(state.(*HeadingState).Text))
		},
	}
}

func populateHeading(s *HeadingState, data domain.BlockData) (*HeadingState, error) {
	if t, ok := stringField(data, "text"); ok {
		s.Text = t
	}
	return s, nil
}

// ── paragraph ──────────────────────────────────────────────

type ParagraphState struct {
	Text string
}

func paragraphDescriptor() Descriptor {
	return Descriptor{
		CreateDefault: func(initial domain.BlockData) (any, error) {
			s := &ParagraphState{}
			if t, ok := stringField(initial, "text"); ok {
				s.Text = t
			}
			return s, nil
		},
		Populate: func(state any, data domain.BlockData) (any, error) {
			s := state.(*ParagraphState)
			if t, ok := stringField(data, "text"); ok {
				s.Text = t
			}
			return s, nil
		},
		ExtractData: func(state any) domain.BlockData {
			return domain.BlockData{"text": state.(*ParagraphState).Text}
		},
		RenderPreview: func(state any) string {
			return fmt.Sprintf(`<p class="block-paragraph">%s</p>`, html.EscapeString(state.(*ParagraphState).Text))
		},
	}
}

// ── markdown ───────────────────────────────────────────────

type MarkdownState struct {
	Text string
}

func markdownDescriptor() Descriptor {
	md := goldmark.New()
	return Descriptor{
		CreateDefault: func(initial domain.BlockData) (any, error) {
			s := &MarkdownState{}
			if t, ok := stringField(initial, "text"); ok {
				s.Text = t
			}
			return s, nil
		},
		Populate: func(state any, data domain.BlockData) (any, error) {
			s := state.(*MarkdownState)
			if t, ok := stringField(data, "text"); ok {
				s.Text = t
			}
			return s, nil
		},
		ExtractData: func(state any) domain.BlockData {
			return domain.BlockData{"text": state.(*MarkdownState).Text}
		},
		RenderPreview: func(state any) string {
			var buf bytes.Buffer
			if err := md.Convert([]byte(state.(*MarkdownState).Text), &buf); err != nil {
				return fmt.Sprintf(`<pre class="block-markdown">%s</pre>`, html.EscapeString(state.(*MarkdownState).Text))
			}
			return fmt.Sprintf(`<div class="block-markdown">%s</div>`, buf.String())
		},
	}
}

// ── definition ─────────────────────────────────────────────

type DefinitionState struct {
	Term       string
	Definition string
}

func definitionDescriptor() Descriptor {
	return Descriptor{
		CreateDefault: func(initial domain.BlockData) (any, error) {
			s := &DefinitionState{Term: "Term"}
			return populateDefinition(s, initial)
		},
		Populate: func(state any, data domain.BlockData) (any, error) {
			return populateDefinition(state.(*DefinitionState), data)
		},
		ExtractData: func(state any) domain.BlockData {
			s := state.(*DefinitionState)
			return domain.BlockData{"term": s.Term, "definition": s.Definition}
		},
		RenderPreview: func(state any) string {
			s := state.(*DefinitionState)
			return fmt.Sprintf(`<dl class="block-definition"><dt>%s</dt><dd>%s</dd></dl>`,
				html.EscapeString(s.Term), html.EscapeString(s.Definition))
		},
	}
}

func populateDefinition(s *DefinitionState, data domain.BlockData) (*DefinitionState, error) {
	if t, ok := stringField(data, "term"); ok {
		s.Term = t
	}
	if d, ok := stringField(data, "definition"); ok {
		s.Definition = d
	}
	return s, nil
}

// ── step-sequence ──────────────────────────────────────────

type StepSequenceState struct {
	Steps []string
}

func stepSequenceDescriptor() Descriptor {
	return Descriptor{
		CreateDefault: func(initial domain.BlockData) (any, error) {
			s := &StepSequenceState{Steps: []string{"First step"}}
			if steps, ok := stringSliceField(initial, "steps"); ok {
				s.Steps = steps
			}
			return s, nil
		},
		Populate: func(state any, data domain.BlockData) (any, error) {
			s := state.(*StepSequenceState)
			if steps, ok := stringSliceField(data, "steps"); ok {
				s.Steps = steps
			}
			return s, nil
		},
		ExtractData: func(state any) domain.BlockData {
			s := state.(*StepSequenceState)
			steps := make([]any, len(s.Steps))
			for i, step := range s.Steps {
				steps[i] = step
			}
			return domain.BlockData{"steps": steps}
		},
		RenderPreview: func(state any) string {
			s := state.(*StepSequenceState)
			var b strings.Builder
			b.WriteString(`<ol class="block-steps">`)
			for _, step := range s.Steps {
				b.WriteString("<li>")
				b.WriteString(html.EscapeString(step))
				b.WriteString("</li>")
			}
			b.WriteString("</ol>")
			return b.String()
		},
	}
}

// ── worked-example ─────────────────────────────────────────

type WorkedExampleState struct {
	Problem  string
	Solution string
	Answer   string
}

func workedExampleDescriptor() Descriptor {
	return Descriptor{
		CreateDefault: func(initial domain.BlockData) (any, error) {
			return populateWorkedExample(&WorkedExampleState{}, initial)
		},
		Populate: func(state any, data domain.BlockData) (any, error) {
			return populateWorkedExample(state.(*WorkedExampleState), data)
		},
		ExtractData: func(state any) domain.BlockData {
			s := state.(*WorkedExampleState)
			return domain.BlockData{"problem": s.Problem, "solution": s.Solution, "answer": s.Answer}
		},
		RenderPreview: func(state any) string {
			s := state.(*WorkedExampleState)
			return fmt.Sprintf(
				`<div class="block-worked-example"><p class="problem">%s</p><p class="solution">%s</p><p class="answer">%s</p></div>`,
				html.EscapeString(s.Problem), html.EscapeString(s.Solution), html.EscapeString(s.Answer))
		},
	}
}

func populateWorkedExample(s *WorkedExampleState, data domain.BlockData) (*WorkedExampleState, error) {
	if v, ok := stringField(data, "problem"); ok {
		s.Problem = v
	}
	if v, ok := stringField(data, "solution"); ok {
		s.Solution = v
	}
	if v, ok := stringField(data, "answer"); ok {
		s.Answer = v
	}
	return s, nil
}

// ── memory-trick ───────────────────────────────────────────

type MemoryTrickState struct {
	Text string
}

func memoryTrickDescriptor() Descriptor {
	return Descriptor{
		CreateDefault: func(initial domain.BlockData) (any, error) {
			s := &MemoryTrickState{}
			if t, ok := stringField(initial, "text"); ok {
				s.Text = t
			}
			return s, nil
		},
		Populate: func(state any, data domain.BlockData) (any, error) {
			s := state.(*MemoryTrickState)
			if t, ok := stringField(data, "text"); ok {
				s.Text = t
			}
			return s, nil
		},
		ExtractData: func(state any) domain.BlockData {
			return domain.BlockData{"text": state.(*MemoryTrickState).Text}
		},
		RenderPreview: func(state any) string {
			return fmt.Sprintf(`<aside class="block-memory-trick">%s</aside>`,
				html.EscapeString(state.(*MemoryTrickState).Text))
		},
	}
}

// ── callout-box ────────────────────────────────────────────

type CalloutState struct {
	Text  string
	Style string // info | tip | warning | important
}

func calloutDescriptor() Descriptor {
	return Descriptor{
		CreateDefault: func(initial domain.BlockData) (any, error) {
			return populateCallout(&CalloutState{Style: "info"}, initial)
		},
		Populate: func(state any, data domain.BlockData) (any, error) {
			return populateCallout(state.(*CalloutState), data)
		},
		ExtractData: func(state any) domain.BlockData {
			s := state.(*CalloutState)
			return domain.BlockData{"text": s.Text, "style": s.Style}
		},
		RenderPreview: func(state any) string {
			s := state.(*CalloutState)
			return fmt.Sprintf(`<div class="block-callout callout-%s">%s</div>`,
				html.EscapeString(s.Style), html.EscapeString(s.Text))
		},
	}
}

// populateCallout validates the whole payload before applying any of it,
// so a rejected update leaves the prior state intact.
func populateCallout(s *CalloutState, data domain.BlockData) (*CalloutState, error) {
	if v, ok := stringField(data, "style"); ok {
		switch v {
		case "info", "tip", "warning", "important":
		default:
			return nil, fmt.Errorf("callout-box: invalid style %q", v)
		}
	}
	out := *s
	if v, ok := stringField(data, "text"); ok {
		out.Text = v
	}
	if v, ok := stringField(data, "style"); ok {
		out.Style = v
	}
	return &out, nil
}

// ── field helpers ──────────────────────────────────────────

func stringField(data domain.BlockData, key string) (string, bool) {
	if data == nil {
		return "", false
	}
	v, ok := data[key].(string)
	return v, ok
}

func stringSliceField(data domain.BlockData, key string) ([]string, bool) {
	if data == nil {
		return nil, false
	}
	raw, ok := data[key].([]any)
	if !ok {
		// Already-typed slices show up from in-process callers.
		if typed, ok := data[key].([]string); ok {
			out := make([]string, len(typed))
			copy(out, typed)
			return out, true
		}
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}
