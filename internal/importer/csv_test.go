package importer

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseCSV(t *testing.T) {
	path := writeFile(t, "lesson.csv", `type,text,steps
heading,Fractions,
paragraph,A fraction has two parts.,
step-sequence,,top | bottom
`)
	inputs, err := ParseCSV(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(inputs) != 3 {
		t.Fatalf("got %d inputs", len(inputs))
	}
	if inputs[0].Type != "heading" || inputs[0].Data["text"] != "Fractions" {
		t.Fatalf("input 0 = %+v", inputs[0])
	}
	steps, ok := inputs[2].Data["steps"].([]any)
	if !ok || len(steps) != 2 || steps[0] != "top" || steps[1] != "bottom" {
		t.Fatalf("steps = %v", inputs[2].Data["steps"])
	}
}

func TestParseCSVDataColumn(t *testing.T) {
	path := writeFile(t, "lesson.csv", `type,data
callout-box,"{""text"": ""Remember!"", ""style"": ""tip""}"
`)
	inputs, err := ParseCSV(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(inputs) != 1 {
		t.Fatalf("got %d inputs", len(inputs))
	}
	if inputs[0].Data["text"] != "Remember!" || inputs[0].Data["style"] != "tip" {
		t.Fatalf("data = %+v", inputs[0].Data)
	}
}

func TestParseCSVSkipsBlankRows(t *testing.T) {
	path := writeFile(t, "lesson.csv", `type,text
heading,One

paragraph,Two
,ignored
`)
	inputs, err := ParseCSV(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("got %d inputs: %+v", len(inputs), inputs)
	}
}

func TestParseCSVNoTypeColumn(t *testing.T) {
	path := writeFile(t, "lesson.csv", "text\nhello\n")
	if _, err := ParseCSV(path); err == nil {
		t.Fatal("missing type column accepted")
	}
}

func TestParseJSONBareArray(t *testing.T) {
	path := writeFile(t, "lesson.json", `[
		{"type": "heading", "data": {"text": "Fractions"}},
		{"type": "paragraph", "data": {"text": "hi"}}
	]`)
	inputs, err := ParseJSON(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(inputs) != 2 || inputs[0].Type != "heading" {
		t.Fatalf("inputs = %+v", inputs)
	}
}

func TestParseJSONSerializedDocument(t *testing.T) {
	path := writeFile(t, "lesson.json", `{"blocks": [
		{"type": "heading", "order": 0, "data": {"text": "Fractions"}}
	]}`)
	inputs, err := ParseJSON(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(inputs) != 1 || inputs[0].Data["text"] != "Fractions" {
		t.Fatalf("inputs = %+v", inputs)
	}
}

func TestParseJSONMissingType(t *testing.T) {
	path := writeFile(t, "lesson.json", `[{"data": {"text": "x"}}]`)
	if _, err := ParseJSON(path); err == nil {
		t.Fatal("typeless block accepted")
	}
}

func TestParseFileDispatch(t *testing.T) {
	if _, err := ParseFile("lesson.txt"); err == nil {
		t.Fatal("unsupported extension accepted")
	}
}
