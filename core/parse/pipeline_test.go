package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/leofalp/mirror/providers/observability/slogobs"
)

var cameraSchema = NewSchema("camera",
	StringField("model_name").Require(),
	StringField("manufacturer").Require(),
	IntegerField("release_year"),
	ObjectListField("notable_reviews",
		StringField("author_publication").Require(),
		StringField("url"),
	),
	ObjectField("pricing", NumberField("msrp")),
)

func TestExtract_FencedWithSeparatorsIsSuccess(t *testing.T) {
	raw := "```json\n{\"model_name\": \"Alpha 7\", \"manufacturer\": \"Sony\", \"release_year\": 2_023,}\n```"
	outcome := Extract(raw, cameraSchema)

	success, ok := outcome.(*Success)
	if !ok {
		t.Fatalf("outcome = %#v, want *Success", outcome)
	}
	year, _ := success.Record.Get("release_year")
	if year != json.Number("2023") {
		t.Errorf("release_year = %#v, want 2023", year)
	}
	if success.Raw != raw {
		t.Errorf("Raw = %q, want input unchanged", success.Raw)
	}
}

func TestExtract_TruncatedIsPartialSuccess(t *testing.T) {
	raw := `{"model_name": "X100", "manufacturer": "Fujifilm", "notable_reviews": [{"url": "https:`
	outcome := Extract(raw, cameraSchema)

	partial, ok := outcome.(*PartialSuccess)
	if !ok {
		t.Fatalf("outcome = %#v, want *PartialSuccess", outcome)
	}
	if partial.Warning != WarningPartialParse {
		t.Errorf("Warning = %q, want %q", partial.Warning, WarningPartialParse)
	}
	want := `{"model_name":"X100","manufacturer":"Fujifilm","release_year":null,"notable_reviews":[],"pricing":{"msrp":null}}`
	if diff := cmp.Diff(want, mustJSON(t, partial.Record)); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
	if partial.Salvaged.Found != 2 {
		t.Errorf("Salvaged.Found = %d, want 2", partial.Salvaged.Found)
	}
	if partial.Raw != raw {
		t.Errorf("Raw = %q, want input unchanged", partial.Raw)
	}
}

func TestExtract_DeclaredErrorIsFailure(t *testing.T) {
	raw := `{"error": {"message": "not found"}}`
	failure, ok := Extract(raw, cameraSchema).(*Failure)
	if !ok {
		t.Fatal("want *Failure")
	}
	if failure.Kind != KindUpstreamDeclaredError {
		t.Errorf("Kind = %s, want %s", failure.Kind, KindUpstreamDeclaredError)
	}
	if failure.Declared == nil || failure.Declared.Message != "not found" {
		t.Errorf("Declared = %+v, want message %q", failure.Declared, "not found")
	}
	if failure.Raw != raw {
		t.Errorf("Raw = %q", failure.Raw)
	}
}

func TestExtract_DeclaredErrorWinsOverValidFields(t *testing.T) {
	raw := `{"model_name": "Alpha 7", "manufacturer": "Sony", "error": "unsure"}`
	failure, ok := Extract(raw, cameraSchema).(*Failure)
	if !ok || failure.Kind != KindUpstreamDeclaredError {
		t.Fatalf("outcome = %v, want upstream declared error", failure)
	}
}

func TestExtract_SalvageIgnoresNestedKeys(t *testing.T) {
	raw := `{"model_name": "X100V", "manufacturer": "Fujifilm", "notable_reviews": [{"manufacturer": "Ricoh", "author_publication": "DPReview", "tags": ["a"]}], "pricing": {"msrp": 1399, "note": "https:`
	partial, ok := Extract(raw, cameraSchema).(*PartialSuccess)
	if !ok {
		t.Fatal("want *PartialSuccess")
	}
	if got, _ := partial.Record.Get("manufacturer"); got != "Fujifilm" {
		t.Errorf("manufacturer = %#v, want Fujifilm", got)
	}
	if partial.Salvaged.Fields.Has("author_publication") {
		t.Error("nested key lifted to the top level")
	}
}

func TestExtract_URLInLeadingProse(t *testing.T) {
	raw := `Source: https://example.com {"model_name": "Alpha 7", "manufacturer": "Sony"}`
	success, ok := Extract(raw, cameraSchema).(*Success)
	if !ok {
		t.Fatalf("outcome = %#v, want *Success", Extract(raw, cameraSchema))
	}
	if got, _ := success.Record.Get("manufacturer"); got != "Sony" {
		t.Errorf("manufacturer = %#v, want Sony", got)
	}
}

func TestExtract_DeclaredErrorInSalvagedText(t *testing.T) {
	raw := `{"error": {"message": "not found", "suggestions": ["a"]}, "similar_models": [`
	failure, ok := Extract(raw, cameraSchema).(*Failure)
	if !ok || failure.Kind != KindUpstreamDeclaredError {
		t.Fatalf("outcome = %v, want upstream declared error", failure)
	}
	if failure.Salvage == nil {
		t.Error("Salvage = nil, want the salvaged pairs attached")
	}
}

func TestExtract_ProseIsMalformed(t *testing.T) {
	raw := `"this is not json at all"`
	failure, ok := Extract(raw, cameraSchema).(*Failure)
	if !ok {
		t.Fatal("want *Failure")
	}
	if failure.Kind != KindMalformedInput {
		t.Errorf("Kind = %s, want %s", failure.Kind, KindMalformedInput)
	}
	if failure.Raw != raw {
		t.Errorf("Raw = %q", failure.Raw)
	}
	var syntaxErr *SyntaxError
	if !errors.As(failure, &syntaxErr) {
		t.Errorf("Cause = %v, want *SyntaxError", failure.Cause)
	}
}

func TestExtract_MissingManufacturer(t *testing.T) {
	failure, ok := Extract(`{"model_name": "Alpha 7", "release_year": 2013}`, cameraSchema).(*Failure)
	if !ok {
		t.Fatal("want *Failure")
	}
	if failure.Kind != KindMissingRequiredField {
		t.Errorf("Kind = %s, want %s", failure.Kind, KindMissingRequiredField)
	}
	if diff := cmp.Diff([]string{"manufacturer"}, failure.Fields); diff != "" {
		t.Errorf("Fields mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_RequiredGateAppliesToSalvage(t *testing.T) {
	raw := `{"model_name": "Alpha 7", "release_year": 2013, "notable_reviews": [{`
	failure, ok := Extract(raw, cameraSchema).(*Failure)
	if !ok || failure.Kind != KindMissingRequiredField {
		t.Fatalf("outcome = %v, want missing required field", failure)
	}
}

func TestExtract_TooDeepIsMalformed(t *testing.T) {
	raw := `{"a": ` + strings.Repeat("[", MaxDepth+10) + strings.Repeat("]", MaxDepth+10) + `}`
	failure, ok := Extract(raw, cameraSchema).(*Failure)
	if !ok || failure.Kind != KindMalformedInput {
		t.Fatalf("outcome = %v, want malformed input", failure)
	}
	if !errors.Is(failure, ErrTooDeep) {
		t.Errorf("Cause = %v, want ErrTooDeep", failure.Cause)
	}
}

func TestExtract_SuccessCarriesAllFields(t *testing.T) {
	raw := `Sure! {"model_name": "Q3", "manufacturer": "Leica", "notable_reviews": [
		{"author_publication": "DPReview", "url": "https://dpreview.com/q3"},
		{"url": "https://example.com"}
	]} Enjoy.`
	success, ok := Extract(raw, cameraSchema).(*Success)
	if !ok {
		t.Fatal("want *Success")
	}
	for _, f := range cameraSchema.Fields {
		if !success.Record.Has(f.Name) {
			t.Errorf("field %q missing", f.Name)
		}
	}
	reviews, _ := success.Record.Get("notable_reviews")
	if n := len(reviews.([]any)); n != 1 {
		t.Errorf("len(notable_reviews) = %d, want 1", n)
	}
	if len(success.Notes) != 1 {
		t.Errorf("Notes = %v, want one dropped review", success.Notes)
	}
}

func TestOutcome_MarshalJSON(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantStatus string
		wantKeys   []string
	}{
		{name: "success", raw: `{"model_name": "a", "manufacturer": "b"}`, wantStatus: "success", wantKeys: []string{"record", "raw"}},
		{name: "partial", raw: `{"model_name": "a", "manufacturer": "b", "x": [{`, wantStatus: "partial_success", wantKeys: []string{"record", "warning", "salvaged", "raw"}},
		{name: "failure", raw: `nope`, wantStatus: "failure", wantKeys: []string{"kind", "message", "raw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(Extract(tt.raw, cameraSchema))
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			var decoded map[string]any
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if decoded["status"] != tt.wantStatus {
				t.Errorf("status = %v, want %s", decoded["status"], tt.wantStatus)
			}
			for _, key := range tt.wantKeys {
				if _, ok := decoded[key]; !ok {
					t.Errorf("key %q missing from %s", key, data)
				}
			}
			if decoded["raw"] != tt.raw {
				t.Errorf("raw = %v, want %q", decoded["raw"], tt.raw)
			}
		})
	}
}

func TestExtract_WithObserver(t *testing.T) {
	var buf bytes.Buffer
	observer := slogobs.New(
		slogobs.WithFormat(slogobs.FormatJSON),
		slogobs.WithLevel(slog.LevelDebug),
		slogobs.WithOutput(&buf),
	)

	Extract(`{"model_name": "X100", "manufacturer": "Fujifilm", "x": [{`, cameraSchema, WithObserver(observer))

	out := buf.String()
	for _, want := range []string{`"parse.extract"`, `"partial_success"`, `"salvage_attempted"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}
