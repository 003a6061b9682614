package camera

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/leofalp/mirror/core/parse"
)

const x100 = `{
  "model_name": "X100V",
  "manufacturer": "Fujifilm",
  "release_year": 2020,
  "camera_type": "compact",
  "price": {"launch_price_usd": 1399, "currency": "USD"},
  "notable_reviews": [{"author_publication": "DPReview", "url": "https://www.dpreview.com/x100v"}]
}`

func TestSchema_RequiredPaths(t *testing.T) {
	want := []string{"model_name", "manufacturer"}
	if diff := cmp.Diff(want, Schema.RequiredPaths()); diff != "" {
		t.Errorf("RequiredPaths() mismatch (-want +got):\n%s", diff)
	}
}

func TestSectionNames(t *testing.T) {
	names := SectionNames()
	if len(names) == 0 || names[0] != "positioning" {
		t.Fatalf("SectionNames() = %v, want positioning first", names)
	}
	if names[len(names)-1] != "last_updated" {
		t.Errorf("last section = %q, want last_updated", names[len(names)-1])
	}
	for _, name := range names {
		if scalarColumns[name] {
			t.Errorf("scalar column %q listed as section", name)
		}
	}
}

func TestFromOutcome_Success(t *testing.T) {
	spec, err := FromOutcome(parse.Extract(x100, Schema))
	if err != nil {
		t.Fatalf("FromOutcome() error = %v", err)
	}
	if spec.ModelName != "X100V" || spec.Manufacturer != "Fujifilm" {
		t.Errorf("identity = %q/%q", spec.ModelName, spec.Manufacturer)
	}
	if spec.ReleaseYear == nil || *spec.ReleaseYear != 2020 {
		t.Errorf("ReleaseYear = %v, want 2020", spec.ReleaseYear)
	}
	if spec.CameraType == nil || *spec.CameraType != "compact" {
		t.Errorf("CameraType = %v, want compact", spec.CameraType)
	}
	if spec.UserLevel != nil {
		t.Errorf("UserLevel = %q, want nil", *spec.UserLevel)
	}
	if spec.NeedsReview {
		t.Error("Success should not need review")
	}
	if spec.RawJSON != x100 {
		t.Error("RawJSON should keep the model output")
	}

	var price map[string]any
	if err := json.Unmarshal(spec.Sections["price"], &price); err != nil {
		t.Fatalf("price section: %v", err)
	}
	if price["launch_price_usd"] != float64(1399) {
		t.Errorf("launch_price_usd = %v", price["launch_price_usd"])
	}
	if string(spec.Sections["pros_cons"]) != `{"pros":[],"cons":[]}` {
		t.Errorf("pros_cons = %s, want defaults", spec.Sections["pros_cons"])
	}
	if !strings.Contains(string(spec.Sections["notable_reviews"]), "https://www.dpreview.com/x100v") {
		t.Errorf("notable_reviews = %s", spec.Sections["notable_reviews"])
	}
}

func TestFromOutcome_PartialNeedsReview(t *testing.T) {
	raw := `{"model_name": "X100V", "manufacturer": "Fujifilm", "notable_reviews": [{"url": "https:`
	spec, err := FromOutcome(parse.Extract(raw, Schema))
	if err != nil {
		t.Fatalf("FromOutcome() error = %v", err)
	}
	if !spec.NeedsReview {
		t.Error("PartialSuccess should need review")
	}
	if spec.RawJSON != raw {
		t.Error("RawJSON should keep the model output")
	}
}

func TestFromOutcome_TruncatedKeepsIdentity(t *testing.T) {
	raw := `{"model_name": "X100V", "manufacturer": "Fujifilm", "release_year": 2020,
  "similar_cameras": [{"manufacturer": "Ricoh", "model": "GR III", "reason": "pocketable", "tags": ["apsc"]}],
  "external_links": {"official_product_page": "https://fujifilm-x.com/x100v`
	spec, err := FromOutcome(parse.Extract(raw, Schema))
	if err != nil {
		t.Fatalf("FromOutcome() error = %v", err)
	}
	if spec.ModelName != "X100V" || spec.Manufacturer != "Fujifilm" {
		t.Errorf("identity = %q / %q, want X100V / Fujifilm", spec.ModelName, spec.Manufacturer)
	}
	if !spec.NeedsReview {
		t.Error("salvaged record should need review")
	}
}

func TestFromOutcome_FailureIsError(t *testing.T) {
	_, err := FromOutcome(parse.Extract(`{"error": {"message": "not found"}}`, Schema))
	var failure *parse.Failure
	if !errors.As(err, &failure) {
		t.Fatalf("error = %v, want *parse.Failure", err)
	}
	if failure.Kind != parse.KindUpstreamDeclaredError {
		t.Errorf("Kind = %s", failure.Kind)
	}
}

func TestSpec_MarshalJSONKeepsSchemaOrder(t *testing.T) {
	spec, err := FromOutcome(parse.Extract(x100, Schema))
	if err != nil {
		t.Fatal(err)
	}
	spec.AddAlias("x100 v")
	data, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	tree, err := parse.ParseStrict(string(data))
	if err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	keys := tree.(*parse.Object).Keys()
	if keys[0] != "model_name" || keys[1] != "manufacturer" || keys[2] != "aliases" {
		t.Errorf("leading keys = %v", keys[:3])
	}
	if keys[len(keys)-1] != "needs_review" {
		t.Errorf("last key = %q, want needs_review", keys[len(keys)-1])
	}
	if !strings.Contains(string(data), `"aliases":["x100 v"]`) {
		t.Errorf("aliases missing from %s", data)
	}
}

func TestSpec_AddAlias(t *testing.T) {
	spec := &Spec{ModelName: "EOS R6"}
	spec.AddAlias("R6")
	spec.AddAlias("r6")
	spec.AddAlias("  ")
	spec.AddAlias("eos r6")
	if diff := cmp.Diff([]string{"R6"}, spec.Aliases); diff != "" {
		t.Errorf("Aliases mismatch (-want +got):\n%s", diff)
	}
}
