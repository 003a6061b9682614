package parse

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseStrict_Values(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "object", input: `{"a": 1, "b": [true, null, "x"]}`, want: `{"a":1,"b":[true,null,"x"]}`},
		{name: "key order preserved", input: `{"z": 1, "a": 2, "m": 3}`, want: `{"z":1,"a":2,"m":3}`},
		{name: "duplicate keeps first position and last value", input: `{"b": 1, "a": 2, "b": 3}`, want: `{"b":3,"a":2}`},
		{name: "number precision kept", input: `{"n": 12345678901234567890}`, want: `{"n":12345678901234567890}`},
		{name: "nested empty containers", input: `{"a": {}, "b": []}`, want: `{"a":{},"b":[]}`},
		{name: "top-level array", input: ` [1, 2] `, want: `[1,2]`},
		{name: "top-level string", input: `"hi"`, want: `"hi"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStrict(tt.input)
			if err != nil {
				t.Fatalf("ParseStrict(%q) error = %v", tt.input, err)
			}
			if diff := cmp.Diff(tt.want, mustJSON(t, got)); diff != "" {
				t.Errorf("ParseStrict(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParseStrict_NumbersAreJSONNumbers(t *testing.T) {
	got, err := ParseStrict(`{"year": 2023}`)
	if err != nil {
		t.Fatalf("ParseStrict() error = %v", err)
	}
	year, _ := got.(*Object).Get("year")
	if year != json.Number("2023") {
		t.Errorf("year = %#v, want json.Number(\"2023\")", year)
	}
}

func TestParseStrict_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "trailing comma", input: `{"a": 1,}`},
		{name: "comment", input: `{"a": 1 // c
}`},
		{name: "unquoted key", input: `{a: 1}`},
		{name: "single quotes", input: `{'a': 1}`},
		{name: "leading plus", input: `{"a": +1}`},
		{name: "digit separator", input: `{"a": 1_000}`},
		{name: "truncated", input: `{"a": [1, 2`},
		{name: "trailing data", input: `{"a": 1} {"b": 2}`},
		{name: "trailing garbage", input: `{"a": 1} x`},
		{name: "raw newline in string", input: "{\"a\": \"x\ny\"}"},
		{name: "prose", input: `this is not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStrict(tt.input)
			if err == nil {
				t.Fatalf("ParseStrict(%q) expected error", tt.input)
			}
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("error type = %T, want *SyntaxError", err)
			}
			if syntaxErr.Reason == "" {
				t.Error("SyntaxError.Reason is empty")
			}
		})
	}
}

func TestParseStrict_ErrorOffset(t *testing.T) {
	_, err := ParseStrict(`{"a": tru}`)
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("error = %v, want *SyntaxError", err)
	}
	if syntaxErr.Offset <= 0 || syntaxErr.Offset > int64(len(`{"a": tru}`)) {
		t.Errorf("Offset = %d, want within input", syntaxErr.Offset)
	}
	if !strings.Contains(err.Error(), "offset") {
		t.Errorf("Error() = %q, want offset mentioned", err.Error())
	}
}

func TestParseStrict_Depth(t *testing.T) {
	nested := func(n int) string {
		return strings.Repeat("[", n) + strings.Repeat("]", n)
	}

	if _, err := ParseStrict(nested(MaxDepth)); err != nil {
		t.Errorf("depth %d: unexpected error %v", MaxDepth, err)
	}

	_, err := ParseStrict(nested(MaxDepth + 1))
	if !errors.Is(err, ErrTooDeep) {
		t.Errorf("depth %d: error = %v, want ErrTooDeep", MaxDepth+1, err)
	}

	_, err = ParseStrict(strings.Repeat(`{"a":`, MaxDepth+1) + "1" + strings.Repeat("}", MaxDepth+1))
	if !errors.Is(err, ErrTooDeep) {
		t.Errorf("deep objects: error = %v, want ErrTooDeep", err)
	}
}
