package operations

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/goliatone/go-fusionauth/core"
)

func TestParams_Accessors(t *testing.T) {
	p := Params{
		"id":      "  u1 ",
		"number":  json.Number("42"),
		"flag":    "true",
		"zero":    0,
		"nested":  `{"firstName":"Jane"}`,
		"list":    "a, b,,c",
		"anyList": []any{"x", nil, "y"},
		"off":     false,
	}
	if p.String("id") != "u1" || p.String("number") != "42" || p.String("missing") != "" {
		t.Fatalf("unexpected string accessors")
	}
	if !p.Bool("flag") || p.Bool("off") || !p.BoolDefault("missing", true) {
		t.Fatalf("unexpected bool accessors")
	}
	if p.Int("number", 0) != 42 || p.Int("missing", 7) != 7 {
		t.Fatalf("unexpected int accessors")
	}
	if p.Map("nested").String("firstName") != "Jane" || len(p.Map("id")) != 0 {
		t.Fatalf("unexpected map accessor")
	}
	if !reflect.DeepEqual(p.StringSlice("list"), []string{"a", "b", "c"}) {
		t.Fatalf("unexpected list %v", p.StringSlice("list"))
	}
	if !reflect.DeepEqual(p.StringSlice("anyList"), []string{"x", "y"}) {
		t.Fatalf("unexpected any list %v", p.StringSlice("anyList"))
	}
	if !p.Has("off") || p.Truthy("off") || p.Truthy("zero") || !p.Truthy("id") {
		t.Fatalf("unexpected presence checks")
	}
	if _, err := p.Required("missing"); err == nil {
		t.Fatalf("expected required error")
	}
}

func TestCopyHelpers(t *testing.T) {
	src := Params{"name": "", "active": false, "roles": "a,b", "data": `[1,2]`}
	dst := map[string]any{}
	copyTruthy(dst, src, "name")
	copyDefined(dst, src, "active", "missing")
	copyList(dst, src, "roles")
	if err := copyJSON(dst, src, "data"); err != nil {
		t.Fatalf("copy json: %v", err)
	}
	want := map[string]any{
		"active": false,
		"roles":  []string{"a", "b"},
		"data":   []any{float64(1), float64(2)},
	}
	if !reflect.DeepEqual(dst, want) {
		t.Fatalf("unexpected copy result %#v", dst)
	}
}

func TestParams_ObjectRejectsInvalidJSON(t *testing.T) {
	p := Params{"good": `{"a":1}`, "bad": `{"a":`, "list": `[1,2]`, "blank": " "}
	if got, err := p.Object("good"); err != nil || got["a"] != float64(1) {
		t.Fatalf("expected decoded object, got %#v (%v)", got, err)
	}
	for _, key := range []string{"bad", "list"} {
		if _, err := p.Object(key); core.ErrorMessage(err) != "Invalid JSON format" {
			t.Fatalf("expected %q to be rejected as invalid JSON, got %v", key, err)
		}
	}
	if got, err := p.Object("blank"); err != nil || len(got) != 0 {
		t.Fatalf("expected blank string to be empty, got %#v (%v)", got, err)
	}
	if got, err := p.Object("missing"); err != nil || len(got) != 0 {
		t.Fatalf("expected missing key to be empty, got %#v (%v)", got, err)
	}
	if len(p.Map("bad")) != 0 {
		t.Fatalf("expected Map to stay lenient")
	}
}
