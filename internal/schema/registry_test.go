package schema

import (
	"testing"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type address struct {
	City string `json:"city" schema:"required"`
	Zip  string `json:"zip" schema:"pattern=^[0-9]{5}$"`
}

type account struct {
	ID        string            `json:"id" schema:"required"`
	Name      string            `json:"name" schema:"maxLength=64"`
	Age       int               `json:"age" schema:"minimum=0"`
	Score     float64           `json:"score"`
	Active    bool              `json:"active"`
	Token     string            `json:"token" schema:"sensitive"`
	Role      string            `json:"role" schema:"enum=admin|member"`
	Tags      []string          `json:"tags" schema:"maxItems=4"`
	Labels    map[string]string `json:"labels"`
	Address   *address          `json:"address"`
	CreatedAt time.Time         `json:"createdAt"`
	internal  string
	Skipped   string            `json:"-"`
}

func TestRegisterBuildsDocument(t *testing.T) {
	r := NewRegistry()
	m, err := r.Register("Account", account{})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	props, ok := m.Doc["properties"].(map[string]any)
	if !ok {
		t.Fatalf("doc has no properties: %v", m.Doc)
	}
	for _, name := range []string{"id", "name", "age", "score", "active", "token", "role", "tags", "labels", "address", "createdAt"} {
		if _, ok := props[name]; !ok {
			t.Errorf("property %q missing from document", name)
		}
	}
	if _, ok := props["Skipped"]; ok {
		t.Error("json:\"-\" field leaked into document")
	}
	if _, ok := props["internal"]; ok {
		t.Error("unexported field leaked into document")
	}

	required, _ := m.Doc["required"].([]any)
	if len(required) != 1 || required[0] != "id" {
		t.Errorf("required = %v, want [id]", required)
	}

	name := props["name"].(map[string]any)
	if name["maxLength"] != float64(64) {
		t.Errorf("name maxLength = %v", name["maxLength"])
	}
	role := props["role"].(map[string]any)
	if enum, _ := role["enum"].([]any); len(enum) != 2 || enum[0] != "admin" {
		t.Errorf("role enum = %v", role["enum"])
	}
	created := props["createdAt"].(map[string]any)
	if created["format"] != "date-time" {
		t.Errorf("createdAt format = %v", created["format"])
	}

	// nested struct is inlined, including its own required list
	addr := props["address"].(map[string]any)
	if addr["type"] != "object" {
		t.Errorf("address type = %v", addr["type"])
	}
	if req, _ := addr["required"].([]any); len(req) != 1 || req[0] != "city" {
		t.Errorf("address required = %v", addr["required"])
	}

	if _, ok := m.Sensitive["token"]; !ok {
		t.Errorf("sensitive set = %v, want token", m.Sensitive)
	}
}

func TestModelValidate(t *testing.T) {
	r := NewRegistry()
	m := r.MustRegister("Account", account{})

	valid := map[string]any{"id": "a-1", "role": "admin", "age": float64(30)}
	if err := m.Validate(valid); err != nil {
		t.Errorf("valid instance rejected: %v", err)
	}

	invalid := map[string]any{"role": "root"}
	err := m.Validate(invalid)
	if err == nil {
		t.Fatal("invalid instance accepted")
	}
	if _, ok := err.(*jsonschema.ValidationError); !ok {
		t.Errorf("expected *jsonschema.ValidationError, got %T", err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("Account", account{}); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := r.Register("Account", account{}); err == nil {
		t.Error("duplicate registration accepted")
	}
}

func TestRegisterRejectsNonStructs(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("Bad", "not a struct"); err == nil {
		t.Error("non-struct prototype accepted")
	}
}

func TestRegisterRejectsBadTags(t *testing.T) {
	type broken struct {
		Field string `json:"field" schema:"sparkle"`
	}
	r := NewRegistry()
	if _, err := r.Register("Broken", broken{}); err == nil {
		t.Error("unknown schema tag option accepted")
	}
}

func TestRegisterRejectsNonStringMapKeys(t *testing.T) {
	type broken struct {
		Counts map[int]string `json:"counts"`
	}
	r := NewRegistry()
	if _, err := r.Register("Broken", broken{}); err == nil {
		t.Error("map with int keys accepted")
	}
}

func TestParseTag(t *testing.T) {
	ft, err := parseTag("required,minLength=1,enum=a|b|c,sensitive,format=email")
	if err != nil {
		t.Fatalf("parseTag failed: %v", err)
	}
	if !ft.Required || !ft.Sensitive {
		t.Errorf("flags = %+v", ft)
	}
	if ft.Constraints["minLength"] != float64(1) {
		t.Errorf("minLength = %v", ft.Constraints["minLength"])
	}
	if enum, _ := ft.Constraints["enum"].([]any); len(enum) != 3 {
		t.Errorf("enum = %v", ft.Constraints["enum"])
	}
	if ft.Constraints["format"] != "email" {
		t.Errorf("format = %v", ft.Constraints["format"])
	}

	if _, err := parseTag("minimum=abc"); err == nil {
		t.Error("non-numeric minimum accepted")
	}
	if _, err := parseTag("required=yes"); err == nil {
		t.Error("required with value accepted")
	}
}

func TestLookupAndNames(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("Account", account{})

	if _, ok := r.Lookup("Account"); !ok {
		t.Error("registered model not found")
	}
	if _, ok := r.Lookup("Nope"); ok {
		t.Error("unregistered model found")
	}
	if names := r.Names(); len(names) != 1 || names[0] != "Account" {
		t.Errorf("Names() = %v", names)
	}
}
