package openapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/vetter/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec("Vetter API", "0.1.0")
	spec.AddServer("/api")
	spec.SetDescription("eligibility")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Vetter API" || spec.Info.Version != "0.1.0" {
		t.Errorf("info: got %+v", spec.Info)
	}
	if spec.Info.Description != "eligibility" {
		t.Errorf("description: got %s", spec.Info.Description)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "/api" {
		t.Errorf("servers: got %+v", spec.Servers)
	}
	if spec.Components == nil || spec.Paths == nil {
		t.Fatal("components and paths should be initialized")
	}
}

func TestRefs(t *testing.T) {
	if got := openapi.SchemaRef("Outcome").Ref; got != "#/components/schemas/Outcome" {
		t.Errorf("schema ref: got %s", got)
	}
	if got := openapi.ResponseRef("BadGateway").Ref; got != "#/components/responses/BadGateway" {
		t.Errorf("response ref: got %s", got)
	}

	rb := openapi.RequestBodyJSON("Submission", true)
	if !rb.Required || rb.Content["application/json"].Schema.Ref != "#/components/schemas/Submission" {
		t.Errorf("request body: got %+v", rb)
	}

	resp := openapi.ResponseJSON("Decision", "Decision")
	if resp.Description != "Decision" || resp.Content["application/json"].Schema.Ref != "#/components/schemas/Decision" {
		t.Errorf("response: got %+v", resp)
	}
}

func TestParams(t *testing.T) {
	p := openapi.PathParam("id", "Outcome ID")
	if p.In != "path" || !p.Required || p.Schema.Format != "uuid" {
		t.Errorf("path param: got %+v", p)
	}

	q := openapi.QueryParam("category", "string", "Category filter", false)
	if q.In != "query" || q.Required || q.Schema.Type != "string" {
		t.Errorf("query param: got %+v", q)
	}
}

func TestComponents(t *testing.T) {
	c := openapi.NewComponents()

	for _, name := range []string{"BadRequest", "NotFound", "Conflict", "BadGateway", "InternalError"} {
		if _, ok := c.Responses[name]; !ok {
			t.Errorf("missing default response: %s", name)
		}
	}

	c.AddSchemas(map[string]*openapi.Schema{"Outcome": {Type: "object"}})
	c.AddResponses(map[string]*openapi.Response{"Unavailable": {Description: "Not ready"}})

	if _, ok := c.Schemas["Outcome"]; !ok {
		t.Error("Outcome schema not added")
	}
	if _, ok := c.Schemas["PageRequest"]; !ok {
		t.Error("default PageRequest schema should still exist")
	}
	if _, ok := c.Responses["Unavailable"]; !ok {
		t.Error("Unavailable response not added")
	}
}

func TestServeSpec(t *testing.T) {
	data, err := openapi.MarshalJSON(openapi.NewSpec("Test", "1.0.0"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type: got %s", ct)
	}

	body, _ := io.ReadAll(res.Body)
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("body unmarshal failed: %v", err)
	}
	if parsed["openapi"] != "3.1.0" {
		t.Errorf("openapi: got %v", parsed["openapi"])
	}

	etag := res.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest("GET", "/openapi.json", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, req)

	if rec.Code != http.StatusNotModified {
		t.Errorf("conditional status: got %d, want 304", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Error("304 should not carry a body")
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	classify := &openapi.Operation{Summary: "classify"}

	if err := spec.AddOperation("POST", "/eligibility/classify", classify); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if spec.Paths["/eligibility/classify"].Post != classify {
		t.Error("operation not stored under POST")
	}

	if err := spec.AddOperation("POST", "/eligibility/classify", &openapi.Operation{}); err == nil {
		t.Error("duplicate operation should fail")
	}
	if err := spec.AddOperation("TRACE", "/eligibility/classify", &openapi.Operation{}); err == nil {
		t.Error("unsupported method should fail")
	}
}

func TestAddTag(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	spec.AddTag("Outcomes", "first")
	spec.AddTag("Outcomes", "second")
	spec.AddTag("Eligibility", "")

	if len(spec.Tags) != 2 {
		t.Fatalf("tags: got %d, want 2", len(spec.Tags))
	}
	if spec.Tags[0].Description != "first" {
		t.Errorf("tag description: got %q, want first", spec.Tags[0].Description)
	}
}

func TestSchemaHelpers(t *testing.T) {
	type decision string

	e := openapi.Enum[decision]("accepted", "rejected")
	if e.Type != "string" || len(e.Enum) != 2 || e.Enum[0] != "accepted" {
		t.Errorf("enum: got %+v", e)
	}

	arr := openapi.ArrayOf(openapi.SchemaRef("Outcome"))
	if arr.Type != "array" || arr.Items.Ref != "#/components/schemas/Outcome" {
		t.Errorf("array: got %+v", arr)
	}

	obj := openapi.Object(map[string]*openapi.Schema{"id": openapi.UUID()}, "id")
	if obj.Type != "object" || len(obj.Required) != 1 || obj.Properties["id"].Format != "uuid" {
		t.Errorf("object: got %+v", obj)
	}

	if openapi.DateTime().Format != "date-time" {
		t.Error("date-time format")
	}

	body := openapi.RequestBodySchema(openapi.StringArray(), true)
	if body.Content["application/json"].Schema.Items.Type != "string" {
		t.Errorf("request body schema: got %+v", body)
	}
}

func TestConfig(t *testing.T) {
	cfg := openapi.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Title != "Vetter API" {
		t.Errorf("title: got %s, want Vetter API", cfg.Title)
	}
	if cfg.Path != "/openapi.json" {
		t.Errorf("path: got %s, want /openapi.json", cfg.Path)
	}

	t.Setenv("TEST_TITLE", "Custom API")
	env := &openapi.ConfigEnv{Title: "TEST_TITLE"}

	cfg = openapi.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Title != "Custom API" {
		t.Errorf("title: got %s, want Custom API", cfg.Title)
	}

	bad := openapi.Config{Path: "openapi.json"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("relative path should fail validation")
	}

	cfg.Merge(&openapi.Config{Description: "Overlay"})
	if cfg.Description != "Overlay" || cfg.Title != "Custom API" {
		t.Errorf("merge: got %+v", cfg)
	}
}
