package routes_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/vetter/pkg/openapi"
	"github.com/JaimeStill/vetter/pkg/routes"
)

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

func outcomeGroup() routes.Group {
	return routes.Group{
		Prefix: "/outcomes",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: status(http.StatusOK)},
			{Method: "GET", Pattern: "/{id}", Handler: status(http.StatusOK)},
			{Method: "POST", Pattern: "/search", Handler: status(http.StatusAccepted)},
		},
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, outcomeGroup())

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"list", "GET", "/outcomes", http.StatusOK},
		{"find", "GET", "/outcomes/123", http.StatusOK},
		{"search", "POST", "/outcomes/search", http.StatusAccepted},
		{"wrong method", "DELETE", "/outcomes/123", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestNestedGroups(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, routes.Group{
		Prefix: "/eligibility",
		Children: []routes.Group{
			{
				Prefix: "/classify",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/batch", Handler: status(http.StatusOK)},
				},
			},
		},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/eligibility/classify/batch", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("nested route: got %d, want 200", rec.Code)
	}
}

func TestPatterns(t *testing.T) {
	got := routes.Patterns(outcomeGroup(), routes.Group{
		Prefix:   "/eligibility",
		Children: []routes.Group{{Prefix: "/catalog", Routes: []routes.Route{{Method: "GET", Handler: status(200)}}}},
	})

	want := []string{
		"GET /outcomes",
		"GET /outcomes/{id}",
		"POST /outcomes/search",
		"GET /eligibility/catalog",
	}
	if !slices.Equal(got, want) {
		t.Errorf("patterns: got %v, want %v", got, want)
	}
}

func TestDescribe(t *testing.T) {
	list := &openapi.Operation{Summary: "List outcomes"}
	search := &openapi.Operation{Summary: "Search outcomes"}

	group := outcomeGroup()
	group.Routes[0].OpenAPI = list
	group.Routes[2].OpenAPI = search

	spec := openapi.NewSpec("Test", "1.0.0")
	if err := routes.Describe(spec, group); err != nil {
		t.Fatalf("describe failed: %v", err)
	}

	if len(spec.Paths) != 2 {
		t.Fatalf("paths: got %d, want 2", len(spec.Paths))
	}
	if spec.Paths["/outcomes"].Get != list {
		t.Error("GET /outcomes not documented")
	}
	if spec.Paths["/outcomes/search"].Post != search {
		t.Error("POST /outcomes/search not documented")
	}
	if _, ok := spec.Paths["/outcomes/{id}"]; ok {
		t.Error("undocumented route should be skipped")
	}
	if list.OperationID != "getOutcomes" {
		t.Errorf("operation id: got %q, want getOutcomes", list.OperationID)
	}
	if search.OperationID != "postOutcomesSearch" {
		t.Errorf("operation id: got %q, want postOutcomesSearch", search.OperationID)
	}
}

func TestDescribeDuplicate(t *testing.T) {
	group := outcomeGroup()
	for i := range group.Routes {
		group.Routes[i].OpenAPI = &openapi.Operation{}
	}

	spec := openapi.NewSpec("Test", "1.0.0")
	if err := routes.Describe(spec, group, group); err == nil {
		t.Error("describing the same routes twice should fail")
	}
}
