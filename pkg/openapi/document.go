package openapi

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"slices"
)

// Version is the OpenAPI version emitted by NewSpec.
const Version = "3.1.0"

// Spec is an OpenAPI 3.1 document.
type Spec struct {
	OpenAPI    string               `json:"openapi"`
	Info       *Info                `json:"info"`
	Servers    []*Server            `json:"servers,omitempty"`
	Tags       []*Tag               `json:"tags,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

// NewSpec creates a document with the shared components preloaded.
func NewSpec(title, version string) *Spec {
	return &Spec{
		OpenAPI:    Version,
		Info:       &Info{Title: title, Version: version},
		Paths:      make(map[string]*PathItem),
		Components: NewComponents(),
	}
}

func (s *Spec) AddServer(url string) {
	s.Servers = append(s.Servers, &Server{URL: url})
}

func (s *Spec) SetDescription(desc string) {
	s.Info.Description = desc
}

// AddTag declares a tag once. Later calls with the same name are ignored.
func (s *Spec) AddTag(name, description string) {
	if slices.ContainsFunc(s.Tags, func(t *Tag) bool { return t.Name == name }) {
		return
	}
	s.Tags = append(s.Tags, &Tag{Name: name, Description: description})
}

// AddOperation registers op under path and method. Registering the same
// method and path twice is an error.
func (s *Spec) AddOperation(method, path string, op *Operation) error {
	item, ok := s.Paths[path]
	if !ok {
		item = &PathItem{}
		s.Paths[path] = item
	}

	var slot **Operation
	switch method {
	case http.MethodGet:
		slot = &item.Get
	case http.MethodPut:
		slot = &item.Put
	case http.MethodPost:
		slot = &item.Post
	case http.MethodPatch:
		slot = &item.Patch
	case http.MethodDelete:
		slot = &item.Delete
	default:
		return fmt.Errorf("openapi: unsupported method %q for %s", method, path)
	}

	if *slot != nil {
		return fmt.Errorf("openapi: duplicate operation %s %s", method, path)
	}
	*slot = op
	return nil
}

// ServeSpec serves pre-serialized document bytes with a content-hash ETag,
// answering conditional requests with 304.
func ServeSpec(specBytes []byte) http.HandlerFunc {
	sum := sha256.Sum256(specBytes)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "no-cache")

		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(specBytes)
	}
}
