package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/vetter/internal/config"
	"github.com/JaimeStill/vetter/internal/eligibility"
	"github.com/JaimeStill/vetter/internal/outcomes"
	"github.com/JaimeStill/vetter/pkg/openapi"
	"github.com/JaimeStill/vetter/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, cfg *config.Config) error {
	groups := []routes.Group{
		domain.Eligibility.Handler().Routes(),
		domain.Outcomes.Handler().Routes(),
	}
	routes.Register(mux, groups...)

	spec, err := newSpec(cfg, groups...)
	if err != nil {
		return err
	}

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("openapi spec: %w", err)
	}
	mux.HandleFunc("GET "+cfg.API.OpenAPI.Path, openapi.ServeSpec(data))

	return nil
}

func newSpec(cfg *config.Config, groups ...routes.Group) (*openapi.Spec, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)
	spec.AddTag("Eligibility", "Classify submissions and resolve clarifications")
	spec.AddTag("Outcomes", "Query recorded accepted decisions")
	spec.Components.AddSchemas(eligibility.Spec.Schemas())
	spec.Components.AddSchemas(outcomes.Spec.Schemas())

	if err := routes.Describe(spec, groups...); err != nil {
		return nil, fmt.Errorf("openapi spec: %w", err)
	}
	return spec, nil
}
