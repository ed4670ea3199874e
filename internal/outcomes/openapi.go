package outcomes

import "github.com/JaimeStill/vetter/pkg/openapi"

type spec struct {
	List   *openapi.Operation
	Find   *openapi.Operation
	Search *openapi.Operation
}

// Spec documents the outcome query endpoints.
var Spec = spec{
	List: &openapi.Operation{
		Summary: "List accepted outcomes",
		Tags:    []string{"Outcomes"},
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Search product and company names", false),
			openapi.QueryParam("sort", "string", "Sort fields, e.g. -created_at", false),
			openapi.QueryParam("category", "string", "Category filter", false),
			openapi.QueryParam("decision", "string", "Decision filter", false),
			openapi.QueryParam("company_name", "string", "Company name filter", false),
			openapi.QueryParam("catalog_version", "string", "Catalog version filter", false),
			openapi.QueryParamSchema("since", openapi.DateTime(), "Recorded at or after (RFC 3339)", false),
			openapi.QueryParamSchema("until", openapi.DateTime(), "Recorded before (RFC 3339)", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of outcomes", "OutcomePage"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find an outcome",
		Tags:       []string{"Outcomes"},
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Outcome ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Outcome", "Outcome"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Search: &openapi.Operation{
		Summary:     "Search outcomes",
		Tags:        []string{"Outcomes"},
		RequestBody: openapi.RequestBodyJSON("OutcomeSearch", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of outcomes", "OutcomePage"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
}

// Schemas returns the component schemas referenced by Spec.
func (spec) Schemas() map[string]*openapi.Schema {
	str := openapi.String
	strs := openapi.StringArray
	integer := openapi.Integer

	return map[string]*openapi.Schema{
		"Outcome": openapi.Object(map[string]*openapi.Schema{
			"id":                       openapi.UUID(),
			"category":                 str(),
			"sub_categories":           strs(),
			"product_name":             str(),
			"company_name":             str(),
			"location":                 str(),
			"certifications":           strs(),
			"decision":                 openapi.Enum(DecisionAccepted),
			"reason":                   str(),
			"suggested_certifications": strs(),
			"transcript": openapi.ArrayOf(openapi.Object(map[string]*openapi.Schema{
				"question": str(),
				"answer":   str(),
			})),
			"catalog_version": str(),
			"provider_name":   str(),
			"model_name":      str(),
			"created_at":      openapi.DateTime(),
		}),
		"OutcomePage": openapi.Object(map[string]*openapi.Schema{
			"data":        openapi.ArrayOf(openapi.SchemaRef("Outcome")),
			"total":       integer(),
			"page":        integer(),
			"page_size":   integer(),
			"total_pages": integer(),
		}),
		"OutcomeSearch": openapi.Object(map[string]*openapi.Schema{
			"page":            integer(),
			"page_size":       integer(),
			"search":          str(),
			"sort":            str(),
			"category":        str(),
			"decision":        str(),
			"company_name":    str(),
			"catalog_version": str(),
			"since":           openapi.DateTime(),
			"until":           openapi.DateTime(),
		}),
	}
}
