package eligibility

import (
	"github.com/JaimeStill/vetter/internal/catalog"
	"github.com/JaimeStill/vetter/pkg/openapi"
)

type spec struct {
	Classify      *openapi.Operation
	ClassifyBatch *openapi.Operation
	Respond       *openapi.Operation
	Catalog       *openapi.Operation
}

// Spec documents the eligibility endpoints.
var Spec = spec{
	Classify: &openapi.Operation{
		Summary:     "Classify a submission",
		Description: "Runs the deterministic screen and, when undecided, the classifier. A pending decision carries 1-3 questions and, when a session was opened, a clarification_id.",
		Tags:        []string{"Eligibility"},
		RequestBody: openapi.RequestBodyJSON("Submission", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Accepted, rejected, or pending decision", "Decision"),
			400: openapi.ResponseRef("BadRequest"),
			500: openapi.ResponseRef("InternalError"),
			502: openapi.ResponseRef("BadGateway"),
		},
	},
	ClassifyBatch: &openapi.Operation{
		Summary:     "Classify a batch of submissions",
		Description: "Evaluates submissions concurrently. Each item carries its own decision or error.",
		Tags:        []string{"Eligibility"},
		RequestBody: openapi.RequestBodySchema(openapi.ArrayOf(openapi.SchemaRef("Submission")), true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseSchema("Per-item results in request order", openapi.ArrayOf(openapi.SchemaRef("BatchItem"))),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Respond: &openapi.Operation{
		Summary:     "Answer clarifying questions",
		Description: "Evaluates the follow-up stage. The decision is accepted or rejected; a pending classifier response fails.",
		Tags:        []string{"Eligibility"},
		RequestBody: openapi.RequestBodyJSON("RespondRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Accepted or rejected decision", "Decision"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
			502: openapi.ResponseRef("BadGateway"),
		},
	},
	Catalog: &openapi.Operation{
		Summary: "Active rule catalog",
		Tags:    []string{"Eligibility"},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Catalog version, hash, and rules", "CatalogInfo"),
		},
	},
}

// Schemas returns the component schemas referenced by Spec.
func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Submission": openapi.Object(map[string]*openapi.Schema{
			"category":       openapi.Enum(catalog.Categories()...),
			"subCategory":    openapi.StringArray(),
			"productName":    openapi.String(),
			"companyName":    openapi.String(),
			"location":       openapi.String(),
			"certifications": openapi.StringArray(),
		}, "category", "subCategory", "productName"),
		"RespondRequest": openapi.Object(map[string]*openapi.Schema{
			"initialData":     openapi.SchemaRef("Submission"),
			"answers":         openapi.StringArray(),
			"questions":       openapi.StringArray(),
			"clarificationId": openapi.UUID(),
		}, "initialData", "answers"),
		"Decision": openapi.Object(map[string]*openapi.Schema{
			"decision":                 openapi.Enum("accepted", "rejected", "pending"),
			"reason":                   openapi.String(),
			"suggested_certifications": openapi.StringArray(),
			"questions":                openapi.StringArray(),
			"clarification_id":         openapi.UUID(),
			"outcome_id":               openapi.UUID(),
		}),
		"BatchItem": openapi.Object(map[string]*openapi.Schema{
			"index":  openapi.Integer(),
			"result": openapi.SchemaRef("Decision"),
			"error":  openapi.String(),
		}),
		"CatalogInfo": openapi.Object(map[string]*openapi.Schema{
			"version": openapi.String(),
			"hash":    openapi.String(),
			"rules":   {Type: "object"},
		}),
	}
}
