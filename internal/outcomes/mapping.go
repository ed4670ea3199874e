package outcomes

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/JaimeStill/vetter/pkg/query"
	"github.com/JaimeStill/vetter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "outcomes", "o").
	Project("id", "ID").
	Project("category", "Category").
	Project("sub_categories", "SubCategories").
	Project("product_name", "ProductName").
	Project("company_name", "CompanyName").
	Project("location", "Location").
	Project("certifications", "Certifications").
	Project("decision", "Decision").
	Project("reason", "Reason").
	Project("suggested_certifications", "SuggestedCertifications").
	Project("transcript", "Transcript").
	Project("catalog_version", "CatalogVersion").
	Project("provider_name", "ProviderName").
	Project("model_name", "ModelName").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for outcome queries.
// Nil fields are ignored.
type Filters struct {
	Category       *string    `json:"category,omitempty"`
	Decision       *string    `json:"decision,omitempty"`
	CompanyName    *string    `json:"company_name,omitempty"`
	CatalogVersion *string    `json:"catalog_version,omitempty"`
	Since          *time.Time `json:"since,omitempty"`
	Until          *time.Time `json:"until,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.WhereEquals("Category", f.Category).
		WhereEquals("Decision", f.Decision).
		WhereEquals("CompanyName", f.CompanyName).
		WhereEquals("CatalogVersion", f.CatalogVersion)

	if f.Since != nil {
		b.WhereCompare("CreatedAt", ">=", f.Since.UTC())
	}
	if f.Until != nil {
		b.WhereCompare("CreatedAt", "<", f.Until.UTC())
	}
	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Timestamps use RFC 3339; unparseable values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("category"); v != "" {
		f.Category = &v
	}
	if v := values.Get("decision"); v != "" {
		f.Decision = &v
	}
	if v := values.Get("company_name"); v != "" {
		f.CompanyName = &v
	}
	if v := values.Get("catalog_version"); v != "" {
		f.CatalogVersion = &v
	}
	if v := values.Get("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.Since = &t
		}
	}
	if v := values.Get("until"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.Until = &t
		}
	}

	return f
}

func scanOutcome(s repository.Scanner) (Outcome, error) {
	var o Outcome
	var subRaw, certRaw, suggestedRaw, transcriptRaw []byte

	err := s.Scan(
		&o.ID,
		&o.Category,
		&subRaw,
		&o.ProductName,
		&o.CompanyName,
		&o.Location,
		&certRaw,
		&o.Decision,
		&o.Reason,
		&suggestedRaw,
		&transcriptRaw,
		&o.CatalogVersion,
		&o.ProviderName,
		&o.ModelName,
		&o.CreatedAt,
	)
	if err != nil {
		return o, err
	}

	for _, col := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"sub_categories", subRaw, &o.SubCategories},
		{"certifications", certRaw, &o.Certifications},
		{"suggested_certifications", suggestedRaw, &o.SuggestedCertifications},
		{"transcript", transcriptRaw, &o.Transcript},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return o, fmt.Errorf("unmarshal %s: %w", col.name, err)
		}
	}

	if o.SubCategories == nil {
		o.SubCategories = []string{}
	}
	if o.Certifications == nil {
		o.Certifications = []string{}
	}
	if o.SuggestedCertifications == nil {
		o.SuggestedCertifications = []string{}
	}
	if o.Transcript == nil {
		o.Transcript = []Exchange{}
	}
	o.CreatedAt = o.CreatedAt.UTC()

	return o, nil
}

func encodeArrays(cmd RecordCommand) (sub, certs, suggested, transcript []byte, err error) {
	enc := func(v any) []byte {
		if err != nil {
			return nil
		}
		var b []byte
		b, err = json.Marshal(v)
		return b
	}

	sub = enc(nonNil(cmd.SubCategories))
	certs = enc(nonNil(cmd.Certifications))
	suggested = enc(nonNil(cmd.SuggestedCertifications))
	if cmd.Transcript == nil {
		transcript = enc([]Exchange{})
	} else {
		transcript = enc(cmd.Transcript)
	}
	return
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
