package routes

import (
	"errors"
	"strings"

	"github.com/JaimeStill/vetter/pkg/openapi"
)

// Describe adds every documented route in groups to spec. Routes without
// an OpenAPI operation are skipped. Operations without an OperationID get
// one derived from the group and route.
func Describe(spec *openapi.Spec, groups ...Group) error {
	var errs []error
	for _, group := range groups {
		group.walk("", func(prefix string, r Route) {
			if r.OpenAPI == nil {
				return
			}
			if r.OpenAPI.OperationID == "" {
				r.OpenAPI.OperationID = operationID(r.Method, prefix+r.Pattern)
			}
			if err := spec.AddOperation(r.Method, prefix+r.Pattern, r.OpenAPI); err != nil {
				errs = append(errs, err)
			}
		})
	}
	return errors.Join(errs...)
}

// operationID turns "POST", "/eligibility/classify/batch" into
// "postEligibilityClassifyBatch". Path parameters become "By" segments.
func operationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for seg := range strings.SplitSeq(path, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") {
			b.WriteString("By")
			seg = strings.Trim(seg, "{}")
		}
		for part := range strings.SplitSeq(seg, "-") {
			if part == "" {
				continue
			}
			b.WriteString(strings.ToUpper(part[:1]))
			b.WriteString(part[1:])
		}
	}
	return b.String()
}
