package eligibility

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/vetter/pkg/handlers"
	"github.com/JaimeStill/vetter/pkg/routes"
)

// Handler provides HTTP endpoints for eligibility decisions.
type Handler struct {
	sys     System
	logger  *slog.Logger
	maxBody int64
}

// NewHandler creates a Handler. maxBody limits request bodies; zero disables the limit.
func NewHandler(sys System, logger *slog.Logger, maxBody int64) *Handler {
	return &Handler{
		sys:     sys,
		logger:  logger.With("handler", "eligibility"),
		maxBody: maxBody,
	}
}

// Routes returns the route group definition for eligibility endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/eligibility",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/classify", Handler: h.Classify, OpenAPI: Spec.Classify},
			{Method: "POST", Pattern: "/classify/batch", Handler: h.ClassifyBatch, OpenAPI: Spec.ClassifyBatch},
			{Method: "POST", Pattern: "/respond", Handler: h.Respond, OpenAPI: Spec.Respond},
			{Method: "GET", Pattern: "/catalog", Handler: h.Catalog, OpenAPI: Spec.Catalog},
		},
	}
}

// Classify evaluates a single submission.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if err := handlers.DecodeJSON(w, r, h.maxBody, &sub); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	res, err := h.sys.Classify(r.Context(), sub)
	h.respond(w, res, err)
}

// Respond evaluates the follow-up for a pending submission. The decision is
// accepted or rejected.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	var req RespondRequest
	if err := handlers.DecodeJSON(w, r, h.maxBody, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	res, err := h.sys.Respond(r.Context(), req)
	h.respond(w, res, err)
}

// ClassifyBatch evaluates a JSON array of submissions.
func (h *Handler) ClassifyBatch(w http.ResponseWriter, r *http.Request) {
	var subs []Submission
	if err := handlers.DecodeJSON(w, r, h.maxBody, &subs); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	items, err := h.sys.ClassifyBatch(r.Context(), subs)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// Catalog returns the active rule catalog.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Catalog())
}

func (h *Handler) respond(w http.ResponseWriter, res *Result, err error) {
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if f, ok := res.Decision.(Failed); ok {
		handlers.RespondJSON(w, MapHTTPStatus(f.Cause), map[string]string{"error": Cause(f.Cause).Error()})
		return
	}

	handlers.RespondJSON(w, http.StatusOK, res)
}
