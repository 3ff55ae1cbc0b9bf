package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/enzedonline/enzedonline-sub000/internal/layout"
	"github.com/enzedonline/enzedonline-sub000/internal/menus"
	"github.com/enzedonline/enzedonline-sub000/internal/pages"
	"github.com/enzedonline/enzedonline-sub000/internal/tags"
)

type errorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message,omitempty"`
	Issues  []layout.Issue `json:"issues,omitempty"`
	Fields  any            `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// writeRawJSON writes an already encoded body, e.g. a cached fragment.
func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	if errors.Is(err, menus.ErrMenuNotFound) || errors.Is(err, tags.ErrTagNotFound) || errors.Is(err, pages.ErrPageNotFound) {
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	}

	var schemaErr *layout.SchemaError
	if errors.As(err, &schemaErr) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "schema_invalid",
			Message: "layout document does not match the schema",
			Issues:  schemaErr.Issues,
		}
	}

	var layoutErr *layout.ValidationError
	if errors.As(err, &layoutErr) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation_failed",
			Message: "layout document has invalid settings",
			Fields:  layoutErr.Fields,
		}
	}

	if errors.Is(err, errBadRequest) {
		return http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()}
	}

	return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()}
}

var errBadRequest = errors.New("bad request")
