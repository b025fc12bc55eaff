package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
)

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type tallyResponse struct {
	Yes        int64 `json:"yes"`
	No         int64 `json:"no"`
	Total      int64 `json:"total"`
	YesPercent int   `json:"yes_percent"`
	NoPercent  int   `json:"no_percent"`
}

func newTallyResponse(t domain.Tally) tallyResponse {
	return tallyResponse{
		Yes:        t.Yes,
		No:         t.No,
		Total:      t.Total(),
		YesPercent: t.YesPercent(),
		NoPercent:  t.NoPercent(),
	}
}

func writeJSON(w http.ResponseWriter, log logrus.FieldLogger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

// writeError maps service errors onto status codes. Anything that is not a
// client mistake is logged and reported without detail.
func writeError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, log, http.StatusUnprocessableEntity, errorResponse{
			Message: verr.Error(),
			Errors:  map[string][]string{verr.Field: {verr.Err.Error()}},
		})
	case errors.Is(err, domain.ErrInvalidBody):
		writeJSON(w, log, http.StatusBadRequest, errorResponse{Message: err.Error()})
	default:
		log.WithError(err).Error("request failed")
		writeJSON(w, log, http.StatusInternalServerError, errorResponse{Message: domain.ErrInternal.Error()})
	}
}

func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func wantsJSON(r *http.Request) bool {
	return isJSONRequest(r) || strings.Contains(r.Header.Get("Accept"), "application/json")
}
