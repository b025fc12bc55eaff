package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
	"github.com/vncsmyrnk/waterpoll/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
	log     logrus.FieldLogger
}

func NewVoteHandler(service ports.VoteService, log logrus.FieldLogger) *VoteHandler {
	return &VoteHandler{
		service: service,
		log:     log,
	}
}

type voteRequest struct {
	Choice *string `json:"choice" example:"yes"`
}

// readChoice accepts a JSON body or a form. A missing or null choice comes
// back as "" and fails validation in the service.
func readChoice(r *http.Request) (string, error) {
	if isJSONRequest(r) {
		var req voteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidBody, err)
		}
		if req.Choice == nil {
			return "", nil
		}
		return *req.Choice, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidBody, err)
	}
	return r.PostFormValue("choice"), nil
}

// GetTally godoc
// @Summary      Current tally
// @Description  Counts every recorded vote by choice.
// @Tags         votes
// @Produce      json
// @Success      200  {object}  tallyResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/tally [get]
func (h *VoteHandler) GetTally(w http.ResponseWriter, r *http.Request) {
	tally, err := h.service.GetTally(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, newTallyResponse(tally))
}

// CreateVote godoc
// @Summary      Record a vote
// @Description  Appends one vote. The same caller may vote any number of times.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Param        vote  body  voteRequest  true  "choice is yes or no"
// @Success      201
// @Failure      400  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/votes [post]
func (h *VoteHandler) CreateVote(w http.ResponseWriter, r *http.Request) {
	choice, err := readChoice(r)
	if err == nil {
		err = h.service.SubmitVote(r.Context(), choice)
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// SubmitVote handles the page's vote button. Script clients get 204 or a
// JSON error; plain form posts are redirected back to the page.
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	choice, err := readChoice(r)
	if err == nil {
		err = h.service.SubmitVote(r.Context(), choice)
	}

	if wantsJSON(r) {
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var verr *domain.ValidationError
	switch {
	case err == nil:
		http.Redirect(w, r, backURL(r, "voted", "1"), http.StatusSeeOther)
	case errors.As(err, &verr):
		http.Redirect(w, r, backURL(r, "error", verr.Field), http.StatusSeeOther)
	default:
		writeError(w, h.log, err)
	}
}

// backURL points at the referring page on this site, falling back to the
// root. Only the path is kept so the redirect never leaves the site.
func backURL(r *http.Request, key, value string) string {
	target := &url.URL{Path: "/"}
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && (ref.Host == "" || ref.Host == r.Host) {
		target.Path = ref.Path
	}
	q := url.Values{}
	q.Set(key, value)
	target.RawQuery = q.Encode()
	target.Fragment = "voting-section"
	return target.String()
}
