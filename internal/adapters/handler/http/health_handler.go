package http

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/waterpoll/internal/core/ports"
)

type HealthHandler struct {
	repo ports.VoteRepository
	log  logrus.FieldLogger
}

func NewHealthHandler(repo ports.VoteRepository, log logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{repo: repo, log: log}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Ping(r.Context()); err != nil {
		h.log.WithError(err).Warn("vote store ping failed")
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}
