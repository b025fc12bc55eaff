package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
	"github.com/vncsmyrnk/waterpoll/internal/core/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

type PageHandler struct {
	service ports.VoteService
	tmpl    *template.Template
	log     logrus.FieldLogger
}

func NewPageHandler(service ports.VoteService, log logrus.FieldLogger) (*PageHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &PageHandler{
		service: service,
		tmpl:    tmpl,
		log:     log,
	}, nil
}

type chartData struct {
	Labels []string             `json:"labels"`
	Series []domain.RiverSeries `json:"series"`
}

// pageData is what the page script starts from. Stats is the tally at
// render time; the script increments it locally after a successful vote.
type pageData struct {
	Stats   tallyResponse `json:"stats"`
	Chart   chartData     `json:"chart"`
	Voted   bool          `json:"voted"`
	Invalid bool          `json:"invalid"`
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	tally, err := h.service.GetTally(r.Context())
	if err != nil {
		h.log.WithError(err).Error("failed to load tally for page")
		http.Error(w, domain.ErrInternal.Error(), http.StatusInternalServerError)
		return
	}

	data := pageData{
		Stats: newTallyResponse(tally),
		Chart: chartData{
			Labels: domain.HistoryYears,
			Series: domain.RiverHistory,
		},
		Voted:   r.URL.Query().Get("voted") != "",
		Invalid: r.URL.Query().Get("error") != "",
	}

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "page.html", data); err != nil {
		h.log.WithError(err).Error("failed to render page")
		http.Error(w, domain.ErrInternal.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
