package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pivot2ai/jobplans/internal/export"
	"github.com/pivot2ai/jobplans/internal/store"
)

// exportPlan renders a stored plan as a printable artifact. The format query
// parameter selects html (default) or pdf.
func (r *Router) exportPlan(w http.ResponseWriter, req *http.Request) {
	id, ok := planID(w, req)
	if !ok {
		return
	}

	row, err := r.store.GetPlan(req.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Job plan not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to retrieve job plan")
		return
	}
	doc := row.Document()

	switch req.URL.Query().Get("format") {
	case "", "html":
		artifact, err := export.RenderHTML(doc)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to render job plan")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(artifact)

	case "pdf":
		permalink := fmt.Sprintf("%s/api/job-plans/%d", r.cfg.BaseURL, row.ID)
		artifact, err := export.RenderPDF(doc, permalink)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to render job plan")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.PlanID+".pdf"))
		w.Header().Set("Content-Length", strconv.Itoa(len(artifact)))
		w.Write(artifact)

	default:
		respondError(w, http.StatusBadRequest, "Unsupported export format")
	}
}
