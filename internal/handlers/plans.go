package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"

	"github.com/pivot2ai/jobplans/internal/ai"
	"github.com/pivot2ai/jobplans/internal/models"
	"github.com/pivot2ai/jobplans/internal/plan"
	"github.com/pivot2ai/jobplans/internal/store"
)

// GenerateRequest represents a generation request
type GenerateRequest struct {
	Query string `json:"query"`
}

// generatePlan produces a candidate job plan from a free-text task
// description. Non-exempt users spend one of their free generation credits;
// the 4th request is refused.
func (r *Router) generatePlan(w http.ResponseWriter, req *http.Request) {
	if r.planner == nil {
		respondError(w, http.StatusBadGateway, "Generation service is not configured")
		return
	}

	user, err := r.currentUser(req)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "User not found")
		return
	}

	var genReq GenerateRequest
	if err := json.NewDecoder(req.Body).Decode(&genReq); err != nil || strings.TrimSpace(genReq.Query) == "" {
		respondError(w, http.StatusBadRequest, "Please provide a valid maintenance task description")
		return
	}

	exempt := user.Exempt() || r.cfg.Allowlisted(user.Email)
	if !exempt && user.GenerationCount >= r.cfg.Generation.FreeLimit {
		respondError(w, http.StatusForbidden, "Free plan limit reached. Please upgrade to continue generating job plans.")
		return
	}

	res, err := r.planner.Generate(req.Context(), genReq.Query)
	r.recordGeneration(req, user.ID, genReq.Query, res, err)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrMalformedGeneration):
			respondError(w, http.StatusBadRequest, "Generator returned an unusable plan, please try again")
		default:
			respondError(w, http.StatusBadGateway, "Generation service unavailable")
		}
		return
	}

	if !exempt {
		if err := r.store.ConsumeGenerationCredit(req.Context(), user.ID, r.cfg.Generation.FreeLimit); err != nil {
			if errors.Is(err, store.ErrQuotaExceeded) {
				respondError(w, http.StatusForbidden, "Free plan limit reached. Please upgrade to continue generating job plans.")
				return
			}
			respondError(w, http.StatusInternalServerError, "Failed to update generation count")
			return
		}
	}

	respondJSON(w, http.StatusOK, res.Document)
}

// recordGeneration writes the audit entry for one generation call. Audit
// failures are logged, never surfaced.
func (r *Router) recordGeneration(req *http.Request, userID uint, query string, res *ai.Result, genErr error) {
	rec := &models.GenerationRecord{
		UserID:  userID,
		Query:   query,
		Outcome: models.GenerationSuccess,
	}
	if res != nil {
		rec.TraceID = res.TraceID
		if res.Raw != "" {
			if raw, err := json.Marshal(res.Raw); err == nil {
				rec.RawResponse = datatypes.JSON(raw)
			}
		}
	}
	switch {
	case errors.Is(genErr, ai.ErrMalformedGeneration):
		rec.Outcome = models.GenerationMalformed
	case genErr != nil:
		rec.Outcome = models.GenerationFailed
	}

	if err := r.store.RecordGeneration(req.Context(), rec); err != nil {
		log.Printf("⚠️ Failed to record generation audit entry: %v", err)
	}
}

// createPlan persists a new job plan
func (r *Router) createPlan(w http.ResponseWriter, req *http.Request) {
	var doc plan.Document
	if err := json.NewDecoder(req.Body).Decode(&doc); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	row, err := r.store.CreatePlan(req.Context(), doc)
	if err != nil {
		var verr *plan.ValidationError
		switch {
		case errors.As(err, &verr):
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":      "Validation failed",
				"violations": verr.Violations,
			})
		case errors.Is(err, store.ErrDuplicatePlanID):
			respondError(w, http.StatusConflict, "A job plan with this plan ID already exists")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to create job plan")
		}
		return
	}

	respondJSON(w, http.StatusCreated, row)
}

// listPlans returns all job plans
func (r *Router) listPlans(w http.ResponseWriter, req *http.Request) {
	rows, err := r.store.ListPlans(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve job plans")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// getPlan returns a single job plan by ID
func (r *Router) getPlan(w http.ResponseWriter, req *http.Request) {
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
	respondJSON(w, http.StatusOK, row)
}

// updatePlan applies a partial patch to a stored plan. A field present in the
// body wholly replaces the stored value.
func (r *Router) updatePlan(w http.ResponseWriter, req *http.Request) {
	id, ok := planID(w, req)
	if !ok {
		return
	}

	patch, err := io.ReadAll(req.Body)
	if err != nil || len(patch) == 0 || !json.Valid(patch) {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	row, err := r.store.UpdatePlan(req.Context(), id, patch)
	if err != nil {
		var verr *plan.ValidationError
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondError(w, http.StatusNotFound, "Job plan not found")
		case errors.As(err, &verr):
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":      "Validation failed",
				"violations": verr.Violations,
			})
		case errors.Is(err, store.ErrDuplicatePlanID):
			respondError(w, http.StatusConflict, "A job plan with this plan ID already exists")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to update job plan")
		}
		return
	}
	respondJSON(w, http.StatusOK, row)
}

// deletePlan removes a job plan
func (r *Router) deletePlan(w http.ResponseWriter, req *http.Request) {
	id, ok := planID(w, req)
	if !ok {
		return
	}

	if err := r.store.DeletePlan(req.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Job plan not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete job plan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// planID parses the {id} path variable, responding with 400 on garbage.
func planID(w http.ResponseWriter, req *http.Request) (uint, bool) {
	vars := mux.Vars(req)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job plan ID")
		return 0, false
	}
	return uint(id), true
}
