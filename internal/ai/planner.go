package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pivot2ai/jobplans/internal/plan"
)

var (
	// ErrMalformedGeneration means the generator reply did not parse as the
	// expected JSON object.
	ErrMalformedGeneration = errors.New("generator output is not valid JSON")

	// ErrUnavailable means the generation collaborator is unreachable or
	// misconfigured.
	ErrUnavailable = errors.New("generation service unavailable")
)

// Result is the outcome of one generation call. On a parse failure Raw still
// carries the reply verbatim so it can be audited.
type Result struct {
	TraceID  string
	Document plan.Document
	Raw      string
}

// Planner turns a free-text maintenance request into a candidate job plan
// document. The plan identifier is synthesized locally and is not guaranteed
// unique; the store's unique constraint is the only enforcement point.
type Planner struct {
	gen TextGenerator
	now func() time.Time
}

// NewPlanner creates a planner over a text generator.
func NewPlanner(gen TextGenerator) *Planner {
	return &Planner{gen: gen, now: time.Now}
}

// Generate issues one generation call and repairs the reply into a document
// satisfying the schema. Missing optional fields default to empty values, and
// an empty scope of work falls back to the query text.
func (p *Planner) Generate(ctx context.Context, query string) (*Result, error) {
	res := &Result{TraceID: uuid.NewString()}

	prompt := jobPlanSystemPrompt + "\n\n" + fmt.Sprintf(jobPlanUserPrompt, query)
	raw, err := p.gen.GenerateContent(ctx, prompt)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	res.Raw = raw

	var doc plan.Document
	if err := json.Unmarshal([]byte(extractJSON(raw)), &doc); err != nil {
		return res, fmt.Errorf("%w: %v", ErrMalformedGeneration, err)
	}

	if strings.TrimSpace(doc.ScopeOfWork) == "" {
		doc.ScopeOfWork = query
	}
	doc.PlanID = NewPlanID(p.now())
	doc.Status = plan.StatusDraft
	doc.Normalize()

	res.Document = doc
	return res, nil
}

// NewPlanID synthesizes a human-facing plan identifier, e.g. MJP-2025-0417.
// The 4-digit suffix is random; collisions are possible and only surface at
// persistence time.
func NewPlanID(t time.Time) string {
	return fmt.Sprintf("MJP-%d-%04d", t.Year(), rand.Intn(10000))
}

// extractJSON peels markdown code fences off a model reply. Gemini regularly
// wraps JSON in ```json blocks despite instructions not to.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
