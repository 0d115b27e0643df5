package plan

import (
	"fmt"
	"strings"
)

// Plan statuses
const (
	StatusDraft    = "draft"
	StatusFinal    = "final"
	StatusArchived = "archived"
)

// Step is a single numbered work instruction. Step numbers are assigned at
// append time and are not recomputed on removal; consumers fall back to the
// position in the list when a number is missing or stale.
type Step struct {
	StepNumber  int    `json:"stepNumber"`
	Description string `json:"description"`
}

// Recommendations groups the reference material suggested for a plan.
type Recommendations struct {
	Manuals    []string `json:"manuals"`
	Procedures []string `json:"procedures"`
}

// Document is the job plan value record. It carries no persistence identity;
// the stored row (models.JobPlan) wraps a Document with a surrogate id and
// creation timestamp.
type Document struct {
	PlanID            string          `json:"planId"`
	EquipmentName     string          `json:"equipmentName"`
	EquipmentModel    string          `json:"equipmentModel"`
	EquipmentSerial   string          `json:"equipmentSerial"`
	ScopeOfWork       string          `json:"scopeOfWork"`
	JobSteps          []Step          `json:"jobSteps"`
	ToolsRequired     []string        `json:"toolsRequired"`
	MaterialsRequired []string        `json:"materialsRequired"`
	ManpowerCount     string          `json:"manpowerCount"`
	SkillLevels       []string        `json:"skillLevels"`
	EstimatedTime     string          `json:"estimatedTime"`
	SafetyPpe         []string        `json:"safetyPpe"`
	SafetyProcedures  []string        `json:"safetyProcedures"`
	SafetyHazards     []string        `json:"safetyHazards"`
	BestPractices     string          `json:"bestPractices"`
	Recommendations   Recommendations `json:"recommendations"`
	ApplicableCodes   []string        `json:"applicableCodes"`
	Notes             string          `json:"notes"`
	Status            string          `json:"status"`
}

// FieldViolation describes a single schema violation.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field-level violations found by Validate.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "invalid job plan: " + strings.Join(parts, "; ")
}

// listFields are the top-level ordered-list fields addressable by the editor.
var listFields = map[string]bool{
	"toolsRequired":     true,
	"materialsRequired": true,
	"skillLevels":       true,
	"safetyPpe":         true,
	"safetyProcedures":  true,
	"safetyHazards":     true,
	"applicableCodes":   true,
}

// scalarFields are the free-text fields addressable by the editor.
var scalarFields = map[string]bool{
	"planId":          true,
	"equipmentName":   true,
	"equipmentModel":  true,
	"equipmentSerial": true,
	"scopeOfWork":     true,
	"manpowerCount":   true,
	"estimatedTime":   true,
	"bestPractices":   true,
	"notes":           true,
	"status":          true,
}

// IsListField reports whether name is one of the editable ordered-list fields.
func IsListField(name string) bool { return listFields[name] }

// Normalize fills the documented defaults in place: list-valued fields are
// never nil once a document is materialized, and status defaults to draft.
// The schema is permissive so that partial generator output still yields a
// usable document.
func (d *Document) Normalize() {
	if d.JobSteps == nil {
		d.JobSteps = []Step{}
	}
	if d.ToolsRequired == nil {
		d.ToolsRequired = []string{}
	}
	if d.MaterialsRequired == nil {
		d.MaterialsRequired = []string{}
	}
	if d.SkillLevels == nil {
		d.SkillLevels = []string{}
	}
	if d.SafetyPpe == nil {
		d.SafetyPpe = []string{}
	}
	if d.SafetyProcedures == nil {
		d.SafetyProcedures = []string{}
	}
	if d.SafetyHazards == nil {
		d.SafetyHazards = []string{}
	}
	if d.Recommendations.Manuals == nil {
		d.Recommendations.Manuals = []string{}
	}
	if d.Recommendations.Procedures == nil {
		d.Recommendations.Procedures = []string{}
	}
	if d.ApplicableCodes == nil {
		d.ApplicableCodes = []string{}
	}
	if d.Status == "" {
		d.Status = StatusDraft
	}
}

// Validate checks the structural requirements: equipment name and scope of
// work must be non-empty. Everything else falls back to defaults rather than
// failing. Returns a *ValidationError listing every violation, or nil.
func (d *Document) Validate() error {
	var violations []FieldViolation
	if strings.TrimSpace(d.EquipmentName) == "" {
		violations = append(violations, FieldViolation{Field: "equipmentName", Message: "equipment name is required"})
	}
	if strings.TrimSpace(d.ScopeOfWork) == "" {
		violations = append(violations, FieldViolation{Field: "scopeOfWork", Message: "scope of work is required"})
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// Clone returns a deep copy of the document. Mutating the copy never aliases
// the original's nested lists.
func (d Document) Clone() Document {
	out := d
	out.JobSteps = append([]Step{}, d.JobSteps...)
	out.ToolsRequired = append([]string{}, d.ToolsRequired...)
	out.MaterialsRequired = append([]string{}, d.MaterialsRequired...)
	out.SkillLevels = append([]string{}, d.SkillLevels...)
	out.SafetyPpe = append([]string{}, d.SafetyPpe...)
	out.SafetyProcedures = append([]string{}, d.SafetyProcedures...)
	out.SafetyHazards = append([]string{}, d.SafetyHazards...)
	out.Recommendations = Recommendations{
		Manuals:    append([]string{}, d.Recommendations.Manuals...),
		Procedures: append([]string{}, d.Recommendations.Procedures...),
	}
	out.ApplicableCodes = append([]string{}, d.ApplicableCodes...)
	return out
}

// listSlot returns a pointer to the named list field on d.
func (d *Document) listSlot(name string) *[]string {
	switch name {
	case "toolsRequired":
		return &d.ToolsRequired
	case "materialsRequired":
		return &d.MaterialsRequired
	case "skillLevels":
		return &d.SkillLevels
	case "safetyPpe":
		return &d.SafetyPpe
	case "safetyProcedures":
		return &d.SafetyProcedures
	case "safetyHazards":
		return &d.SafetyHazards
	case "applicableCodes":
		return &d.ApplicableCodes
	}
	return nil
}

// setScalar writes value into the named scalar field on d.
func (d *Document) setScalar(name, value string) {
	switch name {
	case "planId":
		d.PlanID = value
	case "equipmentName":
		d.EquipmentName = value
	case "equipmentModel":
		d.EquipmentModel = value
	case "equipmentSerial":
		d.EquipmentSerial = value
	case "scopeOfWork":
		d.ScopeOfWork = value
	case "manpowerCount":
		d.ManpowerCount = value
	case "estimatedTime":
		d.EstimatedTime = value
	case "bestPractices":
		d.BestPractices = value
	case "notes":
		d.Notes = value
	case "status":
		d.Status = value
	}
}
