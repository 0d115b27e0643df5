package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/pivot2ai/jobplans/internal/plan"
)

// StepList stores the ordered work instructions as a jsonb column.
type StepList []plan.Step

// Scan implements sql.Scanner interface
func (s *StepList) Scan(value interface{}) error {
	if value == nil {
		*s = StepList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal StepList value: %v", value)
	}

	result := StepList{}
	err := json.Unmarshal(bytes, &result)
	*s = result
	return err
}

// Value implements driver.Valuer interface
func (s StepList) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]plan.Step{})
	}
	return json.Marshal([]plan.Step(s))
}

// RecommendationSet stores the nested recommendations record as jsonb.
type RecommendationSet plan.Recommendations

// Scan implements sql.Scanner interface
func (r *RecommendationSet) Scan(value interface{}) error {
	if value == nil {
		*r = RecommendationSet{Manuals: []string{}, Procedures: []string{}}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal RecommendationSet value: %v", value)
	}

	result := RecommendationSet{}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	if result.Manuals == nil {
		result.Manuals = []string{}
	}
	if result.Procedures == nil {
		result.Procedures = []string{}
	}
	*r = result
	return nil
}

// Value implements driver.Valuer interface
func (r RecommendationSet) Value() (driver.Value, error) {
	if r.Manuals == nil {
		r.Manuals = []string{}
	}
	if r.Procedures == nil {
		r.Procedures = []string{}
	}
	return json.Marshal(plan.Recommendations(r))
}

// JobPlan is the stored row for a job plan document. List columns use
// Postgres text[] arrays; nested records use jsonb.
type JobPlan struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	PlanID            string            `gorm:"unique;not null" json:"planId"` // e.g. MJP-2025-0042
	EquipmentName     string            `gorm:"not null" json:"equipmentName"`
	EquipmentModel    string            `gorm:"not null;default:''" json:"equipmentModel"`
	EquipmentSerial   string            `gorm:"not null;default:''" json:"equipmentSerial"`
	ScopeOfWork       string            `gorm:"type:text;not null" json:"scopeOfWork"`
	JobSteps          StepList          `gorm:"type:jsonb" json:"jobSteps"`
	ToolsRequired     pq.StringArray    `gorm:"type:text[]" json:"toolsRequired"`
	MaterialsRequired pq.StringArray    `gorm:"type:text[]" json:"materialsRequired"`
	ManpowerCount     string            `gorm:"not null;default:''" json:"manpowerCount"`
	SkillLevels       pq.StringArray    `gorm:"type:text[]" json:"skillLevels"`
	EstimatedTime     string            `gorm:"not null;default:''" json:"estimatedTime"`
	SafetyPpe         pq.StringArray    `gorm:"type:text[]" json:"safetyPpe"`
	SafetyProcedures  pq.StringArray    `gorm:"type:text[]" json:"safetyProcedures"`
	SafetyHazards     pq.StringArray    `gorm:"type:text[]" json:"safetyHazards"`
	BestPractices     string            `gorm:"type:text;not null;default:''" json:"bestPractices"`
	Recommendations   RecommendationSet `gorm:"type:jsonb" json:"recommendations"`
	ApplicableCodes   pq.StringArray    `gorm:"type:text[]" json:"applicableCodes"`
	Notes             string            `gorm:"type:text;not null;default:''" json:"notes"`
	Status            string            `gorm:"not null;default:'draft'" json:"status"`
	CreatedAt         time.Time         `gorm:"column:date_created" json:"dateCreated"`
}

// TableName specifies the table name for JobPlan model
func (JobPlan) TableName() string {
	return "job_plans"
}

// NewJobPlan builds a row from a document value.
func NewJobPlan(doc plan.Document) JobPlan {
	doc.Normalize()
	return JobPlan{
		PlanID:            doc.PlanID,
		EquipmentName:     doc.EquipmentName,
		EquipmentModel:    doc.EquipmentModel,
		EquipmentSerial:   doc.EquipmentSerial,
		ScopeOfWork:       doc.ScopeOfWork,
		JobSteps:          StepList(doc.JobSteps),
		ToolsRequired:     pq.StringArray(doc.ToolsRequired),
		MaterialsRequired: pq.StringArray(doc.MaterialsRequired),
		ManpowerCount:     doc.ManpowerCount,
		SkillLevels:       pq.StringArray(doc.SkillLevels),
		EstimatedTime:     doc.EstimatedTime,
		SafetyPpe:         pq.StringArray(doc.SafetyPpe),
		SafetyProcedures:  pq.StringArray(doc.SafetyProcedures),
		SafetyHazards:     pq.StringArray(doc.SafetyHazards),
		BestPractices:     doc.BestPractices,
		Recommendations:   RecommendationSet(doc.Recommendations),
		ApplicableCodes:   pq.StringArray(doc.ApplicableCodes),
		Notes:             doc.Notes,
		Status:            doc.Status,
	}
}

// Document converts the row back into the core value record.
func (p *JobPlan) Document() plan.Document {
	doc := plan.Document{
		PlanID:            p.PlanID,
		EquipmentName:     p.EquipmentName,
		EquipmentModel:    p.EquipmentModel,
		EquipmentSerial:   p.EquipmentSerial,
		ScopeOfWork:       p.ScopeOfWork,
		JobSteps:          []plan.Step(p.JobSteps),
		ToolsRequired:     []string(p.ToolsRequired),
		MaterialsRequired: []string(p.MaterialsRequired),
		ManpowerCount:     p.ManpowerCount,
		SkillLevels:       []string(p.SkillLevels),
		EstimatedTime:     p.EstimatedTime,
		SafetyPpe:         []string(p.SafetyPpe),
		SafetyProcedures:  []string(p.SafetyProcedures),
		SafetyHazards:     []string(p.SafetyHazards),
		BestPractices:     p.BestPractices,
		Recommendations:   plan.Recommendations(p.Recommendations),
		ApplicableCodes:   []string(p.ApplicableCodes),
		Notes:             p.Notes,
		Status:            p.Status,
	}
	doc.Normalize()
	return doc
}
