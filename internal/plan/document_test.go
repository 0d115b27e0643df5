package plan

import (
	"testing"
)

func TestNormalizeMaterializesLists(t *testing.T) {
	doc := Document{EquipmentName: "Pump P-101", ScopeOfWork: "Seal replacement"}
	doc.Normalize()

	if doc.JobSteps == nil {
		t.Error("JobSteps should be materialized")
	}
	if doc.ToolsRequired == nil || doc.MaterialsRequired == nil {
		t.Error("tool and material lists should be materialized")
	}
	if doc.SkillLevels == nil || doc.SafetyPpe == nil || doc.SafetyProcedures == nil || doc.SafetyHazards == nil {
		t.Error("skill and safety lists should be materialized")
	}
	if doc.Recommendations.Manuals == nil || doc.Recommendations.Procedures == nil {
		t.Error("recommendation lists should be materialized")
	}
	if doc.ApplicableCodes == nil {
		t.Error("ApplicableCodes should be materialized")
	}
	if doc.Status != StatusDraft {
		t.Errorf("expected default status %q, got %q", StatusDraft, doc.Status)
	}
}

func TestNormalizeKeepsExistingValues(t *testing.T) {
	doc := Document{
		EquipmentName: "Compressor",
		ScopeOfWork:   "Overhaul",
		ToolsRequired: []string{"torque wrench"},
		Status:        StatusFinal,
	}
	doc.Normalize()

	if len(doc.ToolsRequired) != 1 || doc.ToolsRequired[0] != "torque wrench" {
		t.Errorf("existing list values should survive normalization, got %v", doc.ToolsRequired)
	}
	if doc.Status != StatusFinal {
		t.Errorf("existing status should survive normalization, got %q", doc.Status)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		doc        Document
		wantFields []string
	}{
		{
			name: "valid document",
			doc:  Document{EquipmentName: "Pump", ScopeOfWork: "Inspect"},
		},
		{
			name:       "missing equipment name",
			doc:        Document{ScopeOfWork: "Inspect"},
			wantFields: []string{"equipmentName"},
		},
		{
			name:       "missing scope of work",
			doc:        Document{EquipmentName: "Pump"},
			wantFields: []string{"scopeOfWork"},
		},
		{
			name:       "whitespace only counts as missing",
			doc:        Document{EquipmentName: "   ", ScopeOfWork: "\t"},
			wantFields: []string{"equipmentName", "scopeOfWork"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if len(verr.Violations) != len(tt.wantFields) {
				t.Fatalf("expected %d violations, got %d: %v", len(tt.wantFields), len(verr.Violations), verr.Violations)
			}
			for i, field := range tt.wantFields {
				if verr.Violations[i].Field != field {
					t.Errorf("violation %d: expected field %q, got %q", i, field, verr.Violations[i].Field)
				}
			}
		})
	}
}

func TestCloneDoesNotAliasLists(t *testing.T) {
	doc := Document{
		EquipmentName: "Motor",
		ScopeOfWork:   "Rewind",
		ToolsRequired: []string{"megger"},
		JobSteps:      []Step{{StepNumber: 1, Description: "Isolate"}},
		Recommendations: Recommendations{
			Manuals: []string{"OEM manual"},
		},
	}

	clone := doc.Clone()
	clone.ToolsRequired[0] = "changed"
	clone.JobSteps[0].Description = "changed"
	clone.Recommendations.Manuals[0] = "changed"

	if doc.ToolsRequired[0] != "megger" {
		t.Error("clone aliases ToolsRequired")
	}
	if doc.JobSteps[0].Description != "Isolate" {
		t.Error("clone aliases JobSteps")
	}
	if doc.Recommendations.Manuals[0] != "OEM manual" {
		t.Error("clone aliases Recommendations")
	}
}
