package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// Draft holds exactly one document during an edit session. Every mutation
// works on a fresh deep copy and swaps it in wholesale, so a snapshot handed
// out before the mutation is never changed underneath its holder. A draft is
// owned by a single session and is not safe for concurrent use.
//
// Structural operations with an out-of-range index are defined as no-ops
// rather than errors: the UI may fire removals against an already re-rendered
// list and must not crash the session.
type Draft struct {
	doc Document
}

// NewDraft creates a draft around doc. The document is copied and normalized
// so all list fields are materialized.
func NewDraft(doc Document) *Draft {
	d := doc.Clone()
	d.Normalize()
	return &Draft{doc: d}
}

// Snapshot returns an independent copy of the current document.
func (dr *Draft) Snapshot() Document {
	return dr.doc.Clone()
}

// Load replaces the held document wholesale.
func (dr *Draft) Load(doc Document) {
	d := doc.Clone()
	d.Normalize()
	dr.doc = d
}

// SetField replaces a field addressed by a dotted path. Supported paths:
//
//	notes                              scalar field
//	toolsRequired.2                    item of a top-level list field
//	jobSteps.0.description             description of a step
//	recommendations.manuals.1          item of a recommendations list
//
// Unknown fields are rejected; an out-of-range index is a no-op.
func (dr *Draft) SetField(path, value string) error {
	parts := strings.Split(path, ".")
	doc := dr.doc.Clone()

	switch {
	case len(parts) == 1 && scalarFields[parts[0]]:
		doc.setScalar(parts[0], value)

	case len(parts) == 2 && listFields[parts[0]]:
		i, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("invalid index %q in path %q", parts[1], path)
		}
		slot := doc.listSlot(parts[0])
		if i < 0 || i >= len(*slot) {
			return nil
		}
		(*slot)[i] = value

	case len(parts) == 3 && parts[0] == "jobSteps" && parts[2] == "description":
		i, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("invalid index %q in path %q", parts[1], path)
		}
		if i < 0 || i >= len(doc.JobSteps) {
			return nil
		}
		doc.JobSteps[i].Description = value

	case len(parts) == 3 && parts[0] == "recommendations":
		i, err := strconv.Atoi(parts[2])
		if err != nil {
			return fmt.Errorf("invalid index %q in path %q", parts[2], path)
		}
		list := recommendationSlot(&doc, parts[1])
		if list == nil {
			return fmt.Errorf("unknown recommendation kind %q", parts[1])
		}
		if i < 0 || i >= len(*list) {
			return nil
		}
		(*list)[i] = value

	default:
		return fmt.Errorf("unknown field path %q", path)
	}

	dr.doc = doc
	return nil
}

// AppendListItem appends value to a top-level ordered-list field.
func (dr *Draft) AppendListItem(field, value string) error {
	if !listFields[field] {
		return fmt.Errorf("field %q is not list-typed", field)
	}
	doc := dr.doc.Clone()
	slot := doc.listSlot(field)
	*slot = append(*slot, value)
	dr.doc = doc
	return nil
}

// RemoveListItem removes the item at index from a top-level ordered-list
// field. Out-of-range indices leave the list unchanged.
func (dr *Draft) RemoveListItem(field string, index int) error {
	if !listFields[field] {
		return fmt.Errorf("field %q is not list-typed", field)
	}
	doc := dr.doc.Clone()
	slot := doc.listSlot(field)
	if index < 0 || index >= len(*slot) {
		return nil
	}
	*slot = append((*slot)[:index], (*slot)[index+1:]...)
	dr.doc = doc
	return nil
}

// AppendStep adds an empty step numbered after the current last position.
// Numbers are assigned once, here; removal does not renumber.
func (dr *Draft) AppendStep() {
	doc := dr.doc.Clone()
	doc.JobSteps = append(doc.JobSteps, Step{StepNumber: len(doc.JobSteps) + 1})
	dr.doc = doc
}

// RemoveStep removes the step at index. Remaining step numbers are left
// untouched; renderers fall back to position when numbers are stale.
func (dr *Draft) RemoveStep(index int) {
	if index < 0 || index >= len(dr.doc.JobSteps) {
		return
	}
	doc := dr.doc.Clone()
	doc.JobSteps = append(doc.JobSteps[:index], doc.JobSteps[index+1:]...)
	dr.doc = doc
}

// AppendRecommendation appends value to the manuals or procedures list.
func (dr *Draft) AppendRecommendation(kind, value string) error {
	doc := dr.doc.Clone()
	list := recommendationSlot(&doc, kind)
	if list == nil {
		return fmt.Errorf("unknown recommendation kind %q", kind)
	}
	*list = append(*list, value)
	dr.doc = doc
	return nil
}

// RemoveRecommendation removes the item at index from the manuals or
// procedures list. Out-of-range indices are a no-op.
func (dr *Draft) RemoveRecommendation(kind string, index int) error {
	doc := dr.doc.Clone()
	list := recommendationSlot(&doc, kind)
	if list == nil {
		return fmt.Errorf("unknown recommendation kind %q", kind)
	}
	if index < 0 || index >= len(*list) {
		return nil
	}
	*list = append((*list)[:index], (*list)[index+1:]...)
	dr.doc = doc
	return nil
}

func recommendationSlot(doc *Document, kind string) *[]string {
	switch kind {
	case "manuals":
		return &doc.Recommendations.Manuals
	case "procedures":
		return &doc.Recommendations.Procedures
	}
	return nil
}
