// Package export renders job plan documents into printable artifacts.
// Rendering is deterministic: the same document always yields identical
// bytes. All document text is treated as untrusted and neutralized before it
// is embedded in markup.
package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/pivot2ai/jobplans/internal/plan"
)

// stepView is a step with its display number resolved.
type stepView struct {
	Number      int
	Description string
}

type htmlView struct {
	Doc   plan.Document
	Steps []stepView
}

// stepViews resolves display numbers: the number assigned at append time
// wins; position+1 is the fallback when it is missing.
func stepViews(steps []plan.Step) []stepView {
	out := make([]stepView, 0, len(steps))
	for i, s := range steps {
		n := s.StepNumber
		if n <= 0 {
			n = i + 1
		}
		out = append(out, stepView{Number: n, Description: s.Description})
	}
	return out
}

var htmlTmpl = template.Must(template.New("jobplan").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Maintenance Job Plan {{.Doc.PlanID}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 2rem; color: #1a1a1a; }
  h1 { font-size: 1.4rem; border-bottom: 2px solid #1a1a1a; padding-bottom: .4rem; }
  h2 { font-size: 1rem; margin-top: 1.4rem; text-transform: uppercase; letter-spacing: .05em; }
  table { border-collapse: collapse; width: 100%; }
  td, th { border: 1px solid #999; padding: .3rem .5rem; text-align: left; vertical-align: top; }
  ul, ol { margin: .3rem 0; padding-left: 1.4rem; }
  section { page-break-inside: avoid; }
  .meta { color: #555; font-size: .85rem; }
  @media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>Maintenance Job Plan <span class="meta">{{.Doc.PlanID}}</span></h1>

<section>
<h2>Equipment</h2>
<table>
<tr><th>Name</th><td>{{.Doc.EquipmentName}}</td></tr>
<tr><th>Model</th><td>{{.Doc.EquipmentModel}}</td></tr>
<tr><th>Serial</th><td>{{.Doc.EquipmentSerial}}</td></tr>
</table>
</section>

<section>
<h2>Scope of Work</h2>
<p>{{.Doc.ScopeOfWork}}</p>
</section>

<section>
<h2>Job Steps</h2>
<ol>
{{- range .Steps}}
<li value="{{.Number}}">{{.Description}}</li>
{{- end}}
</ol>
</section>

<section>
<h2>Tools Required</h2>
<ul>{{range .Doc.ToolsRequired}}<li>{{.}}</li>{{end}}</ul>
<h2>Materials Required</h2>
<ul>{{range .Doc.MaterialsRequired}}<li>{{.}}</li>{{end}}</ul>
</section>

<section>
<h2>Manpower</h2>
<table>
<tr><th>Count</th><td>{{.Doc.ManpowerCount}}</td></tr>
<tr><th>Skill Levels</th><td><ul>{{range .Doc.SkillLevels}}<li>{{.}}</li>{{end}}</ul></td></tr>
<tr><th>Estimated Time</th><td>{{.Doc.EstimatedTime}}</td></tr>
</table>
</section>

<section>
<h2>Safety</h2>
<table>
<tr><th>PPE</th><td><ul>{{range .Doc.SafetyPpe}}<li>{{.}}</li>{{end}}</ul></td></tr>
<tr><th>Procedures</th><td><ul>{{range .Doc.SafetyProcedures}}<li>{{.}}</li>{{end}}</ul></td></tr>
<tr><th>Hazards</th><td><ul>{{range .Doc.SafetyHazards}}<li>{{.}}</li>{{end}}</ul></td></tr>
</table>
</section>

<section>
<h2>Best Practices</h2>
<p>{{.Doc.BestPractices}}</p>
</section>

<section>
<h2>Recommendations</h2>
<table>
<tr><th>Manuals</th><td><ul>{{range .Doc.Recommendations.Manuals}}<li>{{.}}</li>{{end}}</ul></td></tr>
<tr><th>Procedures</th><td><ul>{{range .Doc.Recommendations.Procedures}}<li>{{.}}</li>{{end}}</ul></td></tr>
</table>
</section>

<section>
<h2>Applicable Codes</h2>
<ul>{{range .Doc.ApplicableCodes}}<li>{{.}}</li>{{end}}</ul>
</section>
{{- if .Doc.Notes}}

<section>
<h2>Notes</h2>
<p>{{.Doc.Notes}}</p>
</section>
{{- end}}
</body>
</html>
`))

// RenderHTML renders doc into a self-contained printable HTML document.
// Section order is fixed; the Notes section is omitted entirely when empty.
func RenderHTML(doc plan.Document) ([]byte, error) {
	doc.Normalize()
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, htmlView{Doc: doc, Steps: stepViews(doc.JobSteps)}); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}
