package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

// Document is a rendered report ready to publish.
type Document struct {
	Name        string
	ContentType string
	Body        []byte
}

// Assembler renders a snapshot.
type Assembler interface {
	Assemble(ctx context.Context, s Snapshot) (Document, error)
}

const caregiverTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>RxKeeper Caregiver Report</title></head>
<body>
<h1>RxKeeper Caregiver Report</h1>
<p>Generated {{ stamp .GeneratedAt }}</p>
<h2>Patient Info</h2>
<ul>
<li>Weight: {{ .User.Weight }}</li>
<li>Height: {{ .User.Height }}</li>
<li>Sleep Schedule: {{ .User.SleepSchedule }}</li>
<li>Eating Times: {{ .User.EatingTimes }}</li>
<li>Baseline BP: {{ .User.BaselineBP }}</li>
<li>Discharge Uploaded: {{ if .User.DischargeUploaded }}Yes{{ else }}No{{ end }}</li>
</ul>
<h2>Daily Compliance</h2>
<ul>
{{- range .ComplianceHistory }}
<li>{{ .Date }}: {{ .Completed }}/{{ .Total }} completed, {{ .Missed }} missed ({{ pct .Percent }}%)</li>
{{- end }}
</ul>
<h2>Flagged Tasks</h2>
<ul>
{{- range .FlaggedTasks }}
<li>{{ .Title }} at {{ stamp .Time }} - {{ .Description }}</li>
{{- end }}
</ul>
<h2>Missed Tasks</h2>
<ul>
{{- range .MissedTaskEvents }}
<li>Task ID: {{ .TaskID }} at {{ stamp .At }}</li>
{{- end }}
</ul>
<h2>Summary</h2>
<p>Overall completion rate: {{ pct .OverallRate }}%</p>
</body>
</html>
`

var caregiverReport = template.Must(template.New("caregiver").Funcs(template.FuncMap{
	"pct":   func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"stamp": func(t time.Time) string { return t.Format(time.RFC3339) },
}).Parse(caregiverTemplate))

// HTMLAssembler renders the caregiver report as a standalone HTML page.
type HTMLAssembler struct{}

func (HTMLAssembler) Assemble(_ context.Context, s Snapshot) (Document, error) {
	var buf bytes.Buffer
	if err := caregiverReport.Execute(&buf, s); err != nil {
		return Document{}, fmt.Errorf("failed to render report: %w", err)
	}
	return Document{
		Name:        fmt.Sprintf("caregiver_report_%s.html", s.GeneratedAt.Format("20060102T150405")),
		ContentType: "text/html; charset=utf-8",
		Body:        buf.Bytes(),
	}, nil
}
