package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	protocol "siav/internal/modules/protocol/domain"
	"siav/internal/modules/session/domain"
	sessionout "siav/internal/modules/session/port/out"
	"siav/internal/platform/markdown"
	"siav/internal/platform/slug"
)

var reportBlock = markdown.Block{
	Start: "<!-- siav:report:start -->",
	End:   "<!-- siav:report:end -->",
}

// MarkdownReportWriter renders the end-of-case report as a markdown note.
// Rewriting an existing report only replaces the generated block, so
// annotations made by hand survive.
type MarkdownReportWriter struct {
	dir string
}

func NewMarkdownReportWriter(dir string) sessionout.ReportWriter {
	return &MarkdownReportWriter{dir: dir}
}

func (w *MarkdownReportWriter) WriteReport(_ context.Context, log domain.SessionLog) (string, error) {
	date := log.StartedAt
	dir := filepath.Join(w.dir, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(log.Patient.Name, "patient"))
	path := filepath.Join(dir, name)

	body := ""
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		_, prev, splitErr := markdown.SplitFrontmatter(string(existing))
		if splitErr != nil {
			return "", fmt.Errorf("parse existing report: %w", splitErr)
		}
		body = prev
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("read existing report: %w", err)
	}
	if strings.TrimSpace(body) == "" {
		body = fmt.Sprintf("# CPR report %s\n", log.StartedAt.Format("2006-01-02 15:04"))
	}
	body = reportBlock.Replace(body, renderReport(log))

	rendered, err := markdown.RenderFrontmatter(reportMeta(log), body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func reportMeta(log domain.SessionLog) []markdown.Field {
	s := log.Summary
	return []markdown.Field{
		{Key: "schema_version", Value: log.SchemaVersion},
		{Key: "id", Value: log.SessionID},
		{Key: "patient", Value: optional(log.Patient.Name)},
		{Key: "started_at", Value: log.StartedAt.Format(time.RFC3339)},
		{Key: "ended_at", Value: log.EndedAt.Format(time.RFC3339)},
		{Key: "duration_seconds", Value: s.DurationSeconds},
		{Key: "compression_seconds", Value: s.CompressionSeconds},
		{Key: "cycles", Value: s.CycleCount},
		{Key: "rhythm_checks", Value: s.RhythmChecks},
		{Key: "shocks", Value: s.ShockCount},
		{Key: "medications", Value: len(s.Medications)},
		{Key: "final_rhythm", Value: optional(string(s.FinalRhythm))},
		{Key: "rosc", Value: s.ROSC},
	}
}

func optional(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func renderReport(log domain.SessionLog) string {
	s := log.Summary
	var b strings.Builder
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Duration: %s\n", protocol.FormatClock(s.DurationSeconds))
	fmt.Fprintf(&b, "- Hands-on time: %s (%.0f%%)\n", protocol.FormatClock(s.CompressionSeconds), s.CompressionRatio*100)
	fmt.Fprintf(&b, "- Cycles: %d, rhythm checks: %d\n", s.CycleCount, s.RhythmChecks)
	fmt.Fprintf(&b, "- Shocks: %d", s.ShockCount)
	if s.FirstShockAt != nil {
		fmt.Fprintf(&b, " (first at %s, %d J)", protocol.FormatClock(*s.FirstShockAt), s.FirstShockJoules)
	}
	b.WriteString("\n")
	if s.FirstAdrenalineAt != nil {
		fmt.Fprintf(&b, "- First adrenaline: %s\n", protocol.FormatClock(*s.FirstAdrenalineAt))
	}
	if s.FinalRhythm != "" {
		fmt.Fprintf(&b, "- Final rhythm: %s (%s)\n", s.FinalRhythm, s.FinalRhythm.Label())
	}
	outcome := "no ROSC"
	if s.ROSC {
		outcome = "ROSC achieved"
	}
	fmt.Fprintf(&b, "- Outcome: %s\n", outcome)

	if p := log.Patient; p.AgeYears > 0 || p.WeightKg > 0 || p.Allergies != "" || p.Comorbidities != "" {
		b.WriteString("\n## Patient\n\n")
		if p.AgeYears > 0 {
			fmt.Fprintf(&b, "- Age: %d\n", p.AgeYears)
		}
		if p.WeightKg > 0 {
			fmt.Fprintf(&b, "- Weight: %.1f kg\n", p.WeightKg)
		}
		if p.Allergies != "" {
			fmt.Fprintf(&b, "- Allergies: %s\n", p.Allergies)
		}
		if p.Comorbidities != "" {
			fmt.Fprintf(&b, "- Comorbidities: %s\n", p.Comorbidities)
		}
	}

	if len(s.Medications) > 0 {
		b.WriteString("\n## Medications\n\n")
		for _, m := range s.Medications {
			fmt.Fprintf(&b, "- %s %s %s %s\n", protocol.FormatClock(m.At), m.Drug.DisplayName(), m.Dose, m.Route)
		}
	}

	b.WriteString("\n## Timeline\n\n")
	for _, e := range log.Entries {
		fmt.Fprintf(&b, "- `%s` [%s] %s\n", protocol.FormatClock(e.At), e.Severity, e.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
