package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
)

// ANSI color codes for status output (used when Colored=true).
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[0;31m"
	ansiGreen  = "\033[0;32m"
	ansiYellow = "\033[0;33m"
)

// TableOptions controls which columns RenderTable renders and how status is coloured.
type TableOptions struct {
	// Colored wraps status labels with ANSI codes. Default false (CI-safe).
	Colored bool

	// IncludeType adds a TYPE column with the compliance resource type.
	IncludeType bool

	// NonCompliantOnly hides COMPLIANT and NOT_APPLICABLE rows.
	NonCompliantOnly bool
}

// ColorStatus wraps a compliance type with ANSI codes when colored is true.
func ColorStatus(ct models.ComplianceType, colored bool) string {
	s := string(ct)
	if code := statusCode(ct); colored && code != "" {
		return code + s + ansiReset
	}
	return s
}

func statusCode(ct models.ComplianceType) string {
	switch ct {
	case models.ComplianceNonCompliant:
		return ansiRed
	case models.ComplianceCompliant:
		return ansiGreen
	case models.ComplianceNotApplicable:
		return ansiYellow
	default:
		return ""
	}
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// statusCell returns the status padded to width characters.
// When colored, ANSI codes wrap only the text; trailing padding spaces are plain
// so subsequent columns stay aligned.
func statusCell(ct models.ComplianceType, width int, colored bool) string {
	text := string(ct)
	code := statusCode(ct)
	if !colored || code == "" {
		return fmt.Sprintf("%-*s", width, text)
	}
	spaces := max(width-len(text), 0)
	return code + text + ansiReset + strings.Repeat(" ", spaces)
}

// truncateField shortens s to at most max bytes for ID/label columns.
func truncateField(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "~"
}

// RenderTable writes a formatted evaluations table to w. Rows keep the
// order of evaluations.
//
// Column order:
//
//	RESOURCE ID  STATUS  [TYPE]  ANNOTATION
func RenderTable(w io.Writer, evaluations []models.Evaluation, opts TableOptions) {
	rows := evaluations
	if opts.NonCompliantOnly {
		rows = nil
		for _, e := range evaluations {
			if e.ComplianceType == models.ComplianceNonCompliant {
				rows = append(rows, e)
			}
		}
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, "No evaluations.")
		return
	}

	const (
		wResource   = 24
		wStatus     = 14
		wType       = 16
		wAnnotation = 70
	)

	var hb strings.Builder
	hb.WriteString(fmt.Sprintf("%-*s", wResource, "RESOURCE ID"))
	hb.WriteString(fmt.Sprintf("  %-*s", wStatus, "STATUS"))
	if opts.IncludeType {
		hb.WriteString(fmt.Sprintf("  %-*s", wType, "TYPE"))
	}
	hb.WriteString(fmt.Sprintf("  %-*s", wAnnotation, "ANNOTATION"))
	header := strings.TrimRight(hb.String(), " ")

	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for _, e := range rows {
		var rb strings.Builder
		rb.WriteString(fmt.Sprintf("%-*s", wResource, truncateField(e.ComplianceResourceID, wResource)))
		rb.WriteString("  " + statusCell(e.ComplianceType, wStatus, opts.Colored))
		if opts.IncludeType {
			rb.WriteString(fmt.Sprintf("  %-*s", wType, truncateField(e.ComplianceResourceType, wType)))
		}
		rb.WriteString("  " + ShortenMessage(e.Annotation, wAnnotation))
		fmt.Fprintln(w, strings.TrimRight(rb.String(), " "))
	}
}
