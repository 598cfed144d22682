package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/briefly/internal/client/models"
)

const inputPreviewLen = 300

func summaryTitle(s models.Summary) string {
	switch {
	case s.Title != "":
		return s.Title
	case s.FileName != "":
		return s.FileName
	}
	return firstLine(s.InitialData, 40)
}

func printSummaries(w io.Writer, items []models.Summary) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No summaries yet. Type 'new' to create one.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tINPUT\tCREATED\tTITLE")
	for _, s := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Type, s.UploadType, s.CreatedAt, summaryTitle(s))
	}
	_ = tw.Flush()
}

func printShared(w io.Writer, items []models.SharedSummary) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Nothing has been shared with you yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSHARED BY\tSHARED AT\tTITLE")
	for _, s := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Type, s.SharedBy, s.SharedAt, summaryTitle(s.Summary))
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, s models.Summary) {
	fmt.Fprintf(w, "== %s ==\n", summaryTitle(s))
	fmt.Fprintf(w, "ID: %s  Type: %s  Created: %s\n", s.ID, s.Type, s.CreatedAt)

	if s.UploadType == models.UploadTypeUpload {
		fmt.Fprintf(w, "Input file: %s (type 'download %s' to save it)\n", s.FileName, s.ID)
	} else if s.InitialData != "" {
		fmt.Fprintln(w, "\n-- Input --")
		fmt.Fprintln(w, truncate(s.InitialData, inputPreviewLen))
	}

	fmt.Fprintln(w, "\n-- Summary --")
	fmt.Fprintln(w, plainText(s.OutputData))
}

// plainText renders markdown for a terminal: headings become underlined
// lines, emphasis markers and code fences are dropped, bullets become dots.
func plainText(md string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.ReplaceAll(md, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "```"):
			continue
		case strings.HasPrefix(trimmed, "#"):
			heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			heading = stripEmphasis(heading)
			b.WriteString(heading + "\n" + strings.Repeat("-", len([]rune(heading))) + "\n")
			continue
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			line = indent + "• " + trimmed[2:]
		}

		b.WriteString(stripEmphasis(line) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func stripEmphasis(s string) string {
	return strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func firstLine(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return truncate(strings.TrimSpace(s), n)
}
