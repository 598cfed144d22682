package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dmitrijs2005/briefly/internal/client/models"
	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "# Overview", "Overview\n--------"},
		{"nested heading with emphasis", "### **API** notes", "API notes\n---------"},
		{"bullets keep indent", "- one\n  * two", "• one\n  • two"},
		{"emphasis and code", "Use `go test` and **always** __read__", "Use go test and always read"},
		{"code fences dropped", "```go\nfmt.Println()\n```", "fmt.Println()"},
		{"crlf", "a\r\nb\r\n", "a\nb"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, plainText(tc.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ab…", truncate("abcdef", 2))
	assert.Equal(t, "äö…", truncate("äöü", 2))
}

func TestSummaryTitle_Fallbacks(t *testing.T) {
	assert.Equal(t, "T", summaryTitle(models.Summary{Title: "T", FileName: "f.txt"}))
	assert.Equal(t, "f.txt", summaryTitle(models.Summary{FileName: "f.txt"}))
	assert.Equal(t, "first line", summaryTitle(models.Summary{InitialData: "  first line  \nsecond"}))
}

func TestPrintSummaries(t *testing.T) {
	var buf bytes.Buffer
	printSummaries(&buf, nil)
	assert.Contains(t, buf.String(), "No summaries yet.")

	buf.Reset()
	printSummaries(&buf, []models.Summary{
		{ID: "1", Type: models.SummaryTypeCode, UploadType: models.UploadTypeText, Title: "Parser", CreatedAt: "2024-05-01"},
		{ID: "22", Type: models.SummaryTypeResearch, UploadType: models.UploadTypeUpload, FileName: "paper.pdf", CreatedAt: "2024-05-02"},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Parser")
	assert.Contains(t, lines[2], "paper.pdf")
}

func TestPrintShared_Empty(t *testing.T) {
	var buf bytes.Buffer
	printShared(&buf, nil)
	assert.Equal(t, "Nothing has been shared with you yet.\n", buf.String())
}

func TestPrintSummary_TruncatesInput(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, models.Summary{
		ID: "3", Type: models.SummaryTypeCode, UploadType: models.UploadTypeText,
		InitialData: strings.Repeat("x", inputPreviewLen+50), OutputData: "**done**",
	})

	got := buf.String()
	assert.Contains(t, got, strings.Repeat("x", inputPreviewLen)+"…")
	assert.NotContains(t, got, strings.Repeat("x", inputPreviewLen+1))
	assert.Contains(t, got, "-- Summary --\ndone\n")
}
