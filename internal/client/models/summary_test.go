package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryType_Valid(t *testing.T) {
	assert.True(t, SummaryTypeCode.Valid())
	assert.True(t, SummaryTypeDocumentation.Valid())
	assert.True(t, SummaryTypeResearch.Valid())
	assert.False(t, SummaryType("poetry").Valid())
	assert.False(t, SummaryType("").Valid())
}

func TestUploadType_Valid(t *testing.T) {
	assert.True(t, UploadTypeUpload.Valid())
	assert.True(t, UploadTypeText.Valid())
	assert.False(t, UploadType("paste").Valid())
}

func TestSharedSummary_UnmarshalSummaryFields(t *testing.T) {
	raw := `{"id":"5","userId":"1","type":"code","uploadType":"type",
		"initialData":"in","outputData":"out","createdAt":"today",
		"sharedBy":"bob@example.org","sharedAt":"January 02, 2025"}`

	var s SharedSummary
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	want := SharedSummary{
		Summary: Summary{
			ID: "5", UserID: "1", Type: SummaryTypeCode, UploadType: UploadTypeText,
			InitialData: "in", OutputData: "out", CreatedAt: "today",
		},
		SharedBy: "bob@example.org",
		SharedAt: "January 02, 2025",
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("shared summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSharedSummary_UnmarshalContentAliases(t *testing.T) {
	raw := `{"id":"7","title":"research","content":"# Summary","inputContent":"paper text",
		"sharedBy":"ann@example.org","sharedAt":"March 03, 2025"}`

	var s SharedSummary
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	assert.Equal(t, ID("7"), s.ID)
	assert.Equal(t, "# Summary", s.OutputData)
	assert.Equal(t, "paper text", s.InitialData)
	assert.Equal(t, "ann@example.org", s.SharedBy)
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", User{FirstName: "Ada", LastName: "Lovelace", Email: "a@b.com"}.DisplayName())
	assert.Equal(t, "Ada", User{FirstName: "Ada"}.DisplayName())
	assert.Equal(t, "a@b.com", User{Email: "a@b.com"}.DisplayName())
}

func TestID_UnmarshalStringOrNumber(t *testing.T) {
	var got []Summary
	require.NoError(t, json.Unmarshal([]byte(`[{"id":5,"userId":"1"},{"id":"abc","userId":12}]`), &got))

	require.Len(t, got, 2)
	assert.Equal(t, ID("5"), got[0].ID)
	assert.Equal(t, ID("1"), got[0].UserID)
	assert.Equal(t, ID("abc"), got[1].ID)
	assert.Equal(t, ID("12"), got[1].UserID)
}

func TestID_UnmarshalRejectsObjects(t *testing.T) {
	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &id))

	require.NoError(t, json.Unmarshal([]byte(`null`), &id))
	assert.Equal(t, ID(""), id)
}
