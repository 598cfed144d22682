package models

import (
	"encoding/json"
	"io"
)

// SummaryType is the kind of content being summarized.
type SummaryType string

const (
	SummaryTypeCode          SummaryType = "code"
	SummaryTypeDocumentation SummaryType = "documentation"
	SummaryTypeResearch      SummaryType = "research"
)

// Valid reports whether t is one of the known summary types.
func (t SummaryType) Valid() bool {
	switch t {
	case SummaryTypeCode, SummaryTypeDocumentation, SummaryTypeResearch:
		return true
	}
	return false
}

// UploadType tells whether the input was a file or pasted text.
type UploadType string

const (
	UploadTypeUpload UploadType = "upload"
	UploadTypeText   UploadType = "type"
)

func (t UploadType) Valid() bool {
	return t == UploadTypeUpload || t == UploadTypeText
}

// Summary is a summary record owned by the backend. The client only keeps a
// read/write-through copy.
type Summary struct {
	ID          ID          `json:"id"`
	UserID      ID          `json:"userId"`
	Type        SummaryType `json:"type"`
	UploadType  UploadType  `json:"uploadType"`
	Title       string      `json:"title,omitempty"`
	InitialData string      `json:"initialData"`
	OutputData  string      `json:"outputData"`
	CreatedAt   string      `json:"createdAt"`
	FileName    string      `json:"fileName,omitempty"`
	FileID      ID          `json:"fileId,omitempty"`
}

// SharedSummary is a summary visible to the user through a share action.
type SharedSummary struct {
	Summary
	SharedBy string `json:"sharedBy"`
	SharedAt string `json:"sharedAt"`
}

// UnmarshalJSON accepts both the summary field names and the shorter
// content/inputContent spelling used by the shared-summaries listing.
func (s *SharedSummary) UnmarshalJSON(b []byte) error {
	type plain Summary
	var aux struct {
		plain
		SharedBy     string `json:"sharedBy"`
		SharedAt     string `json:"sharedAt"`
		Content      string `json:"content"`
		InputContent string `json:"inputContent"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	s.Summary = Summary(aux.plain)
	s.SharedBy = aux.SharedBy
	s.SharedAt = aux.SharedAt
	if s.OutputData == "" {
		s.OutputData = aux.Content
	}
	if s.InitialData == "" {
		s.InitialData = aux.InputContent
	}
	return nil
}

// NewSummary is the input of a create call. Text is used for UploadTypeText,
// FileName and File for UploadTypeUpload.
type NewSummary struct {
	Type       SummaryType
	UploadType UploadType
	Title      string
	Text       string
	FileName   string
	File       io.Reader
}

// CreateSummaryRequest is the JSON body of the create-from-text call.
type CreateSummaryRequest struct {
	UserID      ID          `json:"userId"`
	Type        SummaryType `json:"type"`
	UploadType  UploadType  `json:"uploadType"`
	Title       string      `json:"title,omitempty"`
	InitialData string      `json:"initialData"`
}

// ShareRequest is the JSON body of the share call.
type ShareRequest struct {
	SummaryID ID     `json:"summary_id"`
	Recipient string `json:"recipient"`
}

// RegenerateRequest is the JSON body of the regenerate call.
type RegenerateRequest struct {
	SummaryID ID     `json:"summaryId"`
	Feedback  string `json:"feedback"`
}
