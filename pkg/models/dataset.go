package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnalysisStatus tracks the narrative-analysis state machine for a dataset.
type AnalysisStatus string

const (
	AnalysisIdle    AnalysisStatus = "idle"
	AnalysisRunning AnalysisStatus = "analyzing"
	AnalysisDone    AnalysisStatus = "analyzed"
	AnalysisFailed  AnalysisStatus = "failed"
)

// ClassificationStatus tracks the per-row classification state machine.
// It is independent of AnalysisStatus; both runs may execute against the
// same dataset.
type ClassificationStatus string

const (
	ClassificationIdle    ClassificationStatus = "idle"
	ClassificationRunning ClassificationStatus = "classifying"
	ClassificationDone    ClassificationStatus = "classified"
	ClassificationFailed  ClassificationStatus = "failed"
)

// RawRow is one parsed spreadsheet row: column name to display value.
// Produced once per uploaded workbook and never mutated afterwards.
type RawRow map[string]string

// Row is one projected dataset row: the identity fields plus the target
// column's text. Classification is empty until the topic classifier has run.
type Row struct {
	Ordinal        int               `json:"ordinal"`
	Identity       map[string]string `json:"identity"`
	Text           string            `json:"text"`
	Classification string            `json:"classification,omitempty"`
}

// ColumnDataset holds the filtered rows and run state for one analyzable
// survey column. Only the pipeline controller mutates it.
type ColumnDataset struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	TargetColumn    string    `json:"target_column"`
	IdentityColumns []string  `json:"identity_columns"`
	Rows            []Row     `json:"rows"`

	AnalysisStatus       AnalysisStatus       `json:"analysis_status"`
	ClassificationStatus ClassificationStatus `json:"classification_status"`

	NarrativeSummary     string   `json:"narrative_summary,omitempty"`
	ClassificationTopics []string `json:"classification_topics,omitempty"`
	TopicsAnalysis       string   `json:"topics_analysis,omitempty"`

	ProgressMessage string    `json:"progress_message,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewColumnDataset creates a dataset for one surviving column. The name
// combines the source column and row count, matching the label shown to
// the user.
func NewColumnDataset(targetColumn string, identityColumns []string, rows []Row) *ColumnDataset {
	return &ColumnDataset{
		ID:                   uuid.New(),
		Name:                 fmt.Sprintf("%s (%d answers)", targetColumn, len(rows)),
		TargetColumn:         targetColumn,
		IdentityColumns:      identityColumns,
		Rows:                 rows,
		AnalysisStatus:       AnalysisIdle,
		ClassificationStatus: ClassificationIdle,
		CreatedAt:            time.Now().UTC(),
	}
}

// Analyzed reports whether a narrative analysis has already completed.
// Re-running analysis on an analyzed dataset is a no-op; a fresh upload is
// the only reset path.
func (d *ColumnDataset) Analyzed() bool {
	return d.AnalysisStatus == AnalysisDone && d.NarrativeSummary != ""
}

// Summary is the read-only view of a dataset returned by the API, with row
// payloads omitted unless requested.
type Summary struct {
	ID                   uuid.UUID            `json:"id"`
	Name                 string               `json:"name"`
	TargetColumn         string               `json:"target_column"`
	RowCount             int                  `json:"row_count"`
	AnalysisStatus       AnalysisStatus       `json:"analysis_status"`
	ClassificationStatus ClassificationStatus `json:"classification_status"`
	ProgressMessage      string               `json:"progress_message,omitempty"`
	LastError            string               `json:"last_error,omitempty"`
}

// Summarize builds the API view of the dataset.
func (d *ColumnDataset) Summarize() Summary {
	return Summary{
		ID:                   d.ID,
		Name:                 d.Name,
		TargetColumn:         d.TargetColumn,
		RowCount:             len(d.Rows),
		AnalysisStatus:       d.AnalysisStatus,
		ClassificationStatus: d.ClassificationStatus,
		ProgressMessage:      d.ProgressMessage,
		LastError:            d.LastError,
	}
}
