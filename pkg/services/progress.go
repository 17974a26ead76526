package services

import (
	"github.com/google/uuid"
)

// Stage names the pipeline stage a progress event belongs to.
type Stage string

const (
	StageAnalysis       Stage = "analysis"
	StageClassification Stage = "classification"
)

// ProgressEvent is published by the batch analyzer and topic classifier at
// batch and row boundaries. The pipeline controller consumes events and
// folds them into dataset state; the core never mutates datasets itself.
type ProgressEvent struct {
	DatasetID uuid.UUID
	Stage     Stage
	Message   string
	Completed int
	Total     int
}

// ProgressSink receives progress events. A nil sink disables reporting.
type ProgressSink func(ProgressEvent)

// emit publishes an event if the sink is set.
func emit(sink ProgressSink, event ProgressEvent) {
	if sink != nil {
		sink(event)
	}
}
