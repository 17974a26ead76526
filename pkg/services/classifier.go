package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tallyline/survey-engine/pkg/llm"
	"github.com/tallyline/survey-engine/pkg/models"
	"github.com/tallyline/survey-engine/pkg/prompts"
	"github.com/tallyline/survey-engine/pkg/survey"
)

// Classification markers recorded instead of a model answer.
const (
	markerEmptyContent = "(empty content)"
	markerFailed       = "(classification failed)"
)

// Classifier assigns each dataset row to the user-supplied themes, one LLM
// call per row, strictly sequentially. A failed row is marked and skipped;
// classification of one row never blocks the rest. After all rows are
// annotated a single seeded aggregation call produces the dataset-level
// topics analysis, and that call failing fails the run.
type Classifier struct {
	client           llm.CompletionClient
	summarizer       *Summarizer
	progressInterval int
	sink             ProgressSink
	logger           *zap.Logger
}

// NewClassifier creates a Classifier. progressInterval is how often, in
// rows, progress events are emitted (the final row always emits).
func NewClassifier(client llm.CompletionClient, summarizer *Summarizer, progressInterval int, sink ProgressSink, logger *zap.Logger) *Classifier {
	return &Classifier{
		client:           client,
		summarizer:       summarizer,
		progressInterval: progressInterval,
		sink:             sink,
		logger:           logger.Named("classifier"),
	}
}

// Classify annotates a copy of the dataset's rows with their matched
// themes and returns the annotated rows plus the aggregated topics
// analysis. The dataset itself is never mutated here.
func (c *Classifier) Classify(ctx context.Context, dataset *models.ColumnDataset, topics []string) ([]models.Row, string, error) {
	c.logger.Info("Starting topic classification",
		zap.String("column", dataset.TargetColumn),
		zap.Int("rows", len(dataset.Rows)),
		zap.Int("topics", len(topics)))

	annotated := make([]models.Row, len(dataset.Rows))
	copy(annotated, dataset.Rows)

	failures := 0
	for i := range annotated {
		row := &annotated[i]
		if strings.TrimSpace(row.Text) == "" {
			row.Classification = markerEmptyContent
		} else {
			prompt := prompts.BuildRowClassificationPrompt(dataset.TargetColumn, row.Text, topics)
			systemMessage := prompts.BuildRowClassificationSystemMessage()

			response, err := c.client.Complete(ctx, prompt, systemMessage)
			if err != nil {
				failures++
				c.logger.Warn("Row classification failed, continuing",
					zap.String("column", dataset.TargetColumn),
					zap.Int("ordinal", row.Ordinal),
					zap.Error(err))
				row.Classification = markerFailed
			} else {
				row.Classification = parseClassification(response)
			}
		}

		if (i+1)%c.progressInterval == 0 || i+1 == len(annotated) {
			emit(c.sink, ProgressEvent{
				DatasetID: dataset.ID,
				Stage:     StageClassification,
				Message:   fmt.Sprintf("classified %d of %d answers", i+1, len(annotated)),
				Completed: i + 1,
				Total:     len(annotated),
			})
		}
	}

	if failures > 0 {
		c.logger.Warn("Classification finished with row failures",
			zap.String("column", dataset.TargetColumn),
			zap.Int("failures", failures),
			zap.Int("rows", len(annotated)))
	}

	analysis, err := c.summarizer.Summarize(ctx, dataset.TargetColumn, []string{serializeAnnotations(annotated)}, topics)
	if err != nil {
		return nil, "", fmt.Errorf("topics aggregation failed: %w", err)
	}

	return annotated, analysis, nil
}

// parseClassification normalizes a model reply. Some models answer with a
// JSON array of theme names instead of the requested comma-separated list;
// both forms are accepted.
func parseClassification(response string) string {
	trimmed := strings.TrimSpace(response)
	if themes, err := llm.ParseJSONResponse[[]string](trimmed); err == nil && len(themes) > 0 {
		return strings.Join(themes, ", ")
	}
	return trimmed
}

// serializeAnnotations renders the annotated set for the seeded
// aggregation call.
func serializeAnnotations(rows []models.Row) string {
	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "- [%d] %s: %s\n", row.Ordinal, row.Classification, survey.Normalize(row.Text))
	}
	return b.String()
}
