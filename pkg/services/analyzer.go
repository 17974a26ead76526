package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tallyline/survey-engine/pkg/llm"
	"github.com/tallyline/survey-engine/pkg/models"
	"github.com/tallyline/survey-engine/pkg/prompts"
	"github.com/tallyline/survey-engine/pkg/survey"
)

// Analyzer runs the map step of a narrative analysis: it chunks a dataset's
// rows, sends each batch to the LLM in order, and reduces the batch outputs
// through the Summarizer. Batches run strictly sequentially; the reduce
// step's tie-break rule depends on batch ordering, and the backend is never
// hit with more than one request at a time.
type Analyzer struct {
	client     llm.CompletionClient
	summarizer *Summarizer
	batchSize  int
	sink       ProgressSink
	logger     *zap.Logger
}

// NewAnalyzer creates an Analyzer. batchSize must be >= 1.
func NewAnalyzer(client llm.CompletionClient, summarizer *Summarizer, batchSize int, sink ProgressSink, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		client:     client,
		summarizer: summarizer,
		batchSize:  batchSize,
		sink:       sink,
		logger:     logger.Named("analyzer"),
	}
}

// Analyze produces the narrative summary for the dataset. A failed batch
// does not abort the run: its output is replaced with a placeholder string
// and the remaining batches still execute. Only a failure of the final
// aggregation call fails the run. The dataset itself is never mutated here.
func (a *Analyzer) Analyze(ctx context.Context, dataset *models.ColumnDataset) (string, error) {
	batches := survey.Chunk(dataset.Rows, a.batchSize)

	a.logger.Info("Starting narrative analysis",
		zap.String("column", dataset.TargetColumn),
		zap.Int("rows", len(dataset.Rows)),
		zap.Int("batches", len(batches)))

	outputs := make([]string, 0, len(batches))
	for i, batch := range batches {
		prompt := prompts.BuildBatchNarrativePrompt(dataset.TargetColumn, i+1, len(batches), dataset.IdentityColumns, batch)
		systemMessage := prompts.BuildBatchNarrativeSystemMessage()

		output, err := a.client.Complete(ctx, prompt, systemMessage)
		if err != nil {
			a.logger.Warn("Batch analysis failed, continuing",
				zap.String("column", dataset.TargetColumn),
				zap.Int("batch", i+1),
				zap.Error(err))
			output = fmt.Sprintf("(batch %d of %d failed: %v)", i+1, len(batches), err)
		}
		outputs = append(outputs, output)

		emit(a.sink, ProgressEvent{
			DatasetID: dataset.ID,
			Stage:     StageAnalysis,
			Message:   fmt.Sprintf("analyzed batch %d of %d", i+1, len(batches)),
			Completed: i + 1,
			Total:     len(batches),
		})
	}

	summary, err := a.summarizer.Summarize(ctx, dataset.TargetColumn, outputs, nil)
	if err != nil {
		return "", fmt.Errorf("reduce step failed: %w", err)
	}

	return summary, nil
}
