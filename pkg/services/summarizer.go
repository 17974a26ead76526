package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tallyline/survey-engine/pkg/llm"
	"github.com/tallyline/survey-engine/pkg/prompts"
)

// Summarizer is the reduce step: it merges per-batch narrative outputs into
// one final report with a single LLM call. Unlike per-batch failures, a
// failure here fails the whole run.
type Summarizer struct {
	client llm.CompletionClient
	logger *zap.Logger
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(client llm.CompletionClient, logger *zap.Logger) *Summarizer {
	return &Summarizer{
		client: client,
		logger: logger.Named("summarizer"),
	}
}

// Summarize merges the batch outputs (including failure placeholders) into
// the final narrative. seedTopics anchors the report for classification
// aggregates and is nil for plain analysis runs.
func (s *Summarizer) Summarize(ctx context.Context, columnName string, batchOutputs []string, seedTopics []string) (string, error) {
	prompt := prompts.BuildAggregationPrompt(columnName, batchOutputs, seedTopics)
	systemMessage := prompts.BuildAggregationSystemMessage()

	result, err := s.client.Complete(ctx, prompt, systemMessage)
	if err != nil {
		return "", fmt.Errorf("aggregate %d batch outputs: %w", len(batchOutputs), err)
	}

	s.logger.Info("Aggregation completed",
		zap.String("column", columnName),
		zap.Int("batch_outputs", len(batchOutputs)))

	return result, nil
}
