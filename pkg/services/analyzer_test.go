package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tallyline/survey-engine/pkg/llm"
	"github.com/tallyline/survey-engine/pkg/models"
	"github.com/tallyline/survey-engine/pkg/prompts"
)

// testDataset builds a dataset with n projected rows.
func testDataset(n int) *models.ColumnDataset {
	rows := make([]models.Row, n)
	for i := range rows {
		rows[i] = models.Row{
			Ordinal:  i,
			Identity: map[string]string{"Name": fmt.Sprintf("resp-%d", i)},
			Text:     fmt.Sprintf("answer %d", i),
		}
	}
	return models.NewColumnDataset("Feedback text", []string{"Name"}, rows)
}

// isAggregation reports whether a call is the reduce step, not a batch call.
func isAggregation(systemMessage string) bool {
	return systemMessage == prompts.BuildAggregationSystemMessage()
}

func newAnalyzer(client llm.CompletionClient, batchSize int, sink ProgressSink) *Analyzer {
	logger := zap.NewNop()
	return NewAnalyzer(client, NewSummarizer(client, logger), batchSize, sink, logger)
}

func TestAnalyzeCallCountMatchesBatches(t *testing.T) {
	mock := llm.NewMockClient()
	var batchCalls, reduceCalls int
	mock.CompleteFunc = func(ctx context.Context, prompt, systemMessage string) (string, error) {
		if isAggregation(systemMessage) {
			reduceCalls++
			return "final summary", nil
		}
		batchCalls++
		return fmt.Sprintf("batch output %d", batchCalls), nil
	}

	analyzer := newAnalyzer(mock, 10, nil)

	// 25 rows at batch size 10 make batches of 10, 10, 5.
	summary, err := analyzer.Analyze(context.Background(), testDataset(25))
	require.NoError(t, err)
	assert.Equal(t, "final summary", summary)
	assert.Equal(t, 3, batchCalls)
	assert.Equal(t, 1, reduceCalls)
	assert.Equal(t, 4, mock.CompleteCalls)
}

func TestAnalyzeBatchesArriveInOrder(t *testing.T) {
	mock := llm.NewMockClient()
	var aggregationPrompt string
	batch := 0
	mock.CompleteFunc = func(ctx context.Context, prompt, systemMessage string) (string, error) {
		if isAggregation(systemMessage) {
			aggregationPrompt = prompt
			return "final", nil
		}
		batch++
		return fmt.Sprintf("OUTPUT-%d", batch), nil
	}

	analyzer := newAnalyzer(mock, 10, nil)
	_, err := analyzer.Analyze(context.Background(), testDataset(25))
	require.NoError(t, err)

	first := strings.Index(aggregationPrompt, "OUTPUT-1")
	second := strings.Index(aggregationPrompt, "OUTPUT-2")
	third := strings.Index(aggregationPrompt, "OUTPUT-3")
	assert.True(t, first >= 0 && first < second && second < third,
		"reduce prompt preserves batch-index ordering")
}

func TestAnalyzeToleratesBatchFailure(t *testing.T) {
	mock := llm.NewMockClient()
	var aggregationPrompt string
	batch := 0
	mock.CompleteFunc = func(ctx context.Context, prompt, systemMessage string) (string, error) {
		if isAggregation(systemMessage) {
			aggregationPrompt = prompt
			return "final summary", nil
		}
		batch++
		if batch == 2 {
			return "", llm.NewError(llm.ErrorTypeTransport, "request failed", errors.New("boom"))
		}
		return fmt.Sprintf("batch output %d", batch), nil
	}

	analyzer := newAnalyzer(mock, 5, nil)

	// 25 rows at batch size 5 make 5 batches; batch 2 fails.
	summary, err := analyzer.Analyze(context.Background(), testDataset(25))
	require.NoError(t, err, "a failed batch does not fail the run")
	assert.Equal(t, "final summary", summary)
	assert.Equal(t, 5, batch, "remaining batches still execute")

	// The summarizer still receives all five entries, one a placeholder.
	assert.Contains(t, aggregationPrompt, "## Batch 5")
	assert.Contains(t, aggregationPrompt, "(batch 2 of 5 failed")
}

func TestAnalyzeAggregationFailureFailsRun(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, systemMessage string) (string, error) {
		if isAggregation(systemMessage) {
			return "", llm.NewError(llm.ErrorTypeTransport, "request failed", errors.New("boom"))
		}
		return "batch output", nil
	}

	analyzer := newAnalyzer(mock, 10, nil)
	_, err := analyzer.Analyze(context.Background(), testDataset(25))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reduce step failed")
}

func TestAnalyzeEmitsProgressPerBatch(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, systemMessage string) (string, error) {
		return "output", nil
	}

	var events []ProgressEvent
	analyzer := newAnalyzer(mock, 10, func(e ProgressEvent) { events = append(events, e) })

	d := testDataset(25)
	_, err := analyzer.Analyze(context.Background(), d)
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, StageAnalysis, events[0].Stage)
	assert.Equal(t, d.ID, events[0].DatasetID)
	assert.Equal(t, "analyzed batch 1 of 3", events[0].Message)
	assert.Equal(t, 3, events[2].Completed)
	assert.Equal(t, 3, events[2].Total)
}
