// Package prompts builds the request payloads sent to the LLM backend.
// All builders are pure; no I/O happens here.
package prompts

import (
	"fmt"
	"strings"

	"github.com/tallyline/survey-engine/pkg/models"
)

// BuildBatchNarrativeSystemMessage returns the analyst persona used for
// per-batch thematic extraction.
func BuildBatchNarrativeSystemMessage() string {
	return `You are a survey analyst. You receive a batch of free-text survey answers together with respondent identity fields. First clean the data: ignore filler answers such as "n/a", "-", "nothing" and answers that only restate the question. Then extract the common themes across the batch.

Respond using exactly this template:

## Themes
For each theme, one line: <theme name> — <mention count> mentions — <one-sentence description>

## Negative feedback
One line per negative-sentiment answer, quoting the respondent briefly. Write "none" if there is none.`
}

// BuildBatchNarrativePrompt serializes one batch of rows for thematic
// extraction. identityColumns fixes the order of the identity fields; the
// batch index is one-based and only informational.
func BuildBatchNarrativePrompt(columnName string, batchIndex, batchCount int, identityColumns []string, rows []models.Row) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("# Survey question: %s\n\n", columnName))
	prompt.WriteString(fmt.Sprintf("Batch %d of %d, %d answers.\n\n", batchIndex, batchCount, len(rows)))
	prompt.WriteString("## Answers\n\n")
	for _, row := range rows {
		prompt.WriteString(fmt.Sprintf("- [%d] %s: %s\n", row.Ordinal, identitySummary(row, identityColumns), row.Text))
	}

	return prompt.String()
}

// BuildRowClassificationSystemMessage returns the classifier persona used
// for single-answer topic assignment.
func BuildRowClassificationSystemMessage() string {
	return `You are a survey answer classifier. You receive one free-text survey answer and a list of candidate themes. If the answer matches one or more themes, respond with only the matching theme names, comma separated, exactly as given. If no theme matches, respond with a terse free-text summary of the answer in at most ten words. Respond with nothing else.`
}

// BuildRowClassificationPrompt renders one answer plus the candidate theme
// list for classification.
func BuildRowClassificationPrompt(columnName, answer string, topics []string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("Survey question: %s\n\n", columnName))
	prompt.WriteString("Candidate themes:\n")
	for _, topic := range topics {
		prompt.WriteString(fmt.Sprintf("- %s\n", topic))
	}
	prompt.WriteString(fmt.Sprintf("\nAnswer:\n%s\n", answer))

	return prompt.String()
}

// BuildAggregationSystemMessage returns the summarizer persona used for the
// reduce step.
func BuildAggregationSystemMessage() string {
	return `You are a survey report writer. You receive per-batch thematic analyses of the same survey question, labeled by batch index. Merge them into one report.

Respond using exactly this template:

## Themes
Ranked by total mention count across batches, highest first. When two themes have the same count, keep the one that appears in the earlier batch first. One line per theme: <theme name> — <total mentions> mentions — <one-sentence description>

## Negative feedback
Every negative-sentiment item from any batch, regardless of how often it was mentioned. Write "none" if there is none.`
}

// BuildAggregationPrompt concatenates the per-batch outputs, labeled by
// batch index, for the single reduce call. Failed batches arrive as
// placeholder strings and are passed through unchanged. seedTopics is
// non-nil only for the classification aggregate, where the user-supplied
// themes anchor the report.
func BuildAggregationPrompt(columnName string, batchOutputs []string, seedTopics []string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("# Survey question: %s\n\n", columnName))
	if len(seedTopics) > 0 {
		prompt.WriteString("Anchor the report on these user-supplied themes:\n")
		for _, topic := range seedTopics {
			prompt.WriteString(fmt.Sprintf("- %s\n", topic))
		}
		prompt.WriteString("\n")
	}
	for i, output := range batchOutputs {
		prompt.WriteString(fmt.Sprintf("## Batch %d\n\n%s\n\n", i+1, output))
	}

	return prompt.String()
}

// identitySummary joins a row's identity values in column order for the
// prompt, skipping blanks.
func identitySummary(row models.Row, identityColumns []string) string {
	parts := make([]string, 0, len(identityColumns))
	for _, col := range identityColumns {
		if v := row.Identity[col]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "anonymous"
	}
	return strings.Join(parts, " / ")
}
