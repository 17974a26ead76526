package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tallyline/survey-engine/pkg/models"
)

func TestBuildBatchNarrativePrompt(t *testing.T) {
	rows := []models.Row{
		{Ordinal: 0, Identity: map[string]string{"Name": "Ada", "ID": "101"}, Text: "More docs please"},
		{Ordinal: 3, Identity: map[string]string{"Name": "", "ID": "104"}, Text: "Faster builds"},
	}

	prompt := BuildBatchNarrativePrompt("Feedback text", 2, 5, []string{"Name", "ID"}, rows)

	assert.Contains(t, prompt, "Survey question: Feedback text")
	assert.Contains(t, prompt, "Batch 2 of 5, 2 answers.")
	assert.Contains(t, prompt, "[0] Ada / 101: More docs please")
	assert.Contains(t, prompt, "[3] 104: Faster builds", "blank identity fields are skipped")
}

func TestBuildBatchNarrativePromptAnonymousRow(t *testing.T) {
	rows := []models.Row{
		{Ordinal: 7, Identity: map[string]string{"Name": ""}, Text: "fine"},
	}

	prompt := BuildBatchNarrativePrompt("Q", 1, 1, []string{"Name"}, rows)
	assert.Contains(t, prompt, "[7] anonymous: fine")
}

func TestBuildRowClassificationPrompt(t *testing.T) {
	prompt := BuildRowClassificationPrompt("Feedback text", "The onboarding was confusing", []string{"Onboarding", "Pricing"})

	assert.Contains(t, prompt, "Survey question: Feedback text")
	assert.Contains(t, prompt, "- Onboarding")
	assert.Contains(t, prompt, "- Pricing")
	assert.Contains(t, prompt, "The onboarding was confusing")
}

func TestBuildAggregationPromptLabelsBatchesInOrder(t *testing.T) {
	prompt := BuildAggregationPrompt("Feedback text", []string{"first output", "second output", "third output"}, nil)

	first := strings.Index(prompt, "## Batch 1")
	second := strings.Index(prompt, "## Batch 2")
	third := strings.Index(prompt, "## Batch 3")
	assert.True(t, first >= 0 && first < second && second < third, "batch labels appear in index order")
	assert.Contains(t, prompt, "second output")
	assert.NotContains(t, prompt, "Anchor the report")
}

func TestBuildAggregationPromptWithSeedTopics(t *testing.T) {
	prompt := BuildAggregationPrompt("Feedback text", []string{"annotated set"}, []string{"Onboarding", "Pricing"})

	assert.Contains(t, prompt, "Anchor the report on these user-supplied themes:")
	assert.Contains(t, prompt, "- Onboarding")
	assert.Contains(t, prompt, "- Pricing")
}

func TestSystemMessagesDescribeTemplates(t *testing.T) {
	assert.Contains(t, BuildBatchNarrativeSystemMessage(), "## Themes")
	assert.Contains(t, BuildBatchNarrativeSystemMessage(), "## Negative feedback")
	assert.Contains(t, BuildAggregationSystemMessage(), "Ranked by total mention count")
	assert.Contains(t, BuildAggregationSystemMessage(), "earlier batch first")
	assert.Contains(t, BuildRowClassificationSystemMessage(), "matching theme names")
}
