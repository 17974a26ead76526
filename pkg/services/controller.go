package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallyline/survey-engine/pkg/apperrors"
	"github.com/tallyline/survey-engine/pkg/config"
	"github.com/tallyline/survey-engine/pkg/ingest"
	"github.com/tallyline/survey-engine/pkg/llm"
	"github.com/tallyline/survey-engine/pkg/models"
	"github.com/tallyline/survey-engine/pkg/survey"
)

// Controller owns the per-column datasets and sequences the pipeline in
// response to user actions. It is the only component that mutates dataset
// state; the analyzer and classifier report back through return values and
// progress events.
type Controller struct {
	mu       sync.Mutex
	datasets map[uuid.UUID]*models.ColumnDataset
	order    []uuid.UUID

	cfg        config.AnalysisConfig
	selector   survey.Selector
	analyzer   *Analyzer
	classifier *Classifier
	logger     *zap.Logger
}

// NewController wires the pipeline together from configuration and an LLM
// client.
func NewController(cfg config.AnalysisConfig, client llm.CompletionClient, logger *zap.Logger) *Controller {
	c := &Controller{
		datasets: make(map[uuid.UUID]*models.ColumnDataset),
		cfg:      cfg,
		selector: survey.Selector{
			Policy:    admissionPolicy(cfg),
			Threshold: cfg.UniqueValueThreshold,
			Sentinel:  cfg.NoAnswerSentinel,
		},
		logger: logger.Named("pipeline"),
	}

	summarizer := NewSummarizer(client, logger)
	c.analyzer = NewAnalyzer(client, summarizer, cfg.BatchSize, c.onProgress, logger)
	c.classifier = NewClassifier(client, summarizer, cfg.ProgressRowInterval, c.onProgress, logger)
	return c
}

// admissionPolicy builds the configured column-admission strategy.
func admissionPolicy(cfg config.AnalysisConfig) survey.AdmissionPolicy {
	if cfg.ColumnAdmissionPolicy == config.PolicyBlacklistPattern {
		return survey.BlacklistPatternPolicy{Patterns: cfg.BlacklistPatterns}
	}
	return survey.MarkerSubstringPolicy{Marker: cfg.MarkerSubstring}
}

// Ingest replaces all datasets with the analyzable columns of the uploaded
// table. Prior datasets are discarded wholesale.
func (c *Controller) Ingest(table *ingest.Table) []models.Summary {
	datasets := make(map[uuid.UUID]*models.ColumnDataset)
	var order []uuid.UUID

	for _, column := range table.Headers {
		if column == "" || !c.selector.IsAnalyzable(column, table.Rows) {
			continue
		}

		identity := survey.IdentityColumns(table.Headers, c.cfg.IdentityColumns, c.cfg.IdentityColumnCount, column)
		rows := survey.Project(table.Rows, identity, column, c.cfg.NoAnswerSentinel)
		dataset := models.NewColumnDataset(column, identity, rows)
		datasets[dataset.ID] = dataset
		order = append(order, dataset.ID)

		c.logger.Info("Dataset created",
			zap.String("column", column),
			zap.Int("rows", len(rows)))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.datasets = datasets
	c.order = order
	return c.summariesLocked()
}

// Datasets lists the current datasets in source column order.
func (c *Controller) Datasets() []models.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summariesLocked()
}

func (c *Controller) summariesLocked() []models.Summary {
	out := make([]models.Summary, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.datasets[id].Summarize())
	}
	return out
}

// Dataset returns a snapshot copy of one dataset, rows included.
func (c *Controller) Dataset(id uuid.UUID) (*models.ColumnDataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.datasets[id]
	if !ok {
		return nil, apperrors.ErrDatasetNotFound
	}
	snapshot := *d
	snapshot.Rows = make([]models.Row, len(d.Rows))
	copy(snapshot.Rows, d.Rows)
	return &snapshot, nil
}

// RunAnalysis executes the narrative analysis for one dataset. Runs block
// until done; callers wanting asynchrony start their own goroutine. A
// dataset that is already analyzed is left untouched (re-analysis is a
// no-op; a fresh upload is the reset path). A run already in progress is
// reported as ErrRunInProgress.
func (c *Controller) RunAnalysis(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	d, ok := c.datasets[id]
	if !ok {
		c.mu.Unlock()
		return apperrors.ErrDatasetNotFound
	}
	if d.Analyzed() {
		c.mu.Unlock()
		c.logger.Info("Dataset already analyzed, skipping", zap.String("column", d.TargetColumn))
		return nil
	}
	if d.AnalysisStatus == models.AnalysisRunning {
		c.mu.Unlock()
		return apperrors.ErrRunInProgress
	}
	d.AnalysisStatus = models.AnalysisRunning
	d.ProgressMessage = "starting analysis"
	d.LastError = ""
	snapshot := *d
	c.mu.Unlock()

	summary, err := c.analyzer.Analyze(ctx, &snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		d.AnalysisStatus = models.AnalysisFailed
		d.LastError = err.Error()
		d.ProgressMessage = fmt.Sprintf("analysis failed: %v", err)
		return err
	}
	d.NarrativeSummary = summary
	d.AnalysisStatus = models.AnalysisDone
	d.ProgressMessage = "analysis complete"
	return nil
}

// RunClassification executes the per-row topic classification for one
// dataset against the supplied themes. The theme list must be non-empty
// and is immutable for the duration of the run.
func (c *Controller) RunClassification(ctx context.Context, id uuid.UUID, topics []string) error {
	if len(topics) == 0 {
		return apperrors.ErrNoTopics
	}

	c.mu.Lock()
	d, ok := c.datasets[id]
	if !ok {
		c.mu.Unlock()
		return apperrors.ErrDatasetNotFound
	}
	if d.ClassificationStatus == models.ClassificationRunning {
		c.mu.Unlock()
		return apperrors.ErrRunInProgress
	}
	d.ClassificationStatus = models.ClassificationRunning
	d.ClassificationTopics = topics
	d.ProgressMessage = "starting classification"
	d.LastError = ""
	snapshot := *d
	snapshot.Rows = make([]models.Row, len(d.Rows))
	copy(snapshot.Rows, d.Rows)
	c.mu.Unlock()

	annotated, analysis, err := c.classifier.Classify(ctx, &snapshot, topics)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		d.ClassificationStatus = models.ClassificationFailed
		d.LastError = err.Error()
		d.ProgressMessage = fmt.Sprintf("classification failed: %v", err)
		return err
	}
	d.Rows = annotated
	d.TopicsAnalysis = analysis
	d.ClassificationStatus = models.ClassificationDone
	d.ProgressMessage = "classification complete"
	return nil
}

// onProgress folds analyzer/classifier progress events into dataset state.
func (c *Controller) onProgress(event ProgressEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.datasets[event.DatasetID]; ok {
		d.ProgressMessage = event.Message
	}
}
