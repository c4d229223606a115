package sentiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/reviewflow/internal/models"
)

// UpstreamClient is the network client contract the pipeline depends on.
type UpstreamClient interface {
	Send(ctx context.Context, items []models.ReviewAnalysisItem) (string, error)
}

// Pipeline orchestrates one batched analysis call: build request, call the
// resilient client, extract entries from the free-text answer, validate.
type Pipeline struct {
	client       UpstreamClient
	strictLabels bool
}

func NewPipeline(client UpstreamClient, strictLabels bool) *Pipeline {
	return &Pipeline{client: client, strictLabels: strictLabels}
}

// Analyze processes one batch. Client and extraction failures are
// all-or-nothing and surface as a single batch-level error string;
// validation failures are partial-success.
func (p *Pipeline) Analyze(ctx context.Context, items []models.ReviewAnalysisItem) ([]models.AnalysisResultRecord, []string) {
	if len(items) == 0 {
		return nil, nil
	}

	slog.Info("[Pipeline] Analyzing review batch", slog.Int("batch_size", len(items)))

	text, err := p.client.Send(ctx, items)
	if err != nil {
		return nil, []string{fmt.Sprintf("sentiment request failed: %v", err)}
	}
	if text == "" {
		return nil, []string{"upstream returned no analysis text"}
	}

	entries, ok := ExtractEntries(text)
	if !ok {
		return nil, []string{"no structured sentiment data found in upstream response"}
	}

	records, errs := ValidateAndNormalize(entries, p.strictLabels)
	slog.Info("[Pipeline] Batch analysis complete",
		slog.Int("records", len(records)),
		slog.Int("errors", len(errs)))
	return records, errs
}

// AnalyzeOne wraps a single item in a one-element batch. The returned error
// string is empty when analysis succeeded.
func (p *Pipeline) AnalyzeOne(ctx context.Context, item models.ReviewAnalysisItem) (*models.AnalysisResultRecord, string) {
	records, errs := p.Analyze(ctx, []models.ReviewAnalysisItem{item})
	if len(records) > 0 {
		return &records[0], ""
	}
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return nil, "no result produced for review " + item.ID
}
