package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/reviewflow/internal/models"
)

type stubClient struct {
	text  string
	err   error
	calls int
	items []models.ReviewAnalysisItem
}

func (s *stubClient) Send(_ context.Context, items []models.ReviewAnalysisItem) (string, error) {
	s.calls++
	s.items = items
	return s.text, s.err
}

func testItems() []models.ReviewAnalysisItem {
	return []models.ReviewAnalysisItem{
		{ID: "rev-1", ReferenceID: "order-100", ReviewText: "Great service, fast delivery."},
		{ID: "rev-2", ReferenceID: "order-101", ReviewText: "Waited two hours for paperwork."},
	}
}

func TestPipeline_AnalyzeSuccess(t *testing.T) {
	client := &stubClient{text: "```json\n" +
		`[{"id": "rev-1", "sentiment": "Positive", "score": 4.0, "themes": ["service"]},` +
		`{"id": "rev-2", "sentiment": "Negatif", "score": -3.0}]` +
		"\n```"}
	p := NewPipeline(client, false)

	records, errs := p.Analyze(context.Background(), testItems())
	require.Len(t, records, 2)
	assert.Empty(t, errs)
	assert.Equal(t, 1, client.calls)
	assert.Len(t, client.items, 2)
	assert.Equal(t, models.SentimentNegative, records[1].Sentiment)
}

func TestPipeline_EmptyBatchSkipsUpstream(t *testing.T) {
	client := &stubClient{}
	p := NewPipeline(client, false)

	records, errs := p.Analyze(context.Background(), nil)
	assert.Nil(t, records)
	assert.Nil(t, errs)
	assert.Zero(t, client.calls)
}

func TestPipeline_ClientErrorIsBatchLevel(t *testing.T) {
	client := &stubClient{err: errors.New("connection refused")}
	p := NewPipeline(client, false)

	records, errs := p.Analyze(context.Background(), testItems())
	assert.Empty(t, records)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "sentiment request failed")
	assert.Contains(t, errs[0], "connection refused")
}

func TestPipeline_EmptyUpstreamText(t *testing.T) {
	client := &stubClient{text: ""}
	p := NewPipeline(client, false)

	records, errs := p.Analyze(context.Background(), testItems())
	assert.Empty(t, records)
	assert.Equal(t, []string{"upstream returned no analysis text"}, errs)
}

func TestPipeline_UnparseableUpstreamText(t *testing.T) {
	client := &stubClient{text: "I could not analyze these reviews, sorry."}
	p := NewPipeline(client, false)

	records, errs := p.Analyze(context.Background(), testItems())
	assert.Empty(t, records)
	assert.Equal(t, []string{"no structured sentiment data found in upstream response"}, errs)
}

func TestPipeline_PartialSuccess(t *testing.T) {
	// Validation failures drop individual entries, never the whole batch.
	client := &stubClient{text: `[{"id": "rev-1", "sentiment": "Positive", "score": 2.0},` +
		`{"id": "rev-2", "sentiment": "Negative"}]`}
	p := NewPipeline(client, false)

	records, errs := p.Analyze(context.Background(), testItems())
	require.Len(t, records, 1)
	require.Len(t, errs, 1)
	assert.Equal(t, "rev-1", records[0].ID)
	assert.Contains(t, errs[0], `missing required field "score"`)
}

func TestPipeline_StrictLabels(t *testing.T) {
	client := &stubClient{text: `[{"id": "rev-1", "sentiment": "ambivalent", "score": 0.0}]`}

	records, errs := NewPipeline(client, true).Analyze(context.Background(), testItems())
	assert.Empty(t, records)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "unrecognized sentiment label")

	records, errs = NewPipeline(client, false).Analyze(context.Background(), testItems())
	require.Len(t, records, 1)
	assert.Empty(t, errs)
	assert.Equal(t, "Ambivalent", records[0].Sentiment)
}

func TestPipeline_AnalyzeOne(t *testing.T) {
	item := models.ReviewAnalysisItem{ID: "rev-9", ReviewText: "Clean showroom."}

	t.Run("success", func(t *testing.T) {
		client := &stubClient{text: `[{"id": "rev-9", "sentiment": "Positive", "score": 3.0}]`}
		record, errMsg := NewPipeline(client, false).AnalyzeOne(context.Background(), item)
		require.NotNil(t, record)
		assert.Empty(t, errMsg)
		assert.Equal(t, "rev-9", record.ID)
		assert.Len(t, client.items, 1)
	})

	t.Run("failure surfaces first error", func(t *testing.T) {
		client := &stubClient{err: errors.New("timeout")}
		record, errMsg := NewPipeline(client, false).AnalyzeOne(context.Background(), item)
		assert.Nil(t, record)
		assert.Contains(t, errMsg, "sentiment request failed")
	})
}
