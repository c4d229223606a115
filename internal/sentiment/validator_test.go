package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/reviewflow/internal/models"
)

func TestValidateAndNormalize_MixedBatch(t *testing.T) {
	entries := []models.RawResultEntry{
		{"id": "rev-1", "sentiment": "Positive", "score": 3.2, "reasons": "helpful sales team"},
		{"id": "rev-2", "sentiment": "Negatif", "score": -7.0},
	}

	records, errs := ValidateAndNormalize(entries, false)
	require.Len(t, records, 2)
	assert.Empty(t, errs)

	assert.Equal(t, models.SentimentPositive, records[0].Sentiment)
	assert.Equal(t, 3.2, records[0].SentimentScore)
	assert.Equal(t, "helpful sales team", records[0].Reasons)

	assert.Equal(t, models.SentimentNegative, records[1].Sentiment)
	assert.Equal(t, models.MinSentimentScore, records[1].SentimentScore)
}

func TestValidateAndNormalize_SynonymMapping(t *testing.T) {
	cases := map[string]string{
		"positive": models.SentimentPositive,
		"POSITIVE": models.SentimentPositive,
		"Positif":  models.SentimentPositive,
		"negative": models.SentimentNegative,
		"negatif":  models.SentimentNegative,
		"Neutral":  models.SentimentNeutral,
		"netral":   models.SentimentNeutral,
	}

	for label, want := range cases {
		t.Run(label, func(t *testing.T) {
			records, errs := ValidateAndNormalize([]models.RawResultEntry{
				{"id": "rev-1", "sentiment": label, "score": 1.0},
			}, true)
			require.Len(t, records, 1)
			assert.Empty(t, errs)
			assert.Equal(t, want, records[0].Sentiment)
		})
	}
}

func TestValidateAndNormalize_UnknownLabel(t *testing.T) {
	entries := []models.RawResultEntry{
		{"id": "rev-1", "sentiment": "mixed", "score": 0.5},
	}

	t.Run("lenient passes label through title-cased", func(t *testing.T) {
		records, errs := ValidateAndNormalize(entries, false)
		require.Len(t, records, 1)
		assert.Empty(t, errs)
		assert.Equal(t, "Mixed", records[0].Sentiment)
	})

	t.Run("strict rejects it", func(t *testing.T) {
		records, errs := ValidateAndNormalize(entries, true)
		assert.Empty(t, records)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "unrecognized sentiment label")
	})
}

func TestValidateAndNormalize_ScoreClamping(t *testing.T) {
	entries := []models.RawResultEntry{
		{"id": "low", "sentiment": "Negative", "score": -12.0},
		{"id": "high", "sentiment": "Positive", "score": 9.9},
		{"id": "edge", "sentiment": "Positive", "score": 5.0},
	}

	records, errs := ValidateAndNormalize(entries, false)
	require.Len(t, records, 3)
	assert.Empty(t, errs)
	assert.Equal(t, models.MinSentimentScore, records[0].SentimentScore)
	assert.Equal(t, models.MaxSentimentScore, records[1].SentimentScore)
	assert.Equal(t, 5.0, records[2].SentimentScore)
}

func TestValidateAndNormalize_MissingFields(t *testing.T) {
	entries := []models.RawResultEntry{
		{"sentiment": "Positive", "score": 1.0},
		{"id": "rev-1", "score": 1.0},
		{"id": "rev-2", "sentiment": "Positive"},
		{"id": "rev-3", "sentiment": "Positive", "score": "not a number"},
	}

	records, errs := ValidateAndNormalize(entries, false)
	assert.Empty(t, records)
	require.Len(t, errs, 4)
	assert.Contains(t, errs[0], `missing required field "id"`)
	assert.Contains(t, errs[1], `entry rev-1: missing required field "sentiment"`)
	assert.Contains(t, errs[2], `entry rev-2: missing required field "score"`)
	assert.Contains(t, errs[3], "is not numeric")
}

func TestValidateAndNormalize_DuplicateID(t *testing.T) {
	entries := []models.RawResultEntry{
		{"id": "rev-1", "sentiment": "Positive", "score": 1.0},
		{"id": "rev-1", "sentiment": "Negative", "score": -1.0},
	}

	records, errs := ValidateAndNormalize(entries, false)
	require.Len(t, records, 1)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "duplicate result")
}

func TestValidateAndNormalize_BadEntryNeverPoisonsBatch(t *testing.T) {
	entries := []models.RawResultEntry{
		{"id": "rev-1", "sentiment": "Positive", "score": 1.0},
		{"id": "rev-2", "sentiment": map[string]any{"weird": true}, "score": []any{1}},
		{"id": "rev-3", "sentiment": "Neutral", "score": 0.0},
	}

	records, errs := ValidateAndNormalize(entries, false)
	require.Len(t, records, 2)
	assert.Len(t, errs, 1)
	assert.Equal(t, "rev-1", records[0].ID)
	assert.Equal(t, "rev-3", records[1].ID)
}

func TestNormalizeThemes(t *testing.T) {
	records, errs := ValidateAndNormalize([]models.RawResultEntry{
		{"id": "rev-1", "sentiment": "Positive", "score": 1.0, "themes": []any{"service", "  price ", ""}},
		{"id": "rev-2", "sentiment": "Positive", "score": 1.0, "themes": "service"},
		{"id": "rev-3", "sentiment": "Positive", "score": 1.0},
	}, false)
	require.Len(t, records, 3)
	assert.Empty(t, errs)

	assert.Equal(t, []string{"service", "price"}, records[0].Themes)
	// Non-list and absent theme values collapse to an empty, non-nil slice.
	assert.NotNil(t, records[1].Themes)
	assert.Empty(t, records[1].Themes)
	assert.NotNil(t, records[2].Themes)
	assert.Empty(t, records[2].Themes)
}

func TestNormalizeSuggestion(t *testing.T) {
	records, errs := ValidateAndNormalize([]models.RawResultEntry{
		{"id": "rev-1", "sentiment": "Positive", "score": 1.0, "suggestion": "null"},
		{"id": "rev-2", "sentiment": "Positive", "score": 1.0, "suggestion": "  "},
		{"id": "rev-3", "sentiment": "Positive", "score": 1.0, "suggestion": "train the reception staff"},
		{"id": "rev-4", "sentiment": "Positive", "score": 1.0},
	}, false)
	require.Len(t, records, 4)
	assert.Empty(t, errs)

	assert.Nil(t, records[0].Suggestion)
	assert.Nil(t, records[1].Suggestion)
	require.NotNil(t, records[2].Suggestion)
	assert.Equal(t, "train the reception staff", *records[2].Suggestion)
	assert.Nil(t, records[3].Suggestion)
}

func TestValidateAndNormalize_StringScores(t *testing.T) {
	records, errs := ValidateAndNormalize([]models.RawResultEntry{
		{"id": "rev-1", "sentiment": "Positive", "score": "3.5"},
		{"id": "rev-2", "sentiment": "Negative", "score": "-2,5"},
	}, false)
	require.Len(t, records, 2)
	assert.Empty(t, errs)
	assert.Equal(t, 3.5, records[0].SentimentScore)
	assert.Equal(t, -2.5, records[1].SentimentScore)
}
