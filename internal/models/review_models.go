package models

import "time"

const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// Score bounds enforced by validation; out-of-range upstream scores are
// clamped, never rejected.
const (
	MinSentimentScore = -5.0
	MaxSentimentScore = 5.0
)

type ReviewAnalysisItem struct {
	ID          string `json:"id"`
	ReferenceID string `json:"reference_id"`
	ReviewText  string `json:"review_text"`
}

// ReviewBatch is the unit delivered on the review-batches topic.
type ReviewBatch struct {
	BatchID  string               `json:"batch_id"`
	DealerID string               `json:"dealer_id"`
	Items    []ReviewAnalysisItem `json:"items"`
}

// RawResultEntry is one loosely-typed entry recovered from the upstream
// free-text answer before validation.
type RawResultEntry map[string]any

type AnalysisResultRecord struct {
	ID             string    `json:"id" dynamodbav:"id"`
	Sentiment      string    `json:"sentiment" dynamodbav:"sentiment"`
	SentimentScore float64   `json:"sentiment_score" dynamodbav:"sentiment_score"`
	Reasons        string    `json:"reasons" dynamodbav:"reasons"`
	Suggestion     *string   `json:"suggestion,omitempty" dynamodbav:"suggestion,omitempty"`
	Themes         []string  `json:"themes" dynamodbav:"themes"`
	AnalyzedAt     time.Time `json:"analyzed_at" dynamodbav:"analyzed_at"`
}
