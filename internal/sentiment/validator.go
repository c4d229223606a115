package sentiment

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/spacesedan/reviewflow/internal/models"
	"github.com/spacesedan/reviewflow/internal/monitoring"
)

// Upstream sometimes answers with Indonesian labels; both languages map to
// the canonical set.
var sentimentSynonyms = map[string]string{
	"positive": models.SentimentPositive,
	"negative": models.SentimentNegative,
	"neutral":  models.SentimentNeutral,
	"positif":  models.SentimentPositive,
	"negatif":  models.SentimentNegative,
	"netral":   models.SentimentNeutral,
}

// ValidateAndNormalize turns raw entries into canonical records. A bad entry
// yields an error string and is skipped; it never aborts the batch. With
// strict=true, labels outside the canonical set are rejected instead of
// passed through.
func ValidateAndNormalize(entries []models.RawResultEntry, strict bool) ([]models.AnalysisResultRecord, []string) {
	var valid []models.AnalysisResultRecord
	var errs []string
	seen := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		record, err := normalizeEntry(entry, strict)
		if err != nil {
			errs = append(errs, err.Error())
			monitoring.ValidationErrorsTotal.Inc()
			continue
		}
		if _, dup := seen[record.ID]; dup {
			errs = append(errs, fmt.Sprintf("entry %s: duplicate result for this id", record.ID))
			monitoring.ValidationErrorsTotal.Inc()
			continue
		}
		seen[record.ID] = struct{}{}
		valid = append(valid, record)
	}

	return valid, errs
}

func normalizeEntry(entry models.RawResultEntry, strict bool) (record models.AnalysisResultRecord, err error) {
	id := entryID(entry)

	// One malformed entry must never poison the rest of the batch.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("entry %s: unexpected processing error: %v", id, r)
		}
	}()

	if id == "unknown" {
		return record, fmt.Errorf("entry unknown: missing required field %q", "id")
	}

	rawSentiment, ok := entry["sentiment"]
	if !ok || rawSentiment == nil {
		return record, fmt.Errorf("entry %s: missing required field %q", id, "sentiment")
	}
	rawScore, ok := entry["score"]
	if !ok || rawScore == nil {
		return record, fmt.Errorf("entry %s: missing required field %q", id, "score")
	}

	sentiment, canonical := normalizeSentiment(toString(rawSentiment))
	if sentiment == "" {
		return record, fmt.Errorf("entry %s: empty sentiment label", id)
	}
	if strict && !canonical {
		return record, fmt.Errorf("entry %s: unrecognized sentiment label %q", id, sentiment)
	}

	score, ok := toFloat(rawScore)
	if !ok {
		return record, fmt.Errorf("entry %s: sentiment score %v is not numeric", id, rawScore)
	}
	score = clampScore(id, score)

	return models.AnalysisResultRecord{
		ID:             id,
		Sentiment:      sentiment,
		SentimentScore: score,
		Reasons:        toString(entry["reasons"]),
		Suggestion:     normalizeSuggestion(entry["suggestion"]),
		Themes:         normalizeThemes(entry["themes"]),
		AnalyzedAt:     time.Now().UTC(),
	}, nil
}

// normalizeSentiment trims and title-cases the label and maps known
// synonyms; canonical=false means the label fell outside the known set and
// was passed through as-is (lenient mode keeps it rather than losing data on
// novel upstream phrasing).
func normalizeSentiment(label string) (string, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	if mapped, ok := sentimentSynonyms[strings.ToLower(label)]; ok {
		return mapped, true
	}
	return titleCase(label), false
}

func titleCase(s string) string {
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func clampScore(id string, score float64) float64 {
	switch {
	case score < models.MinSentimentScore:
		slog.Warn("[Validator] Clamping out-of-range sentiment score",
			slog.String("id", id),
			slog.Float64("score", score))
		return models.MinSentimentScore
	case score > models.MaxSentimentScore:
		slog.Warn("[Validator] Clamping out-of-range sentiment score",
			slog.String("id", id),
			slog.Float64("score", score))
		return models.MaxSentimentScore
	}
	return score
}

// normalizeThemes returns a non-nil slice; any non-list value collapses to
// an empty list.
func normalizeThemes(v any) []string {
	themes := []string{}
	switch list := v.(type) {
	case []any:
		for _, item := range list {
			if s := strings.TrimSpace(toString(item)); s != "" {
				themes = append(themes, s)
			}
		}
	case []string:
		for _, item := range list {
			if s := strings.TrimSpace(item); s != "" {
				themes = append(themes, s)
			}
		}
	}
	return themes
}

func normalizeSuggestion(v any) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(toString(v))
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

func entryID(entry models.RawResultEntry) string {
	v, ok := entry["id"]
	if !ok || v == nil {
		return "unknown"
	}
	id := strings.TrimSpace(toString(v))
	if id == "" {
		return "unknown"
	}
	return id
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprintf("%v", s)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(n), ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
