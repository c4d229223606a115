// Package sentiment turns the upstream service's free-text answers into
// validated sentiment records.
package sentiment

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/spacesedan/reviewflow/internal/models"
	"github.com/spacesedan/reviewflow/internal/monitoring"
)

// The upstream model usually embeds a fenced JSON block, sometimes a bare
// array, and occasionally answers in numbered prose. Strategies are tried in
// that order; first success wins.

var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractEntries recovers raw result entries from the upstream answer.
// ok=false means no strategy found any structure; re-parsing the same text
// will not help, the caller needs a fresh upstream call.
func ExtractEntries(raw string) ([]models.RawResultEntry, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}

	if entries, ok := extractFencedBlock(raw); ok {
		monitoring.ExtractionStrategyTotal.WithLabelValues(monitoring.StrategyFencedBlock).Inc()
		return entries, true
	}

	if entries, ok := extractBracketedArray(raw); ok {
		monitoring.ExtractionStrategyTotal.WithLabelValues(monitoring.StrategyArrayScan).Inc()
		return entries, true
	}

	if entries, ok := extractFromProse(raw); ok {
		slog.Warn("[Extractor] Fell back to prose parsing; upstream response format may have drifted")
		monitoring.ExtractionStrategyTotal.WithLabelValues(monitoring.StrategyProse).Inc()
		return entries, true
	}

	slog.Error("[Extractor] No parseable structure found in upstream response",
		slog.Int("response_length", len(raw)))
	monitoring.ExtractionFailuresTotal.Inc()
	return nil, false
}

// extractFencedBlock parses the contents of ```json fenced regions as an
// array of entries.
func extractFencedBlock(raw string) ([]models.RawResultEntry, bool) {
	for _, match := range fencedBlockPattern.FindAllStringSubmatch(raw, -1) {
		block := strings.TrimSpace(match[1])
		if !strings.HasPrefix(block, "[") {
			continue
		}
		if entries, ok := parseEntryArray(block); ok {
			return entries, true
		}
	}
	return nil, false
}

// extractBracketedArray scans the full text for balanced bracket-delimited
// substrings and accepts the first one that parses and whose first element
// carries id and sentiment keys.
func extractBracketedArray(raw string) ([]models.RawResultEntry, bool) {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '[' {
			continue
		}
		end := balancedArrayEnd(raw, i)
		if end < 0 {
			continue
		}
		entries, ok := parseEntryArray(raw[i : end+1])
		if !ok {
			continue
		}
		if _, hasID := entries[0]["id"]; !hasID {
			continue
		}
		if _, hasSentiment := entries[0]["sentiment"]; !hasSentiment {
			continue
		}
		return entries, true
	}
	return nil, false
}

// balancedArrayEnd returns the index of the bracket closing the array that
// opens at start, honoring JSON string literals and escapes; -1 when
// unbalanced.
func balancedArrayEnd(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseEntryArray(candidate string) ([]models.RawResultEntry, bool) {
	var entries []models.RawResultEntry
	if err := json.Unmarshal([]byte(candidate), &entries); err != nil {
		return nil, false
	}
	if len(entries) == 0 {
		return nil, false
	}
	return entries, true
}

// Prose fallback. The generator sometimes answers with numbered records and
// labeled fields instead of JSON; labels appear in English or Indonesian.
var (
	recordMarkerPattern = regexp.MustCompile(`(?m)^\s*(\d+)[\.\)]`)
	// Labels may share a line with the record marker ("1. ID: rev-42"), so
	// they are bound by word boundary, not line start.
	proseIDPattern    = regexp.MustCompile(`(?i)\bID\s*[:=]\s*([^\n]+)`)
	sentimentPattern  = regexp.MustCompile(`(?i)\bSentimen(?:t)?\s*[:=]\s*([^\n]+)`)
	scorePattern      = regexp.MustCompile(`(?i)\b(?:Score|Skor)\s*[:=]\s*(-?\d+(?:[.,]\d+)?)`)
	reasonsPattern    = regexp.MustCompile(`(?i)\b(?:Reasons?|Alasan)\s*[:=]\s*([^\n]+)`)
	themesPattern     = regexp.MustCompile(`(?i)\b(?:Themes?|Tema)\s*[:=]\s*([^\n]+)`)
	suggestionPattern = regexp.MustCompile(`(?i)\b(?:Suggestion|Saran)\s*[:=]\s*([^\n]+)`)
)

// extractFromProse assembles one entry per numbered record whose labeled
// sentiment and score fields both matched.
func extractFromProse(raw string) ([]models.RawResultEntry, bool) {
	markers := recordMarkerPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(markers) == 0 {
		return nil, false
	}

	var entries []models.RawResultEntry
	for n, marker := range markers {
		chunkStart := marker[0]
		chunkEnd := len(raw)
		if n+1 < len(markers) {
			chunkEnd = markers[n+1][0]
		}
		chunk := raw[chunkStart:chunkEnd]
		recordNumber := raw[marker[2]:marker[3]]

		sentimentMatch := sentimentPattern.FindStringSubmatch(chunk)
		scoreMatch := scorePattern.FindStringSubmatch(chunk)
		if sentimentMatch == nil || scoreMatch == nil {
			continue
		}

		score, err := strconv.ParseFloat(strings.Replace(scoreMatch[1], ",", ".", 1), 64)
		if err != nil {
			continue
		}

		entry := models.RawResultEntry{
			"id":        recordNumber,
			"sentiment": strings.TrimSpace(sentimentMatch[1]),
			"score":     score,
		}

		if idMatch := proseIDPattern.FindStringSubmatch(chunk); idMatch != nil {
			entry["id"] = strings.Trim(strings.TrimSpace(idMatch[1]), `"'`)
		}
		if reasonsMatch := reasonsPattern.FindStringSubmatch(chunk); reasonsMatch != nil {
			entry["reasons"] = strings.TrimSpace(reasonsMatch[1])
		}
		if themesMatch := themesPattern.FindStringSubmatch(chunk); themesMatch != nil {
			entry["themes"] = splitThemes(themesMatch[1])
		}
		if suggestionMatch := suggestionPattern.FindStringSubmatch(chunk); suggestionMatch != nil {
			entry["suggestion"] = strings.TrimSpace(suggestionMatch[1])
		}

		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, false
	}
	return entries, true
}

func splitThemes(field string) []any {
	field = strings.Trim(strings.TrimSpace(field), "[]")
	var themes []any
	for _, part := range strings.FieldsFunc(field, func(r rune) bool { return r == ',' || r == ';' }) {
		theme := strings.Trim(strings.TrimSpace(part), `"'`)
		if theme != "" {
			themes = append(themes, theme)
		}
	}
	return themes
}
