package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/spacesedan/reviewflow/internal/models"
)

var analyzer = govader.NewSentimentIntensityAnalyzer()

func RemoveLinks(input string) string {
	linkPattern := regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text

	urlPattern := regexp.MustCompile(`https?://\S+|www\.\S+`)
	input = urlPattern.ReplaceAllString(input, "")

	return input
}

// CleanReviewText flattens markdown and strips links so the upstream model
// judges the review body, not its formatting.
func CleanReviewText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := strings.Join(strings.Fields(string(output)), " ")

	return RemoveLinks(plainText)
}

// LocalPolarity scores the review with VADER. Used as a cheap drift check
// against the upstream label, never as a replacement for it.
func LocalPolarity(text string) (float64, string) {
	sentiment := analyzer.PolarityScores(CleanReviewText(text))
	score := sentiment.Compound

	var label string
	if score >= 0.20 {
		label = models.SentimentPositive
	} else if score <= -0.20 {
		label = models.SentimentNegative
	} else {
		label = models.SentimentNeutral
	}

	return score, label
}

// Disagrees reports whether the upstream label contradicts a strong local
// polarity (|compound| >= 0.5 pointing the opposite way).
func Disagrees(upstreamLabel, reviewText string) bool {
	compound, _ := LocalPolarity(reviewText)
	switch upstreamLabel {
	case models.SentimentPositive:
		return compound <= -0.5
	case models.SentimentNegative:
		return compound >= 0.5
	}
	return false
}
