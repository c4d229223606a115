package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spacesedan/reviewflow/internal/models"
)

func TestRemoveLinks(t *testing.T) {
	assert.Equal(t, "the dealer site", RemoveLinks("[the dealer site](https://example.com/dealer)"))
	assert.Equal(t, "check  for details", RemoveLinks("check https://example.com/promo for details"))
	assert.Equal(t, "no links here", RemoveLinks("no links here"))
}

func TestCleanReviewText_StripsLinksAndCollapsesWhitespace(t *testing.T) {
	cleaned := CleanReviewText("Great   service!\n\nSee [photos](https://example.com/p1) here.")
	assert.NotContains(t, cleaned, "example.com")
	assert.Contains(t, cleaned, "Great service!")
}

func TestLocalPolarity(t *testing.T) {
	_, label := LocalPolarity("Absolutely fantastic experience, the staff were wonderful and helpful!")
	assert.Equal(t, models.SentimentPositive, label)

	_, label = LocalPolarity("Terrible, awful experience. The worst dealer I have ever visited.")
	assert.Equal(t, models.SentimentNegative, label)
}

func TestDisagrees(t *testing.T) {
	angry := "Horrible, terrible, awful service. I hate this dealer and will never return."
	happy := "Fantastic, wonderful, amazing service. I love this dealer!"

	assert.True(t, Disagrees(models.SentimentPositive, angry))
	assert.True(t, Disagrees(models.SentimentNegative, happy))
	assert.False(t, Disagrees(models.SentimentNegative, angry))
	assert.False(t, Disagrees(models.SentimentPositive, happy))
	// Neutral upstream labels never count as drift.
	assert.False(t, Disagrees(models.SentimentNeutral, angry))
}
