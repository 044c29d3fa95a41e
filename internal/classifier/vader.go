package classifier

import (
	"context"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/gkwang4912/speechwall/internal/models"
)

// Vader is the offline backend, selected with model "vader". No
// network, no quota, no retries; useful for dry runs before spending
// API budget.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]+>`)
)

// removeLinks keeps the anchor text of markdown links and drops bare
// URLs. It must run on the raw input: the markdown-link pattern only
// matches the source form, and a bare-URL match inside rendered HTML
// would eat into the surrounding markup.
func removeLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

func markdownToText(input string) string {
	output := blackfriday.Run([]byte(removeLinks(input)), blackfriday.WithNoExtensions())
	plain := tagPattern.ReplaceAllString(string(output), " ")
	return strings.Join(strings.Fields(plain), " ")
}

func (v *Vader) Classify(_ context.Context, text string) (models.RowResult, error) {
	scores := v.analyzer.PolarityScores(markdownToText(text))

	label := models.LabelNeutral
	if scores.Compound >= 0.20 {
		label = models.LabelPositive
	} else if scores.Compound <= -0.20 {
		label = models.LabelNegative
	}

	return models.RowResult{Status: models.StatusOK, Label: label}, nil
}
