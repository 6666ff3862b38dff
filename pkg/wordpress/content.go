package wordpress

import (
	"fmt"
	"strings"

	"github.com/russross/blackfriday/v2"

	"github.com/mchow01/marketnews/internal/model"
)

var renderer = blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
	Flags: blackfriday.SkipHTML | blackfriday.Safelink | blackfriday.HrefTargetBlank,
})

func NewPost(article *model.ArticleDetail) Post {
	return Post{
		Title:   article.Title,
		Content: RenderContent(article),
	}
}

// RenderContent builds the post body as Markdown and renders it to HTML.
// Raw HTML from the feed is dropped and only safe link schemes are linked.
func RenderContent(article *model.ArticleDetail) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Summary:** %s\n\n", article.Summary)

	if len(article.Sentiments) > 0 {
		b.WriteString("### Ticker Sentiments\n\n")
		for _, s := range article.Sentiments {
			fmt.Fprintf(&b, "- **%s**: %s (Score: %s, Relevance: %s)\n",
				s.Ticker, s.Label, s.Score.StringFixed(3), s.Relevance.StringFixed(3))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "**Source:** %s  \n", article.Source)
	fmt.Fprintf(&b, "**Published:** %s", article.PublishedTime)
	if article.URL != "" {
		fmt.Fprintf(&b, "  \n**Original Article:** [Read more](%s)", article.URL)
	}
	b.WriteString("\n")

	out := blackfriday.Run([]byte(b.String()),
		blackfriday.WithRenderer(renderer),
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
	)
	return string(out)
}
