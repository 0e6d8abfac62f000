package extractor

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// NoiseSelector matches page chrome that is never part of an article body:
// captions, asides, navigation, sidebars and figures.
const NoiseSelector = `figcaption, aside, nav, [role="complementary"], figure`

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	emptyLink      = regexp.MustCompile(`\[\]\(.*?\)`)
	bareListNumber = regexp.MustCompile(`(?m)^\d+\.\s*$`)
)

// Converter turns article HTML into markdown (ATX headings, "-" bullets,
// fenced code). Images are dropped, and so are links left without text once
// their images are gone.
//
// A Converter is built once and shared; it is safe for concurrent use.
type Converter struct {
	conv *md.Converter
}

// NewConverter builds the shared converter.
func NewConverter() *Converter {
	conv := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
	})

	conv.Before(func(selec *goquery.Selection) {
		selec.Find(NoiseSelector).Remove()
	})

	conv.AddRules(
		md.Rule{
			Filter: []string{"img"},
			Replacement: func(string, *goquery.Selection, *md.Options) *string {
				return md.String("")
			},
		},
		md.Rule{
			Filter: []string{"a"},
			Replacement: func(content string, _ *goquery.Selection, _ *md.Options) *string {
				if strings.TrimSpace(content) == "" {
					return md.String("")
				}
				// nil hands the link to the default rule.
				return nil
			},
		},
	)

	return &Converter{conv: conv}
}

// Convert converts an HTML fragment and normalizes the result.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	out, err := c.conv.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return NormalizeMarkdown(out), nil
}

// NormalizeMarkdown collapses blank-line runs and removes conversion
// leftovers: "[](...)" links and list items that are only a number.
func NormalizeMarkdown(s string) string {
	s = excessNewlines.ReplaceAllString(s, "\n\n")
	s = emptyLink.ReplaceAllString(s, "")
	s = bareListNumber.ReplaceAllString(s, "")
	s = excessNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
