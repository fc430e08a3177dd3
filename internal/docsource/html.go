package docsource

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelector matches page chrome that never carries documentation.
const noiseSelector = "nav, footer, header, script, style, noscript, aside, .sidebar, .cookie-banner, .toc, .edit-link"

// contentSelectors are tried in order to find the documentation body.
var contentSelectors = []string{
	"main",
	"article",
	".markdown",
	".content",
	"#content",
	".docs-content",
}

// ExtractText converts an HTML documentation page to markdown-flavoured text.
// Headings become # lines, list items become "- " lines and pre blocks become fenced code,
// so the result splits into sections the same way markdown documentation does.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	var root *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			root = selection.First()
			break
		}
	}
	if root == nil {
		root = doc.Find("body")
	}

	var lines []string
	root.Find("h1, h2, h3, h4, h5, h6, p, li, pre").Each(func(_ int, s *goquery.Selection) {
		// nested matches are emitted by their outermost block
		if s.ParentsFiltered("li, pre").Length() > 0 {
			return
		}
		switch tag := goquery.NodeName(s); tag {
		case "pre":
			code := strings.Trim(s.Text(), "\n")
			if code != "" {
				lines = append(lines, "```\n"+code+"\n```")
			}
		case "li":
			if text := collapse(s.Text()); text != "" {
				lines = append(lines, "- "+text)
			}
		case "p":
			if text := collapse(s.Text()); text != "" {
				lines = append(lines, text)
			}
		default:
			if text := collapse(s.Text()); text != "" {
				level := int(tag[1] - '0')
				lines = append(lines, strings.Repeat("#", level)+" "+text)
			}
		}
	})

	if len(lines) == 0 {
		return collapse(root.Text()), nil
	}
	return strings.Join(lines, "\n\n"), nil
}

// collapse normalizes runs of whitespace to single spaces.
func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
