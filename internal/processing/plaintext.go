package processing

import (
	"html"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// PlainText renders markdown-ish preview text down to a single line of
// plain text without links, for table cells.
func PlainText(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	output := blackfriday.Run([]byte(RemoveLinks(input)), blackfriday.WithNoExtensions())
	text := tagPattern.ReplaceAllString(string(output), " ")
	text = html.UnescapeString(text)

	return strings.Join(strings.Fields(text), " ")
}
