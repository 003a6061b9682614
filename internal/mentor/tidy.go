package mentor

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var htmlTagPattern = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^<>]*)?/?>`)

var blankLines = regexp.MustCompile(`\n[ \t]*\n`)

// Tidy converts paragraphs containing HTML markup into markdown and leaves
// plain paragraphs untouched. A paragraph that fails to convert is kept
// as is.
func Tidy(reply string) string {
	if !htmlTagPattern.MatchString(reply) {
		return strings.TrimSpace(reply)
	}
	paragraphs := blankLines.Split(strings.TrimSpace(reply), -1)
	for i, paragraph := range paragraphs {
		if !htmlTagPattern.MatchString(paragraph) {
			continue
		}
		markdown, err := htmltomarkdown.ConvertString(paragraph)
		if err != nil {
			continue
		}
		paragraphs[i] = strings.TrimSpace(markdown)
	}
	return strings.Join(paragraphs, "\n\n")
}
