// Package render turns processing output into the result-region markup
// and back into terminal text.
package render

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
)

const (
	fragmentOpen  = `<div class="result-item"><div class="result-content">`
	fragmentClose = `</div></div>`
)

var (
	strict = bluemonday.StrictPolicy()
	md     = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
)

// Fragment wraps content in the single result item that replaces the
// display region.
func Fragment(content string) string {
	return fragmentOpen + content + fragmentClose
}

// Text prepares plain response text for Fragment: any markup in it is
// neutralised and newlines become <br>.
func Text(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strict.Sanitize(s)
	return strings.ReplaceAll(s, "\n", "<br>")
}

// Terminal converts a result fragment into text for a terminal pane.
func Terminal(fragment string) (string, error) {
	out, err := md.ConvertString(fragment)
	if err != nil {
		return "", err
	}
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
