package gmail

import (
	"regexp"
	"strings"
)

// RE2 has no backreferences, so script and style get one alternative each.
var (
	scriptStyleRe = regexp.MustCompile(`(?is)<script.*?>.*?</script>|<style.*?>.*?</style>`)
	lineBreakRe   = regexp.MustCompile(`(?s)<br\s*/?>`)
	paragraphRe   = regexp.MustCompile(`(?s)</p\s*>`)
	tagRe         = regexp.MustCompile(`(?s)<.*?>`)
	trailingWSRe  = regexp.MustCompile(`[ \t]+\n`)
)

// StripHTML turns an HTML fragment into approximate plain text.
//
// Script and style elements are dropped with their content, <br> becomes a
// newline, </p> a blank line, every other tag is removed and horizontal
// whitespace before a newline is collapsed. Entities are not decoded.
func StripHTML(html string) string {
	text := scriptStyleRe.ReplaceAllString(html, "")
	text = lineBreakRe.ReplaceAllString(text, "\n")
	text = paragraphRe.ReplaceAllString(text, "\n\n")
	text = tagRe.ReplaceAllString(text, "")
	text = trailingWSRe.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
