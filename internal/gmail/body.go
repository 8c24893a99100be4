package gmail

import (
	"fmt"
	"strings"
)

// ExtractBody returns the best plain-text body found in the MIME tree rooted
// at p, or "" if there is none.
//
// A text/plain leaf wins over a text/html leaf among the children of a
// multipart. A nested multipart that yields text is returned as soon as it
// is seen, so a text/plain sibling after it is never considered.
//
// Leaves are decoded only when the walk reaches them as a result or a
// candidate. A decode error on such a leaf is returned; parts that are never
// reached cannot fail the message.
func ExtractBody(p Part) (string, error) {
	switch part := p.(type) {
	case *Leaf:
		return leafText(part)

	case *Multipart:
		var plain, html string
		for _, child := range part.Children {
			switch c := child.(type) {
			case *Multipart:
				sub, err := ExtractBody(c)
				if err != nil {
					return "", err
				}
				if sub != "" {
					return sub, nil
				}
			case *Leaf:
				if !c.HasBody() {
					continue
				}
				if (c.Type == MediaTypePlain && plain == "") || (c.Type == MediaTypeHTML && html == "") {
					text, err := leafText(c)
					if err != nil {
						return "", err
					}
					if c.Type == MediaTypePlain {
						plain = text
					} else {
						html = text
					}
				}
			}
		}
		if plain != "" {
			return plain, nil
		}
		return html, nil
	}
	return "", nil
}

// leafText decodes a text/plain or text/html leaf. Other leaves yield "".
func leafText(l *Leaf) (string, error) {
	if !l.HasBody() || (l.Type != MediaTypePlain && l.Type != MediaTypeHTML) {
		return "", nil
	}
	data, err := l.Decode()
	if err != nil {
		return "", err
	}
	if l.Type == MediaTypePlain {
		return strings.TrimSpace(decodeText(data)), nil
	}
	return StripHTML(decodeText(data)), nil
}

// ExtractFields derives the exported fields of msg. The body falls back to
// the snippet when no text part is found.
func ExtractFields(msg *Message) (Fields, error) {
	body := ""
	if msg.Payload != nil {
		b, err := ExtractBody(msg.Payload)
		if err != nil {
			return Fields{}, fmt.Errorf("failed to extract body of message %s: %w", msg.ID, err)
		}
		body = strings.TrimSpace(b)
	}
	if body == "" {
		body = strings.TrimSpace(msg.Snippet)
	}
	return Fields{
		Subject: msg.Header("Subject"),
		From:    msg.Header("From"),
		Body:    body,
	}, nil
}

// decodeText interprets b as UTF-8, replacing invalid sequences.
func decodeText(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
