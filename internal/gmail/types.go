package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// Media types the body extractor understands.
const (
	MediaTypePlain = "text/plain"
	MediaTypeHTML  = "text/html"

	multipartPrefix = "multipart/"
)

// Label is a Gmail label.
type Label struct {
	ID   string
	Name string
}

// Header is a single message header. Order is preserved from the API.
type Header struct {
	Name  string
	Value string
}

// Part is a node of a message's MIME tree. It is either a *Leaf or a *Multipart.
type Part interface {
	MediaType() string
	part()
}

// Leaf is a MIME part without children. Data is the part's inline body as
// sent by the API, still base64url encoded; it is empty when the API
// returned no inline data.
type Leaf struct {
	ID   string
	Type string
	Data string
}

// MediaType returns the part's media type.
func (l *Leaf) MediaType() string { return l.Type }

// HasBody reports whether the part carried inline data.
func (l *Leaf) HasBody() bool { return l.Data != "" }

// Decode returns the decoded inline body.
func (l *Leaf) Decode() ([]byte, error) {
	data, err := decodeBase64URL(l.Data)
	if err != nil {
		return nil, fmt.Errorf("part %q (%s): %w", l.ID, l.Type, err)
	}
	return data, nil
}

func (*Leaf) part() {}

// Multipart is a multipart/* container.
type Multipart struct {
	Type     string
	Children []Part
}

// MediaType returns the part's media type.
func (m *Multipart) MediaType() string { return m.Type }

func (*Multipart) part() {}

// Message is a fetched Gmail message.
type Message struct {
	ID      string
	Snippet string
	Headers []Header
	Payload Part
}

// Header returns the value of the first header whose name matches name,
// ignoring case, or "" if there is none.
func (m *Message) Header(name string) string {
	return HeaderValue(m.Headers, name)
}

// HeaderValue looks name up in headers, ignoring case.
func HeaderValue(headers []Header, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Fields are the values exported for one message.
type Fields struct {
	Subject string
	From    string
	Body    string
}

// decodeMessage converts an API message into a Message. Bodies stay encoded
// until the extractor reads them.
func decodeMessage(msg *gmail.Message) *Message {
	m := &Message{
		ID:      msg.Id,
		Snippet: msg.Snippet,
	}
	if msg.Payload == nil {
		return m
	}

	for _, h := range msg.Payload.Headers {
		if h == nil {
			continue
		}
		m.Headers = append(m.Headers, Header{Name: h.Name, Value: h.Value})
	}
	m.Payload = decodePart(msg.Payload)
	return m
}

// decodePart converts an API message part into a Part. A part is a
// Multipart iff its media type starts with multipart/.
func decodePart(p *gmail.MessagePart) Part {
	if strings.HasPrefix(p.MimeType, multipartPrefix) {
		mp := &Multipart{Type: p.MimeType}
		for _, child := range p.Parts {
			if child == nil {
				continue
			}
			mp.Children = append(mp.Children, decodePart(child))
		}
		return mp
	}

	leaf := &Leaf{ID: p.PartId, Type: p.MimeType}
	if p.Body != nil {
		leaf.Data = p.Body.Data
	}
	return leaf
}

// decodeBase64URL decodes Gmail body data. The API uses URL-safe base64,
// normally padded; unpadded and standard alphabets are accepted as well.
func decodeBase64URL(s string) ([]byte, error) {
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "=")); err == nil {
		return data, nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode body data: %w", err)
	}
	return data, nil
}
