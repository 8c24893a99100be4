package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
)

func enc(s string) string { return base64.URLEncoding.EncodeToString([]byte(s)) }

func TestDecodeMessage(t *testing.T) {
	raw := &gmail.Message{
		Id:      "m1",
		Snippet: "snip",
		Payload: &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Hi"},
				nil,
				{Name: "From", Value: "a@example.com"},
			},
			Parts: []*gmail.MessagePart{
				{
					MimeType: "multipart/alternative",
					Parts: []*gmail.MessagePart{
						{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: enc("plain body")}},
						{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: enc("<p>html</p>")}},
					},
				},
				{MimeType: "application/pdf", Filename: "cv.pdf", Body: &gmail.MessagePartBody{AttachmentId: "att1", Size: 1024}},
				nil,
			},
		},
	}

	msg := decodeMessage(raw)

	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "snip", msg.Snippet)
	assert.Equal(t, []Header{{Name: "Subject", Value: "Hi"}, {Name: "From", Value: "a@example.com"}}, msg.Headers)

	root, ok := msg.Payload.(*Multipart)
	require.True(t, ok)
	assert.Equal(t, "multipart/mixed", root.MediaType())
	require.Len(t, root.Children, 2)

	alt, ok := root.Children[0].(*Multipart)
	require.True(t, ok)
	require.Len(t, alt.Children, 2)
	body, err := alt.Children[0].(*Leaf).Decode()
	require.NoError(t, err)
	assert.Equal(t, []byte("plain body"), body)

	attachment, ok := root.Children[1].(*Leaf)
	require.True(t, ok)
	assert.False(t, attachment.HasBody())
}

func TestDecodeMessage_NoPayload(t *testing.T) {
	msg := decodeMessage(&gmail.Message{Id: "m2", Snippet: "s"})
	assert.Nil(t, msg.Payload)
	assert.Empty(t, msg.Headers)
}

func TestDecodePart_MultipartByMediaType(t *testing.T) {
	p := decodePart(&gmail.MessagePart{MimeType: "multipart/related"})
	_, ok := p.(*Multipart)
	assert.True(t, ok)

	// Children of a non-multipart part are not walked.
	p = decodePart(&gmail.MessagePart{
		MimeType: "message/rfc822",
		Parts:    []*gmail.MessagePart{{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: enc("inner")}}},
	})
	_, ok = p.(*Leaf)
	assert.True(t, ok)
}

func TestDecodeMessage_UnreachedBadPartKeepsMessage(t *testing.T) {
	msg := decodeMessage(&gmail.Message{
		Id: "m1",
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Parts: []*gmail.MessagePart{
				{
					PartId:   "0",
					MimeType: "multipart/related",
					Parts: []*gmail.MessagePart{
						{PartId: "0.0", MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: enc("hello")}},
					},
				},
				{PartId: "1", MimeType: "text/html", Body: &gmail.MessagePartBody{Data: "!!not base64!!"}},
			},
		},
	})

	fields, err := ExtractFields(msg)
	require.NoError(t, err)
	assert.Equal(t, "hello", fields.Body)
}

func TestLeafDecode(t *testing.T) {
	leaf := &Leaf{ID: "2", Type: MediaTypeHTML, Data: "!!not base64!!"}
	_, err := leaf.Decode()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `part "2" (text/html)`)

	leaf = &Leaf{Type: MediaTypePlain, Data: enc("ok")}
	data, err := leaf.Decode()
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
}

func TestDecodeBase64URL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{"padded url-safe", base64.URLEncoding.EncodeToString([]byte{0xfb, 0xff}), []byte{0xfb, 0xff}},
		{"unpadded url-safe", "aGk", []byte("hi")},
		{"standard alphabet", "+/8=", []byte{0xfb, 0xff}},
		{"text", enc("Hello, World"), []byte("Hello, World")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBase64URL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := decodeBase64URL("***")
	assert.Error(t, err)
}
