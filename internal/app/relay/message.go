package relay

import (
	"strings"
	"time"
)

const (
	// MaxFileBytes is the largest declared file size accepted for relay.
	MaxFileBytes = 2_000_000

	// MaxDataURILength bounds the encoded payload, in characters.
	MaxDataURILength = 7_000_000

	dataURIPrefix = "data:"
)

// AllowedMIMETypes lists the non-image file types that may be relayed.
// Any image/* type is accepted in addition to these.
var AllowedMIMETypes = map[string]struct{}{
	"image/png":          {},
	"image/jpeg":         {},
	"image/webp":         {},
	"image/gif":          {},
	"application/pdf":    {},
	"text/plain":         {},
	"application/zip":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.ms-powerpoint":                                             {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"application/vnd.ms-excel":                                                  {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
}

// Kind tags the message variant.
type Kind string

const (
	KindText Kind = "text"
	KindFile Kind = "file"
)

// File is the attachment half of a file message.
type File struct {
	Name     string `json:"name"`
	MIMEType string `json:"type"`
	Size     int64  `json:"size"`
	Data     string `json:"data"`
}

// Message is a relayed unit. It is never stored; only its id survives in the
// room's pending-delivery ledger.
type Message struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	SenderID   ConnID `json:"-"`
	SenderName string `json:"nick"`
	Timestamp  int64  `json:"ts"`
	Text       string `json:"text,omitempty"`

	*File
}

// Draft is a message as submitted by a client, before validation.
// A non-nil File makes it a file message.
type Draft struct {
	ID   string
	Text string
	File *File
}

// AllowedMIME reports whether mimeType may be relayed.
func AllowedMIME(mimeType string) bool {
	if strings.HasPrefix(mimeType, "image/") {
		return true
	}
	_, ok := AllowedMIMETypes[mimeType]
	return ok
}

// build validates the draft and returns the message that will be fanned out.
func (d Draft) build(sender *Connection, now time.Time) (Message, error) {
	msg := Message{
		ID:         SanitizeLine(d.ID, MaxMessageIDLength),
		Kind:       KindText,
		SenderID:   sender.ID,
		SenderName: sender.DisplayName,
		Timestamp:  now.UnixMilli(),
	}

	if msg.ID == "" {
		return Message{}, ErrInvalidParameters
	}

	if d.File == nil {
		msg.Text = SanitizeText(d.Text, MaxTextLength)
		if strings.TrimSpace(msg.Text) == "" {
			return Message{}, ErrInvalidParameters
		}
		return msg, nil
	}

	file, err := validateFile(*d.File)
	if err != nil {
		return Message{}, err
	}

	msg.Kind = KindFile
	msg.File = &file
	return msg, nil
}

func validateFile(f File) (File, error) {
	out := File{
		Name:     SanitizeLine(f.Name, MaxFilenameLength),
		MIMEType: strings.ToLower(SanitizeLine(f.MIMEType, MaxMIMETypeLength)),
		Size:     f.Size,
		Data:     f.Data,
	}

	if out.Size < 0 {
		return File{}, ErrMalformedPayload
	}

	if out.Size > MaxFileBytes {
		return File{}, ErrPayloadTooLarge
	}

	if !AllowedMIME(out.MIMEType) {
		return File{}, ErrUnsupportedMediaType
	}

	if len(out.Data) > MaxDataURILength ||
		!strings.HasPrefix(out.Data, dataURIPrefix) ||
		!strings.Contains(out.Data, ",") {
		return File{}, ErrMalformedPayload
	}

	return out, nil
}
