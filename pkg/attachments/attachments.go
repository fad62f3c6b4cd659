// Package attachments turns local files into prompt attachments.
//
// Images and PDFs are encoded as base64 data URIs; every other file is read
// as text. The media type comes from the file extension and defaults to
// text/plain.
package attachments

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"nebula-hq/nebula/pkg/providers"
)

// DefaultMaxBytes bounds the size of a single attachment.
const DefaultMaxBytes = 20 << 20

// fallbackMime is used when the extension is unknown.
const fallbackMime = "text/plain"

// ErrTooLarge is returned for files above the size limit.
var ErrTooLarge = errors.New("attachment exceeds size limit")

// FromFile reads path into an attachment. maxBytes <= 0 means DefaultMaxBytes.
func FromFile(path string, maxBytes int64) (providers.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return providers.Attachment{}, fmt.Errorf("failed to open attachment: %w", err)
	}
	defer f.Close()

	return FromReader(filepath.Base(path), MimeType(path), f, maxBytes)
}

// FromFiles reads every path, stopping at the first failure.
func FromFiles(paths []string, maxBytes int64) ([]providers.Attachment, error) {
	out := make([]providers.Attachment, 0, len(paths))
	for _, p := range paths {
		a, err := FromFile(p, maxBytes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// FromReader builds an attachment named name from r.
func FromReader(name, mimeType string, r io.Reader, maxBytes int64) (providers.Attachment, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if mimeType == "" {
		mimeType = fallbackMime
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return providers.Attachment{}, fmt.Errorf("failed to read attachment: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return providers.Attachment{}, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, name, maxBytes)
	}

	a := providers.Attachment{
		Kind:     providers.AttachmentDocument,
		MimeType: mimeType,
		Name:     name,
	}
	if strings.HasPrefix(mimeType, "image/") {
		a.Kind = providers.AttachmentImage
	}

	if a.IsInlineBinary() {
		a.Payload = "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
		return a, nil
	}

	if !utf8.Valid(data) {
		return providers.Attachment{}, fmt.Errorf("%s (%s) is neither text, an image nor a PDF", name, mimeType)
	}
	a.Payload = string(data)
	return a, nil
}

// MimeType guesses the media type of path from its extension, without
// parameters such as charset.
func MimeType(path string) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if t == "" {
		return fallbackMime
	}
	if mediaType, _, err := mime.ParseMediaType(t); err == nil {
		return mediaType
	}
	return t
}
