package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/brotwerk/intake/internal/intake"
)

// requestID returns the caller-supplied X-Request-ID or generates one.
// The chosen ID is echoed back on the response so callers can correlate.
func requestID(w http.ResponseWriter, r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", id)
	return id
}

// parseMetadata decodes the JSON-string metadata form field. An empty
// field is valid and yields zero metadata.
func parseMetadata(raw string) (intake.Metadata, error) {
	var meta intake.Metadata
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return meta, err
	}
	return meta, nil
}

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

	// ISO base media file format brands that carry HEIC/HEIF images.
	heifBrands = []string{"heic", "heix", "heif", "mif1", "msf1"}
)

// sniffImage detects the image format from magic bytes. Returns the
// canonical MIME type or "" when the content is none of the accepted
// formats.
func sniffImage(data []byte) string {
	if bytes.HasPrefix(data, jpegMagic) {
		return "image/jpeg"
	}
	if bytes.HasPrefix(data, pngMagic) {
		return "image/png"
	}
	// HEIC/HEIF: a box size, then "ftyp", then the major brand.
	if len(data) >= 12 && string(data[4:8]) == "ftyp" {
		brand := strings.ToLower(string(data[8:12]))
		for _, b := range heifBrands {
			if brand == b {
				return "image/heic"
			}
		}
	}
	return ""
}

// normalizeImageMIME maps declared content types onto the accepted set.
// Returns "" for types outside the allow-list.
func normalizeImageMIME(declared string) string {
	mime := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "image/jpeg", "image/jpg":
		return "image/jpeg"
	case "image/png":
		return "image/png"
	case "image/heic", "image/heif":
		return "image/heic"
	}
	return ""
}
