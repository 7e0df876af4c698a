package util

import (
	"encoding/base64"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// DefaultImageMIME is used when neither the extension nor the content tells us more.
const DefaultImageMIME = "image/jpeg"

// DetectMIME picks the MIME type for an uploaded image: extension first, then
// content sniffing, then DefaultImageMIME. It never fails.
func DetectMIME(filename string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			if i := strings.IndexByte(mt, ';'); i >= 0 {
				mt = mt[:i]
			}
			return mt
		}
		switch ext {
		case ".jpg", ".jpeg", ".jfif":
			return "image/jpeg"
		case ".png":
			return "image/png"
		case ".webp":
			return "image/webp"
		case ".heic":
			return "image/heic"
		case ".heif":
			return "image/heif"
		}
	}
	if sniffed := sniffMIME(data); sniffed != "application/octet-stream" {
		return sniffed
	}
	return DefaultImageMIME
}

// sniffMIME detects the content type by magic bytes.
func sniffMIME(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	if len(b) > 0 {
		if ct := http.DetectContentType(b); strings.HasPrefix(ct, "image/") || ct == "application/pdf" {
			return ct
		}
	}
	return "application/octet-stream"
}

func MakeDataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}

// DecodeBase64MaybeDataURL decodes base64. For a data: URI it also returns the MIME from the prefix.
func DecodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var hintMIME string
	if strings.HasPrefix(s, "data:") {
		// data:<mime>;base64,<payload>
		if idx := strings.IndexByte(s, ','); idx > 0 {
			meta := s[len("data:"):idx]
			if semi := strings.IndexByte(meta, ';'); semi >= 0 {
				hintMIME = meta[:semi]
			} else {
				hintMIME = meta
			}
			s = s[idx+1:]
		}
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, hintMIME, nil
	} else if b2, err2 := base64.URLEncoding.DecodeString(s); err2 == nil {
		return b2, hintMIME, nil
	} else {
		return nil, "", err
	}
}
