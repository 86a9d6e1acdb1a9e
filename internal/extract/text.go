package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

type textStrategy struct{}

func (textStrategy) Name() string { return "text" }

// Extract decodes the bytes as plain text, trying UTF-8, GBK, GB2312 (HZ),
// and Latin-1 in order. Latin-1 maps every byte, so decoding itself cannot
// fail; only whitespace-free garbage is rejected.
func (textStrategy) Extract(data []byte) (string, bool) {
	// NUL bytes mean binary data, not encoded text.
	if bytes.IndexByte(data, 0) >= 0 {
		return "", false
	}

	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		text = decodeFallback(data)
	}

	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

var fallbackEncodings = []encoding.Encoding{
	simplifiedchinese.GBK,
	simplifiedchinese.HZGB2312,
	charmap.ISO8859_1,
}

func decodeFallback(data []byte) string {
	for _, enc := range fallbackEncodings {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err == nil && utf8.Valid(decoded) {
			return string(decoded)
		}
	}
	// Last resort: keep what is valid, replace the rest.
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}
