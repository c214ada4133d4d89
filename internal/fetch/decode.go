package fetch

import (
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
)

// DecodePage converts a page body to UTF-8 text. The charset comes from the
// Content-Type header, a BOM or a <meta> declaration; when decoding with it
// fails the body is read as UTF-8 with invalid sequences replaced.
func DecodePage(body []byte, contentType string) string {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if enc != nil && name != "utf-8" {
		if text, err := enc.NewDecoder().Bytes(body); err == nil {
			return string(text)
		}
	}
	return decodeUTF8(body)
}

func decodeUTF8(body []byte) string {
	text, err := unicode.UTF8.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "\uFFFD")
	}
	return string(text)
}
