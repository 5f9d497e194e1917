// Package encoding implements the PlantUML text encoding: raw DEFLATE
// followed by a base64 variant over the alphabet 0-9A-Za-z-_.
package encoding

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"fmt"
	"strings"
)

// Alphabet is the 64 character alphabet used by PlantUML servers.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

// zeroChar encodes six zero bits.
const zeroChar = "0"

var plantumlEncoding = base64.NewEncoding(Alphabet).WithPadding(base64.NoPadding)

// Encode maps every 3 input bytes to 4 alphabet characters. A trailing partial
// group is zero padded, so the output length is always a multiple of four.
// Empty input yields an empty string.
func Encode(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	s := plantumlEncoding.EncodeToString(data)
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat(zeroChar, 4-rem)
	}
	return s
}

// Compress returns the raw DEFLATE stream (no zlib header or checksum) of data
// at best compression.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create deflate writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate close: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeDiagram produces the URL payload a PlantUML server expects for text.
func EncodeDiagram(text string) (string, error) {
	if text == "" {
		return "", nil
	}
	compressed, err := Compress([]byte(text))
	if err != nil {
		return "", err
	}
	return Encode(compressed), nil
}
