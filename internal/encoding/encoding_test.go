package encoding

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, ""},
		{"full group", []byte("abc"), "OM9Z"},
		{"one trailing byte", []byte("a"), "OG00"},
		{"two trailing bytes", []byte("ab"), "OM80"},
		{"all ones", []byte{0xff, 0xff, 0xff}, "____"},
		{"all zeros", []byte{0, 0, 0}, "0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.in))
		})
	}
}

func TestEncode_OutputShape(t *testing.T) {
	for n := 1; n <= 10; n++ {
		out := Encode(bytes.Repeat([]byte{0x5a}, n))
		assert.Equal(t, (n+2)/3*4, len(out), "length for %d bytes", n)
		for _, c := range out {
			assert.True(t, strings.ContainsRune(Alphabet, c), "unexpected char %q", c)
		}
	}
}

func TestEncode_Pure(t *testing.T) {
	in := []byte("@startuml\nactor User\n@enduml\n")
	assert.Equal(t, Encode(in), Encode(in))
}

func TestEncodeDiagram_RoundTrip(t *testing.T) {
	text := "@startuml\nBob -> Alice : hello\n@enduml"

	encoded, err := EncodeDiagram(text)
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	again, err := EncodeDiagram(text)
	require.NoError(t, err)
	assert.Equal(t, encoded, again)

	assert.Equal(t, text, decodeDiagram(t, encoded))
}

func TestEncodeDiagram_Empty(t *testing.T) {
	encoded, err := EncodeDiagram("")
	require.NoError(t, err)
	assert.Empty(t, encoded)
}

// decodeDiagram reverses EncodeDiagram. Zero padding decodes to bytes past the
// end of the deflate stream, which the reader never consumes.
func decodeDiagram(t *testing.T, encoded string) string {
	t.Helper()
	raw, err := base64.NewEncoding(Alphabet).WithPadding(base64.NoPadding).DecodeString(encoded)
	require.NoError(t, err)
	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}
