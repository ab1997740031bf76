package livelog

import (
	"strings"
	"unicode/utf8"
)

// Decoder converts a byte stream to text incrementally. Bytes of a
// multi-byte rune split across chunk boundaries are carried over to the
// next call; invalid sequences decode to U+FFFD instead of failing.
type Decoder struct {
	pending []byte
}

// Decode consumes one chunk and returns the decoded text. A trailing
// incomplete rune is held back and completed by the next chunk.
func (d *Decoder) Decode(chunk []byte) string {
	buf := append(d.pending, chunk...)
	d.pending = nil

	var sb strings.Builder
	sb.Grow(len(buf))
	for len(buf) > 0 {
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size == 1 {
			if !utf8.FullRune(buf) {
				// Incomplete trailing sequence, wait for more bytes.
				d.pending = append([]byte(nil), buf...)
				break
			}
			sb.WriteRune(utf8.RuneError)
			buf = buf[1:]
			continue
		}
		sb.Write(buf[:size])
		buf = buf[size:]
	}
	return sb.String()
}

// Flush drains a held-back incomplete sequence as a single U+FFFD.
func (d *Decoder) Flush() string {
	if len(d.pending) == 0 {
		return ""
	}
	d.pending = nil
	return string(utf8.RuneError)
}
