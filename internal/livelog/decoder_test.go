package livelog

import (
	"testing"
	"unicode/utf8"
)

func TestDecodeSplitRune(t *testing.T) {
	// "é" is 0xC3 0xA9; split across two chunks it must still decode
	// to the correct character.
	var dec Decoder
	got := dec.Decode([]byte{0xC3})
	if got != "" {
		t.Fatalf("partial rune decoded early: %q", got)
	}
	got = dec.Decode([]byte{0xA9})
	if got != "é" {
		t.Fatalf("joined rune = %q, want %q", got, "é")
	}
}

func TestDecodePerChunkWouldMojibake(t *testing.T) {
	// The same split decoded with independent decoders produces
	// replacement characters - the reason the decoder is stateful.
	var first, second Decoder
	a := first.Decode([]byte{0xC3}) + first.Flush()
	b := second.Decode([]byte{0xA9})
	if a+b == "é" {
		t.Fatal("independent per-chunk decoding should not reassemble the rune")
	}
}

func TestDecodeFourByteRuneAllSplits(t *testing.T) {
	want := "a\U0001F399z" // studio microphone, 4 bytes
	raw := []byte(want)

	for split := 1; split < len(raw); split++ {
		var dec Decoder
		got := dec.Decode(raw[:split]) + dec.Decode(raw[split:]) + dec.Flush()
		if got != want {
			t.Errorf("split at %d: got %q, want %q", split, got, want)
		}
	}
}

func TestDecodeInvalidBytes(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"lone continuation", []byte{0xA9, 'x'}, string(utf8.RuneError) + "x"},
		{"truncated then ascii", []byte{0xC3, 'x'}, string(utf8.RuneError) + "x"},
		{"valid ascii", []byte("plain"), "plain"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var dec Decoder
			got := dec.Decode(tc.in) + dec.Flush()
			if got != tc.want {
				t.Errorf("Decode(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFlushDrainsIncompleteSequence(t *testing.T) {
	var dec Decoder
	if got := dec.Decode([]byte{0xE2, 0x80}); got != "" {
		t.Fatalf("incomplete sequence decoded early: %q", got)
	}
	if got := dec.Flush(); got != string(utf8.RuneError) {
		t.Fatalf("Flush = %q, want replacement char", got)
	}
	if got := dec.Flush(); got != "" {
		t.Fatalf("second Flush = %q, want empty", got)
	}
}
