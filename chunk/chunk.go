/*
Package chunk locates, extracts, and re-injects the raw PNG chunk that
carries DMI metadata.

A PNG chunk is a 4-byte big-endian payload length, a 4-byte ASCII type, the
payload, and a 4-byte CRC. BYOND stores its icon metadata as a zTXt chunk
whose payload begins with the keyword "Description". The whole chunk is
treated as an opaque byte run; the payload is never decompressed and the
CRC is never recomputed, so a chunk survives an extract/splice round trip
byte for byte.

Discovery is a linear scan for the literal type and keyword bytes rather
than a walk of the chunk table. The same bytes occurring inside unrelated
data, such as compressed pixels, are indistinguishable from a real chunk
and will be misparsed as one. This is a known limitation; the scan is
confined to this package so a structured chunk walker could replace it
without changing callers.
*/
package chunk

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	// TypeZTXT is the chunk type carrying compressed textual metadata
	TypeZTXT = "zTXt"

	// Keyword is the zTXt keyword BYOND writes its metadata block under
	Keyword = "Description"

	// AnchorIDAT is the first pixel-data chunk. PNG chunk ordering places
	// all textual metadata before it, so it is the splice insertion point.
	AnchorIDAT = "IDAT"
)

// A chunk occupies its payload plus three 4-byte fields: length, type, CRC
const overhead = 12

var (
	// ErrNotFound is returned when neither the compound nor the bare tag
	// occurs anywhere in the buffer, or when the splice anchor is absent
	ErrNotFound = errors.New("chunk: no matching chunk")

	// ErrMalformed is returned when a tag match cannot span a whole chunk;
	// either there are not enough bytes before it for a length field, or
	// fewer bytes after it than the length field declares
	ErrMalformed = errors.New("chunk: truncated chunk")
)

// Chunk is one raw PNG chunk held verbatim: length field, type tag,
// payload, and CRC.
type Chunk struct {
	raw []byte
}

// Extract scans b for the first chunk of the given type. The compound tag,
// the type immediately followed by keyword, is tried first; only if it
// occurs nowhere is the bare type retried. The matched chunk is returned
// as an exact copy of its bytes, length field through CRC.
func Extract(b []byte, typ, keyword string) (*Chunk, error) {
	p := bytes.Index(b, []byte(typ+keyword))
	if p < 0 {
		p = bytes.Index(b, []byte(typ))
	}
	if p < 0 {
		return nil, ErrNotFound
	}
	if p < 5 {
		return nil, ErrMalformed
	}

	length := binary.BigEndian.Uint32(b[p-4 : p])
	end := p - 4 + overhead + int(length)
	if end > len(b) {
		return nil, ErrMalformed
	}

	raw := make([]byte, overhead+int(length))
	copy(raw, b[p-4:end])

	return &Chunk{raw: raw}, nil
}

// FromRaw revalidates previously extracted chunk bytes, such as those read
// back from a store, against the length field they start with.
func FromRaw(b []byte) (*Chunk, error) {
	if len(b) < overhead {
		return nil, ErrMalformed
	}
	if int(binary.BigEndian.Uint32(b[:4]))+overhead != len(b) {
		return nil, ErrMalformed
	}

	raw := make([]byte, len(b))
	copy(raw, b)

	return &Chunk{raw: raw}, nil
}

// Raw returns the chunk bytes, length field through CRC inclusive.
func (c *Chunk) Raw() []byte {
	return c.raw
}

// Type returns the 4-character ASCII chunk type.
func (c *Chunk) Type() string {
	return string(c.raw[4:8])
}

// Length returns the payload length declared by the length field.
func (c *Chunk) Length() int {
	return int(binary.BigEndian.Uint32(c.raw[:4]))
}

// Size returns the total number of bytes the chunk occupies.
func (c *Chunk) Size() int {
	return len(c.raw)
}

// Splice returns a copy of png with the chunk inserted immediately before
// the first chunk of the anchor type, conventionally IDAT. The input
// buffer is never modified. The anchor is located with the same linear
// scan as Extract and is subject to the same collision caveat.
func Splice(png []byte, c *Chunk, anchor string) ([]byte, error) {
	p := bytes.Index(png, []byte(anchor))
	if p < 0 {
		return nil, ErrNotFound
	}
	if p < 4 {
		return nil, ErrMalformed
	}

	// Step back over the anchor's length field
	start := p - 4

	out := make([]byte, 0, len(png)+len(c.raw))
	out = append(out, png[:start]...)
	out = append(out, c.raw...)
	out = append(out, png[start:]...)

	return out, nil
}
