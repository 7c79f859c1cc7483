package chunk

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

// rawChunk assembles one well-formed chunk: length, type, payload, CRC.
func rawChunk(typ string, payload []byte) []byte {
	b := new(bytes.Buffer)
	binary.Write(b, binary.BigEndian, uint32(len(payload)))
	b.WriteString(typ)
	b.Write(payload)
	binary.Write(b, binary.BigEndian, crc32.ChecksumIEEE(append([]byte(typ), payload...)))
	return b.Bytes()
}

func rawPNG(chunks ...[]byte) []byte {
	b := append([]byte{}, pngSignature...)
	for _, c := range chunks {
		b = append(b, c...)
	}
	return b
}

func ihdr() []byte {
	return rawChunk("IHDR", make([]byte, 13))
}

func idat() []byte {
	return rawChunk("IDAT", []byte{0x78, 0x9c, 0x01, 0x02, 0x03})
}

func iend() []byte {
	return rawChunk("IEND", nil)
}

func TestExtract(t *testing.T) {
	payload := append([]byte(Keyword+"\x00\x00"), 0xde, 0xad, 0xbe, 0xef)
	want := rawChunk(TypeZTXT, payload)
	b := rawPNG(ihdr(), want, idat(), iend())

	c, err := Extract(b, TypeZTXT, Keyword)
	require.NoError(t, err)

	assert.Equal(t, TypeZTXT, c.Type())
	assert.Equal(t, len(payload), c.Length())
	assert.Equal(t, 12+len(payload), c.Size())
	assert.Equal(t, want, c.Raw())
}

func TestExtractBareFallback(t *testing.T) {
	// The keyword is absent so the compound tag cannot match; the bare
	// type tag still finds the chunk.
	payload := []byte("Comment\x00\x00xyz")
	want := rawChunk(TypeZTXT, payload)
	b := rawPNG(ihdr(), want, idat(), iend())

	c, err := Extract(b, TypeZTXT, Keyword)
	require.NoError(t, err)
	assert.Equal(t, want, c.Raw())
}

func TestExtractPrefersCompound(t *testing.T) {
	// A bare zTXt occurring before the compound one is skipped: the
	// compound tag is searched to exhaustion before falling back.
	bare := rawChunk(TypeZTXT, []byte("Comment\x00\x00a"))
	compound := rawChunk(TypeZTXT, []byte(Keyword+"\x00\x00b"))
	b := rawPNG(ihdr(), bare, compound, idat(), iend())

	c, err := Extract(b, TypeZTXT, Keyword)
	require.NoError(t, err)
	assert.Equal(t, compound, c.Raw())
}

func TestExtractNotFound(t *testing.T) {
	b := rawPNG(ihdr(), idat(), iend())

	_, err := Extract(b, TypeZTXT, Keyword)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExtractNoLengthField(t *testing.T) {
	// Tag match at offset 0: no room for a length field before it
	b := []byte(TypeZTXT + Keyword + "\x00\x00junk")
	_, err := Extract(b, TypeZTXT, Keyword)
	assert.ErrorIs(t, err, ErrMalformed)

	// Still too close to the front at offset 4
	b = append([]byte{0, 0, 0, 4}, b...)
	_, err = Extract(b, TypeZTXT, Keyword)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestExtractTruncated(t *testing.T) {
	c := rawChunk(TypeZTXT, []byte(Keyword+"\x00\x00payload"))
	b := rawPNG(ihdr(), c[:len(c)-6])

	_, err := Extract(b, TypeZTXT, Keyword)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSplice(t *testing.T) {
	payload := []byte(Keyword + "\x00\x00data")
	meta := rawChunk(TypeZTXT, payload)
	original := rawPNG(ihdr(), meta, idat(), iend())

	c, err := Extract(original, TypeZTXT, Keyword)
	require.NoError(t, err)

	// A freshly produced PNG of the same pixels, metadata gone
	stripped := rawPNG(ihdr(), idat(), iend())

	spliced, err := Splice(stripped, c, AnchorIDAT)
	require.NoError(t, err)

	assert.Len(t, spliced, len(stripped)+c.Size())
	assert.Equal(t, stripped, rawPNG(ihdr(), idat(), iend()), "input buffer must not be mutated")

	// The chunk sits immediately before the anchor's length field
	p := bytes.Index(spliced, []byte(AnchorIDAT))
	require.True(t, p >= 4)
	assert.Equal(t, meta, spliced[p-4-c.Size():p-4])

	// Round trip: decomposing the spliced stream yields the identical chunk
	again, err := Extract(spliced, TypeZTXT, Keyword)
	require.NoError(t, err)
	assert.Equal(t, c.Raw(), again.Raw())
}

func TestSpliceNoAnchor(t *testing.T) {
	c, err := FromRaw(rawChunk(TypeZTXT, []byte("x")))
	require.NoError(t, err)

	_, err = Splice(rawPNG(ihdr(), iend()), c, AnchorIDAT)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFromRaw(t *testing.T) {
	raw := rawChunk(TypeZTXT, []byte(Keyword+"\x00\x00abc"))

	c, err := FromRaw(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, c.Raw())

	_, err = FromRaw(raw[:8])
	assert.ErrorIs(t, err, ErrMalformed)

	// Length field disagrees with the actual span
	_, err = FromRaw(raw[:len(raw)-1])
	assert.ErrorIs(t, err, ErrMalformed)
}
