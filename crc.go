package dmi2aseprite

import (
	"fmt"
	"hash/crc32"
)

// crcBytes returns the uppercase hex CRC-32 of b, the key the chunk
// library indexes source files by.
func crcBytes(b []byte) string {
	return fmt.Sprintf("%0*X", crc32.Size<<1, crc32.ChecksumIEEE(b))
}
