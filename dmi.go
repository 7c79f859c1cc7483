/*
Package dmi2aseprite extracts, preserves, and re-injects the DMI metadata
block embedded in BYOND sprite-sheet PNGs, and performs grid-aware
transforms on those sheets.

The metadata travels as a single zTXt chunk. It is carried opaquely: an
import lifts the chunk out of a .dmi file byte for byte, and an export
splices those same bytes back into a freshly produced PNG in front of its
first IDAT chunk. Nothing in between parses or re-encodes the payload.
*/
package dmi2aseprite

import (
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/masterdanvk/DMI2Aseprite/chunk"
)

// ErrNoChunk is returned by Export when neither the slot store nor the
// chunk library holds a chunk to splice
var ErrNoChunk = errors.New("dmi2aseprite: no metadata chunk loaded")

// App ties the single-slot chunk store and the chunk library together.
type App struct {
	db     *ChunkDB
	store  *chunk.FileStore
	logger *log.Logger
}

// New returns an App using the given library, slot store, and logger.
func New(db *ChunkDB, store *chunk.FileStore, logger *log.Logger) *App {
	return &App{
		db:     db,
		store:  store,
		logger: logger,
	}
}

// Import extracts the metadata chunk from file, writes it to the slot
// store, replacing whatever was loaded before, and records it in the chunk
// library keyed by the CRC of the source file.
func (a *App) Import(file string) (*chunk.Chunk, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	c, err := chunk.Extract(b, chunk.TypeZTXT, chunk.Keyword)
	if err != nil {
		return nil, err
	}

	if err := a.store.Persist(c); err != nil {
		return nil, err
	}

	if err := a.db.Put(crcBytes(b), filepath.Base(file), c); err != nil {
		return nil, err
	}

	a.logger.Printf("imported %d byte %s chunk from %q\n", c.Size(), c.Type(), file)

	return c, nil
}

// Export splices the previously imported chunk into the PNG at in and
// writes the result to out. The slot store is consulted first; when it is
// empty the most recently imported chunk is pulled from the library.
func (a *App) Export(in, out string) error {
	c, err := a.store.Recall()
	if err != nil {
		return err
	}
	if c == nil {
		if c, err = a.db.Latest(); err != nil {
			return err
		}
	}
	if c == nil {
		return ErrNoChunk
	}

	b, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	spliced, err := chunk.Splice(b, c, chunk.AnchorIDAT)
	if err != nil {
		return err
	}

	a.logger.Printf("spliced %d byte %s chunk into %q\n", c.Size(), c.Type(), out)

	return os.WriteFile(out, spliced, 0644)
}

// Status returns the chunk currently loaded in the slot store, or nil when
// the slot is empty.
func (a *App) Status() (*chunk.Chunk, error) {
	return a.store.Recall()
}

// Clear empties the slot store. The chunk library is left alone.
func (a *App) Clear() error {
	return a.store.Clear()
}

// Library returns every chunk recorded in the library, most recent first.
func (a *App) Library() ([]Entry, error) {
	return a.db.List()
}
