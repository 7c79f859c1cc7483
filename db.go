package dmi2aseprite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/masterdanvk/DMI2Aseprite/chunk"
	_ "github.com/mattn/go-sqlite3"
)

// ChunkDB is the library of every metadata chunk imported so far, keyed by
// the CRC of the file it came from.
type ChunkDB struct {
	db *sql.DB
}

// NewChunkDB opens, creating if necessary, the library at file.
func NewChunkDB(file string) (*ChunkDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS chunk (id INTEGER PRIMARY KEY NOT NULL, crc TEXT NOT NULL UNIQUE, source STRING NOT NULL, length INTEGER NOT NULL, raw BLOB NOT NULL, imported_at INTEGER NOT NULL)"); err != nil {
		return nil, err
	}

	return &ChunkDB{
		db: db,
	}, nil
}

// Close releases the underlying database.
func (db *ChunkDB) Close() error {
	return db.db.Close()
}

// Put records the chunk extracted from the source file with the given CRC,
// replacing any earlier record for the same file.
func (db *ChunkDB) Put(crc, source string, c *chunk.Chunk) error {
	if _, err := db.db.Exec("INSERT OR REPLACE INTO chunk (crc, source, length, raw, imported_at) VALUES (?, ?, ?, ?, ?)", crc, source, c.Length(), c.Raw(), time.Now().Unix()); err != nil {
		return err
	}
	return nil
}

// FindByCRC returns the chunk recorded for the source file with the given
// CRC, or nil when that file has never been imported.
func (db *ChunkDB) FindByCRC(crc string) (*chunk.Chunk, error) {
	var raw []byte
	switch err := db.db.QueryRow("SELECT raw FROM chunk WHERE crc = ?", crc).Scan(&raw); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return chunk.FromRaw(raw)
	default:
		return nil, err
	}
}

// Latest returns the most recently imported chunk, or nil when the library
// is empty.
func (db *ChunkDB) Latest() (*chunk.Chunk, error) {
	var raw []byte
	switch err := db.db.QueryRow("SELECT raw FROM chunk ORDER BY imported_at DESC, id DESC LIMIT 1").Scan(&raw); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return chunk.FromRaw(raw)
	default:
		return nil, err
	}
}

// Entry is one library row.
type Entry struct {
	Source     string
	CRC        string
	Length     int
	ImportedAt time.Time
}

// List returns every library entry, most recent first.
func (db *ChunkDB) List() ([]Entry, error) {
	rows, err := db.db.Query("SELECT source, crc, length, imported_at FROM chunk ORDER BY imported_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			ts int64
		)
		if err := rows.Scan(&e.Source, &e.CRC, &e.Length, &ts); err != nil {
			return nil, err
		}
		e.ImportedAt = time.Unix(ts, 0)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
