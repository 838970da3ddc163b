package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cursor records where the ingest loop stopped, bound to the chain it was
// written for. A cursor from another chain must never seed a resume.
type Cursor struct {
	ChainID   uint64 `json:"chain_id"`
	LastBlock uint64 `json:"last_block"`
	UpdatedAt string `json:"updated_at"`
}

// CursorFile persists the cursor as a small JSON file, written atomically
// via a tmp file and rename.
type CursorFile struct {
	path    string
	enabled bool
	chainID uint64
}

func NewCursorFile(path string, enabled bool, chainID uint64) *CursorFile {
	return &CursorFile{path: path, enabled: enabled, chainID: chainID}
}

// Load reads the stored cursor. It reports ok=false when disabled or when
// no cursor file exists, and errors on a chain mismatch.
func (c *CursorFile) Load() (Cursor, bool, error) {
	if !c.enabled {
		return Cursor{}, false, nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Cursor{}, false, nil
		}
		return Cursor{}, false, fmt.Errorf("read cursor: %w", err)
	}

	var cur Cursor
	if err := json.Unmarshal(data, &cur); err != nil {
		return Cursor{}, false, fmt.Errorf("parse cursor: %w", err)
	}
	if cur.ChainID != 0 && cur.ChainID != c.chainID {
		return Cursor{}, false, fmt.Errorf("cursor %s belongs to chain %d, not %d", c.path, cur.ChainID, c.chainID)
	}

	return cur, true, nil
}

func (c *CursorFile) Save(lastBlock uint64) error {
	if !c.enabled {
		return nil
	}

	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cursor dir: %w", err)
		}
	}

	data, err := json.Marshal(Cursor{
		ChainID:   c.chainID,
		LastBlock: lastBlock,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal cursor: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write cursor tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("rename cursor: %w", err)
	}

	return nil
}
