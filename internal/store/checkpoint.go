package store

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/fmax/internal/points"
	"github.com/roach88/fmax/internal/sig"
)

// Checkpoint manages the durable copy of a data-point set. An empty path
// makes the checkpoint ephemeral: Save is a no-op and Load returns an empty
// set, so the run neither persists nor resumes.
type Checkpoint struct {
	path string
}

// New returns a checkpoint manager for the given path.
func New(path string) *Checkpoint {
	return &Checkpoint{path: path}
}

// Ephemeral reports whether the checkpoint has no backing file.
func (c *Checkpoint) Ephemeral() bool {
	return c.path == ""
}

// Save stamps the delay offset into every point and fully rewrites the
// checkpoint file. The write goes to a temp file in the same directory and
// is renamed into place, so an interrupted save never leaves a torn
// checkpoint behind.
func (c *Checkpoint) Save(set *points.Set) error {
	if c.Ephemeral() {
		return nil
	}

	offset := set.StampDelayOffset()
	slog.Debug("using delay offset", "delay_offset_ps", offset)

	var buf bytes.Buffer
	if err := set.Encode(&buf); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Load reads the checkpoint and rebuilds the dedup index from its
// signatures. A missing or unconfigured checkpoint yields an empty set; a
// malformed one is an error (bad input is not worked around).
func (c *Checkpoint) Load() (*points.Set, *sig.Index, error) {
	index := sig.NewIndex()
	if c.Ephemeral() {
		return points.NewSet(), index, nil
	}

	f, err := os.Open(c.path)
	if os.IsNotExist(err) {
		return points.NewSet(), index, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load checkpoint: %w", err)
	}
	defer f.Close()

	set, err := points.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("load checkpoint %s: %w", c.path, err)
	}
	for _, dp := range set.Points() {
		index.Add(dp.Signature)
	}
	slog.Info("checkpoint loaded", "path", c.path, "points", set.Len())
	return set, index, nil
}
