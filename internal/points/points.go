// Package points holds the characterization data model: measured data points
// and the append-only, insertion-ordered set the run accumulates. The set's
// serialized form (YAML document) is shared by the checkpoint file and the
// final stdout rendering.
package points

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fmax/internal/sig"
)

// Schema-identifying comment lines emitted ahead of the rendered dataset.
const (
	schemaFormatLine  = "# file-format: fmax/data-points"
	schemaVersionLine = "# schema-version: 1"
)

// DataPoint is one measured delay for one operation signature. Immutable
// after creation except for DelayOffsetPs, which is restamped on every save.
type DataPoint struct {
	Signature sig.Signature `yaml:"operation"`

	// DelayPs is the measured operator delay in picoseconds
	// (1e12 / max passing frequency), or 0 if no frequency was found.
	DelayPs int64 `yaml:"delay_ps"`

	// DelayOffsetPs is the minimum nonzero delay across the whole set at
	// the time it was last saved — the fixed register-to-register
	// reference delay consumed by downstream interpolation.
	DelayOffsetPs int64 `yaml:"delay_offset_ps"`
}

// Set is the growing collection of data points. Append-only; dedup is the
// caller's job (via sig.Index). Insertion order is preserved but carries no
// meaning. Not safe for concurrent use.
type Set struct {
	points []DataPoint
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{}
}

// Add appends a data point.
func (s *Set) Add(dp DataPoint) {
	s.points = append(s.points, dp)
}

// Points returns the points in insertion order. The returned slice is the
// set's backing storage; callers must not mutate it.
func (s *Set) Points() []DataPoint {
	return s.points
}

// Len returns the number of points.
func (s *Set) Len() int {
	return len(s.points)
}

// StampDelayOffset writes the minimum nonzero delay into every point's
// DelayOffsetPs and returns it. With no nonzero delays the offset is 0.
func (s *Set) StampDelayOffset() int64 {
	var minDelay int64
	for _, dp := range s.points {
		if dp.DelayPs != 0 && (minDelay == 0 || dp.DelayPs < minDelay) {
			minDelay = dp.DelayPs
		}
	}
	for i := range s.points {
		s.points[i].DelayOffsetPs = minDelay
	}
	return minDelay
}

// document is the serialized shape of a Set.
type document struct {
	DataPoints []DataPoint `yaml:"data_points"`
}

// Encode writes the set as a YAML document.
func (s *Set) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{DataPoints: s.points}); err != nil {
		return fmt.Errorf("encode data points: %w", err)
	}
	return enc.Close()
}

// Render writes the final output artifact: the two schema-identifying
// comment lines followed by the YAML document.
func (s *Set) Render(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n", schemaFormatLine, schemaVersionLine); err != nil {
		return err
	}
	return s.Encode(w)
}

// Decode parses a YAML document produced by Encode back into a Set.
func Decode(r io.Reader) (*Set, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return NewSet(), nil
		}
		return nil, fmt.Errorf("decode data points: %w", err)
	}
	return &Set{points: doc.DataPoints}, nil
}
