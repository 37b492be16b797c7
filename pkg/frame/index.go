// Package frame provides the tabular surface over unit-aware columns: a
// column index with multi-level labels, typed column values, and the
// quantify/dequantify transformations that move unit information between
// column labels and column dtypes.
package frame

import (
	"strings"

	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
)

// Label is one column's tuple of level values. A single-row header has
// one-element labels.
type Label []string

// String joins the label's levels for display.
func (l Label) String() string {
	return strings.Join(l, " | ")
}

// Equal reports level-wise equality.
func (l Label) Equal(other Label) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

// Index is a frame's column index: an ordered list of labels, all with the
// same number of levels. Indexes are immutable; level edits return new
// instances.
type Index struct {
	levels int
	labels []Label
}

// NewIndex builds an index from per-column labels, validating that every
// label has the same number of levels.
func NewIndex(labels []Label) (*Index, error) {
	if len(labels) == 0 {
		return &Index{levels: 1}, nil
	}
	levels := len(labels[0])
	if levels == 0 {
		return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation, "labels must have at least one level")
	}
	for i, l := range labels {
		if len(l) != levels {
			return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation, "inconsistent label levels").
				WithDetail("column", i).
				WithDetail("expected", levels).
				WithDetail("got", len(l))
		}
	}
	copied := make([]Label, len(labels))
	for i, l := range labels {
		copied[i] = append(Label(nil), l...)
	}
	return &Index{levels: levels, labels: copied}, nil
}

// FlatIndex builds a single-level index from plain names.
func FlatIndex(names ...string) *Index {
	labels := make([]Label, len(names))
	for i, n := range names {
		labels[i] = Label{n}
	}
	ix, _ := NewIndex(labels)
	return ix
}

// Levels returns the number of label levels.
func (ix *Index) Levels() int { return ix.levels }

// Len returns the number of columns.
func (ix *Index) Len() int { return len(ix.labels) }

// Label returns column i's label tuple.
func (ix *Index) Label(i int) Label { return ix.labels[i] }

// Level extracts one level's values across all columns.
func (ix *Index) Level(level int) []string {
	out := make([]string, len(ix.labels))
	for i, l := range ix.labels {
		out[i] = l[level]
	}
	return out
}

// ResolveLevel normalizes a possibly-negative level position (-1 is the
// bottom level).
func (ix *Index) ResolveLevel(level int) (int, error) {
	if level < 0 {
		level += ix.levels
	}
	if level < 0 || level >= ix.levels {
		return 0, quantaerrors.New(quantaerrors.ErrorTypeValidation, "level out of range").
			WithDetail("level", level).
			WithDetail("levels", ix.levels)
	}
	return level, nil
}

// DropLevel returns a new index with the given level removed. Dropping the
// only level is an error.
func (ix *Index) DropLevel(level int) (*Index, error) {
	level, err := ix.ResolveLevel(level)
	if err != nil {
		return nil, err
	}
	if ix.levels == 1 {
		return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation, "cannot drop the only level")
	}
	labels := make([]Label, len(ix.labels))
	for i, l := range ix.labels {
		out := make(Label, 0, len(l)-1)
		out = append(out, l[:level]...)
		out = append(out, l[level+1:]...)
		labels[i] = out
	}
	return &Index{levels: ix.levels - 1, labels: labels}, nil
}

// AppendLevel returns a new index with values added as the new bottom
// level.
func (ix *Index) AppendLevel(values []string) (*Index, error) {
	if len(values) != len(ix.labels) {
		return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation, "level length mismatch").
			WithDetail("columns", len(ix.labels)).
			WithDetail("values", len(values))
	}
	labels := make([]Label, len(ix.labels))
	for i, l := range ix.labels {
		out := make(Label, 0, len(l)+1)
		out = append(out, l...)
		out = append(out, values[i])
		labels[i] = out
	}
	return &Index{levels: ix.levels + 1, labels: labels}, nil
}

// WithLabels returns a new index replacing every label. Used when a
// writing function collapses labels into a single level.
func (ix *Index) WithLabels(labels []Label) (*Index, error) {
	return NewIndex(labels)
}

// Position returns the first column whose label matches, or -1.
func (ix *Index) Position(label Label) int {
	for i, l := range ix.labels {
		if l.Equal(label) {
			return i
		}
	}
	return -1
}

// PositionByName returns the first column whose top level matches name,
// or -1.
func (ix *Index) PositionByName(name string) int {
	for i, l := range ix.labels {
		if l[0] == name {
			return i
		}
	}
	return -1
}

// Equal reports full structural equality with another index.
func (ix *Index) Equal(other *Index) bool {
	if ix.levels != other.levels || len(ix.labels) != len(other.labels) {
		return false
	}
	for i := range ix.labels {
		if !ix.labels[i].Equal(other.labels[i]) {
			return false
		}
	}
	return true
}
