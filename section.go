/*
Copyright © 2026 the krsweep authors.
This file is part of krsweep.

krsweep is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

krsweep is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with krsweep.  If not, see <http://www.gnu.org/licenses/>.
*/

package krsweep

import (
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// RootSection holds the reconstructed cells of one root cross section.
// The cells are in mesh declaration order unless re-sorted. An empty
// section signals that the mesh could not be read.
type RootSection struct {
	Cells []*CellPolygon
	index *rtree.Rtree
}

// NewRootSection returns an empty section.
func NewRootSection() *RootSection {
	return &RootSection{index: rtree.NewTree(25, 50)}
}

// Add adds c to the section.
func (s *RootSection) Add(c *CellPolygon) {
	s.Cells = append(s.Cells, c)
	s.index.Insert(c)
}

// Copy returns a section holding the same cells as s, which can be
// re-sorted or added to without changing s.
func (s *RootSection) Copy() *RootSection {
	c := NewRootSection()
	for _, cell := range s.Cells {
		c.Add(cell)
	}
	return c
}

// Len returns the number of cells in the section.
func (s *RootSection) Len() int { return len(s.Cells) }

// Empty reports whether the section has no cells.
func (s *RootSection) Empty() bool { return len(s.Cells) == 0 }

// SortByID sorts the cells by ascending id.
func (s *RootSection) SortByID() {
	sort.Slice(s.Cells, func(i, j int) bool { return s.Cells[i].ID < s.Cells[j].ID })
}

// SortByType sorts the cells by type label and then by id.
func (s *RootSection) SortByType() {
	sort.Slice(s.Cells, func(i, j int) bool {
		if s.Cells[i].Type != s.Cells[j].Type {
			return s.Cells[i].Type < s.Cells[j].Type
		}
		return s.Cells[i].ID < s.Cells[j].ID
	})
}

// Types returns the distinct cell type labels in sorted order.
func (s *RootSection) Types() []string {
	counts := s.Counts()
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Counts returns the number of cells of each type.
func (s *RootSection) Counts() map[string]int {
	counts := make(map[string]int)
	for _, c := range s.Cells {
		counts[c.Type]++
	}
	return counts
}

// Bounds returns the bounding box of all cells, or nil for an
// empty section.
func (s *RootSection) Bounds() *geom.Bounds {
	if s.Empty() {
		return nil
	}
	b := geom.NewBounds()
	for _, c := range s.Cells {
		b.Extend(c.Bounds())
	}
	return b
}

// CellAt returns the cell containing p, or nil if there is none.
// Points on a wall shared by two cells may match either.
func (s *RootSection) CellAt(p geom.Point) *CellPolygon {
	for _, g := range s.index.SearchIntersect(p.Bounds()) {
		c := g.(*CellPolygon)
		if p.Within(c.Polygon) != geom.Outside {
			return c
		}
	}
	return nil
}

// CellKey identifies a reconstructed cell independently of the
// starting vertex and direction of its ring.
type CellKey struct {
	ID       int
	Type     string
	Vertices []geom.Point // sorted by X then Y
}

// Fingerprint returns one key per cell, sorted by id.
func (s *RootSection) Fingerprint() []CellKey {
	keys := make([]CellKey, len(s.Cells))
	for i, c := range s.Cells {
		var v []geom.Point
		for _, r := range c.Polygon {
			v = append(v, r...)
		}
		sort.Slice(v, func(i, j int) bool {
			if v[i].X != v[j].X {
				return v[i].X < v[j].X
			}
			return v[i].Y < v[j].Y
		})
		keys[i] = CellKey{ID: c.ID, Type: c.Type, Vertices: v}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].ID < keys[j].ID })
	return keys
}
