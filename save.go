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
	"encoding/gob"
	"fmt"
	"io"
)

// Save writes the cells of s to w in a binary format that can be
// read back with LoadSection.
func (s *RootSection) Save(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(s.Cells); err != nil {
		return fmt.Errorf("krsweep: saving section: %v", err)
	}
	return nil
}

// LoadSection reads a section previously written by Save and
// rebuilds its spatial index.
func LoadSection(r io.Reader) (*RootSection, error) {
	var cells []*CellPolygon
	if err := gob.NewDecoder(r).Decode(&cells); err != nil {
		return nil, fmt.Errorf("krsweep: loading section: %v", err)
	}
	s := NewRootSection()
	for _, c := range cells {
		s.Add(c)
	}
	return s, nil
}
