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
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/ctessum/geom"
)

func TestSaveLoad(t *testing.T) {
	s := (&Reconstructor{Log: quietLog()}).ReadFile("testdata/cells.xml")
	buf := new(bytes.Buffer)
	if err := s.Save(buf); err != nil {
		t.Fatal(err)
	}
	s2, err := LoadSection(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s.Cells, s2.Cells) {
		t.Errorf("cells differ after loading")
	}
	if c := s2.CellAt(geom.Point{X: 6, Y: 1}); c == nil || c.ID != 3 {
		t.Errorf("loaded section index: have %v, want cell 3", c)
	}
	if _, err := LoadSection(strings.NewReader("not a section")); err == nil {
		t.Error("expected an error")
	}
}
