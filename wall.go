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
	"math"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

// Wall is a cell wall: a polyline with at least two vertices.
type Wall struct {
	ID int
	geom.LineString
}

// WallIndex holds walls keyed by their identifier.
type WallIndex map[int]*Wall

// BuildWallIndex converts the wall declarations in m into line
// strings. Points with unparsable coordinates are dropped; walls
// left with fewer than two points, or with an unparsable identifier,
// are skipped. When an identifier is declared more than once the
// first declaration is kept.
func BuildWallIndex(m *Mesh, log logrus.FieldLogger) WallIndex {
	if log == nil {
		log = logrus.StandardLogger()
	}
	idx := make(WallIndex)
	if m == nil {
		return idx
	}
	for _, w := range m.Walls {
		id, err := parseID(w.ID)
		if err != nil {
			log.WithFields(logrus.Fields{"wall": w.ID}).Warn("krsweep: skipping wall with invalid id")
			continue
		}
		if _, ok := idx[id]; ok {
			log.WithFields(logrus.Fields{"wall": id}).Warn("krsweep: duplicate wall id; keeping first")
			continue
		}
		line := make(geom.LineString, 0, len(w.Points))
		for i, p := range w.Points {
			pt, ok := parsePoint(p)
			if !ok {
				log.WithFields(logrus.Fields{
					"wall":  id,
					"point": i,
				}).Debug("krsweep: dropping point with invalid coordinates")
				continue
			}
			line = append(line, pt)
		}
		if len(line) < 2 {
			log.WithFields(logrus.Fields{
				"wall":   id,
				"points": len(line),
			}).Warn("krsweep: skipping wall with fewer than 2 points")
			continue
		}
		idx[id] = &Wall{ID: id, LineString: line}
	}
	return idx
}

func parsePoint(p *MeshPoint) (geom.Point, bool) {
	if p == nil {
		return geom.Point{}, false
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(p.X), 64)
	if err != nil {
		return geom.Point{}, false
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(p.Y), 64)
	if err != nil {
		return geom.Point{}, false
	}
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return geom.Point{}, false
	}
	return geom.Point{X: x, Y: y}, true
}

func parseID(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
