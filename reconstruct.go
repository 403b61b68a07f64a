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
	"io"
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

// RingPolicy chooses among several rings closed from the walls of
// a single cell.
type RingPolicy int

const (
	// LargestRing selects the ring with the largest area. Rings are
	// minimal faces, so a cell split by an internal wall keeps its
	// largest piece rather than its outer boundary.
	LargestRing RingPolicy = iota
	// FirstRing selects the first ring found.
	FirstRing
)

func (rp RingPolicy) choose(polys []geom.Polygon) geom.Polygon {
	if rp == FirstRing || len(polys) == 1 {
		return polys[0]
	}
	best, bestArea := 0, math.Inf(-1)
	for i, p := range polys {
		if a := p.Area(); a > bestArea {
			best, bestArea = i, a
		}
	}
	return polys[best]
}

// CellPolygon is the reconstructed outline of one cell.
type CellPolygon struct {
	geom.Polygon

	ID    int    // cell id
	Group int    // declared tissue group id
	Type  string // tissue label, or FallbackType
}

// Exact reports whether the cell was closed exactly from its walls.
func (c *CellPolygon) Exact() bool { return c.Type != FallbackType }

// Reconstructor rebuilds cell polygons from a mesh. The zero value
// is ready to use.
type Reconstructor struct {
	// Rings selects the ring used when a cell's walls close into
	// more than one ring.
	Rings RingPolicy

	// Tolerance is the vertex snapping distance. If zero,
	// SnapTolerance is used.
	Tolerance float64

	Log logrus.FieldLogger
}

func (rc *Reconstructor) log() logrus.FieldLogger {
	if rc.Log == nil {
		return logrus.StandardLogger()
	}
	return rc.Log
}

func (rc *Reconstructor) tolerance() float64 {
	if rc.Tolerance > 0 {
		return rc.Tolerance
	}
	return SnapTolerance
}

// Read decodes a mesh from r and reconstructs it. A document that
// cannot be decoded yields an empty section.
func (rc *Reconstructor) Read(r io.Reader) *RootSection {
	m, err := ReadMesh(r)
	if err != nil {
		rc.log().WithError(err).Error("krsweep: mesh could not be parsed; returning empty section")
		return NewRootSection()
	}
	return rc.Section(m)
}

// ReadFile is like Read but opens the mesh at path.
func (rc *Reconstructor) ReadFile(path string) *RootSection {
	m, err := ReadMeshFile(path)
	if err != nil {
		rc.log().WithError(err).WithField("path", path).Error("krsweep: mesh could not be parsed; returning empty section")
		return NewRootSection()
	}
	return rc.Section(m)
}

// Section reconstructs every cell in m. Cells that reference no known
// walls or whose outline is degenerate are omitted; the first
// declaration of a repeated cell id wins.
func (rc *Reconstructor) Section(m *Mesh) *RootSection {
	log := rc.log()
	s := NewRootSection()
	if m == nil {
		return s
	}
	walls := BuildWallIndex(m, log)
	groups := NewTissueGroups(m, log)

	seen := make(map[int]bool)
	for _, mc := range m.Cells {
		id, err := parseID(mc.ID)
		if err != nil {
			log.WithFields(logrus.Fields{"cell": mc.ID}).Warn("krsweep: skipping cell with invalid id")
			continue
		}
		group, err := parseID(mc.Group)
		if err != nil {
			log.WithFields(logrus.Fields{"cell": id, "group": mc.Group}).Warn("krsweep: skipping cell with invalid group")
			continue
		}
		if seen[id] {
			log.WithFields(logrus.Fields{"cell": id}).Warn("krsweep: duplicate cell id; keeping first")
			continue
		}
		seen[id] = true

		c := rc.close(mc, walls)
		cp := &CellPolygon{ID: id, Group: group}
		switch c.kind {
		case closureEmpty:
			log.WithFields(logrus.Fields{"cell": id}).Debug("krsweep: cell has no known walls")
			continue
		case closureExact:
			cp.Polygon = c.polygon
			cp.Type = groups.Label(group)
		case closureFallback:
			cp.Polygon = orderAroundCentroid(c.points, rc.tolerance())
			cp.Type = FallbackType
			log.WithFields(logrus.Fields{
				"cell":   id,
				"points": len(cp.Polygon[0]),
			}).Info("krsweep: cell boundary is open; ordering points around centroid")
		}
		if rc.degenerate(cp.Polygon) {
			log.WithFields(logrus.Fields{"cell": id, "type": cp.Type}).Warn("krsweep: omitting degenerate cell")
			continue
		}
		s.Add(cp)
	}
	return s
}

type closureKind int

const (
	closureEmpty closureKind = iota
	closureExact
	closureFallback
)

// closureResult is the outcome of closing one cell's walls: an exact
// polygon, the points needing fallback ordering, or nothing.
type closureResult struct {
	kind    closureKind
	polygon geom.Polygon
	points  []geom.Point
}

func (rc *Reconstructor) close(mc *MeshCell, walls WallIndex) closureResult {
	var lines []geom.LineString
	var points []geom.Point
	for _, ref := range mc.Walls {
		id, err := parseID(ref.ID)
		if err != nil {
			continue
		}
		w, ok := walls[id]
		if !ok {
			continue
		}
		lines = append(lines, w.LineString)
		points = append(points, w.LineString...)
	}
	if len(lines) == 0 {
		return closureResult{kind: closureEmpty}
	}
	if polys := polygonize(lines, rc.tolerance()); len(polys) > 0 {
		return closureResult{kind: closureExact, polygon: rc.Rings.choose(polys)}
	}
	return closureResult{kind: closureFallback, points: points}
}

// orderAroundCentroid connects the distinct points in order of their
// angle about the mean of all points. The result is only meaningful
// for point clouds that are roughly star-shaped about the centroid.
func orderAroundCentroid(points []geom.Point, tol float64) geom.Polygon {
	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(points))
	cy /= float64(len(points))

	g := newPlanarGraph(tol)
	for _, p := range points {
		g.nodeAt(p)
	}
	ring := make([]geom.Point, len(g.nodes))
	for i, n := range g.nodes {
		ring[i] = n.Point
	}
	sort.SliceStable(ring, func(i, j int) bool {
		return math.Atan2(ring[i].Y-cy, ring[i].X-cx) < math.Atan2(ring[j].Y-cy, ring[j].X-cx)
	})
	return geom.Polygon{ring}
}

func (rc *Reconstructor) degenerate(p geom.Polygon) bool {
	if len(p) == 0 || len(p[0]) < 3 {
		return true
	}
	tol := rc.tolerance()
	return !(p.Area() > tol*tol)
}

// ReconstructSection decodes the mesh in r and reconstructs it with
// default settings.
func ReconstructSection(r io.Reader) *RootSection {
	return new(Reconstructor).Read(r)
}

// ReconstructSectionFile decodes the mesh at path and reconstructs it
// with default settings.
func ReconstructSectionFile(path string) *RootSection {
	return new(Reconstructor).ReadFile(path)
}
