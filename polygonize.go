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
	"sort"

	"github.com/ctessum/geom"
)

// SnapTolerance is the distance below which two wall vertices are
// treated as the same graph node when closing cell boundaries.
var SnapTolerance = 1e-9

// Polygonize treats lines as the edges of a planar graph and returns
// the bounded faces of that graph as single-ring polygons. Dangling
// edges and cut edges do not contribute to any ring, and holes are not
// assigned to their shells. Rings are counter-clockwise and do not
// repeat their first vertex.
func Polygonize(lines []geom.LineString) []geom.Polygon {
	return polygonize(lines, SnapTolerance)
}

func polygonize(lines []geom.LineString, tol float64) []geom.Polygon {
	g := newPlanarGraph(tol)
	for _, l := range lines {
		for i := 1; i < len(l); i++ {
			g.addSegment(l[i-1], l[i])
		}
	}
	g.sortEdges()
	g.pruneDangles()
	faces := g.labelFaces()
	if g.removeCutEdges() {
		g.pruneDangles()
		faces = g.labelFaces()
	}

	var polys []geom.Polygon
	for _, f := range faces {
		ring := make([]geom.Point, len(f))
		for i, e := range f {
			ring[i] = e.from.Point
		}
		if signedArea(ring) > 0 {
			polys = append(polys, geom.Polygon{ring})
		}
	}
	return polys
}

type node struct {
	geom.Point
	out []*halfEdge // sorted counter-clockwise by angle
}

func (n *node) degree() int {
	d := 0
	for _, e := range n.out {
		if !e.deleted {
			d++
		}
	}
	return d
}

type halfEdge struct {
	from, to *node
	twin     *halfEdge
	angle    float64
	deleted  bool
	face     int
}

type gridKey struct{ x, y int64 }

// planarGraph is a half-edge graph with vertices snapped to a
// tolerance grid.
type planarGraph struct {
	tol   float64
	nodes []*node
	grid  map[gridKey][]*node
	edges []*halfEdge
	seen  map[[2]*node]bool
}

func newPlanarGraph(tol float64) *planarGraph {
	if !(tol > 0) {
		tol = SnapTolerance
	}
	return &planarGraph{
		tol:  tol,
		grid: make(map[gridKey][]*node),
		seen: make(map[[2]*node]bool),
	}
}

func (g *planarGraph) key(p geom.Point) gridKey {
	return gridKey{int64(math.Floor(p.X / g.tol)), int64(math.Floor(p.Y / g.tol))}
}

// nodeAt returns the node within tolerance of p, creating it if
// there is none.
func (g *planarGraph) nodeAt(p geom.Point) *node {
	k := g.key(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, n := range g.grid[gridKey{k.x + dx, k.y + dy}] {
				if math.Hypot(n.X-p.X, n.Y-p.Y) <= g.tol {
					return n
				}
			}
		}
	}
	n := &node{Point: p}
	g.nodes = append(g.nodes, n)
	g.grid[k] = append(g.grid[k], n)
	return n
}

// addSegment adds the undirected edge a-b. Zero-length and repeated
// edges are ignored.
func (g *planarGraph) addSegment(a, b geom.Point) {
	na, nb := g.nodeAt(a), g.nodeAt(b)
	if na == nb || g.seen[[2]*node{na, nb}] || g.seen[[2]*node{nb, na}] {
		return
	}
	g.seen[[2]*node{na, nb}] = true
	e := &halfEdge{from: na, to: nb, angle: math.Atan2(nb.Y-na.Y, nb.X-na.X)}
	t := &halfEdge{from: nb, to: na, angle: math.Atan2(na.Y-nb.Y, na.X-nb.X)}
	e.twin, t.twin = t, e
	na.out = append(na.out, e)
	nb.out = append(nb.out, t)
	g.edges = append(g.edges, e, t)
}

func (g *planarGraph) sortEdges() {
	for _, n := range g.nodes {
		sort.SliceStable(n.out, func(i, j int) bool { return n.out[i].angle < n.out[j].angle })
	}
}

// pruneDangles repeatedly deletes edges ending at nodes of degree one.
func (g *planarGraph) pruneDangles() {
	var stack []*node
	for _, n := range g.nodes {
		if n.degree() == 1 {
			stack = append(stack, n)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range n.out {
			if e.deleted {
				continue
			}
			e.deleted, e.twin.deleted = true, true
			if e.to.degree() == 1 {
				stack = append(stack, e.to)
			}
		}
	}
}

// next returns the half-edge that follows e around the face on its
// left: the first live edge clockwise from e's twin at e's end node.
func (g *planarGraph) next(e *halfEdge) *halfEdge {
	out := e.to.out
	i := 0
	for ; i < len(out); i++ {
		if out[i] == e.twin {
			break
		}
	}
	for j := 1; j <= len(out); j++ {
		c := out[((i-j)%len(out)+len(out))%len(out)]
		if !c.deleted {
			return c
		}
	}
	return nil
}

// labelFaces walks every live half-edge into face cycles, labelling
// each half-edge with its face number (starting at 1).
func (g *planarGraph) labelFaces() [][]*halfEdge {
	for _, e := range g.edges {
		e.face = 0
	}
	var faces [][]*halfEdge
	for _, start := range g.edges {
		if start.deleted || start.face != 0 {
			continue
		}
		label := len(faces) + 1
		var cycle []*halfEdge
		for e := start; e != nil && e.face == 0; e = g.next(e) {
			e.face = label
			cycle = append(cycle, e)
		}
		faces = append(faces, cycle)
	}
	return faces
}

// removeCutEdges deletes edges that have the same face on both sides.
func (g *planarGraph) removeCutEdges() bool {
	removed := false
	for _, e := range g.edges {
		if !e.deleted && e.face == e.twin.face {
			e.deleted, e.twin.deleted = true, true
			removed = true
		}
	}
	return removed
}

// signedArea is positive for counter-clockwise rings.
func signedArea(ring []geom.Point) float64 {
	a := 0.
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}
