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

// Package krsweep reconstructs plant root cross sections from MECHA cellset
// meshes and drives parameter sweeps of the MECHA root hydraulics model.
package krsweep

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// Version gives the version number.
const Version = "0.3.0"

// Mesh is a holder for a MECHA cellset document. Identifiers and
// coordinates are kept as the raw attribute text so that a single
// malformed value only invalidates the entity it belongs to.
type Mesh struct {
	Groups []*MeshGroup `xml:"groups>cellgroups>group"`
	Walls  []*MeshWall  `xml:"walls>wall"`
	Cells  []*MeshCell  `xml:"cells>cell"`
}

// MeshGroup is a tissue group declaration.
type MeshGroup struct {
	ID   string  `xml:"id,attr"`
	Name *string `xml:"name,attr"`
}

// MeshWall is a wall declaration: an identifier and an ordered
// list of points.
type MeshWall struct {
	ID     string       `xml:"id,attr"`
	Points []*MeshPoint `xml:"points>point"`
}

// MeshPoint is a single wall vertex.
type MeshPoint struct {
	X string `xml:"x,attr"`
	Y string `xml:"y,attr"`
}

// MeshCell is a cell declaration referencing its group and
// the walls that bound it.
type MeshCell struct {
	ID    string         `xml:"id,attr"`
	Group string         `xml:"group,attr"`
	Walls []*MeshWallRef `xml:"walls>wall"`
}

// MeshWallRef is a reference from a cell to a wall.
type MeshWallRef struct {
	ID string `xml:"id,attr"`
}

// ReadMesh decodes a cellset document from r. The root element
// name is not checked so that renamed exports still load.
func ReadMesh(r io.Reader) (*Mesh, error) {
	m := new(Mesh)
	d := xml.NewDecoder(r)
	if err := d.Decode(m); err != nil {
		return nil, fmt.Errorf("krsweep: decoding mesh: %w", err)
	}
	return m, nil
}

// ReadMeshFile decodes the cellset document at path.
func ReadMeshFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("krsweep: opening mesh: %w", err)
	}
	defer f.Close()
	return ReadMesh(f)
}
