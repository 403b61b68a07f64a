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
	"fmt"

	"github.com/sirupsen/logrus"
)

// Reserved tissue labels.
const (
	Cortex     = "cortex"
	Endodermis = "endodermis"

	// FallbackType marks cells whose polygon was rebuilt by ordering
	// wall points around their centroid rather than by exact closure.
	FallbackType = "fallback"
)

// Group ids with canonical labels that take precedence over the
// names declared in the mesh.
const (
	endodermisGroup = 3
	cortexGroup     = 4
)

// TissueGroups maps tissue group ids to labels.
type TissueGroups map[int]string

// NewTissueGroups builds the group labels declared in m.
func NewTissueGroups(m *Mesh, log logrus.FieldLogger) TissueGroups {
	if log == nil {
		log = logrus.StandardLogger()
	}
	g := make(TissueGroups)
	if m == nil {
		return g
	}
	for _, decl := range m.Groups {
		id, err := parseID(decl.ID)
		if err != nil {
			log.WithFields(logrus.Fields{"group": decl.ID}).Warn("krsweep: skipping group with invalid id")
			continue
		}
		switch id {
		case cortexGroup:
			g[id] = Cortex
		case endodermisGroup:
			g[id] = Endodermis
		default:
			if decl.Name == nil {
				// Unnamed declarations fall through to the placeholder.
				continue
			}
			g[id] = *decl.Name
		}
	}
	return g
}

// Label returns the label for group id. The canonical groups resolve
// to their fixed labels even when undeclared; any other undeclared
// id resolves to a placeholder embedding the id.
func (g TissueGroups) Label(id int) string {
	switch id {
	case cortexGroup:
		return Cortex
	case endodermisGroup:
		return Endodermis
	}
	if l, ok := g[id]; ok {
		return l
	}
	return fmt.Sprintf("unknown_group_%d", id)
}
