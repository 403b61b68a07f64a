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
	"strings"
)

// InputFile identifies which MECHA input file a parameter lives in.
type InputFile int

// MECHA input files.
const (
	GeometryInput InputFile = iota
	HydraulicsInput
)

func (f InputFile) String() string {
	switch f {
	case GeometryInput:
		return "geometry"
	case HydraulicsInput:
		return "hydraulics"
	default:
		return fmt.Sprintf("InputFile(%d)", int(f))
	}
}

// Field is the location of a parameter in a MECHA input file: the
// value attribute of Element elements within Parent elements.
type Field struct {
	File    InputFile
	Parent  string
	Element string
	Format  string // fmt verb used to write the value
}

// Parameter describes a model parameter that can be swept.
type Parameter struct {
	Name    string
	Default float64 // in Unit
	Unit    string

	// Conversion multiplies a value in Unit to give the value
	// in the units MECHA expects.
	Conversion float64

	Description string
	Field       Field
}

// Limits returns the range of values, in Unit, that may be selected
// for a range sweep: one tenth to ten times the default.
func (p Parameter) Limits() (min, max float64) {
	return p.Default / 10, p.Default * 10
}

// Format formats a converted value the way MECHA expects it.
func (p Parameter) Format(v float64) string {
	return fmt.Sprintf(p.Field.Format, v)
}

var parameters = []Parameter{
	{
		Name:        "cell wall thickness",
		Default:     1.5,
		Unit:        "µm",
		Conversion:  1,
		Description: "Typical primary cell wall thickness in maize roots ranges from 0.2–2 µm; affects radial water resistance mainly through apoplastic pathway.",
		Field:       Field{File: GeometryInput, Parent: "thickness", Element: "thickness", Format: "%.3f"},
	},
	{
		Name:        "membrane permeability",
		Default:     3.0,
		Unit:        "cm·d⁻¹·hPa⁻¹",
		Conversion:  1e-5,
		Description: "Average plasma membrane permeability from the biphospholipid layer.",
		Field:       Field{File: HydraulicsInput, Parent: "km", Element: "km", Format: "%.6f"},
	},
	{
		Name:        "AQP contribution to cell membrane permeability",
		Default:     4.3,
		Unit:        "cm·d⁻¹·hPa⁻¹",
		Conversion:  1e-4,
		Description: "Aquaporin contribution to total cell membrane permeability",
		Field:       Field{File: HydraulicsInput, Parent: "kAQPrange", Element: "kAQP", Format: "%.6f"},
	},
	{
		Name:        "cell wall conductance",
		Default:     2.4,
		Unit:        "cm²·s⁻¹·hPa⁻¹",
		Conversion:  1e-4,
		Description: "Conductance of water through apoplastic space; low and dominated by porosity of the wall matrix; typical values in 10⁻⁴–10⁻⁵ range.",
		Field:       Field{File: HydraulicsInput, Parent: "kwrange", Element: "kw", Format: "%.6f"},
	},
	{
		Name:        "plasmodesmata conductance",
		Default:     5.3,
		Unit:        "cm³·d⁻¹·hPa⁻¹plasmodesmata⁻¹",
		Conversion:  1e-12,
		Description: "Effective conductance for symplastic flow between cells via plasmodesmata; literature suggests 10⁻¹²–10⁻¹³ cm³·s⁻¹·MPa⁻¹ per PD connection.",
		Field:       Field{File: HydraulicsInput, Parent: "Kplrange", Element: "Kpl", Format: "%.3e"},
	},
}

var parameterIndex map[string]int

func init() {
	parameterIndex = make(map[string]int, len(parameters))
	for i, p := range parameters {
		parameterIndex[p.Name] = i
	}
}

// Parameters returns the sweepable parameters in display order.
// The returned slice is a copy.
func Parameters() []Parameter {
	o := make([]Parameter, len(parameters))
	copy(o, parameters)
	return o
}

// LookupParameter returns the parameter with the given name. Names
// are matched case-insensitively, and underscores may stand in for
// spaces.
func LookupParameter(name string) (Parameter, error) {
	if i, ok := parameterIndex[name]; ok {
		return parameters[i], nil
	}
	norm := strings.ToLower(strings.Replace(strings.TrimSpace(name), "_", " ", -1))
	for _, p := range parameters {
		if strings.ToLower(p.Name) == norm {
			return p, nil
		}
	}
	return Parameter{}, fmt.Errorf("krsweep: unknown parameter %q", name)
}
