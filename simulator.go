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

import "fmt"

// Scenarios are the hydraulic scenario ids that can be activated.
var Scenarios = []int{0, 1, 3, 4}

// DefaultScenarios is the scenario selection used when none is given.
var DefaultScenarios = []int{1}

// Conductivities holds one simulator run's radial conductivity
// [cm hPa⁻¹ d⁻¹] for each hydraulic scenario, indexed by scenario id.
// Scenarios that were not computed are NaN.
type Conductivities []float64

// Scenario returns the conductivity computed for scenario id.
func (c Conductivities) Scenario(id int) (float64, error) {
	if id < 0 || id >= len(c) || c[id] != c[id] {
		return 0, fmt.Errorf("krsweep: no conductivity for hydraulic scenario %d", id)
	}
	return c[id], nil
}

// A Simulator runs the root hydraulics model once using its current
// input files and returns the conductivity of every active scenario.
type Simulator interface {
	Invoke() (Conductivities, error)
}

// SimulatorFunc adapts a function to the Simulator interface.
type SimulatorFunc func() (Conductivities, error)

// Invoke calls f.
func (f SimulatorFunc) Invoke() (Conductivities, error) { return f() }

// A Patcher sets attributes on the Element elements within Parent
// elements of a simulator input file.
type Patcher interface {
	Patch(file InputFile, parent, element string, attrs map[string]string) error
}

// A ScenarioActivator marks the given hydraulic scenarios, and only
// those, as active in the simulator input.
type ScenarioActivator interface {
	Activate(scenarios []int) error
}
