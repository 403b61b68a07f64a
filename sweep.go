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
	"gonum.org/v1/gonum/floats"
)

// RangeSteps is the number of values generated in range mode.
const RangeSteps = 10

// Mode selects how sweep values are generated.
type Mode int

// Sweep modes.
const (
	SingleValue Mode = iota
	Range
)

func (m Mode) String() string {
	switch m {
	case SingleValue:
		return "single"
	case Range:
		return "range"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "single" or "range".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "single", "single value":
		return SingleValue, nil
	case "range":
		return Range, nil
	}
	return 0, fmt.Errorf("krsweep: invalid sweep mode %q; must be single or range", s)
}

// SweepRequest specifies a parameter sweep. Value, Min and Max are
// in the parameter's display unit.
type SweepRequest struct {
	Parameter Parameter
	Mode      Mode

	// Value is used in single mode.
	Value float64

	// Min and Max bound a range sweep. They are clamped to the
	// parameter's Limits; a nil bound is replaced by the limit.
	Min, Max *float64

	// Scenarios are the hydraulic scenarios to report, in order.
	Scenarios []int
}

// Bounds returns the clamped range bounds in the display unit.
func (r SweepRequest) Bounds() (lo, hi float64) {
	min, max := r.Parameter.Limits()
	lo, hi = min, max
	if r.Min != nil {
		lo = *r.Min
	}
	if r.Max != nil {
		hi = *r.Max
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return clamp(lo, min, max), clamp(hi, min, max)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Values returns the converted parameter values to simulate, in order.
func (r SweepRequest) Values() []float64 {
	conv := r.Parameter.Conversion
	if r.Mode == SingleValue {
		return []float64{r.Value * conv}
	}
	lo, hi := r.Bounds()
	return floats.Span(make([]float64, RangeSteps), lo*conv, hi*conv)
}

// SweepResult is the conductivity simulated for one parameter value
// and hydraulic scenario.
type SweepResult struct {
	Value    float64 // converted parameter value
	Scenario int
	Kr       float64 // cm hPa⁻¹ d⁻¹
}

// Sweep runs parameter sweeps against a simulator.
type Sweep struct {
	Simulator Simulator
	Patcher   Patcher
	Activator ScenarioActivator

	// Progress, if not nil, is called after each simulated value.
	Progress func(done, total int)

	Log logrus.FieldLogger
}

// Run activates the requested scenarios, then for each value patches
// the simulator input, invokes the simulator once and records the
// conductivity of each requested scenario. It returns
// len(r.Values())*len(r.Scenarios) results. Any failure aborts the
// sweep and no results are returned.
func (s *Sweep) Run(r SweepRequest) ([]SweepResult, error) {
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if s.Simulator == nil || s.Patcher == nil || s.Activator == nil {
		return nil, fmt.Errorf("krsweep: sweep requires a simulator, patcher, and scenario activator")
	}
	if err := s.Activator.Activate(r.Scenarios); err != nil {
		return nil, fmt.Errorf("krsweep: activating hydraulic scenarios %v: %w", r.Scenarios, err)
	}
	log.WithFields(logrus.Fields{"scenarios": r.Scenarios}).Info("krsweep: hydraulic scenarios activated")

	values := r.Values()
	f := r.Parameter.Field
	results := make([]SweepResult, 0, len(values)*len(r.Scenarios))
	for i, v := range values {
		attrs := map[string]string{"value": r.Parameter.Format(v)}
		if err := s.Patcher.Patch(f.File, f.Parent, f.Element, attrs); err != nil {
			return nil, fmt.Errorf("krsweep: setting %s to %g: %w", r.Parameter.Name, v, err)
		}
		kr, err := s.Simulator.Invoke()
		if err != nil {
			return nil, fmt.Errorf("krsweep: simulating %s=%g: %w", r.Parameter.Name, v, err)
		}
		for _, sc := range r.Scenarios {
			k, err := kr.Scenario(sc)
			if err != nil {
				return nil, fmt.Errorf("krsweep: simulating %s=%g: %w", r.Parameter.Name, v, err)
			}
			results = append(results, SweepResult{Value: v, Scenario: sc, Kr: k})
		}
		log.WithFields(logrus.Fields{
			"parameter": r.Parameter.Name,
			"value":     v,
			"step":      i + 1,
			"of":        len(values),
		}).Info("krsweep: simulation complete")
		if s.Progress != nil {
			s.Progress(i+1, len(values))
		}
	}
	return results, nil
}
