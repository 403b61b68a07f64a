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

package krsweeputil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/mecharoot/krsweep"
	"github.com/mecharoot/krsweep/mecha"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="results.csv")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("krsweep: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkScenarios makes sure that at least one scenario is selected
// and that all selected scenarios are available.
func checkScenarios(scenarios []int) ([]int, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("krsweep: no hydraulic scenarios selected; available scenarios are %v", krsweep.Scenarios)
	}
	seen := make(map[int]bool)
	for _, s := range scenarios {
		ok := false
		for _, a := range krsweep.Scenarios {
			if s == a {
				ok = true
			}
		}
		if !ok {
			return nil, fmt.Errorf("krsweep: invalid hydraulic scenario %d; available scenarios are %v", s, krsweep.Scenarios)
		}
		if seen[s] {
			return nil, fmt.Errorf("krsweep: hydraulic scenario %d selected more than once", s)
		}
		seen[s] = true
	}
	return scenarios, nil
}

// parseRingPolicy parses the RingPolicy configuration variable.
func parseRingPolicy(s string) (krsweep.RingPolicy, error) {
	switch s {
	case "largest", "":
		return krsweep.LargestRing, nil
	case "first":
		return krsweep.FirstRing, nil
	}
	return 0, fmt.Errorf("krsweep: invalid RingPolicy %q; must be largest or first", s)
}

// reconstructorFromConfig creates a section reconstructor from the
// information in cfg.
func reconstructorFromConfig(cfg *viper.Viper) (*krsweep.Reconstructor, error) {
	rings, err := parseRingPolicy(cfg.GetString("RingPolicy"))
	if err != nil {
		return nil, err
	}
	tol, err := cast.ToFloat64E(cfg.Get("SnapTolerance"))
	if err != nil {
		return nil, fmt.Errorf("krsweep: reading 'SnapTolerance': %v", err)
	}
	if tol < 0 {
		return nil, fmt.Errorf("krsweep: SnapTolerance must not be negative")
	}
	return &krsweep.Reconstructor{
		Rings:     rings,
		Tolerance: tol,
		Log:       logrus.StandardLogger(),
	}, nil
}

// sweepRequestFromConfig creates a sweep request from the information
// in cfg.
func sweepRequestFromConfig(cfg *viper.Viper) (krsweep.SweepRequest, error) {
	p, err := krsweep.LookupParameter(cfg.GetString("param"))
	if err != nil {
		return krsweep.SweepRequest{}, err
	}
	mode, err := krsweep.ParseMode(cfg.GetString("mode"))
	if err != nil {
		return krsweep.SweepRequest{}, err
	}
	scenarios, err := cast.ToIntSliceE(cfg.Get("scenarios"))
	if err != nil {
		return krsweep.SweepRequest{}, fmt.Errorf("krsweep: reading 'scenarios': %v", err)
	}
	if scenarios, err = checkScenarios(scenarios); err != nil {
		return krsweep.SweepRequest{}, err
	}
	r := krsweep.SweepRequest{
		Parameter: p,
		Mode:      mode,
		Value:     p.Default,
		Scenarios: scenarios,
	}
	if v, ok, err := optionalFloat(cfg, "value"); err != nil {
		return krsweep.SweepRequest{}, err
	} else if ok {
		r.Value = v
	}
	if v, ok, err := optionalFloat(cfg, "min"); err != nil {
		return krsweep.SweepRequest{}, err
	} else if ok {
		r.Min = &v
	}
	if v, ok, err := optionalFloat(cfg, "max"); err != nil {
		return krsweep.SweepRequest{}, err
	} else if ok {
		r.Max = &v
	}
	return r, nil
}

// optionalFloat reads a number that may be left empty in cfg. ok is
// false when it is empty.
func optionalFloat(cfg *viper.Viper, name string) (v float64, ok bool, err error) {
	s := strings.TrimSpace(os.ExpandEnv(cfg.GetString(name)))
	if s == "" {
		return 0, false, nil
	}
	v, err = cast.ToFloat64E(s)
	if err != nil {
		return 0, false, fmt.Errorf("krsweep: reading '%s': %v", name, err)
	}
	return v, true, nil
}

// mechaPath returns the absolute path of a MECHA file given in the
// configuration. Relative paths are relative to the MECHA directory.
func mechaPath(cfg *viper.Viper, name string) string {
	p := os.ExpandEnv(cfg.GetString(name))
	if p == "" {
		return p
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(os.ExpandEnv(cfg.GetString("MECHA.Dir")), p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func scenarioConfig(cfg *viper.Viper) mecha.ScenarioConfig {
	return mecha.ScenarioConfig{
		Container: cfg.GetString("Scenarios.Container"),
		Element:   cfg.GetString("Scenarios.Element"),
		Attr:      cfg.GetString("Scenarios.Attr"),
	}
}

// workspaceFromConfig creates a MECHA input workspace from the
// information in cfg.
func workspaceFromConfig(cfg *viper.Viper) *mecha.Workspace {
	return &mecha.Workspace{
		Geometry:           mechaPath(cfg, "MECHA.Geometry"),
		Hydraulics:         mechaPath(cfg, "MECHA.Hydraulics"),
		GeometryTemplate:   mechaPath(cfg, "MECHA.GeometryTemplate"),
		HydraulicsTemplate: mechaPath(cfg, "MECHA.HydraulicsTemplate"),
		PreloadedGeometry:  mechaPath(cfg, "MECHA.PreloadedGeometry"),
		Scenarios:          scenarioConfig(cfg),
		Log:                logrus.StandardLogger(),
	}
}

// simulatorFromConfig creates a MECHA simulator from the information
// in cfg.
func simulatorFromConfig(cfg *viper.Viper) (krsweep.Simulator, error) {
	command := expandStringSlice(cfg.GetStringSlice("MECHA.Command"))
	if len(command) == 0 {
		return nil, fmt.Errorf("krsweep: MECHA.Command must not be empty")
	}
	retries, err := cast.ToIntE(cfg.Get("MECHA.Retries"))
	if err != nil || retries < 0 {
		return nil, fmt.Errorf("krsweep: invalid MECHA.Retries %v", cfg.Get("MECHA.Retries"))
	}
	var sim krsweep.Simulator = &mecha.Simulator{
		Command:   command,
		Dir:       os.ExpandEnv(cfg.GetString("MECHA.Dir")),
		Output:    os.ExpandEnv(cfg.GetString("MECHA.Output")),
		Geometry:  mechaPath(cfg, "MECHA.Geometry"),
		Scenarios: scenarioConfig(cfg),
		Log:       logrus.StandardLogger(),
	}
	if retries > 0 {
		sim = mecha.Retry(sim, uint64(retries), logrus.StandardLogger())
	}
	return sim, nil
}
