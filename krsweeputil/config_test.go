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
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lnashier/viper"
	"github.com/mecharoot/krsweep"
)

func TestCheckScenarios(t *testing.T) {
	tests := []struct {
		in  []int
		err bool
	}{
		{in: []int{1}},
		{in: []int{4, 0, 3}},
		{in: nil, err: true},
		{in: []int{2}, err: true},
		{in: []int{1, 1}, err: true},
	}
	for _, test := range tests {
		have, err := checkScenarios(test.in)
		if (err != nil) != test.err {
			t.Errorf("%v: have error %v, want error %v", test.in, err, test.err)
			continue
		}
		if !test.err && !reflect.DeepEqual(have, test.in) {
			t.Errorf("have %v, want %v", have, test.in)
		}
	}
}

func TestParseRingPolicy(t *testing.T) {
	for s, want := range map[string]krsweep.RingPolicy{"": krsweep.LargestRing, "largest": krsweep.LargestRing, "first": krsweep.FirstRing} {
		have, err := parseRingPolicy(s)
		if err != nil || have != want {
			t.Errorf("%q: have %v (%v), want %v", s, have, err, want)
		}
	}
	if _, err := parseRingPolicy("smallest"); err == nil {
		t.Error("expected an error")
	}
}

func TestSweepRequestFromConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("param", "membrane_permeability")
	cfg.Set("mode", "single")
	cfg.Set("value", "")
	cfg.Set("scenarios", []int{3, 1})
	r, err := sweepRequestFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if r.Parameter.Name != "membrane permeability" || r.Mode != krsweep.SingleValue {
		t.Errorf("have %s %v", r.Parameter.Name, r.Mode)
	}
	if r.Value != r.Parameter.Default {
		t.Errorf("an empty value should select the default: have %g", r.Value)
	}
	if r.Min != nil || r.Max != nil {
		t.Errorf("bounds should be unset: have %v, %v", r.Min, r.Max)
	}

	// Zero is a value like any other.
	cfg.Set("value", 0.0)
	cfg.Set("min", "0")
	cfg.Set("max", 2.5)
	if r, err = sweepRequestFromConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if r.Value != 0 {
		t.Errorf("value: have %g, want 0", r.Value)
	}
	if r.Min == nil || *r.Min != 0 || r.Max == nil || *r.Max != 2.5 {
		t.Errorf("bounds: have %v, %v", r.Min, r.Max)
	}
	cfg.Set("max", "many")
	if _, err := sweepRequestFromConfig(cfg); err == nil {
		t.Error("expected an error for an invalid bound")
	}
	cfg.Set("max", "")
	if !reflect.DeepEqual(r.Scenarios, []int{3, 1}) {
		t.Errorf("scenarios: have %v", r.Scenarios)
	}

	cfg.Set("scenarios", []string{"1", "2"})
	if _, err := sweepRequestFromConfig(cfg); err == nil {
		t.Error("expected an error for an unavailable scenario")
	}
	cfg.Set("scenarios", []int{1})
	cfg.Set("mode", "all")
	if _, err := sweepRequestFromConfig(cfg); err == nil {
		t.Error("expected an error for an invalid mode")
	}
	cfg.Set("mode", "range")
	cfg.Set("param", "root length")
	if _, err := sweepRequestFromConfig(cfg); err == nil {
		t.Error("expected an error for an unknown parameter")
	}
}

func TestReconstructorFromConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("RingPolicy", "first")
	cfg.Set("SnapTolerance", "1e-6")
	rc, err := reconstructorFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if rc.Rings != krsweep.FirstRing || rc.Tolerance != 1e-6 {
		t.Errorf("have %v %g", rc.Rings, rc.Tolerance)
	}
	cfg.Set("SnapTolerance", -1)
	if _, err := reconstructorFromConfig(cfg); err == nil {
		t.Error("expected an error for a negative tolerance")
	}
}

func TestMechaPath(t *testing.T) {
	os.Setenv("KRSWEEP_TEST_DIR", "/opt")
	defer os.Unsetenv("KRSWEEP_TEST_DIR")
	cfg := viper.New()
	cfg.Set("MECHA.Dir", "${KRSWEEP_TEST_DIR}/MECHA")
	cfg.Set("MECHA.Geometry", "Projects/granar/in/Geometry.xml")
	cfg.Set("MECHA.Hydraulics", "/data/Hydraulics.xml")

	if have, want := mechaPath(cfg, "MECHA.Geometry"), "/opt/MECHA/Projects/granar/in/Geometry.xml"; have != want {
		t.Errorf("have %s, want %s", have, want)
	}
	if have, want := mechaPath(cfg, "MECHA.Hydraulics"), "/data/Hydraulics.xml"; have != want {
		t.Errorf("have %s, want %s", have, want)
	}
	if have := mechaPath(cfg, "MECHA.PreloadedGeometry"); have != "" {
		t.Errorf("unset path: have %q", have)
	}

	cfg.Set("MECHA.Dir", "MECHA")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if have, want := mechaPath(cfg, "MECHA.Geometry"), filepath.Join(wd, "MECHA/Projects/granar/in/Geometry.xml"); have != want {
		t.Errorf("have %s, want %s", have, want)
	}
}

func TestSimulatorFromConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("MECHA.Command", []string{})
	cfg.Set("MECHA.Retries", 0)
	if _, err := simulatorFromConfig(cfg); err == nil {
		t.Error("expected an error for an empty command")
	}
	cfg.Set("MECHA.Command", []string{"python3", "MECHA.py"})
	cfg.Set("MECHA.Retries", -2)
	if _, err := simulatorFromConfig(cfg); err == nil {
		t.Error("expected an error for negative retries")
	}
	cfg.Set("MECHA.Retries", 2)
	if _, err := simulatorFromConfig(cfg); err != nil {
		t.Error(err)
	}
}

func TestCheckOutputFile(t *testing.T) {
	if _, err := checkOutputFile(""); err == nil {
		t.Error("expected an error for an empty path")
	}
	if _, err := checkOutputFile("does/not/exist/results.csv"); err == nil {
		t.Error("expected an error for a missing directory")
	}
	if f, err := checkOutputFile("results.csv"); err != nil || f != "results.csv" {
		t.Errorf("have %q (%v)", f, err)
	}
}
