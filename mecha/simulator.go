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

package mecha

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mecharoot/krsweep"
	"github.com/sirupsen/logrus"
)

// Simulator runs MECHA as a subprocess. It implements
// krsweep.Simulator.
type Simulator struct {
	// Command is the program and arguments to run, for example
	// []string{"python3", "MECHA.py"}.
	Command []string

	// Dir is the working directory of the command.
	Dir string

	// Output is the file the command writes its conductivities to,
	// relative to Dir. If empty, they are read from standard output.
	Output string

	// Geometry is the geometry input file holding the active
	// scenario list. Relative paths are relative to Dir.
	Geometry  string
	Scenarios ScenarioConfig

	Log logrus.FieldLogger
}

// Invoke runs the command once and returns the radial conductivity of
// each active scenario. The command must report one value per active
// scenario, in the order the scenarios are listed in the geometry
// file.
func (s *Simulator) Invoke() (krsweep.Conductivities, error) {
	if len(s.Command) == 0 {
		return nil, fmt.Errorf("mecha: no simulator command")
	}
	active, err := ReadScenarios(s.path(s.Geometry), s.Scenarios)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(s.Command[0], s.Command[1:]...)
	cmd.Dir = s.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	s.log().WithFields(logrus.Fields{
		"command": strings.Join(s.Command, " "),
		"dir":     s.Dir,
	}).Debug("mecha: running simulator")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("mecha: running %s: %w: %s", s.Command[0], err, lastLine(stderr.String()))
	}

	out := stdout.Bytes()
	if s.Output != "" {
		out, err = ioutil.ReadFile(s.path(s.Output))
		if err != nil {
			return nil, fmt.Errorf("mecha: reading simulator output: %w", err)
		}
	}
	return parseConductivities(out, active)
}

func (s *Simulator) path(p string) string {
	if filepath.IsAbs(p) || s.Dir == "" {
		return p
	}
	return filepath.Join(s.Dir, p)
}

func (s *Simulator) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// parseConductivities parses whitespace- or comma-separated values,
// one for each of the active scenarios in order, into a vector
// indexed by scenario id.
func parseConductivities(b []byte, active []int) (krsweep.Conductivities, error) {
	fields := strings.FieldsFunc(string(b), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != len(active) {
		return nil, fmt.Errorf("mecha: simulator reported %d conductivities for %d active scenarios",
			len(fields), len(active))
	}
	n := 0
	for _, id := range active {
		if id < 0 {
			return nil, fmt.Errorf("mecha: invalid scenario id %d", id)
		}
		if id+1 > n {
			n = id + 1
		}
	}
	kr := make(krsweep.Conductivities, n)
	for i := range kr {
		kr[i] = math.NaN()
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("mecha: invalid conductivity %q", f)
		}
		kr[active[i]] = v
	}
	return kr, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
