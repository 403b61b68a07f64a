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
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mecharoot/krsweep"
	"github.com/sirupsen/logrus"
)

// Workspace holds the paths of the MECHA input files that are edited
// during a sweep and of the pristine templates they are reset from.
// It implements krsweep.Patcher and krsweep.ScenarioActivator.
type Workspace struct {
	// Geometry and Hydraulics are the working input files read by the
	// simulator.
	Geometry, Hydraulics string

	// GeometryTemplate and HydraulicsTemplate are copied over the
	// working files by Reset.
	GeometryTemplate, HydraulicsTemplate string

	// PreloadedGeometry, if set, replaces GeometryTemplate when Reset
	// is called for a preloaded root.
	PreloadedGeometry string

	Scenarios ScenarioConfig

	Log logrus.FieldLogger
}

// Reset restores the working input files from their templates.
func (w *Workspace) Reset(preloaded bool) error {
	geom := w.GeometryTemplate
	if preloaded && w.PreloadedGeometry != "" {
		geom = w.PreloadedGeometry
	}
	if err := w.copy(geom, w.Geometry); err != nil {
		return err
	}
	return w.copy(w.HydraulicsTemplate, w.Hydraulics)
}

// copy copies src to dst. Empty or identical paths are skipped.
func (w *Workspace) copy(src, dst string) error {
	if src == "" || dst == "" {
		return nil
	}
	same, err := samePath(src, dst)
	if err != nil {
		return err
	}
	if same {
		w.log().WithFields(logrus.Fields{"file": src}).Debug("mecha: skipping copy of file onto itself")
		return nil
	}
	return copyFile(src, dst)
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("mecha: resetting input: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("mecha: resetting input: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("mecha: resetting input: %w", err)
	}
	return out.Close()
}

// Path returns the working path of file.
func (w *Workspace) Path(file krsweep.InputFile) (string, error) {
	switch file {
	case krsweep.GeometryInput:
		return w.Geometry, nil
	case krsweep.HydraulicsInput:
		return w.Hydraulics, nil
	}
	return "", fmt.Errorf("mecha: unknown input file %v", file)
}

// Patch sets attrs on the element elements within parent elements
// of file.
func (w *Workspace) Patch(file krsweep.InputFile, parent, element string, attrs map[string]string) error {
	path, err := w.Path(file)
	if err != nil {
		return err
	}
	return UpdateAttributes(path, parent, element, attrs)
}

// Activate writes the scenario list of the working geometry file.
func (w *Workspace) Activate(scenarios []int) error {
	return WriteScenarios(w.Geometry, w.Scenarios, scenarios)
}

func (w *Workspace) log() logrus.FieldLogger {
	if w.Log == nil {
		return logrus.StandardLogger()
	}
	return w.Log
}
