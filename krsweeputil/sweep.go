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
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mecharoot/krsweep"
	"github.com/mecharoot/krsweep/mecha"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SweepOutputs are the files sweep results are written to. CSV is
// required; the others are written only if set.
type SweepOutputs struct {
	CSV, XLSX, PNG, Manifest string

	// Open specifies whether the PNG is opened after it is written.
	Open bool
}

// RunSweep resets the MECHA inputs in ws, runs the sweep r using sim,
// and writes the results to out.
func RunSweep(cmd *cobra.Command, ws *mecha.Workspace, sim krsweep.Simulator, r krsweep.SweepRequest, preloaded bool, out SweepOutputs) error {
	start := time.Now()
	if err := ws.Reset(preloaded); err != nil {
		return err
	}
	lo, hi := r.Bounds()
	logrus.WithFields(logrus.Fields{
		"parameter": r.Parameter.Name,
		"mode":      r.Mode,
		"min":       lo,
		"max":       hi,
		"scenarios": r.Scenarios,
	}).Info("krsweep: starting sweep")

	sw := &krsweep.Sweep{
		Simulator: sim,
		Patcher:   ws,
		Activator: ws,
		Log:       logrus.StandardLogger(),
		Progress: func(done, total int) {
			cmd.Printf("%d/%d simulations complete\n", done, total)
		},
	}
	results, err := sw.Run(r)
	if err != nil {
		return err
	}

	if err := writeFile(out.CSV, func(w io.Writer) error { return WriteCSV(w, results) }); err != nil {
		return err
	}
	if out.XLSX != "" {
		if err := WriteXLSX(out.XLSX, r.Parameter, results); err != nil {
			return err
		}
	}
	if out.PNG != "" {
		if err := writeFile(out.PNG, func(w io.Writer) error { return WritePlot(w, r.Parameter, results) }); err != nil {
			return err
		}
		if out.Open {
			if err := open.Run(out.PNG); err != nil {
				return err
			}
		}
	}
	if out.Manifest != "" {
		m := NewManifest(r, results, out)
		if err := writeFile(out.Manifest, m.Write); err != nil {
			return err
		}
	}
	logrus.WithFields(logrus.Fields{
		"results": len(results),
		"output":  out.CSV,
		"elapsed": time.Since(start),
	}).Info("krsweep: sweep complete")
	return nil
}

// WriteCSV writes the results with columns parameter_value, kr and
// hydraulic_scenario.
func WriteCSV(w io.Writer, results []krsweep.SweepResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"parameter_value", "kr", "hydraulic_scenario"}); err != nil {
		return err
	}
	for _, r := range results {
		rec := []string{
			strconv.FormatFloat(r.Value, 'g', -1, 64),
			strconv.FormatFloat(r.Kr, 'g', -1, 64),
			strconv.Itoa(r.Scenario),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the results to an Excel workbook at path.
func WriteXLSX(path string, p krsweep.Parameter, results []krsweep.SweepResult) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("results")
	if err != nil {
		return fmt.Errorf("krsweep: creating workbook: %v", err)
	}
	row := sheet.AddRow()
	for _, h := range []string{"parameter_value", "kr", "hydraulic_scenario"} {
		row.AddCell().Value = h
	}
	for _, r := range results {
		row = sheet.AddRow()
		row.AddCell().SetFloat(r.Value)
		row.AddCell().SetFloat(r.Kr)
		row.AddCell().SetInt(r.Scenario)
	}

	info, err := f.AddSheet("parameter")
	if err != nil {
		return fmt.Errorf("krsweep: creating workbook: %v", err)
	}
	for _, kv := range [][2]string{
		{"name", p.Name},
		{"unit", p.Unit},
		{"conversion", strconv.FormatFloat(p.Conversion, 'g', -1, 64)},
		{"description", p.Description},
	} {
		row = info.AddRow()
		row.AddCell().Value = kv[0]
		row.AddCell().Value = kv[1]
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("krsweep: writing workbook: %v", err)
	}
	return nil
}

// groupByScenario returns the results of each scenario as plot
// points, in ascending scenario order.
func groupByScenario(results []krsweep.SweepResult) ([]int, map[int]plotter.XYs) {
	groups := make(map[int]plotter.XYs)
	for _, r := range results {
		groups[r.Scenario] = append(groups[r.Scenario], plotter.XY{X: r.Value, Y: r.Kr})
	}
	scenarios := make([]int, 0, len(groups))
	for s := range groups {
		scenarios = append(scenarios, s)
	}
	sort.Ints(scenarios)
	return scenarios, groups
}

// WritePlot writes a PNG line plot of kr against the parameter value,
// with one line per hydraulic scenario.
func WritePlot(w io.Writer, param krsweep.Parameter, results []krsweep.SweepResult) error {
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = fmt.Sprintf("MECHA simulation: %s", param.Name)
	p.X.Label.Text = param.Name
	p.Y.Label.Text = "kr (cm·hPa⁻¹·d⁻¹)"

	scenarios, groups := groupByScenario(results)
	var lines []interface{}
	for _, s := range scenarios {
		lines = append(lines, fmt.Sprintf("Hydraulic Scenario %d", s), groups[s])
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return err
	}
	wt, err := p.WriterTo(7*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Manifest records the request and outputs of a sweep.
type Manifest struct {
	Version   string
	Time      time.Time
	Parameter string
	Unit      string
	Mode      string
	Values    []float64 // converted
	Scenarios []int
	Results   int
	Outputs   SweepOutputs
}

// NewManifest creates a manifest for the sweep r with the given results.
func NewManifest(r krsweep.SweepRequest, results []krsweep.SweepResult, out SweepOutputs) *Manifest {
	return &Manifest{
		Version:   krsweep.Version,
		Time:      time.Now().UTC(),
		Parameter: r.Parameter.Name,
		Unit:      r.Parameter.Unit,
		Mode:      r.Mode.String(),
		Values:    r.Values(),
		Scenarios: r.Scenarios,
		Results:   len(results),
		Outputs:   out,
	}
}

// Write writes m to w in TOML format.
func (m *Manifest) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(m)
}

// ReadManifest reads a manifest written by Manifest.Write.
func ReadManifest(r io.Reader) (*Manifest, error) {
	m := new(Manifest)
	if _, err := toml.DecodeReader(r, m); err != nil {
		return nil, fmt.Errorf("krsweep: reading manifest: %v", err)
	}
	return m, nil
}

// printParameters writes a table of the sweepable parameters to w.
func printParameters(w io.Writer, params []krsweep.Parameter) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tdefault\tunit\tconversion\trange\tfile")
	for _, p := range params {
		min, max := p.Limits()
		fmt.Fprintf(tw, "%s\t%g\t%s\t%g\t%g–%g\t%s\n", p.Name, p.Default, p.Unit, p.Conversion, min, max, p.Field.File)
	}
	tw.Flush()
}
