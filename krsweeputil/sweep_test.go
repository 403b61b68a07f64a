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
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mecharoot/krsweep"
	"github.com/tealeg/xlsx"
)

func TestWriteCSV(t *testing.T) {
	buf := new(bytes.Buffer)
	err := WriteCSV(buf, []krsweep.SweepResult{
		{Value: 1.5, Scenario: 1, Kr: 2.5e-4},
		{Value: 3, Scenario: 4, Kr: 1e-3},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "parameter_value,kr,hydraulic_scenario\n1.5,0.00025,1\n3,0.001,4\n"
	if buf.String() != want {
		t.Errorf("have\n%s\nwant\n%s", buf, want)
	}
}

func TestManifest(t *testing.T) {
	p, err := krsweep.LookupParameter("cell wall conductance")
	if err != nil {
		t.Fatal(err)
	}
	r := krsweep.SweepRequest{Parameter: p, Mode: krsweep.Range, Scenarios: []int{0, 4}}
	m := NewManifest(r, make([]krsweep.SweepResult, 20), SweepOutputs{CSV: "out.csv", PNG: "out.png"})
	buf := new(bytes.Buffer)
	if err := m.Write(buf); err != nil {
		t.Fatal(err)
	}
	have, err := ReadManifest(buf)
	if err != nil {
		t.Fatal(err)
	}
	// Times are stored to the second.
	if !have.Time.Equal(m.Time.Truncate(time.Second)) {
		t.Errorf("time: have %v, want %v", have.Time, m.Time)
	}
	have.Time = m.Time
	if !reflect.DeepEqual(have, m) {
		t.Errorf("have %+v, want %+v", have, m)
	}
	if _, err := ReadManifest(strings.NewReader("Results = [")); err == nil {
		t.Error("expected an error")
	}
}

func TestPrintParameters(t *testing.T) {
	buf := new(bytes.Buffer)
	printParameters(buf, krsweep.Parameters())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("have %d lines, want 6:\n%s", len(lines), buf)
	}
	if !strings.HasPrefix(lines[1], "cell wall thickness") || !strings.Contains(lines[1], "geometry") {
		t.Errorf("have %q", lines[1])
	}
}

// mechaDir prepares a MECHA directory for the test fake in
// testdata/mecha and returns the directory and the fake's command.
func mechaDir(t *testing.T) (string, []string) {
	t.Helper()
	dir := tempDir(t)
	if err := os.Mkdir(filepath.Join(dir, "in"), 0755); err != nil {
		t.Fatal(err)
	}
	script, err := filepath.Abs("testdata/mecha/run.sh")
	if err != nil {
		t.Fatal(err)
	}
	return dir, []string{"sh", script}
}

func setMECHAConfig(t *testing.T, dir string, command []string) {
	t.Helper()
	tmpl, err := filepath.Abs("testdata/mecha/in")
	if err != nil {
		t.Fatal(err)
	}
	Cfg.Set("MECHA.Dir", dir)
	Cfg.Set("MECHA.Command", command)
	Cfg.Set("MECHA.Output", "")
	Cfg.Set("MECHA.Retries", 0)
	Cfg.Set("MECHA.Geometry", "in/Geometry.xml")
	Cfg.Set("MECHA.Hydraulics", "in/Hydraulics.xml")
	Cfg.Set("MECHA.GeometryTemplate", filepath.Join(tmpl, "Default_Geometry.xml"))
	Cfg.Set("MECHA.HydraulicsTemplate", filepath.Join(tmpl, "Default_Hydraulics.xml"))
	Cfg.Set("MECHA.PreloadedGeometry", filepath.Join(tmpl, "Preloaded_Geometry.xml"))
	Cfg.Set("Scenarios.Container", "Barriersrange")
	Cfg.Set("Scenarios.Element", "Barrier")
	Cfg.Set("Scenarios.Attr", "value")
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return recs
}

func TestSweepCommand(t *testing.T) {
	dir, command := mechaDir(t)
	defer os.RemoveAll(dir)
	setMECHAConfig(t, dir, command)

	Cfg.Set("param", "cell wall thickness")
	Cfg.Set("mode", "range")
	Cfg.Set("min", "")
	Cfg.Set("max", "")
	Cfg.Set("scenarios", []int{4, 1})
	Cfg.Set("preloaded", false)
	Cfg.Set("OutputFile", filepath.Join(dir, "results.csv"))
	Cfg.Set("XLSXFile", filepath.Join(dir, "results.xlsx"))
	Cfg.Set("PNGFile", filepath.Join(dir, "results.png"))
	Cfg.Set("ManifestFile", filepath.Join(dir, "manifest.toml"))
	Cfg.Set("open", false)
	out := new(bytes.Buffer)
	Root.SetOutput(out)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"sweep"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "10/10 simulations complete") {
		t.Errorf("missing progress output:\n%s", out)
	}

	recs := readCSV(t, filepath.Join(dir, "results.csv"))
	if len(recs) != 21 {
		t.Fatalf("have %d records, want 21", len(recs))
	}
	for i, rec := range recs[1:] {
		v, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			t.Fatal(err)
		}
		kr, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			t.Fatal(err)
		}
		wantScenario := []int{4, 1}[i%2]
		if rec[2] != strconv.Itoa(wantScenario) {
			t.Errorf("row %d: have scenario %s, want %d", i, rec[2], wantScenario)
		}
		// The fake reports the barrier plus the thickness in mm.
		if want := float64(wantScenario) + v/1000; math.Abs(kr-want) > 1e-6 {
			t.Errorf("row %d: have kr %g, want %g", i, kr, want)
		}
	}
	first, _ := strconv.ParseFloat(recs[1][0], 64)
	last, _ := strconv.ParseFloat(recs[20][0], 64)
	if math.Abs(first-0.15) > 1e-12 || math.Abs(last-15) > 1e-12 {
		t.Errorf("have range %s–%s, want 0.15–15", recs[1][0], recs[20][0])
	}

	wb, err := xlsx.OpenFile(filepath.Join(dir, "results.xlsx"))
	if err != nil {
		t.Fatal(err)
	}
	if sheet := wb.Sheet["results"]; sheet == nil || len(sheet.Rows) != 21 {
		t.Errorf("workbook results sheet is missing rows")
	}
	if wb.Sheet["parameter"] == nil {
		t.Error("workbook has no parameter sheet")
	}
	if fi, err := os.Stat(filepath.Join(dir, "results.png")); err != nil || fi.Size() == 0 {
		t.Errorf("plot was not written: %v", err)
	}
	f, err := os.Open(filepath.Join(dir, "manifest.toml"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	m, err := ReadManifest(f)
	if err != nil {
		t.Fatal(err)
	}
	if m.Results != 20 || m.Mode != "range" || !reflect.DeepEqual(m.Scenarios, []int{4, 1}) {
		t.Errorf("manifest: have %+v", m)
	}
}

func TestSweepCommandPreloaded(t *testing.T) {
	dir, command := mechaDir(t)
	defer os.RemoveAll(dir)
	setMECHAConfig(t, dir, command)

	Cfg.Set("param", "membrane permeability")
	Cfg.Set("mode", "single")
	Cfg.Set("value", 6.0)
	Cfg.Set("scenarios", []int{1})
	Cfg.Set("preloaded", true)
	Cfg.Set("OutputFile", filepath.Join(dir, "results.csv"))
	Cfg.Set("XLSXFile", "")
	Cfg.Set("PNGFile", "")
	Cfg.Set("ManifestFile", "")
	Root.SetOutput(new(bytes.Buffer))
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"sweep"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	recs := readCSV(t, filepath.Join(dir, "results.csv"))
	if len(recs) != 2 {
		t.Fatalf("have %d records, want 2", len(recs))
	}
	// The preloaded geometry has a 2 µm wall.
	v, err := strconv.ParseFloat(recs[1][0], 64)
	if err != nil || math.Abs(v-6e-5) > 1e-15 || recs[1][1] != "1.002" || recs[1][2] != "1" {
		t.Errorf("have %v", recs[1])
	}
}

func TestSweepCommandFailure(t *testing.T) {
	dir, _ := mechaDir(t)
	defer os.RemoveAll(dir)
	setMECHAConfig(t, dir, []string{"sh", "-c", "echo 'MECHA crashed' >&2; exit 3"})

	Cfg.Set("param", "cell wall thickness")
	Cfg.Set("mode", "single")
	Cfg.Set("value", "")
	Cfg.Set("scenarios", []int{1})
	Cfg.Set("preloaded", false)
	out := filepath.Join(dir, "results.csv")
	Cfg.Set("OutputFile", out)
	Cfg.Set("XLSXFile", "")
	Cfg.Set("PNGFile", "")
	Cfg.Set("ManifestFile", "")
	Root.SetOutput(new(bytes.Buffer))
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"sweep"})
	err := Root.Execute()
	if err == nil || !strings.Contains(err.Error(), "MECHA crashed") {
		t.Errorf("have error %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("results were written for a failed sweep")
	}
}
