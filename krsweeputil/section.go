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
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"text/tabwriter"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/carto"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/mecharoot/krsweep"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// SectionOutputs are the files a reconstructed section is written to.
// Each is written only if set.
type SectionOutputs struct {
	GeoJSON, Shape, PNG string

	// Section is a binary copy of the section that can be given
	// as the mesh of a later run.
	Section string

	// Open specifies whether the PNG is opened after it is written.
	Open bool
}

// loadSection reconstructs the root cross section in meshFile, or
// loads it if meshFile was written by a previous run (extension .gob).
func loadSection(rc *krsweep.Reconstructor, meshFile string) (*krsweep.RootSection, error) {
	if meshFile == "" {
		return nil, fmt.Errorf("krsweep: please specify a mesh file")
	}
	if filepath.Ext(meshFile) == ".gob" {
		f, err := os.Open(meshFile)
		if err != nil {
			return nil, fmt.Errorf("krsweep: reading section: %v", err)
		}
		defer f.Close()
		return krsweep.LoadSection(f)
	}
	s, err := sectionCache(rc).SectionFile(context.Background(), meshFile)
	if err != nil {
		return nil, err
	}
	return s.Copy(), nil
}

// sectionSettings are the Reconstructor fields that change its output.
type sectionSettings struct {
	rings     krsweep.RingPolicy
	tolerance float64
}

// sections holds the reconstructed meshes of this process, keyed by
// mesh content, with one cache per reconstruction setting.
var sections = struct {
	sync.Mutex
	caches map[sectionSettings]*krsweep.SectionCache
}{caches: make(map[sectionSettings]*krsweep.SectionCache)}

func sectionCache(rc *krsweep.Reconstructor) *krsweep.SectionCache {
	key := sectionSettings{rings: rc.Rings, tolerance: rc.Tolerance}
	sections.Lock()
	defer sections.Unlock()
	sc, ok := sections.caches[key]
	if !ok {
		sc = &krsweep.SectionCache{Reconstructor: rc, Size: 4}
		sections.caches[key] = sc
	}
	return sc
}

// Section reconstructs the root cross section in meshFile, prints the
// number of cells of each type, and writes the cells to out.
func Section(cmd *cobra.Command, rc *krsweep.Reconstructor, meshFile string, out SectionOutputs) error {
	s, err := loadSection(rc, meshFile)
	if err != nil {
		return err
	}
	if s.Empty() {
		return fmt.Errorf("krsweep: no cells could be reconstructed from %s", meshFile)
	}
	s.SortByType()
	printCounts(cmd.OutOrStdout(), s)

	if out.Section != "" {
		if err := writeFile(out.Section, s.Save); err != nil {
			return err
		}
	}
	if out.GeoJSON != "" {
		if err := writeFile(out.GeoJSON, func(w io.Writer) error { return WriteGeoJSON(w, s) }); err != nil {
			return err
		}
	}
	if out.Shape != "" {
		if err := WriteShapefile(out.Shape, s); err != nil {
			return err
		}
	}
	if out.PNG != "" {
		if err := writeFile(out.PNG, func(w io.Writer) error { return WritePNG(w, s, 6*vg.Inch) }); err != nil {
			return err
		}
		if out.Open {
			return open.Run(out.PNG)
		}
	}
	return nil
}

// writeFile creates the file at path and writes to it using f.
func writeFile(path string, f func(io.Writer) error) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("krsweep: creating output file: %v", err)
	}
	if err := f(w); err != nil {
		w.Close()
		return fmt.Errorf("krsweep: writing %s: %v", path, err)
	}
	return w.Close()
}

func printCounts(w io.Writer, s *krsweep.RootSection) {
	counts := s.Counts()
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "type\tcells")
	for _, t := range s.Types() {
		fmt.Fprintf(tw, "%s\t%d\n", t, counts[t])
	}
	fmt.Fprintf(tw, "total\t%d\n", s.Len())
	tw.Flush()
}

// closeRings returns a copy of p where the last point of each ring
// repeats the first, as required by GeoJSON and shapefiles.
func closeRings(p geom.Polygon) geom.Polygon {
	o := make(geom.Polygon, len(p))
	for i, r := range p {
		ring := make([]geom.Point, len(r), len(r)+1)
		copy(ring, r)
		if len(r) > 0 && r[0] != r[len(r)-1] {
			ring = append(ring, r[0])
		}
		o[i] = ring
	}
	return o
}

type feature struct {
	Type       string                 `json:"type"`
	Geometry   *geojson.Geometry      `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type featureCollection struct {
	Type     string     `json:"type"`
	Features []*feature `json:"features"`
}

// WriteGeoJSON writes the cells of s to w as a GeoJSON feature
// collection with id, group and type properties.
func WriteGeoJSON(w io.Writer, s *krsweep.RootSection) error {
	o := &featureCollection{
		Type:     "FeatureCollection",
		Features: make([]*feature, len(s.Cells)),
	}
	for i, c := range s.Cells {
		g, err := geojson.ToGeoJSON(closeRings(c.Polygon))
		if err != nil {
			return err
		}
		o.Features[i] = &feature{
			Type:     "Feature",
			Geometry: g,
			Properties: map[string]interface{}{
				"id":    c.ID,
				"group": c.Group,
				"type":  c.Type,
				"area":  c.Polygon.Area(),
			},
		}
	}
	return json.NewEncoder(w).Encode(o)
}

// WriteShapefile writes the cells of s to a polygon shapefile.
func WriteShapefile(path string, s *krsweep.RootSection) error {
	e, err := shp.NewEncoderFromFields(path, goshp.POLYGON,
		goshp.NumberField("ID", 10),
		goshp.NumberField("Group", 10),
		goshp.StringField("Type", 50),
		goshp.FloatField("Area", 14, 6),
	)
	if err != nil {
		return fmt.Errorf("krsweep: creating shapefile: %v", err)
	}
	defer e.Close()
	for _, c := range s.Cells {
		if err := e.EncodeFields(closeRings(c.Polygon), c.ID, c.Group, c.Type, c.Polygon.Area()); err != nil {
			return fmt.Errorf("krsweep: writing shapefile: %v", err)
		}
	}
	return nil
}

// TypeColors returns the fill color used for each cell type in s.
// Fallback cells are drawn in gray.
func TypeColors(s *krsweep.RootSection) map[string]color.NRGBA {
	o := make(map[string]color.NRGBA)
	i := 0
	for _, t := range s.Types() {
		if t == krsweep.FallbackType {
			o[t] = color.NRGBA{R: 160, G: 160, B: 160, A: 255}
			continue
		}
		c := color.NRGBAModel.Convert(plotutil.Color(i)).(color.NRGBA)
		c.A = 200
		o[t] = c
		i++
	}
	return o
}

// WritePNG draws the cells of s, colored by type, as a PNG image of
// the given width.
func WritePNG(w io.Writer, s *krsweep.RootSection, width vg.Length) error {
	b := s.Bounds()
	if b == nil {
		return fmt.Errorf("krsweep: no cells to draw")
	}
	// Pad the map so that the outermost walls are not clipped.
	pad := 0.02 * math.Max(b.Max.X-b.Min.X, b.Max.Y-b.Min.Y)
	if pad == 0 {
		pad = 1
	}
	N, S, E, W := b.Max.Y+pad, b.Min.Y-pad, b.Max.X+pad, b.Min.X-pad
	height := width * vg.Length((N-S)/(E-W))

	img := vgimg.New(width, height)
	dc := draw.New(img)
	m := carto.NewCanvas(N, S, E, W, dc)
	colors := TypeColors(s)
	ls := draw.LineStyle{Color: color.Black, Width: 0.5}
	for _, c := range s.Cells {
		if err := m.DrawVector(closeRings(c.Polygon), colors[c.Type], ls, draw.GlyphStyle{}); err != nil {
			return err
		}
	}
	_, err := vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}
