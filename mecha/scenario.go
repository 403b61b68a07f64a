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
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ScenarioConfig locates the hydraulic scenario list in the geometry
// input file. MECHA computes one scenario for each Element within the
// Container, in document order, identified by its Attr attribute.
type ScenarioConfig struct {
	Container string
	Element   string
	Attr      string
}

// DefaultScenarioConfig matches the apoplastic barrier list of the
// MECHA geometry file.
var DefaultScenarioConfig = ScenarioConfig{
	Container: "Barriersrange",
	Element:   "Barrier",
	Attr:      "value",
}

func (c ScenarioConfig) withDefaults() ScenarioConfig {
	if c.Container == "" {
		c.Container = DefaultScenarioConfig.Container
	}
	if c.Element == "" {
		c.Element = DefaultScenarioConfig.Element
	}
	if c.Attr == "" {
		c.Attr = DefaultScenarioConfig.Attr
	}
	return c
}

// WriteScenarios replaces the scenario list in the geometry file at
// path with one element per scenario, in the given order. Other
// content of the file, including the rest of the container, is copied
// unchanged. New elements are indented like the ones they replace.
func WriteScenarios(path string, cfg ScenarioConfig, scenarios []int) error {
	cfg = cfg.withDefaults()
	var (
		found    bool
		skipping int
		prev     []byte // the last character data copied
		pending  []byte // whitespace within the container not yet copied
		indent   string // indentation of the container tag
		child    string // indentation of the scenario elements
		expanded bool   // the container was written as <e/>
	)
	b, err := rewriteFile(path, func(w io.Writer, tok xml.Token, raw []byte, ancestors []string) error {
		if skipping > 0 {
			switch tok.(type) {
			case xml.StartElement:
				skipping++
			case xml.EndElement:
				skipping--
			}
			return nil
		}
		inContainer := len(ancestors) > 0 && ancestors[len(ancestors)-1] == cfg.Container
		switch t := tok.(type) {
		case xml.CharData:
			if inContainer && len(bytes.TrimSpace(t)) == 0 {
				pending = append(pending, raw...)
				return nil
			}
		case xml.StartElement:
			if inContainer && t.Name.Local == cfg.Element {
				if child == "" {
					child = lineIndent(pending)
				}
				pending = nil
				skipping = 1
				return nil
			}
			if t.Name.Local == cfg.Container {
				found = true
				indent, child, pending = lineIndent(prev), "", nil
				prev = nil
				if expanded = selfClosing(raw); expanded {
					return writeStart(w, t, false)
				}
				return copyRaw(w, tok, raw, ancestors)
			}
		case xml.EndElement:
			if t.Name.Local == cfg.Container {
				if child == "" {
					child = indent + "\t"
				}
				if err := writeScenarios(w, cfg, scenarios, child); err != nil {
					return err
				}
				if len(pending) == 0 {
					pending = []byte("\n" + indent)
				}
				if expanded {
					raw = []byte("</" + qualified(t.Name) + ">")
				}
				raw = append(pending, raw...)
				pending, prev = nil, nil
				return copyRaw(w, tok, raw, ancestors)
			}
		}
		if len(pending) > 0 {
			if err := copyRaw(w, nil, pending, ancestors); err != nil {
				return err
			}
			pending = nil
		}
		prev = nil
		if _, ok := tok.(xml.CharData); ok {
			prev = raw
		}
		return copyRaw(w, tok, raw, ancestors)
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("mecha: no <%s> element in %s", cfg.Container, path)
	}
	return replaceFile(path, b)
}

// writeScenarios writes one empty element per scenario, each on its
// own line.
func writeScenarios(w io.Writer, cfg ScenarioConfig, scenarios []int, indent string) error {
	for _, s := range scenarios {
		if _, err := io.WriteString(w, "\n"+indent); err != nil {
			return err
		}
		start := xml.StartElement{
			Name: xml.Name{Local: cfg.Element},
			Attr: []xml.Attr{{Name: xml.Name{Local: cfg.Attr}, Value: strconv.Itoa(s)}},
		}
		if err := writeStart(w, start, true); err != nil {
			return err
		}
	}
	return nil
}

// lineIndent returns the whitespace that follows the last line break
// in text, or "" if text does not end in indentation.
func lineIndent(text []byte) string {
	i := bytes.LastIndexByte(text, '\n')
	if i < 0 {
		return ""
	}
	tail := text[i+1:]
	if len(bytes.TrimLeft(tail, " \t")) != 0 {
		return ""
	}
	return string(tail)
}

// ReadScenarios returns the scenario ids listed in the geometry file
// at path, in document order.
func ReadScenarios(path string, cfg ScenarioConfig) ([]int, error) {
	cfg = cfg.withDefaults()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var scenarios []int
	var stack []string
	d := xml.NewDecoder(f)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("mecha: reading scenarios from %s: %w", path, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == cfg.Element && len(stack) > 0 && stack[len(stack)-1] == cfg.Container {
				for _, a := range t.Attr {
					if a.Name.Local != cfg.Attr {
						continue
					}
					id, err := strconv.Atoi(strings.TrimSpace(a.Value))
					if err != nil {
						return nil, fmt.Errorf("mecha: invalid scenario %q in %s", a.Value, path)
					}
					scenarios = append(scenarios, id)
				}
			}
			stack = append(stack, t.Name.Local)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	return scenarios, nil
}
