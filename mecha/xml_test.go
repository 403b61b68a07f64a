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
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// workDir copies the test input files into a temporary directory and
// returns its path.
func workDir(t *testing.T) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "mecha")
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"geometry.xml", "hydraulics.xml"} {
		if err := copyFile(filepath.Join("testdata", f), filepath.Join(dir, f)); err != nil {
			os.RemoveAll(dir)
			t.Fatal(err)
		}
	}
	return dir
}

// attrValues returns the value attribute of every element named
// element within parent in the file at path.
func attrValues(t *testing.T, path, parent, element string) []string {
	t.Helper()
	b, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var values []string
	err = rewrite(ioutil.Discard, b, func(_ io.Writer, tok xml.Token, _ []byte, ancestors []string) error {
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == element &&
			(parent == element || hasAncestor(ancestors, parent)) {
			for _, a := range start.Attr {
				if a.Name.Local == "value" {
					values = append(values, a.Value)
				}
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return values
}

func TestUpdateAttributes(t *testing.T) {
	dir := workDir(t)
	defer os.RemoveAll(dir)
	hydraulics := filepath.Join(dir, "hydraulics.xml")
	geometry := filepath.Join(dir, "geometry.xml")

	tests := []struct {
		path, parent, element string
		value                 string
		want                  []string
	}{
		{hydraulics, "kAQPrange", "kAQP", "0.000860", []string{"0.000860", "0.000860"}},
		{hydraulics, "km", "km", "0.000015", []string{"0.000015"}},
		{hydraulics, "Kplrange", "Kpl", "1.000e-12", []string{"1.000e-12"}},
		{geometry, "thickness", "thickness", "0.750", []string{"0.750"}},
	}
	for _, test := range tests {
		err := UpdateAttributes(test.path, test.parent, test.element, map[string]string{"value": test.value})
		if err != nil {
			t.Fatal(err)
		}
		have := attrValues(t, test.path, test.parent, test.element)
		if strings.Join(have, ",") != strings.Join(test.want, ",") {
			t.Errorf("<%s><%s>: have %v, want %v", test.parent, test.element, have, test.want)
		}
	}

	// The kAQP element outside of kAQPrange is untouched.
	if have := attrValues(t, hydraulics, "kAQP", "kAQP"); have[len(have)-1] != "1.0" {
		t.Errorf("unrelated element changed: %v", have)
	}
	if have := attrValues(t, hydraulics, "kwrange", "kw"); have[0] != "2.4E-04" {
		t.Errorf("unrelated element changed: %v", have)
	}
}

func TestUpdateAttributesPreservesContent(t *testing.T) {
	const doc = `<?xml version="1.0" encoding="utf-8"?>
<param xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:noNamespaceSchemaLocation="h.xsd">
	<!-- conductivities -->
	<km value="3.0E-05"/>
	<kw value='1 &amp; 2'>
		<note>tab	kept</note>
	</kw>
</param>
`
	dir, err := ioutil.TempDir("", "mecha")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "hydraulics.xml")
	if err := ioutil.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	if err := UpdateAttributes(path, "km", "km", map[string]string{"value": "0.000015"}); err != nil {
		t.Fatal(err)
	}
	want := strings.Replace(doc, `<km value="3.0E-05"/>`, `<km value="0.000015"/>`, 1)
	if have := readString(t, path); have != want {
		t.Errorf("have\n%s\nwant\n%s", have, want)
	}

	if err := UpdateAttributes(path, "param", "param", map[string]string{"unit": "cm"}); err != nil {
		t.Fatal(err)
	}
	want = strings.Replace(want, `xsi:noNamespaceSchemaLocation="h.xsd">`, `xsi:noNamespaceSchemaLocation="h.xsd" unit="cm">`, 1)
	if have := readString(t, path); have != want {
		t.Errorf("have\n%s\nwant\n%s", have, want)
	}
}

func readString(t *testing.T, path string) string {
	t.Helper()
	b, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestRewriteCopy(t *testing.T) {
	b, err := ioutil.ReadFile("testdata/hydraulics.xml")
	if err != nil {
		t.Fatal(err)
	}
	buf := new(bytes.Buffer)
	if err := rewrite(buf, b, copyRaw); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), b) {
		t.Errorf("have\n%s\nwant\n%s", buf.Bytes(), b)
	}
}

func TestWriteStart(t *testing.T) {
	start := xml.StartElement{
		Name: xml.Name{Space: "m", Local: "kw"},
		Attr: []xml.Attr{
			{Name: xml.Name{Space: "xsi", Local: "type"}, Value: "x"},
			{Name: xml.Name{Local: "value"}, Value: `a"<&`},
		},
	}
	tests := []struct {
		empty bool
		want  string
	}{
		{false, `<m:kw xsi:type="x" value="a&#34;&lt;&amp;">`},
		{true, `<m:kw xsi:type="x" value="a&#34;&lt;&amp;"/>`},
	}
	for _, test := range tests {
		buf := new(bytes.Buffer)
		if err := writeStart(buf, start, test.empty); err != nil {
			t.Fatal(err)
		}
		if buf.String() != test.want {
			t.Errorf("have %s, want %s", buf.String(), test.want)
		}
	}
}

func TestUpdateAttributesNoMatch(t *testing.T) {
	dir := workDir(t)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "hydraulics.xml")
	before, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := UpdateAttributes(path, "kAQPrange", "kw", map[string]string{"value": "1"}); err == nil {
		t.Error("expected an error")
	}
	after, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("file was modified")
	}
	if err := UpdateAttributes(filepath.Join(dir, "missing.xml"), "km", "km", nil); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestSetAttrs(t *testing.T) {
	start := xml.StartElement{
		Name: xml.Name{Local: "kw"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "value"}, Value: "1"}},
	}
	have := setAttrs(start, map[string]string{"value": "2", "unit": "cm"})
	want := []xml.Attr{
		{Name: xml.Name{Local: "value"}, Value: "2"},
		{Name: xml.Name{Local: "unit"}, Value: "cm"},
	}
	if len(have.Attr) != len(want) {
		t.Fatalf("have %v, want %v", have.Attr, want)
	}
	for i := range want {
		if have.Attr[i] != want[i] {
			t.Errorf("attribute %d: have %v, want %v", i, have.Attr[i], want[i])
		}
	}
	if start.Attr[0].Value != "1" {
		t.Error("original element was modified")
	}
}
