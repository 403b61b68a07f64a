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

// Package mecha implements the file-based collaborators used to drive
// the MECHA root hydraulics model: input patching, hydraulic scenario
// activation, input reset, and running the model as a subprocess.
package mecha

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
)

// rewriteFunc handles a single token read from an XML document. raw
// holds the bytes the token was decoded from; it is empty for the end
// of a self-closing element. f writes whatever should replace raw to
// w. It is called with the names of the open ancestor elements of tok.
type rewriteFunc func(w io.Writer, tok xml.Token, raw []byte, ancestors []string) error

// rewrite streams the XML document b to w, passing every token
// through f. Tokens are not re-encoded, so content that f copies
// through keeps its original bytes.
func rewrite(w io.Writer, b []byte, f rewriteFunc) error {
	d := xml.NewDecoder(bytes.NewReader(b))
	var stack []string
	for {
		offset := d.InputOffset()
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		raw := b[offset:d.InputOffset()]
		if end, ok := tok.(xml.EndElement); ok && len(stack) > 0 {
			stack = stack[:len(stack)-1]
			if err := f(w, end, raw, stack); err != nil {
				return err
			}
			continue
		}
		if err := f(w, tok, raw, stack); err != nil {
			return err
		}
		if start, ok := tok.(xml.StartElement); ok {
			stack = append(stack, start.Name.Local)
		}
	}
	return nil
}

// copyRaw is a rewriteFunc that keeps every token unchanged.
func copyRaw(w io.Writer, _ xml.Token, raw []byte, _ []string) error {
	_, err := w.Write(raw)
	return err
}

// rewriteFile returns the content of the XML file at path after
// passing every token through f.
func rewriteFile(path string, f rewriteFunc) ([]byte, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if err := rewrite(buf, b, f); err != nil {
		return nil, fmt.Errorf("mecha: rewriting %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// selfClosing reports whether raw is an element written as <e/>.
func selfClosing(raw []byte) bool {
	return bytes.HasSuffix(raw, []byte("/>"))
}

// qualified returns n as written in the document. RawToken leaves the
// namespace prefix in Space.
func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// writeStart writes start as a tag, closing it as <e/> when empty is
// set. Names keep their original prefixes.
func writeStart(w io.Writer, start xml.StartElement, empty bool) error {
	buf := new(bytes.Buffer)
	buf.WriteByte('<')
	buf.WriteString(qualified(start.Name))
	for _, a := range start.Attr {
		buf.WriteByte(' ')
		buf.WriteString(qualified(a.Name))
		buf.WriteString(`="`)
		if err := xml.EscapeText(buf, []byte(a.Value)); err != nil {
			return err
		}
		buf.WriteByte('"')
	}
	if empty {
		buf.WriteString("/>")
	} else {
		buf.WriteByte('>')
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// replaceFile writes b to a temporary file next to path and then
// renames it over path, keeping the original permissions.
func replaceFile(path string, b []byte) error {
	tmp, err := ioutil.TempFile(filepath.Dir(path), "."+filepath.Base(path)+".")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if fi, err := os.Stat(path); err == nil {
		os.Chmod(tmp.Name(), fi.Mode())
	}
	return os.Rename(tmp.Name(), path)
}

func hasAncestor(ancestors []string, name string) bool {
	for _, a := range ancestors {
		if a == name {
			return true
		}
	}
	return false
}

// setAttrs sets the given attributes on start, replacing existing
// values and appending new attributes in sorted key order.
func setAttrs(start xml.StartElement, attrs map[string]string) xml.StartElement {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := start.Copy()
	for _, k := range keys {
		found := false
		for i, a := range out.Attr {
			if a.Name.Space == "" && a.Name.Local == k {
				out.Attr[i].Value = attrs[k]
				found = true
			}
		}
		if !found {
			out.Attr = append(out.Attr, xml.Attr{Name: xml.Name{Local: k}, Value: attrs[k]})
		}
	}
	return out
}

// UpdateAttributes sets attrs on every element named element that is
// within an element named parent in the XML file at path. When parent
// and element are the same, the matching elements themselves are
// updated. It is an error for no element to match.
func UpdateAttributes(path, parent, element string, attrs map[string]string) error {
	matched := 0
	b, err := rewriteFile(path, func(w io.Writer, tok xml.Token, raw []byte, ancestors []string) error {
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == element &&
			(parent == element || hasAncestor(ancestors, parent)) {
			matched++
			return writeStart(w, setAttrs(start, attrs), selfClosing(raw))
		}
		return copyRaw(w, tok, raw, ancestors)
	})
	if err != nil {
		return err
	}
	if matched == 0 {
		return fmt.Errorf("mecha: no <%s> element within <%s> in %s", element, parent, path)
	}
	return replaceFile(path, b)
}
