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

// Package hash computes cache keys for mesh documents and other values.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

// Hash returns a hex key identifying the content of object. Byte slices
// and strings are hashed directly; fmt.Stringers are keyed by their
// String method; anything else is gob-encoded, or printed with spew if
// it cannot be encoded.
func Hash(object interface{}) string {
	h := fnv.New128a()
	switch v := object.(type) {
	case []byte:
		h.Write(v)
	case string:
		h.Write([]byte(v))
	case fmt.Stringer:
		return v.String()
	default:
		if err := gob.NewEncoder(h).Encode(object); err != nil {
			h.Reset()
			printer := spew.ConfigState{
				Indent:                  " ",
				SortKeys:                true,
				DisableMethods:          true,
				SpewKeys:                true,
				DisablePointerAddresses: true,
				DisableCapacities:       true,
			}
			printer.Fprintf(h, "%#v", object)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
