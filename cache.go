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

package krsweep

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"runtime"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/mecharoot/krsweep/internal/hash"
)

// SectionCache memoizes section reconstruction by mesh content, so
// that redrawing an unchanged mesh does not rebuild it. It is safe
// for concurrent use. Callers must not modify returned sections.
type SectionCache struct {
	// Reconstructor is used for cache misses. If nil, the zero
	// Reconstructor is used.
	Reconstructor *Reconstructor

	// Size is the maximum number of sections held in memory.
	Size int

	initOnce sync.Once
	cache    *requestcache.Cache
}

// Section returns the reconstruction of the mesh document in b.
func (sc *SectionCache) Section(ctx context.Context, b []byte) (*RootSection, error) {
	sc.initOnce.Do(func() {
		rc := sc.Reconstructor
		if rc == nil {
			rc = new(Reconstructor)
		}
		size := sc.Size
		if size <= 0 {
			size = 10
		}
		sc.cache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			return rc.Read(bytes.NewReader(request.([]byte))), nil
		}, runtime.GOMAXPROCS(-1), requestcache.Deduplicate(), requestcache.Memory(size))
	})
	req := sc.cache.NewRequest(ctx, b, hash.Hash(b))
	result, err := req.Result()
	if err != nil {
		return nil, err
	}
	return result.(*RootSection), nil
}

// SectionFile is like Section but reads the mesh document at path.
func (sc *SectionCache) SectionFile(ctx context.Context, path string) (*RootSection, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("krsweep: reading mesh: %w", err)
	}
	return sc.Section(ctx, b)
}
