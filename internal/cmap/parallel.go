// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package cmap

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/pbnjay/memory"
)

// An execution context for batched table generation
type Context struct {
	Log        io.Writer
	MemoryMB   int // memory.TotalMemory()/1024/1024
	MaxThreads int `json:"maxThreads"`
}

func NewContext(log io.Writer) *Context {
	return &Context{
		Log:        log,
		MemoryMB:   int(memory.TotalMemory() / 1024 / 1024),
		MaxThreads: runtime.GOMAXPROCS(0),
	}
}

// A promise for a color table. Returns a materialized table, or an error
type Promise func() (ColorTable, error)

// GenerateAll builds the tables for all given specs, limiting concurrency to
// c.MaxThreads. Each table build is independent and side-effect free, so no
// further coordination is needed. Returns the first error encountered joined
// with any others; successfully built tables keep their slots.
func GenerateAll(specs []*ColorMapSpec, c *Context) (tables []ColorTable, err error) {
	if len(specs)==0 { return nil, nil }

	// refuse batches whose tables cannot fit in physical memory
	totalBins:=0
	for _, spec:=range specs {
		if spec.NumBins>0 { totalBins+=spec.NumBins }
	}
	entryBytes:=32 // position plus three channels, 8 bytes each
	if totalBins*entryBytes > c.MemoryMB*1024*1024/2 {
		return nil, fmt.Errorf("%w: batch of %d total bins exceeds memory budget of %d MB", ErrInvalidConfig, totalBins, c.MemoryMB)
	}

	ins:=make([]Promise, len(specs))
	for i, spec:=range specs {
		theSpec:=spec
		ins[i]=func() (ColorTable, error) { return theSpec.Generate() }
	}

	tables =make([]ColorTable, len(ins))
	limiter:=make(chan bool, c.MaxThreads)
	errs   :=make(chan error, len(ins))
	for i, in:=range ins {
		limiter <- true
		go func(i int, theIn Promise) {
			defer func() { <-limiter }()
			t, err:=theIn() // materialize the promise
			if err!=nil {
				tables[i]=nil
				errs <- err
				return
			}
			tables[i]=t
			errs <- nil
		}(i, in)
	}
	for i:=0; i<cap(limiter); i++ { // wait for goroutines to finish
		limiter <- true
	}
	for i:=0; i<len(ins); i++ { // collect errors
		e:=<-errs
		if e!=nil {
			if err==nil {
				err=e
			} else {
				err=errors.New(fmt.Sprintf("%s; %s", err.Error(), e.Error()))
			}
		}
	}
	return tables, err
}
