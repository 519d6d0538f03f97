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

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	dm "github.com/mlnoga/divmap/internal"
	"github.com/mlnoga/divmap/internal/cmap"
	"github.com/mlnoga/divmap/internal/colorspace"
	"github.com/mlnoga/divmap/internal/rest"
)

const version = "0.1.0"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var out    = flag.String("out", "", "save output to `file`, blank for stdout")
var format = flag.String("format", "csv", "output format, one of csv, json")
var log    = flag.String("log", "", "save log output to `file` in addition to stdout")

var low  = flag.String("low",  "59,76,192",   "low endpoint color as `R,G,B` in [0,255] or hex #rrggbb")
var high = flag.String("high", "180,4,38",    "high endpoint color as `R,G,B` in [0,255] or hex #rrggbb")
var ref  = flag.String("ref",  "221,221,221", "near-neutral reference color shared at the map midpoint")

var bins    = flag.Int64("bins", 255, "number of table entries, at least 2; odd numbers hit the reference exactly")
var rescale = flag.String("rescale", "linear", "sample rescaling mode, one of linear, square, cubic, sqrt, power")
var power   = flag.Float64("power", 1.0, "rescaling exponent, only used with -rescale power")
var method  = flag.String("method", "moreland", "interpolation method, one of moreland, lab")

var chroot = flag.String("chroot", "", "serve: change filesystem root to `dir` before serving (requires root)")
var setuid = flag.Int64("setuid", -1, "serve: switch to this numerical user id before serving, -1=off")

func main() {
	start:=time.Now()
	flag.Usage=func(){
		fmt.Fprintf(os.Stdout, `Divmap Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (table|batch|serve|legal|version) (specs.json)

Commands:
  table   Generate one diverging color map table from the flags below
  batch   Generate many tables from a JSON file with an array of specs
  serve   Serve color map generation as a REST API with a web previewer
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Initialize logging to file in addition to stdout, if selected
	if *log!="" {
		if err:=dm.LogAlsoToFile(*log); err!=nil { dm.LogFatalf("Unable to open logfile '%s'\n", *log) }
	}
	logWriter:=dm.LogWriter()

	// Enable CPU profiling if flagged
	if *cpuprofile!="" {
		f, err:=os.Create(*cpuprofile)
		if err!=nil { dm.LogFatal("Could not create CPU profile: ", err) }
		defer f.Close()
		if err:=pprof.StartCPUProfile(f); err!=nil { dm.LogFatal("Could not start CPU profile: ", err) }
		defer pprof.StopCPUProfile()
	}

	args:=flag.Args()
	if len(args)<1 {
		flag.Usage()
		return
	}

	var err error
	switch args[0] {
	case "table":
		err=cmdTable(logWriter)

	case "batch":
		if len(args)<2 {
			dm.LogFatalf("Need a JSON spec file to perform a batch run\n")
		}
		err=cmdBatch(args[1], logWriter)

	case "serve":
		rest.MakeSandbox(*chroot, int(*setuid))
		rest.Serve()

	case "legal":
		dm.LogPrint(legal)

	case "version":
		fmt.Fprintf(logWriter, "Version %s\n", version)

	case "help", "?":
		flag.Usage()

	default:
		fmt.Fprintf(logWriter, "Unknown command '%s'\n\n", args[0])
		flag.Usage()
		return
	}

	elapsed:=time.Now().Sub(start)
	fmt.Fprintf(logWriter, "\nDone after %v\n", elapsed)

	// Store memory profile if flagged
	if *memprofile!="" {
		f, err:=os.Create(*memprofile)
		if err!=nil { dm.LogFatal("Could not create memory profile: ", err) }
		defer f.Close()
		if err:=pprof.Lookup("allocs").WriteTo(f, 0); err!=nil { dm.LogFatal("Could not write allocation profile: ", err) }
	}

	if err!=nil {
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		os.Exit(-1)
	}
	dm.LogSync()
}

// Builds a spec from the command line flags
func specFromFlags() (*cmap.ColorMapSpec, error) {
	rgbLow, err:=parseColor(*low)
	if err!=nil { return nil, err }
	rgbHigh, err:=parseColor(*high)
	if err!=nil { return nil, err }
	refPoint, err:=parseColor(*ref)
	if err!=nil { return nil, err }
	return cmap.NewColorMapSpec(rgbLow, rgbHigh, refPoint, int(*bins),
		cmap.NewRescaleConfig(*rescale, *power), *method), nil
}

// Parses a color given as decimal "R,G,B" channels in [0,255], or as a
// hex string like #b40426
func parseColor(s string) (rgb colorspace.RGB, err error) {
	if strings.HasPrefix(s, "#") {
		col, err:=colorful.Hex(s)
		if err!=nil { return rgb, fmt.Errorf("parsing color '%s': %s", s, err.Error()) }
		return colorspace.RGB{math.Round(col.R * 255), math.Round(col.G * 255), math.Round(col.B * 255)}, nil
	}
	parts:=strings.Split(s, ",")
	if len(parts)!=3 { return rgb, fmt.Errorf("parsing color '%s': need three comma-separated channels", s) }
	for i, p:=range parts {
		v, err:=strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err!=nil { return rgb, fmt.Errorf("parsing color '%s': %s", s, err.Error()) }
		rgb[i]=v
	}
	return rgb, nil
}

// Perform table generation command
func cmdTable(logWriter io.Writer) error {
	spec, err:=specFromFlags()
	if err!=nil { return err }

	m, err:=json.MarshalIndent(spec, "", "  ")
	if err!=nil { return err }
	fmt.Fprintf(logWriter, "Generating diverging color map with these settings:\n%s\n", string(m))

	table, err:=spec.Generate()
	if err!=nil { return err }
	return writeTable(table)
}

// Perform batch generation command from a JSON file holding an array of specs
func cmdBatch(fileName string, logWriter io.Writer) error {
	data, err:=os.ReadFile(fileName)
	if err!=nil { return err }
	var specs []*cmap.ColorMapSpec
	if err:=json.Unmarshal(data, &specs); err!=nil { return err }

	fmt.Fprintf(logWriter, "Generating %d diverging color maps...\n", len(specs))
	tables, err:=cmap.GenerateAll(specs, cmap.NewContext(logWriter))
	if err!=nil { return err }

	w, closer, err:=outWriter()
	if err!=nil { return err }
	defer closer()
	m, err:=json.MarshalIndent(tables, "", "  ")
	if err!=nil { return err }
	_, err=w.Write(append(m, '\n'))
	return err
}

func outWriter() (io.Writer, func() error, error) {
	if *out=="" { return os.Stdout, func() error { return nil }, nil }
	f, err:=os.Create(*out)
	if err!=nil { return nil, nil, err }
	return f, f.Close, nil
}

// Writes a single table in the selected output format
func writeTable(table cmap.ColorTable) error {
	w, closer, err:=outWriter()
	if err!=nil { return err }
	defer closer()

	switch *format {
	case "csv":
		if _, err:=fmt.Fprintf(w, "position,r,g,b\n"); err!=nil { return err }
		for _, e:=range table {
			_, err:=fmt.Fprintf(w, "%.8f,%d,%d,%d\n", e.Position, int(e.RGB[0]), int(e.RGB[1]), int(e.RGB[2]))
			if err!=nil { return err }
		}
		return nil
	case "json":
		m, err:=json.MarshalIndent(table, "", "  ")
		if err!=nil { return err }
		_, err=w.Write(append(m, '\n'))
		return err
	}
	return fmt.Errorf("unknown output format '%s'", *format)
}
