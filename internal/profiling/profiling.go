// Package profiling starts and stops the profilers supported by the simulator.
package profiling

import (
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/felixge/fgprof"
	"go.uber.org/multierr"
)

// StartProfilers starts the profilers whose output path is non-empty.
// The returned function stops them and writes any end-of-run profiles.
func StartProfilers(cpuProfilePath, memProfilePath, tracePath, fgprofPath string) (stopProfilers func() error, err error) {
	var (
		cpuProfile    *os.File
		traceFile     *os.File
		fgprofProfile *os.File
		fgprofStop    func() error
	)

	if cpuProfilePath != "" {
		cpuProfile, err = os.Create(cpuProfilePath)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(cpuProfile); err != nil {
			return nil, err
		}
	}

	if fgprofPath != "" {
		fgprofProfile, err = os.Create(fgprofPath)
		if err != nil {
			return nil, err
		}
		fgprofStop = fgprof.Start(fgprofProfile, fgprof.FormatPprof)
	}

	if tracePath != "" {
		traceFile, err = os.Create(tracePath)
		if err != nil {
			return nil, err
		}
		if err := trace.Start(traceFile); err != nil {
			return nil, err
		}
	}

	return func() (err error) {
		if memProfilePath != "" {
			f, ferr := os.Create(memProfilePath)
			if ferr != nil {
				return ferr
			}
			runtime.GC() // get up-to-date statistics
			err = multierr.Append(err, pprof.WriteHeapProfile(f))
			err = multierr.Append(err, f.Close())
		}

		if cpuProfile != nil {
			pprof.StopCPUProfile()
			err = multierr.Append(err, cpuProfile.Close())
		}

		if fgprofProfile != nil {
			err = multierr.Append(err, fgprofStop())
			err = multierr.Append(err, fgprofProfile.Close())
		}

		if traceFile != nil {
			trace.Stop()
			err = multierr.Append(err, traceFile.Close())
		}
		return err
	}, nil
}
