//go:build debug

package main

import (
	"log"
	"os"
	"runtime/pprof"

	"cydpanel.org/gui"
	"cydpanel.org/input"
)

// dbgInit starts a CPU profile if CONTROLLER_CPUPROFILE names
// an output file.
func dbgInit() (func(), error) {
	path := os.Getenv("CONTROLLER_CPUPROFILE")
	if path == "" {
		return func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return func() {}, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return func() {}, err
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

func dbgEvent(p *input.Pointer, e gui.PointerEvent) {
	log.Printf("debug: %v raw %+v", e, p.Last())
}
