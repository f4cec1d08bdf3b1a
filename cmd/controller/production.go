//go:build !debug

package main

import (
	"cydpanel.org/gui"
	"cydpanel.org/input"
)

func dbgInit() (func(), error) {
	return func() {}, nil
}

func dbgEvent(p *input.Pointer, e gui.PointerEvent) {}
