package hw

import (
	"fmt"
	"strconv"
	"strings"

	"gbcore/emu/log"
	"gbcore/hw/hwio"
)

// Watchpoints observes the bus and traps the machine when a watched address
// is accessed.
type Watchpoints struct {
	read  hwio.Bitset
	write hwio.Bitset
	sys   *System
	dbg   Debugger
}

// NewWatchpoints creates an empty watchpoint set that traps through sys and
// notifies dbg, which may be nil.
func NewWatchpoints(sys *System, dbg Debugger) *Watchpoints {
	if dbg == nil {
		dbg = nopDebugger{}
	}
	return &Watchpoints{sys: sys, dbg: dbg}
}

// WatchRead watches reads in [start, end].
func (w *Watchpoints) WatchRead(start, end uint16) {
	w.read.SetRange(uint(start), uint(end)+1)
}

// WatchWrite watches writes in [start, end].
func (w *Watchpoints) WatchWrite(start, end uint16) {
	w.write.SetRange(uint(start), uint(end)+1)
}

// Unwatch removes read and write watchpoints in [start, end].
func (w *Watchpoints) Unwatch(start, end uint16) {
	w.read.ClearRange(uint(start), uint(end)+1)
	w.write.ClearRange(uint(start), uint(end)+1)
}

// Len returns the number of watched addresses.
func (w *Watchpoints) Len() int {
	return w.read.Count() + w.write.Count()
}

func (w *Watchpoints) ObserveRead(addr uint16, val uint8) {
	if w.read.Test(uint(addr)) {
		w.hit(fmt.Sprintf("watchpoint: read $%02X at $%04X", val, addr))
	}
}

func (w *Watchpoints) ObserveWrite(addr uint16, val uint8) {
	if w.write.Test(uint(addr)) {
		w.hit(fmt.Sprintf("watchpoint: write $%02X at $%04X", val, addr))
	}
}

func (w *Watchpoints) hit(msg string) {
	log.ModDbg.DebugZ(msg).End()
	w.dbg.Break(msg)
	w.sys.Trap(msg)
}

// Parse parses "r:ADDR", "w:ADDR", "rw:ADDR" or "rw:START-END", with
// hexadecimal addresses, and adds it to w.
func (w *Watchpoints) Parse(s string) error {
	kind, rng, ok := strings.Cut(s, ":")
	if !ok {
		return fmt.Errorf("invalid watchpoint %q", s)
	}
	lo, hi, isRange := strings.Cut(rng, "-")
	start, err := parseAddr(lo)
	if err != nil {
		return fmt.Errorf("invalid watchpoint %q: %w", s, err)
	}
	end := start
	if isRange {
		if end, err = parseAddr(hi); err != nil {
			return fmt.Errorf("invalid watchpoint %q: %w", s, err)
		}
		if end < start {
			return fmt.Errorf("invalid watchpoint range %q", s)
		}
	}

	switch kind {
	case "r":
		w.WatchRead(start, end)
	case "w":
		w.WatchWrite(start, end)
	case "rw":
		w.WatchRead(start, end)
		w.WatchWrite(start, end)
	default:
		return fmt.Errorf("invalid watchpoint kind %q", kind)
	}
	return nil
}

func parseAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "$"), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	return uint16(v), err
}
