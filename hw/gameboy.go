package hw

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"gbcore/emu/log"
	"gbcore/hw/cart"
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// Model is the emulated hardware model.
type Model uint8

const (
	ModelDMG Model = iota
	ModelCGB
)

func (m Model) String() string {
	if m == ModelCGB {
		return "cgb"
	}
	return "dmg"
}

// ParseModel parses a model name. "auto" selects CGB for roms supporting it.
func ParseModel(name string, hdr *cart.Header) (Model, error) {
	switch strings.ToLower(name) {
	case "dmg":
		return ModelDMG, nil
	case "cgb":
		return ModelCGB, nil
	case "", "auto":
		if hdr != nil && hdr.CGB() {
			return ModelCGB, nil
		}
		return ModelDMG, nil
	}
	return ModelDMG, fmt.Errorf("unknown model %q", name)
}

// CyclesPerFrame is the number of M-cycles in a frame at normal speed.
const CyclesPerFrame = DotsPerFrame / 4

// GameBoy is a complete machine.
type GameBoy struct {
	System System
	Bus    *hwio.Table
	IRQ    Interrupts
	Clock  Clock
	CPU    *CPU

	Memory *Memory
	Timer  *Timer
	Serial *Serial
	joypad *Joypad
	DMA    *OAMDMA
	Video  *Video
	Sound  *Sound
	HDMA   *HDMA // CGB only
	Key1   *Key1 // CGB only

	Cart cart.Cartridge

	model       Model
	peripherals []Peripheral
}

// An Option configures a GameBoy.
type Option func(*GameBoy)

// WithSerialOutput copies every byte sent over the link port to w.
func WithSerialOutput(w io.Writer) Option {
	return func(gb *GameBoy) { gb.Serial.SetOutput(w) }
}

// New creates a machine of the given model with the cartridge inserted, in
// its post-boot state.
func New(c cart.Cartridge, model Model, opts ...Option) *GameBoy {
	gb := &GameBoy{Cart: c, model: model}
	cgb := model == ModelCGB

	gb.Bus = hwio.NewTable("cpu", &gb.System)
	gb.CPU = NewCPU(gb.Bus, &gb.Clock, &gb.IRQ, &gb.System)

	gb.Memory = NewMemory(cgb)
	gb.Timer = NewTimer(&gb.IRQ)
	gb.Serial = NewSerial(&gb.IRQ, cgb)
	gb.joypad = NewJoypad(&gb.IRQ)
	gb.Video = NewVideo(&gb.IRQ, cgb)
	gb.DMA = NewOAMDMA(gb.Bus, gb.Video.OAM[:])
	gb.Sound = NewSound()

	// Memory first: it maps the open bus that others override.
	gb.peripherals = []Peripheral{
		gb.Memory, &gb.IRQ, gb.Timer, gb.Serial, gb.joypad, gb.Video, gb.DMA, gb.Sound,
	}
	if cgb {
		gb.HDMA = NewHDMA(gb.Bus, gb.Video, &gb.Clock)
		gb.Key1 = &Key1{}
		gb.peripherals = append(gb.peripherals, gb.HDMA, gb.Key1)
		gb.CPU.key1 = gb.Key1
	}
	gb.CPU.timer = gb.Timer

	gb.Clock.Video = gb.Video
	gb.Clock.Timer = gb.Timer
	gb.Clock.Serial = gb.Serial
	gb.Clock.DMA = gb.DMA
	gb.Clock.Sound = gb.Sound

	for _, p := range gb.peripherals {
		p.Install(gb.Bus)
	}
	c.Install(gb.Bus)

	for _, opt := range opts {
		opt(gb)
	}
	gb.Reset()
	return gb
}

func (gb *GameBoy) Model() Model { return gb.model }

// Joypad returns the button input of the machine.
func (gb *GameBoy) Joypad() *Joypad { return gb.joypad }

// Reset resets the machine to its post-boot state, cartridge RAM is kept.
func (gb *GameBoy) Reset() {
	gb.System.ClearTrap()
	gb.Clock.Reset()
	for _, p := range gb.peripherals {
		p.Reset()
	}
	gb.Cart.Reset(slices.Clone(gb.Cart.RAM()))
	gb.CPU.Reset(gb.model)

	log.ModEmu.InfoZ("reset").Stringer("model", gb.model).End()
}

// Step executes a single CPU step.
func (gb *GameBoy) Step() { gb.CPU.Step() }

// RunCycles runs the machine for at least n M-cycles, stopping early on trap.
func (gb *GameBoy) RunCycles(n int64) { gb.CPU.Run(n) }

// RunFrame runs until the next VBlank. With the LCD off, it runs for the
// duration of a frame.
func (gb *GameBoy) RunFrame() {
	frame := gb.Video.Frame()
	start := gb.Clock.Cycles()
	frameCycles := int64(CyclesPerFrame)
	if gb.Clock.DoubleSpeed() {
		frameCycles *= 2
	}
	for gb.Video.Frame() == frame && !gb.System.IsTrap() {
		if !gb.Video.enabled() && gb.Clock.Cycles()-start >= frameCycles {
			break
		}
		gb.CPU.Step()
	}
	gb.CPU.dbg.FrameEnd()
}

func (gb *GameBoy) SetTraceOutput(w io.Writer, format TraceFormat) {
	gb.CPU.SetTraceOutput(w, format)
}

func (gb *GameBoy) SetDebugger(dbg Debugger) {
	gb.CPU.SetDebugger(dbg)
}

// Save writes the state of the whole machine.
func (gb *GameBoy) Save(s *snapshot.State) {
	s.Write8(uint8(gb.model))
	gb.Clock.Save(s)
	gb.CPU.Save(s)
	gb.IRQ.Save(s)
	gb.Memory.Save(s)
	gb.Timer.Save(s)
	gb.Serial.Save(s)
	gb.joypad.Save(s)
	gb.Video.Save(s)
	gb.DMA.Save(s)
	gb.Sound.Save(s)
	if gb.model == ModelCGB {
		gb.HDMA.Save(s)
		gb.Key1.Save(s)
	}
	gb.Cart.Save(s)
}

// Load restores a state written by Save, on a machine of the same model
// with the same cartridge.
func (gb *GameBoy) Load(s *snapshot.State) error {
	if m := Model(s.Read8()); m != gb.model {
		return fmt.Errorf("state is for %s, machine is %s", m, gb.model)
	}
	gb.Clock.Load(s)
	gb.CPU.Load(s)
	gb.IRQ.Load(s)
	gb.Memory.Load(s)
	gb.Timer.Load(s)
	gb.Serial.Load(s)
	gb.joypad.Load(s)
	gb.Video.Load(s)
	gb.DMA.Load(s)
	gb.Sound.Load(s)
	if gb.model == ModelCGB {
		gb.HDMA.Load(s)
		gb.Key1.Load(s)
	}
	gb.Cart.Load(s)

	if err := s.Err(); err != nil {
		return err
	}
	if n := s.Remaining(); n != 0 {
		return fmt.Errorf("%d unexpected trailing bytes in state", n)
	}
	gb.System.ClearTrap()
	return nil
}
