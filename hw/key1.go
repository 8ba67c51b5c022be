package hw

import (
	"gbcore/emu/log"
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// Key1 is the CGB speed switch register. Bit 0 arms the switch, performed by
// the next STOP; bit 7 reflects the current speed.
type Key1 struct {
	KEY1 hwio.Reg8
}

func (k *Key1) Install(bus *hwio.Table) {
	k.KEY1 = hwio.Reg8{Name: "KEY1", RoMask: 0xFE, Unused: 0x7E}
	bus.MapReg8(0xFF4D, &k.KEY1)
}

func (k *Key1) Reset() { k.KEY1.Value = 0 }

func (k *Key1) Armed() bool { return k.KEY1.Value&0x01 != 0 }

// Switch toggles the clock speed and disarms the switch.
func (k *Key1) Switch(clock *Clock) {
	double := !clock.DoubleSpeed()
	clock.SetDoubleSpeed(double)
	k.KEY1.Value = 0
	if double {
		k.KEY1.Value = 0x80
	}
	log.ModClock.InfoZ("speed switch").Bool("double", double).End()
}

func (k *Key1) Save(s *snapshot.State) { s.Write8(k.KEY1.Value) }
func (k *Key1) Load(s *snapshot.State) { k.KEY1.Value = s.Read8() }
