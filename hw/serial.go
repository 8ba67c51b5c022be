package hw

import (
	"io"

	"gbcore/emu/log"
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// Serial is the link port. Without a link partner, only transfers using the
// internal clock complete, shifting in 1s. Transferred bytes are written to
// the output writer, which is how test roms report their results.
type Serial struct {
	SB hwio.Reg8
	SC hwio.Reg8

	irq *Interrupts
	cgb bool
	out io.Writer

	active bool
	bits   int // bits left to shift
	count  int // cycles until the next bit
}

func NewSerial(irq *Interrupts, cgb bool) *Serial {
	return &Serial{irq: irq, cgb: cgb}
}

// SetOutput sets the writer receiving each transferred byte.
func (s *Serial) SetOutput(w io.Writer) { s.out = w }

func (s *Serial) Install(bus *hwio.Table) {
	s.SB = hwio.Reg8{Name: "SB"}
	s.SC = hwio.Reg8{Name: "SC", Unused: 0x7E, WriteCb: s.writeSC}
	if s.cgb {
		s.SC.Unused = 0x7C
	}
	bus.MapReg8(0xFF01, &s.SB)
	bus.MapReg8(0xFF02, &s.SC)
}

func (s *Serial) Reset() {
	s.SB.Value = 0
	s.SC.Value = 0
	s.active = false
	s.bits = 0
	s.count = 0
}

func (s *Serial) bitPeriod() int {
	if s.cgb && s.SC.Value&0x02 != 0 {
		return 4
	}
	return 128
}

func (s *Serial) writeSC(old, val uint8) {
	if val&0x81 != 0x81 {
		if val&0x80 != 0 {
			log.ModSerial.DebugZ("transfer with external clock").End()
		}
		s.active = false
		return
	}

	if s.out != nil {
		if _, err := s.out.Write([]byte{s.SB.Value}); err != nil {
			log.ModSerial.WarnZ("failed to write serial output").Error("err", err).End()
		}
	}
	s.active = true
	s.bits = 8
	s.count = s.bitPeriod()
}

func (s *Serial) Cycle(n int) {
	if !s.active {
		return
	}
	for s.count -= n; s.count <= 0; s.count += s.bitPeriod() {
		s.SB.Value = s.SB.Value<<1 | 1
		s.bits--
		if s.bits == 0 {
			s.active = false
			s.SC.Value &^= 0x80
			s.irq.Raise(IntSerial)
			log.ModSerial.DebugZ("transfer done").End()
			return
		}
	}
}

func (s *Serial) Save(st *snapshot.State) {
	st.Write8(s.SB.Value)
	st.Write8(s.SC.Value)
	st.WriteBool(s.active)
	st.Write8(uint8(s.bits))
	st.Write32(uint32(int32(s.count)))
}

func (s *Serial) Load(st *snapshot.State) {
	s.SB.Value = st.Read8()
	s.SC.Value = st.Read8()
	s.active = st.ReadBool()
	s.bits = int(st.Read8())
	s.count = int(int32(st.Read32()))
}
