package hw

import (
	"gbcore/emu/log"
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// Bits always read as 1, for 0xFF10-0xFF3F.
var soundReadMask = [0x30]uint8{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // unused, NR21-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // unused, NR41-NR44
	0x00, 0x00, 0x70, // NR50-NR52
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // unused
	// wave ram
}

const (
	nr52         = 0x16
	waveRAMStart = 0x20

	// M-cycles between frame sequencer steps (512Hz).
	frameSeqPeriod = 2048
)

type soundChannel struct {
	nrx1, dac, nrx4 int // register indices
	lenMax          int
}

var soundChannels = [4]soundChannel{
	{nrx1: 0x01, dac: 0x02, nrx4: 0x04, lenMax: 64},
	{nrx1: 0x06, dac: 0x07, nrx4: 0x09, lenMax: 64},
	{nrx1: 0x0B, dac: 0x0A, nrx4: 0x0E, lenMax: 256},
	{nrx1: 0x10, dac: 0x11, nrx4: 0x13, lenMax: 64},
}

// Sound is the APU register file. Channels are not synthesized, but their
// status (NR52 bits 0-3) follows triggers, DAC power and length counters,
// clocked by the frame sequencer.
type Sound struct {
	regs [0x30]uint8
	dev  hwio.Device

	status   uint8 // NR52 channel bits
	length   [4]int
	seqCount int
	seqStep  uint8
}

func NewSound() *Sound { return &Sound{} }

func (snd *Sound) Install(bus *hwio.Table) {
	snd.dev = hwio.Device{
		Name:    "sound",
		Size:    len(snd.regs),
		ReadCb:  snd.read,
		WriteCb: snd.write,
	}
	bus.MapDevice(0xFF10, &snd.dev)
}

// Reset sets the post-boot register values.
func (snd *Sound) Reset() {
	clear(snd.regs[:])
	snd.regs[0x00] = 0x80
	snd.regs[0x01] = 0xBF
	snd.regs[0x02] = 0xF3
	snd.regs[0x04] = 0xBF
	snd.regs[0x06] = 0x3F
	snd.regs[0x09] = 0xBF
	snd.regs[0x0A] = 0x7F
	snd.regs[0x0B] = 0xFF
	snd.regs[0x0C] = 0x9F
	snd.regs[0x0E] = 0xBF
	snd.regs[0x10] = 0xFF
	snd.regs[0x13] = 0xBF
	snd.regs[0x14] = 0x77
	snd.regs[0x15] = 0xF3
	snd.regs[nr52] = 0x80
	snd.status = 0x01
	snd.length = [4]int{}
	snd.seqCount = 0
	snd.seqStep = 0
}

func (snd *Sound) powered() bool { return snd.regs[nr52]&0x80 != 0 }

// Status returns the channel-on bits of NR52.
func (snd *Sound) Status() uint8 { return snd.status }

func (snd *Sound) read(addr uint16) uint8 {
	idx := addr - 0xFF10
	if idx == nr52 {
		return snd.regs[nr52]&0x80 | soundReadMask[nr52] | snd.status
	}
	return snd.regs[idx] | soundReadMask[idx]
}

func (snd *Sound) write(addr uint16, val uint8) {
	idx := int(addr - 0xFF10)
	switch {
	case idx >= waveRAMStart:
		snd.regs[idx] = val
		return
	case idx == nr52:
		snd.writeNR52(val)
		return
	case !snd.powered():
		log.ModSound.DebugZ("write while powered off").Hex16("addr", addr).End()
		return
	}

	snd.regs[idx] = val
	for ch, c := range soundChannels {
		switch idx {
		case c.nrx1:
			mask := c.lenMax - 1
			snd.length[ch] = c.lenMax - int(val)&mask
		case c.dac:
			if !snd.dacOn(ch) {
				hwio.ClearBit8(&snd.status, uint(ch))
			}
		case c.nrx4:
			if val&0x80 != 0 {
				snd.trigger(ch)
			}
		}
	}
}

func (snd *Sound) dacOn(ch int) bool {
	v := snd.regs[soundChannels[ch].dac]
	if ch == 2 {
		return hwio.GetBit8(v, 7)
	}
	return v&0xF8 != 0
}

func (snd *Sound) trigger(ch int) {
	if snd.length[ch] == 0 {
		snd.length[ch] = soundChannels[ch].lenMax
	}
	if snd.dacOn(ch) {
		hwio.SetBit8(&snd.status, uint(ch))
	}
}

func (snd *Sound) writeNR52(val uint8) {
	on := val&0x80 != 0
	switch {
	case on && !snd.powered():
		snd.seqStep = 0
		snd.seqCount = 0
	case !on && snd.powered():
		clear(snd.regs[:nr52])
		snd.status = 0
	}
	snd.regs[nr52] = val & 0x80
}

// Cycle advances the frame sequencer by n M-cycles.
func (snd *Sound) Cycle(n int) {
	if !snd.powered() {
		return
	}
	for snd.seqCount += n; snd.seqCount >= frameSeqPeriod; snd.seqCount -= frameSeqPeriod {
		if snd.seqStep&1 == 0 {
			snd.clockLengths()
		}
		snd.seqStep = (snd.seqStep + 1) & 7
	}
}

func (snd *Sound) clockLengths() {
	for ch, c := range soundChannels {
		if snd.regs[c.nrx4]&0x40 == 0 || snd.length[ch] == 0 {
			continue
		}
		snd.length[ch]--
		if snd.length[ch] == 0 {
			hwio.ClearBit8(&snd.status, uint(ch))
		}
	}
}

func (snd *Sound) Save(s *snapshot.State) {
	s.WriteBytes(snd.regs[:])
	s.Write8(snd.status)
	for _, l := range snd.length {
		s.Write16(uint16(l))
	}
	s.Write16(uint16(snd.seqCount))
	s.Write8(snd.seqStep)
}

func (snd *Sound) Load(s *snapshot.State) {
	s.ReadBytes(snd.regs[:])
	snd.status = s.Read8()
	for i := range snd.length {
		snd.length[i] = int(s.Read16())
	}
	snd.seqCount = int(s.Read16())
	snd.seqStep = s.Read8()
}
