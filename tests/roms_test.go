package tests

import (
	"testing"

	"gbcore/emu/testrom"
)

func runSuite(t *testing.T, s Suite, model string, maxFrames int, roms []string) {
	if testing.Short() {
		t.Skip("test roms are not run in short mode")
	}

	for _, name := range roms {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res, err := testrom.Run(s.Find(t, name), model, maxFrames)
			if err != nil {
				t.Fatal(err)
			}
			if res.Verdict != testrom.Passed {
				t.Errorf("%s\nserial output:\n%s", res, res.Serial)
			}
		})
	}
}

func TestBlarggCPUInstrs(t *testing.T) {
	runSuite(t, Blargg, "dmg", 3600, []string{
		"cpu_instrs/individual/01-special.gb",
		"cpu_instrs/individual/02-interrupts.gb",
		"cpu_instrs/individual/03-op sp,hl.gb",
		"cpu_instrs/individual/04-op r,imm.gb",
		"cpu_instrs/individual/05-op rp.gb",
		"cpu_instrs/individual/06-ld r,r.gb",
		"cpu_instrs/individual/07-jr,jp,call,ret,rst.gb",
		"cpu_instrs/individual/08-misc instrs.gb",
		"cpu_instrs/individual/09-op r,r.gb",
		"cpu_instrs/individual/10-bit ops.gb",
		"cpu_instrs/individual/11-op a,(hl).gb",
	})
}

func TestBlarggTiming(t *testing.T) {
	runSuite(t, Blargg, "dmg", 1200, []string{
		"instr_timing/instr_timing.gb",
		"mem_timing/individual/01-read_timing.gb",
		"mem_timing/individual/02-write_timing.gb",
		"mem_timing/individual/03-modify_timing.gb",
	})
}

func TestMooneyeAcceptance(t *testing.T) {
	runSuite(t, Mooneye, "dmg", 600, []string{
		"acceptance/boot_regs-dmgABC.gb",
		"acceptance/bits/mem_oam.gb",
		"acceptance/bits/reg_f.gb",
		"acceptance/bits/unused_hwio-GS.gb",
		"acceptance/instr/daa.gb",
		"acceptance/interrupts/ie_push.gb",
		"acceptance/oam_dma/basic.gb",
		"acceptance/oam_dma/reg_read.gb",
		"acceptance/timer/div_write.gb",
		"acceptance/timer/rapid_toggle.gb",
		"acceptance/timer/tim00.gb",
		"acceptance/timer/tim01.gb",
		"acceptance/timer/tim10.gb",
		"acceptance/timer/tim11.gb",
		"acceptance/timer/tima_reload.gb",
		"acceptance/timer/tma_write_reloading.gb",
		"acceptance/ei_sequence.gb",
		"acceptance/ei_timing.gb",
		"acceptance/if_ie_registers.gb",
		"acceptance/halt_ime0_ei.gb",
		"acceptance/halt_ime1_timing.gb",
		"acceptance/rapid_di_ei.gb",
		"acceptance/reti_intr_timing.gb",
	})
}

func TestMooneyeCGB(t *testing.T) {
	runSuite(t, Mooneye, "cgb", 600, []string{
		"misc/boot_regs-cgb.gb",
	})
}
