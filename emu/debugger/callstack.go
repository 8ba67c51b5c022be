package debugger

import (
	"fmt"
	"slices"
)

type stackFrameFlag uint8

const (
	sffNone stackFrameFlag = iota
	sffIRQ
)

type stackFrame struct {
	src    uint16
	target uint16
	ret    uint16
	flag   stackFrameFlag
	irq    string
}

type callStack []stackFrame

func (cs *callStack) push(f stackFrame) {
	*cs = append(*cs, f)
}

func (cs *callStack) len() int {
	return len(*cs)
}

func (cs *callStack) pop() {
	if cs.len() == 0 {
		return
	}
	*cs = (*cs)[:cs.len()-1]
}

func (cs *callStack) reset() {
	*cs = (*cs)[:0]
}

// A Frame describes one level of the call stack: the entry point of the
// routine and the location reached in it.
type Frame struct {
	Entry    string
	Location string
}

// build returns the call stack frames, innermost first.
func (cs *callStack) build(pc uint16) []Frame {
	frames := make([]Frame, 0, cs.len()+1)
	var curf *stackFrame
	for i, f := range *cs {
		if i > 0 {
			curf = &((*cs)[i-1])
		}
		frames = slices.Insert(frames, 0, Frame{
			Entry:    cs.entryPoint(curf),
			Location: fmt.Sprintf("$%04X", f.src),
		})
	}

	// Current frame
	curf = nil
	if cs.len() > 0 {
		curf = &((*cs)[cs.len()-1])
	}

	return slices.Insert(frames, 0, Frame{
		Entry:    cs.entryPoint(curf),
		Location: fmt.Sprintf("$%04X", pc),
	})
}

func (callStack) entryPoint(f *stackFrame) string {
	if f == nil {
		return "[bottom of stack]"
	}

	str := fmt.Sprintf("%04X", f.target)
	if f.flag == sffIRQ {
		return "[irq " + f.irq + "] $" + str
	}
	return str
}
