package log

import "sync"

// A ContextAdder adds its own fields to every log line, for instance the
// current program counter.
type ContextAdder interface {
	AddLogContext(z *EntryZ)
}

var (
	ctxmu    sync.RWMutex
	contexts []ContextAdder
)

func AddContext(c ContextAdder) {
	ctxmu.Lock()
	defer ctxmu.Unlock()
	contexts = append(contexts, c)
}

func RemoveContext(c ContextAdder) {
	ctxmu.Lock()
	defer ctxmu.Unlock()
	for i := range contexts {
		if contexts[i] == c {
			contexts = append(contexts[:i], contexts[i+1:]...)
			return
		}
	}
}

func addContexts(z *EntryZ) {
	ctxmu.RLock()
	defer ctxmu.RUnlock()
	for _, c := range contexts {
		c.AddLogContext(z)
	}
}
