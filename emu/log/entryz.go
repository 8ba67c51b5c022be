package log

import (
	"fmt"
	"sync"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

const maxZFields = 16

// EntryZ is a log entry whose fields are accumulated without allocation. All
// methods accept a nil receiver, which is what disabled modules return.
type EntryZ struct {
	mod   Module
	lvl   Level
	msg   string
	zfbuf [maxZFields]ZField
	zfidx int
}

var entryzPool = sync.Pool{
	New: func() any { return new(EntryZ) },
}

func NewEntryZ() *EntryZ {
	z := entryzPool.Get().(*EntryZ)
	z.zfidx = 0
	return z
}

func (z *EntryZ) field(typ FieldType, key string) *ZField {
	if z.zfidx == maxZFields {
		return nil
	}
	f := &z.zfbuf[z.zfidx]
	*f = ZField{Type: typ, Key: key}
	z.zfidx++
	return f
}

func (z *EntryZ) Hex8(key string, v uint8) *EntryZ {
	if z != nil {
		if f := z.field(FieldTypeHex8, key); f != nil {
			f.Integer = uint64(v)
		}
	}
	return z
}

func (z *EntryZ) Hex16(key string, v uint16) *EntryZ {
	if z != nil {
		if f := z.field(FieldTypeHex16, key); f != nil {
			f.Integer = uint64(v)
		}
	}
	return z
}

func (z *EntryZ) Hex32(key string, v uint32) *EntryZ {
	if z != nil {
		if f := z.field(FieldTypeHex32, key); f != nil {
			f.Integer = uint64(v)
		}
	}
	return z
}

func (z *EntryZ) Int(key string, v int) *EntryZ {
	if z != nil {
		if f := z.field(FieldTypeInt, key); f != nil {
			f.Integer = uint64(v)
		}
	}
	return z
}

func (z *EntryZ) Uint64(key string, v uint64) *EntryZ {
	if z != nil {
		if f := z.field(FieldTypeUint, key); f != nil {
			f.Integer = v
		}
	}
	return z
}

func (z *EntryZ) String(key string, v string) *EntryZ {
	if z != nil {
		if f := z.field(FieldTypeString, key); f != nil {
			f.String = v
		}
	}
	return z
}

func (z *EntryZ) Bool(key string, v bool) *EntryZ {
	if z != nil {
		if f := z.field(FieldTypeBool, key); f != nil {
			f.Boolean = v
		}
	}
	return z
}

func (z *EntryZ) Error(key string, err error) *EntryZ {
	if z != nil {
		if f := z.field(FieldTypeError, key); f != nil {
			f.Error = err
		}
	}
	return z
}

func (z *EntryZ) Duration(key string, d time.Duration) *EntryZ {
	if z != nil {
		if f := z.field(FieldTypeDuration, key); f != nil {
			f.Duration = d
		}
	}
	return z
}

func (z *EntryZ) Stringer(key string, s fmt.Stringer) *EntryZ {
	if z != nil {
		if f := z.field(FieldTypeStringer, key); f != nil {
			f.Interface = s
		}
	}
	return z
}

func (z *EntryZ) Blob(key string, b []byte) *EntryZ {
	if z != nil {
		if f := z.field(FieldTypeBlob, key); f != nil {
			f.Blob = b
		}
	}
	return z
}

// End emits the entry and releases it. The entry must not be used afterwards.
func (z *EntryZ) End() {
	if z == nil {
		return
	}

	addContexts(z)
	fields := make(logrus.Fields, z.zfidx+1)
	fields["_mod"] = z.mod.String()
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}

	entry := logrus.StandardLogger().WithFields(fields)
	switch z.lvl {
	case DebugLevel:
		entry.Debug(z.msg)
	case InfoLevel:
		entry.Info(z.msg)
	case WarnLevel:
		entry.Warn(z.msg)
	case ErrorLevel:
		entry.Error(z.msg)
	case FatalLevel:
		entry.Fatal(z.msg)
	default:
		entry.Panic(z.msg)
	}

	clear(z.zfbuf[:z.zfidx])
	entryzPool.Put(z)
}
