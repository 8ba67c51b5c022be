// Package snapshot serializes machine state. Components write their fields
// into a State in a fixed order and read them back in the same order.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash"
)

// Version is bumped each time the layout of any component changes.
const Version = 1

var magic = [4]byte{'G', 'B', 'S', 'T'}

const (
	headerLen  = len(magic) + 2
	trailerLen = 8
)

var (
	ErrBadMagic  = errors.New("snapshot: bad magic")
	ErrVersion   = errors.New("snapshot: unsupported version")
	ErrBadDigest = errors.New("snapshot: digest mismatch")
	ErrShortRead = errors.New("snapshot: short read")
)

// State is an ordered stream of values. Read errors are sticky: once a read
// goes past the end, all subsequent reads return zero and Err reports
// ErrShortRead.
type State struct {
	buf []byte
	off int
	err error
}

// New returns an empty State, ready to be written.
func New() *State {
	return &State{buf: make([]byte, 0, 64*1024)}
}

// Decode validates the header and digest of data and returns a State ready to
// be read.
func Decode(data []byte) (*State, error) {
	if len(data) < headerLen+trailerLen {
		return nil, ErrShortRead
	}
	if [4]byte(data[:4]) != magic {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v != Version {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrVersion, v, Version)
	}

	end := len(data) - trailerLen
	want := binary.LittleEndian.Uint64(data[end:])
	if got := xxhash.Sum64(data[:end]); got != want {
		return nil, fmt.Errorf("%w: %016x != %016x", ErrBadDigest, got, want)
	}
	return &State{buf: data[headerLen:end]}, nil
}

// Encode returns the framed state: header, payload and digest.
func (s *State) Encode() []byte {
	out := make([]byte, 0, headerLen+len(s.buf)+trailerLen)
	out = append(out, magic[:]...)
	out = binary.LittleEndian.AppendUint16(out, Version)
	out = append(out, s.buf...)
	return binary.LittleEndian.AppendUint64(out, xxhash.Sum64(out))
}

// Err returns the first error encountered while reading.
func (s *State) Err() error { return s.err }

// Len returns the payload size.
func (s *State) Len() int { return len(s.buf) }

func (s *State) Write8(v uint8)   { s.buf = append(s.buf, v) }
func (s *State) Write16(v uint16) { s.buf = binary.LittleEndian.AppendUint16(s.buf, v) }
func (s *State) Write32(v uint32) { s.buf = binary.LittleEndian.AppendUint32(s.buf, v) }
func (s *State) Write64(v uint64) { s.buf = binary.LittleEndian.AppendUint64(s.buf, v) }

func (s *State) WriteBool(v bool) {
	if v {
		s.Write8(1)
	} else {
		s.Write8(0)
	}
}

// WriteBytes writes b as is, the reader must know its length.
func (s *State) WriteBytes(b []byte) { s.buf = append(s.buf, b...) }

func (s *State) next(n int) []byte {
	if s.err != nil {
		return nil
	}
	if len(s.buf)-s.off < n {
		s.err = ErrShortRead
		return nil
	}
	b := s.buf[s.off : s.off+n]
	s.off += n
	return b
}

func (s *State) Read8() uint8 {
	if b := s.next(1); b != nil {
		return b[0]
	}
	return 0
}

func (s *State) Read16() uint16 {
	if b := s.next(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (s *State) Read32() uint32 {
	if b := s.next(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (s *State) Read64() uint64 {
	if b := s.next(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (s *State) ReadBool() bool { return s.Read8() != 0 }

// ReadBytes fills dst entirely.
func (s *State) ReadBytes(dst []byte) {
	if b := s.next(len(dst)); b != nil {
		copy(dst, b)
	}
}

// Remaining returns the number of unread payload bytes.
func (s *State) Remaining() int { return len(s.buf) - s.off }
