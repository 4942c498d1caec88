package bundle

import (
	"bytes"
	"errors"
	"io"
	"log/slog"

	"nvrom/internal/bit"
	"nvrom/internal/dcb"
)

// structureWindow is how many bytes of lookahead the structure scan matches
// signatures in.
const structureWindow = 16

// StructureScanner walks a logical VBIOS stream byte by byte looking for BIT
// and DCB structures. A successful decode resumes the walk right after the
// decoded structure.
type StructureScanner struct {
	src io.ReadSeeker
	bit *bit.Structure
	dcb *dcb.DeviceControlBlock
	err error
}

func NewStructureScanner(src io.ReadSeeker) *StructureScanner {
	return &StructureScanner{src: src}
}

// Scan advances to the next decodable structure. It returns false at the end
// of the stream or on a source failure.
func (s *StructureScanner) Scan() bool {
	s.bit, s.dcb = nil, nil
	if s.err != nil {
		return false
	}

	var window [structureWindow]byte
	for {
		off, err := s.src.Seek(0, io.SeekCurrent)
		if err != nil {
			s.err = err
			return false
		}
		if _, err := io.ReadFull(s.src, window[:]); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				s.err = err
			}
			return false
		}

		if bytes.Equal(window[2:6], bit.Signature[:]) {
			if st, err := bit.Decode(s.src, uint64(off)); err == nil {
				s.bit = st
				return true
			} else {
				slog.Debug("BIT candidate did not decode", "offset", off, "err", err)
			}
		}
		if bytes.Equal(window[6:10], dcb.Signature[:]) {
			if block, err := dcb.Decode(s.src, uint64(off)); err == nil {
				s.dcb = block
				return true
			} else {
				slog.Debug("DCB candidate did not decode", "offset", off, "err", err)
			}
		}

		if _, err := s.src.Seek(off+1, io.SeekStart); err != nil {
			s.err = err
			return false
		}
	}
}

// BIT returns the structure found by the last Scan, or nil if it was not a
// BIT table.
func (s *StructureScanner) BIT() *bit.Structure { return s.bit }

// DCB returns the structure found by the last Scan, or nil if it was not a
// device control block.
func (s *StructureScanner) DCB() *dcb.DeviceControlBlock { return s.dcb }

func (s *StructureScanner) Err() error { return s.err }
