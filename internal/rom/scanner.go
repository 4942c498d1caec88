package rom

import (
	"bytes"
	"io"
	"log/slog"
)

// candidate schemas are tried in fixed priority order for each matching
// signature; the first successful decode wins and is never revisited.
type candidate struct {
	name   string
	decode func(io.ReadSeeker, uint64) (Region, error)
}

var (
	romHeaderCandidates = []candidate{
		{"efi image", decodeEFIImage},
		{"legacy image", decodeLegacyImage},
	}
	nvRomCandidates = []candidate{
		{"nbsi image", decodeNBSIImage},
		{"vendor image", decodeVendorImage},
	}
	nvgiCandidates = []candidate{
		{"nvgi region", decodeNVGIRegion},
	}
	rfrdCandidates = []candidate{
		{"rfrd region", decodeRFRDRegion},
	}
)

// Scanner walks a raw firmware dump at the probe stride and yields discovered
// regions in stream order. It consumes the source by monotonically advancing
// its position; a scan is not restartable. Usage follows bufio.Scanner: call
// Scan until it returns false, then check Err.
//
// The classifier is greedy and non-backtracking: once a signature decodes,
// that interpretation is permanent even if another schema would also have
// matched at the same offset.
type Scanner struct {
	src    io.ReadSeeker
	region Region
	err    error
	done   bool
}

// NewScanner returns a Scanner starting at the source's current position.
func NewScanner(src io.ReadSeeker) *Scanner {
	return &Scanner{src: src}
}

// Scan advances to the next discovered region. It returns false at end of
// input or on I/O failure; structural failures of individual candidates are
// swallowed and scanning continues at the next stride.
func (s *Scanner) Scan() bool {
	if s.done || s.err != nil {
		return false
	}
	s.region = nil

	if _, err := alignUp(s.src, ProbeStride); err != nil {
		s.err = err
		return false
	}

	probe := make([]byte, ProbeStride)
	for {
		off, err := s.src.Seek(0, io.SeekCurrent)
		if err != nil {
			s.err = err
			return false
		}
		if _, err := io.ReadFull(s.src, probe); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				s.done = true
				return false
			}
			s.err = err
			return false
		}

		var candidates []candidate
		switch {
		case bytes.Equal(probe[:2], romHeaderSignature[:]):
			candidates = romHeaderCandidates
		case bytes.Equal(probe[:2], nvRomSignature[:]):
			candidates = nvRomCandidates
		case bytes.Equal(probe[:4], nvgiSignature[:]):
			candidates = nvgiCandidates
		case bytes.Equal(probe[:4], rfrdSignature[:]):
			candidates = rfrdCandidates
		}

		for _, c := range candidates {
			slog.Debug("probing region candidate", "offset", off, "schema", c.name)
			region, err := speculate(s.src, uint64(off), c.decode)
			if err == nil {
				s.region = region
				return true
			}
			if !structural(err) {
				s.err = err
				return false
			}
		}

		if _, err := s.src.Seek(off+ProbeStride, io.SeekStart); err != nil {
			s.err = err
			return false
		}
	}
}

// Region returns the region discovered by the last successful Scan.
func (s *Scanner) Region() Region {
	return s.region
}

// Err returns the I/O failure that terminated the scan, if any.
func (s *Scanner) Err() error {
	return s.err
}
