// Package rom discovers the self-describing sub-images and marker blocks that
// make up a raw VBIOS dump. A scanner walks the dump at a fixed 512-byte
// stride, classifies candidates by signature, and speculatively decodes them,
// rewinding the source on failure so a failed attempt leaves no trace.
package rom

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"nvrom/internal/regionio"
)

// ProbeStride is the alignment at which new candidate regions are probed.
const ProbeStride = 512

var (
	// ErrBadSignature marks a candidate whose signature bytes do not match
	// the schema under test.
	ErrBadSignature = errors.New("rom: signature mismatch")

	// ErrBadFormat marks a candidate whose structure is internally
	// inconsistent (bad enum value, zero or impossible length).
	ErrBadFormat = errors.New("rom: invalid structure")
)

// Region is one discovered sub-image or marker block. The variant set is
// closed: legacy PCI image, EFI PCI image, vendor continuation image, NBSI
// auxiliary directory image, NVGI leading marker and RFRD trailer marker.
type Region interface {
	regionio.Region
	isRegion()
}

// structural reports whether err is a recoverable candidate-decode failure,
// as opposed to a true I/O failure of the underlying source. Short reads are
// structural: the candidate claimed more bytes than the dump has.
func structural(err error) bool {
	return errors.Is(err, ErrBadSignature) ||
		errors.Is(err, ErrBadFormat) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

// badFormat builds an ErrBadFormat with context.
func badFormat(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadFormat, fmt.Sprintf(format, args...))
}

// alignUp advances the source position to the next multiple of alignment and
// returns the aligned position.
func alignUp(src io.Seeker, alignment uint64) (uint64, error) {
	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	aligned := (uint64(pos) + alignment - 1) &^ (alignment - 1)
	if aligned != uint64(pos) {
		if _, err := src.Seek(int64(aligned), io.SeekStart); err != nil {
			return 0, err
		}
	}
	return aligned, nil
}

// speculate seeks to off and runs decode. If decode fails the source is
// rewound to off on every path, so no side effect of a failed attempt
// escapes; the position after a successful decode is wherever the schema's
// own length fields left it.
func speculate(src io.ReadSeeker, off uint64, decode func(io.ReadSeeker, uint64) (Region, error)) (Region, error) {
	if _, err := src.Seek(int64(off), io.SeekStart); err != nil {
		return nil, err
	}
	region, err := decode(src, off)
	if err != nil {
		slog.Debug("candidate decode failed", "offset", off, "err", err)
		if _, serr := src.Seek(int64(off), io.SeekStart); serr != nil {
			return nil, serr
		}
		return nil, err
	}
	return region, nil
}
