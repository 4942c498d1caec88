// Package regionio presents an ordered set of discontiguous byte ranges of a
// firmware image as one continuous seekable stream. Logical position 0 maps to
// the first byte of the first region and logical positions keep counting
// across region boundaries, so pointer fields inside a sub-image can be
// followed without caring how many physical fragments were concatenated.
package regionio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
)

// Region is a contiguous byte range inside a raw firmware image. Regions are
// created by the scanner and referenced, never owned, by a Reader.
type Region interface {
	OffsetInFirmware() uint64
	RegionSize() uint64
}

// RegionEnd returns the raw offset one past the region's last byte.
func RegionEnd(r Region) uint64 {
	return r.OffsetInFirmware() + r.RegionSize()
}

var (
	// ErrReadBeforeRegions is returned when the raw position sits before the
	// first mapped region.
	ErrReadBeforeRegions = errors.New("regionio: read before first region")

	// ErrReadInGap is returned when the raw position sits strictly between two
	// mapped regions.
	ErrReadInGap = errors.New("regionio: read between mapped regions")

	// ErrInvalidSeek is returned for seek targets that are negative or
	// overflow the logical coordinate space.
	ErrInvalidSeek = errors.New("regionio: seek to negative or overflowing position")

	// ErrSeekUnmapped is returned for relative seeks while the raw position is
	// not resolvable to a logical position.
	ErrSeekUnmapped = errors.New("regionio: relative seek from unmapped position")
)

// Reader implements io.ReadSeeker over the concatenation of the region byte
// ranges, in ascending raw-offset order. It drives the underlying source's
// position directly and must not be shared between concurrent callers.
// Overlapping regions are not validated; behavior over overlaps is undefined.
type Reader struct {
	src     io.ReadSeeker
	regions []Region
}

// NewReader builds a Reader over src and the given regions. The region slice
// is copied and sorted by raw offset; callers may pass it unsorted.
func NewReader(src io.ReadSeeker, regions []Region) *Reader {
	sorted := make([]Region, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OffsetInFirmware() < sorted[j].OffsetInFirmware()
	})
	return &Reader{src: src, regions: sorted}
}

// TotalSize returns the logical stream size: the sum of all region sizes.
func (r *Reader) TotalSize() uint64 {
	var total uint64
	for _, reg := range r.regions {
		total += reg.RegionSize()
	}
	return total
}

type positionKind int

const (
	beforeFirstRegion positionKind = iota
	inRegion
	betweenRegions
	afterLastRegion
)

type positionInfo struct {
	kind        positionKind
	regionIndex int
	offset      uint64 // local offset inside the region
	logical     uint64 // translated stream position
}

// classify maps a raw source offset to a logical position. Raw offsets past
// the end of the last region stay addressable: the remainder of the raw source
// acts as an unmapped extension usable only for forward positioning.
func (r *Reader) classify(raw uint64) positionInfo {
	var translated, end uint64
	for i, reg := range r.regions {
		start := reg.OffsetInFirmware()
		size := reg.RegionSize()
		end = start + size
		switch {
		case end <= raw:
			translated += size
		case start <= raw:
			d := raw - start
			return positionInfo{kind: inRegion, regionIndex: i, offset: d, logical: translated + d}
		case translated == 0:
			return positionInfo{kind: beforeFirstRegion}
		default:
			return positionInfo{kind: betweenRegions}
		}
	}
	return positionInfo{kind: afterLastRegion, logical: raw - end + translated}
}

// Read reads from the region the raw position currently sits in, stopping at
// the region boundary. When a read exactly exhausts a region the source is
// repositioned to the start of the next one so the following read continues
// seamlessly. At or past the mapped end it reports io.EOF; raw positions in a
// gap or before the first region are input errors.
func (r *Reader) Read(p []byte) (int, error) {
	raw, err := r.src.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	info := r.classify(uint64(raw))
	switch info.kind {
	case inRegion:
		reg := r.regions[info.regionIndex]
		left := reg.RegionSize() - info.offset
		n := len(p)
		if uint64(n) > left {
			n = int(left)
		}
		read, rerr := r.src.Read(p[:n])
		if rerr == io.EOF {
			if read == 0 {
				// The region claims bytes the raw source does not have.
				return 0, io.ErrUnexpectedEOF
			}
			rerr = nil
		}
		if rerr != nil {
			return read, rerr
		}
		if uint64(read) == left && info.regionIndex+1 < len(r.regions) {
			next := r.regions[info.regionIndex+1]
			if _, serr := r.src.Seek(int64(next.OffsetInFirmware()), io.SeekStart); serr != nil {
				return read, serr
			}
		}
		return read, nil
	case afterLastRegion:
		return 0, io.EOF
	case beforeFirstRegion:
		return 0, ErrReadBeforeRegions
	default:
		return 0, ErrReadInGap
	}
}

// Seek translates a logical position to a raw source position. Targets past
// the mapped end land in the unmapped extension after the last region.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		if offset < 0 {
			return 0, ErrInvalidSeek
		}
		remaining := uint64(offset)
		for _, reg := range r.regions {
			size := reg.RegionSize()
			if size > remaining {
				raw := reg.OffsetInFirmware() + remaining
				slog.Debug("translated seek", "logical", offset, "raw", raw)
				if _, err := r.src.Seek(int64(raw), io.SeekStart); err != nil {
					return 0, err
				}
				return offset, nil
			}
			remaining -= size
		}
		var lastEnd uint64
		if n := len(r.regions); n > 0 {
			lastEnd = RegionEnd(r.regions[n-1])
		}
		if _, err := r.src.Seek(int64(lastEnd+remaining), io.SeekStart); err != nil {
			return 0, err
		}
		return offset, nil
	case io.SeekCurrent:
		raw, err := r.src.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}
		info := r.classify(uint64(raw))
		if info.kind != inRegion && info.kind != afterLastRegion {
			return 0, ErrSeekUnmapped
		}
		target := int64(info.logical) + offset
		if target < 0 || (offset > 0 && target < int64(info.logical)) {
			return 0, ErrInvalidSeek
		}
		return r.Seek(target, io.SeekStart)
	case io.SeekEnd:
		target := int64(r.TotalSize()) + offset
		if target < 0 {
			return 0, ErrInvalidSeek
		}
		return r.Seek(target, io.SeekStart)
	default:
		return 0, fmt.Errorf("regionio: invalid seek whence %d", whence)
	}
}
