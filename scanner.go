package memprobe

import (
	"bytes"
	"fmt"
	"io"
)

// scanBufferSize is the fixed window the region scanner streams a
// region's bytes through.
const scanBufferSize = 64 * 1024

// scanRegion streams region's bytes through a fixed buffer and records
// every offset satisfying op against needle in scan's hit list.
//
// EQUAL is a byte-exact search (matches at every byte offset, no
// alignment assumption): buffer refills overlap by width-1 bytes so a
// needle straddling two refills is still found, and because the overlap
// is shorter than the needle, no match can be discovered twice.
//
// Ordered operators (GREATER_EQ, LESS_EQ, APPROX) stride by the type's
// width and therefore only produce hits aligned to the region start; each
// read is truncated to a multiple of the width so a typed element never
// straddles a refill.
func scanRegion(scan *Scan, mem MemoryFile, region Region, needle Value, op Op) error {
	width := scan.typ.Size()
	needleBytes := needle.Encode()

	if op == OpEqual {
		return scanRegionEqual(scan, mem, region, needleBytes, width)
	}
	return scanRegionOrdered(scan, mem, region, needleBytes, op, width)
}

func scanRegionEqual(scan *Scan, mem MemoryFile, region Region, needle []byte, width int) error {
	buf := make([]byte, scanBufferSize)
	var overlap []byte
	cursor := region.Start

	for cursor < region.End {
		want := scanBufferSize
		if remain := region.End - cursor; remain < uint64(want) {
			want = int(remain)
		}

		n, rerr := mem.ReadAt(buf[:want], int64(cursor))
		if n > 0 {
			windowStart := cursor - uint64(len(overlap))
			window := append(append([]byte(nil), overlap...), buf[:n]...)
			recordByteMatches(scan, window, needle, windowStart)

			if width > 1 {
				tail := width - 1
				if len(window) >= tail {
					overlap = append(overlap[:0], window[len(window)-tail:]...)
				} else {
					overlap = append(overlap[:0], window...)
				}
			}
		}
		cursor += uint64(n)

		if rerr != nil {
			if rerr == io.EOF {
				return nil
			}
			return fmt.Errorf("%w: region 0x%x: %v", ErrMemoryRead, region.Start, rerr)
		}
		if n < want {
			return nil
		}
	}
	return nil
}

func recordByteMatches(scan *Scan, window, needle []byte, windowStart uint64) {
	if len(needle) == 0 {
		return
	}
	idx := 0
	for {
		rel := bytes.Index(window[idx:], needle)
		if rel < 0 {
			return
		}
		pos := idx + rel
		appendHit(scan, windowStart+uint64(pos))
		idx = pos + 1
		if idx >= len(window) {
			return
		}
	}
}

func scanRegionOrdered(scan *Scan, mem MemoryFile, region Region, needle []byte, op Op, width int) error {
	chunkSize := scanBufferSize - (scanBufferSize % width)
	if chunkSize == 0 {
		chunkSize = width
	}
	buf := make([]byte, chunkSize)
	cursor := region.Start

	for cursor < region.End {
		want := chunkSize
		if remain := region.End - cursor; remain < uint64(want) {
			want = int(remain) - (int(remain) % width)
			if want == 0 {
				break
			}
		}

		n, rerr := mem.ReadAt(buf[:want], int64(cursor))
		aligned := n - (n % width)
		for i := 0; i+width <= aligned; i += width {
			ok, err := Compare(scan.typ, op, buf[i:i+width], needle)
			if err != nil {
				return fmt.Errorf("%w: region 0x%x: %v", ErrMemoryRead, region.Start, err)
			}
			if ok {
				appendHit(scan, cursor+uint64(i))
			}
		}
		cursor += uint64(n)

		if rerr != nil {
			if rerr == io.EOF {
				return nil
			}
			return fmt.Errorf("%w: region 0x%x: %v", ErrMemoryRead, region.Start, rerr)
		}
		if n < want {
			return nil
		}
	}
	return nil
}

// appendHit grows the hit list, doubling capacity when full, exactly as
// the original scanner's realloc-on-full growth did.
func appendHit(scan *Scan, addr uint64) {
	if cap(scan.hits) == len(scan.hits) {
		newCap := cap(scan.hits) * 2
		if newCap == 0 {
			newCap = initialHitCapacity
		}
		grown := make([]uint64, len(scan.hits), newCap)
		copy(grown, scan.hits)
		scan.hits = grown
	}
	scan.hits = append(scan.hits, addr)
}
