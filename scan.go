package memprobe

import "fmt"

// previewSize is how many of a scan's current hits carry a live value
// preview, consulted by the REPL for display.
const previewSize = 32

// initialHitCapacity is the starting capacity of a scan's hit list on its
// first (wide-sweep) update.
const initialHitCapacity = 65536

// Scan is the refinement state of one search: the type being searched
// for, the ascending, duplicate-free list of candidate addresses, and a
// preview of the current value at up to the first 32 hits. A scan starts
// uninitialised (no hit list; the next Update performs a wide sweep over
// every readable+writable region) and becomes refined after that sweep
// (subsequent updates filter the existing hits in place).
type Scan struct {
	subject     *Subject
	typ         ScanType
	hits        []uint64
	values      [previewSize]Value
	valueCount  int
	initialized bool
}

// Type returns the scan's scalar type.
func (s *Scan) Type() ScanType { return s.typ }

// HitCount returns the number of surviving candidate addresses.
func (s *Scan) HitCount() int { return len(s.hits) }

// Hit returns the absolute address of the i'th surviving hit.
func (s *Scan) Hit(i int) Address { return Address(s.hits[i]) }

// Value returns the preview value recorded for the i'th hit, valid only
// for i < min(HitCount(), 32).
func (s *Scan) Value(i int) Value { return s.values[i] }

// PreviewCount returns how many entries of Value are populated.
func (s *Scan) PreviewCount() int { return s.valueCount }

// Initialized reports whether the scan has performed its wide sweep.
func (s *Scan) Initialized() bool { return s.initialized }

// Update runs the next refinement step: a wide sweep over every
// readable+writable region if the scan is uninitialised, or an in-place
// filter of the existing hit list otherwise. The target is stopped for
// the duration of the call and always resumed before it returns.
func (s *Scan) Update(op Op, v Value) error {
	if v.Type() != s.typ {
		return fmt.Errorf("%w: value type %s doesn't match scan type %s", ErrInput, v.Type(), s.typ)
	}
	return s.subject.withMemory(func(mem MemoryFile) error {
		if !s.initialized {
			return s.wideSweep(mem, op, v)
		}
		return filterHits(s, mem, &v, op)
	})
}

// Refresh is Update(UNCHANGED, _): it drops hits whose bytes became
// unreadable and refreshes the value preview. It is a no-op error on an
// uninitialised scan; the REPL never exercises a refresh before a first
// search.
func (s *Scan) Refresh() error {
	if !s.initialized {
		return fmt.Errorf("%w: refresh before first search", ErrInput)
	}
	return s.subject.withMemory(func(mem MemoryFile) error {
		return filterHits(s, mem, nil, OpUnchanged)
	})
}

func (s *Scan) wideSweep(mem MemoryFile, op Op, needle Value) error {
	regions, err := ReadMaps(s.subject.pid)
	if err != nil {
		return err
	}

	s.hits = make([]uint64, 0, initialHitCapacity)
	for _, region := range regions {
		if !region.Read || !region.Write {
			continue
		}
		if err := scanRegion(s, mem, region, needle, op); err != nil {
			s.subject.log.WithError(err).WithField("region_start", Address(region.Start)).
				Warn("region scan aborted, continuing sweep")
		}
	}

	// Fill the value preview for the first hits, as a filter pass does.
	s.valueCount = 0
	buf := make([]byte, s.typ.Size())
	for _, addr := range s.hits {
		if s.valueCount == previewSize {
			break
		}
		if n, err := mem.ReadAt(buf, int64(addr)); err != nil || n < len(buf) {
			break
		}
		v, err := DecodeValue(s.typ, buf)
		if err != nil {
			break
		}
		s.values[s.valueCount] = v
		s.valueCount++
	}
	s.initialized = true
	return nil
}

// Eliminate removes the hit at index i, preserving the order of the
// others. An out-of-range index is silently ignored.
func (s *Scan) Eliminate(i int) {
	if i < 0 || i >= len(s.hits) {
		return
	}
	copy(s.hits[i:], s.hits[i+1:])
	s.hits = s.hits[:len(s.hits)-1]
}

// SetValue writes v to every current hit under a scoped attachment. A
// failure to write an individual hit is logged and does not abort the
// sweep; the hit set itself is unchanged.
func (s *Scan) SetValue(v Value) error {
	if v.Type() != s.typ {
		return fmt.Errorf("%w: value type %s doesn't match scan type %s", ErrInput, v.Type(), s.typ)
	}
	return s.subject.withMemory(func(mem MemoryFile) error {
		data := v.Encode()
		for _, addr := range s.hits {
			if _, err := mem.WriteAt(data, int64(addr)); err != nil {
				s.subject.log.WithError(err).WithField("address", Address(addr)).
					Warn("failed to write hit, skipping")
			}
		}
		return nil
	})
}

// Fork produces an independent scan sharing this scan's type but with a
// deep copy of its current hit list, so the fork can be refined further
// without disturbing the parent.
func (s *Scan) Fork() *Scan {
	cp := &Scan{
		subject:     s.subject,
		typ:         s.typ,
		initialized: s.initialized,
		values:      s.values,
		valueCount:  s.valueCount,
	}
	cp.hits = append([]uint64(nil), s.hits...)
	s.subject.scans = append([]*Scan{cp}, s.subject.scans...)
	return cp
}

// Free unlinks the scan from its owning subject and releases its hit
// list.
func (s *Scan) Free() {
	if s == nil {
		return
	}
	s.subject.removeScan(s)
	s.hits = nil
}
