package memprobe

// filterHits re-reads the current byte at each of scan's hits and keeps
// only those that still satisfy op against needle (a nil needle paired
// with OpUnchanged is the refresh path: everything passes). Survivors are
// compacted in place, preserving ascending order; for the first 32
// survivors the interpreted value is written into the scan's preview.
// A hit whose read fails or comes back short is treated as no longer
// valid and dropped, without aborting the rest of the pass.
func filterHits(scan *Scan, mem MemoryFile, needle *Value, op Op) error {
	width := scan.typ.Size()
	var needleBytes []byte
	if needle != nil {
		needleBytes = needle.Encode()
	}

	buf := make([]byte, width)
	write := 0
	scan.valueCount = 0

	for _, addr := range scan.hits {
		n, err := mem.ReadAt(buf, int64(addr))
		if err != nil || n < width {
			continue
		}

		ok, cerr := Compare(scan.typ, op, buf, needleBytes)
		if cerr != nil || !ok {
			continue
		}

		scan.hits[write] = addr
		write++

		if scan.valueCount < previewSize {
			v, err := DecodeValue(scan.typ, buf)
			if err == nil {
				scan.values[scan.valueCount] = v
				scan.valueCount++
			}
		}
	}

	scan.hits = scan.hits[:write]
	return nil
}
