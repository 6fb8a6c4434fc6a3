package memprobe

import (
	"fmt"
	"io"
)

// MemoryFile is the random-access handle a scan reads and writes through:
// in production it's the target's open /proc/<pid>/mem file; in tests it
// can be any in-memory fake, which is why the scanner and filter never
// take an *os.File directly.
type MemoryFile interface {
	io.ReaderAt
	io.WriterAt
}

// Address is an absolute virtual address in the target process.
type Address uint64

func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}
