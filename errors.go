package memprobe

import "errors"

// Error kinds returned (wrapped with context) by core operations. Callers
// should use errors.Is against these sentinels rather than matching strings.
var (
	// ErrAttach covers failure to ptrace-attach, wait for the stopped
	// state, or detach from the target.
	ErrAttach = errors.New("attach")

	// ErrMapsRead covers failure to open or parse the target's memory map.
	ErrMapsRead = errors.New("maps read")

	// ErrMemoryRead covers a per-address I/O failure while reading the
	// target's memory file.
	ErrMemoryRead = errors.New("memory read")

	// ErrMemoryWrite covers a per-address I/O failure while writing the
	// target's memory file.
	ErrMemoryWrite = errors.New("memory write")

	// ErrResourceExhaustion covers allocation failure while growing a
	// scan's hit list.
	ErrResourceExhaustion = errors.New("resource exhaustion")

	// ErrInput covers malformed arguments passed to a core operation
	// (e.g. a value whose type doesn't match the scan's type).
	ErrInput = errors.New("invalid input")
)
