//go:build linux

package memprobe

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// withTracee runs fn on a goroutine pinned to a single OS thread for its
// whole lifetime. ptrace is a per-tracer-thread relationship on Linux: the
// thread that issues PTRACE_ATTACH must be the same thread that later
// waits on and detaches from the tracee, or the kernel rejects the calls
// with ESRCH. Go's scheduler otherwise feels free to migrate a goroutine
// across OS threads between syscalls, so every ptrace sequence in this
// package runs inside one of these locked goroutines.
func withTracee(fn func() error) error {
	done := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		done <- fn()
	}()
	return <-done
}

func ptraceAttach(pid int) error {
	if err := unix.PtraceAttach(pid); err != nil {
		return fmt.Errorf("%w: ptrace attach pid %d: %v", ErrAttach, pid, err)
	}
	return nil
}

func ptraceWaitStopped(pid int) error {
	var status unix.WaitStatus
	if _, err := unix.Wait4(pid, &status, 0, nil); err != nil {
		return fmt.Errorf("%w: waitpid pid %d: %v", ErrAttach, pid, err)
	}
	return nil
}

func ptraceDetach(pid int) error {
	if err := unix.PtraceDetach(pid); err != nil {
		return fmt.Errorf("%w: ptrace detach pid %d: %v", ErrAttach, pid, err)
	}
	return nil
}

// processRunning reports whether pid still refers to a live process,
// without disturbing its state: a signal-0 kill() is the standard
// liveness probe.
func processRunning(pid int) bool {
	return unix.Kill(pid, 0) == nil
}
