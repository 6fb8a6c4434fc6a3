package memprobe

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Subject represents an attached target process: its pid plus the scans
// it owns. While any operation on the subject is running, the target is
// stopped; between operations it runs freely.
type Subject struct {
	pid   int
	scans []*Scan
	log   logrus.FieldLogger
}

// Attach probes the target with an attach/wait/detach round-trip (the
// probe itself is the liveness and privilege check) and, on success,
// returns a Subject left with the target running. It fails with
// ErrAttach when the debugger primitive refuses (missing privilege,
// nonexistent or zombie pid) or the subsequent detach fails.
func Attach(pid int, log logrus.FieldLogger) (*Subject, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	fields := log.WithField("pid", pid)

	err := withTracee(func() error {
		if err := ptraceAttach(pid); err != nil {
			return err
		}
		if err := ptraceWaitStopped(pid); err != nil {
			if derr := ptraceDetach(pid); derr != nil {
				fields.WithError(derr).Error("detach after failed wait")
			}
			return err
		}
		return ptraceDetach(pid)
	})
	if err != nil {
		return nil, err
	}

	fields.Debug("attach probe succeeded")
	return &Subject{pid: pid, log: fields}, nil
}

// PID returns the target process identifier.
func (s *Subject) PID() int { return s.pid }

// BeginScan allocates an uninitialised scan of the given type, inserts it
// at the head of the subject's scan collection, and returns it. It never
// fails on resource exhaustion alone; that surfaces at Update time.
func (s *Subject) BeginScan(t ScanType) *Scan {
	sc := &Scan{subject: s, typ: t}
	s.scans = append([]*Scan{sc}, s.scans...)
	return sc
}

// Scans returns the subject's currently owned scans, most recently
// created first.
func (s *Subject) Scans() []*Scan {
	out := make([]*Scan, len(s.scans))
	copy(out, s.scans)
	return out
}

// Free destroys every owned scan and releases the subject. It is
// idempotent and safe to call on a nil Subject.
func (s *Subject) Free() {
	if s == nil {
		return
	}
	for len(s.scans) > 0 {
		s.scans[0].Free()
	}
}

func (s *Subject) removeScan(target *Scan) {
	for i, sc := range s.scans {
		if sc == target {
			s.scans = append(s.scans[:i:i], s.scans[i+1:]...)
			return
		}
	}
}

// withMemory is the scoped attachment: attach, wait for the stopped
// state, open the target's memory file, invoke fn, then unconditionally
// close the memory file and detach — on early return, panic, or normal
// completion. The target must never be left stopped; that invariant is
// the one thing every exit path below preserves.
func (s *Subject) withMemory(fn func(mem MemoryFile) error) error {
	return withTracee(func() error {
		if err := ptraceAttach(s.pid); err != nil {
			return err
		}
		defer func() {
			if err := ptraceDetach(s.pid); err != nil {
				s.log.WithError(err).Error("detach failed, target may still be stopped")
			}
		}()

		if err := ptraceWaitStopped(s.pid); err != nil {
			return err
		}

		memPath := fmt.Sprintf("/proc/%d/mem", s.pid)
		mem, err := os.OpenFile(memPath, os.O_RDWR, 0)
		if err != nil {
			return fmt.Errorf("%w: open %s: %v", ErrAttach, memPath, err)
		}
		defer mem.Close()

		return fn(mem)
	})
}
