// Command memprobe is an interactive memory scanner: point it at a
// running process, narrow a floating-point value down to a handful of
// candidate addresses across successive searches, then overwrite them.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kestrelsoft/memprobe"
)

// pacingDelay separates paired filter calls (and the per-scan steps of a
// multi-scan command) so the target has a chance to react between reads,
// the way the original tool slept a second between each ptrace round-trip.
const pacingDelay = 250 * time.Millisecond

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	logLevel := "info"

	cmd := &cobra.Command{
		Use:   "memprobe <pid> [all|float|f32|f64]",
		Short: "Interactive memory scanner for a running process",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.New()
			if lvl, err := logrus.ParseLevel(logLevel); err == nil {
				log.SetLevel(lvl)
			}

			pid, err := parsePID(args[0])
			if err != nil {
				return err
			}

			mode := "all"
			if len(args) == 2 {
				mode = args[1]
			}
			types, err := parseMode(mode)
			if err != nil {
				return err
			}

			return runSession(cmd.OutOrStdout(), log, pid, types)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "logrus level: debug, info, warn, error")
	return cmd
}

func parsePID(s string) (int, error) {
	pid, err := strconv.Atoi(s)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid %q: must be a positive integer", s)
	}
	return pid, nil
}

func parseMode(mode string) ([]memprobe.ScanType, error) {
	switch mode {
	case "all", "float":
		return []memprobe.ScanType{memprobe.TypeF32, memprobe.TypeF64}, nil
	case "f32":
		return []memprobe.ScanType{memprobe.TypeF32}, nil
	case "f64":
		return []memprobe.ScanType{memprobe.TypeF64}, nil
	default:
		return nil, fmt.Errorf("unrecognized mode %q: expected all, float, f32, or f64", mode)
	}
}

func runSession(out io.Writer, log *logrus.Logger, pid int, types []memprobe.ScanType) error {
	subject, err := memprobe.Attach(pid, log)
	if err != nil {
		return fmt.Errorf("failed to attach to pid %d: %w", pid, err)
	}
	defer subject.Free()

	scans := make([]activeScan, len(types))
	for i, t := range types {
		label := "f32"
		if t == memprobe.TypeF64 {
			label = "f64"
		}
		scans[i] = activeScan{label: label, scan: subject.BeginScan(t)}
	}
	fmt.Fprintln(out, "scans created, target running")

	input := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, "> ")
		if !input.Scan() {
			return nil
		}
		line := input.Text()

		cmd, quit, err := dispatch(line, scans)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		if quit {
			return nil
		}
		if cmd {
			printHits(out, scans)
		}
	}
}

// dispatch parses and executes one REPL command. It returns (ran, quit, err):
// ran is true when a scan operation actually executed (so the caller
// should print the hit listing), quit is true on "q"/"quit".
func dispatch(line string, scans []activeScan) (ran bool, quit bool, err error) {
	args := splitFields(line)
	if args.Len() == 0 {
		return false, false, nil
	}

	cmd := args.At(0)
	switch cmd {
	case "q", "quit":
		return false, true, nil

	case "=", "exact":
		if args.Len() != 2 {
			return false, false, fmt.Errorf("usage: exact <value>")
		}
		v, err := strconv.ParseFloat(args.At(1), 64)
		if err != nil {
			return false, false, fmt.Errorf("invalid value %q", args.At(1))
		}
		return true, false, updateEach(scans, memprobe.OpEqual, v)

	case "~", "about":
		if args.Len() != 2 {
			return false, false, fmt.Errorf("usage: about <value>")
		}
		v, err := strconv.ParseFloat(args.At(1), 64)
		if err != nil {
			return false, false, fmt.Errorf("invalid value %q", args.At(1))
		}
		return true, false, updateEach(scans, memprobe.OpApprox, v)

	case "b", "bound", "bounded":
		if args.Len() != 3 {
			return false, false, fmt.Errorf("usage: bounded <min> <max>")
		}
		min, err := strconv.ParseFloat(args.At(1), 64)
		if err != nil {
			return false, false, fmt.Errorf("invalid min %q", args.At(1))
		}
		max, err := strconv.ParseFloat(args.At(2), 64)
		if err != nil {
			return false, false, fmt.Errorf("invalid max %q", args.At(2))
		}
		return true, false, updateBounded(scans, min, max)

	case "s", "set":
		if args.Len() != 2 {
			return false, false, fmt.Errorf("usage: set <value>")
		}
		v, err := strconv.ParseFloat(args.At(1), 64)
		if err != nil {
			return false, false, fmt.Errorf("invalid value %q", args.At(1))
		}
		return true, false, setEach(scans, v)

	case "r", "refresh":
		return true, false, refreshEach(scans)

	case "e", "eliminate":
		if args.Len() != 2 {
			return false, false, fmt.Errorf("usage: eliminate <index>")
		}
		idx, err := strconv.Atoi(args.At(1))
		if err != nil {
			return false, false, fmt.Errorf("invalid index %q", args.At(1))
		}
		eliminateCombined(scans, idx)
		return true, false, nil

	default:
		// Bare numeric input is equivalent to "about".
		if v, err := strconv.ParseFloat(cmd, 64); err == nil && args.Len() == 1 {
			return true, false, updateEach(scans, memprobe.OpApprox, v)
		}
		return false, false, fmt.Errorf("unrecognized command %q", cmd)
	}
}

func valueFor(t memprobe.ScanType, v float64) memprobe.Value {
	if t == memprobe.TypeF32 {
		return memprobe.NewF32(float32(v))
	}
	return memprobe.NewF64(v)
}

func updateEach(scans []activeScan, op memprobe.Op, v float64) error {
	for i, as := range scans {
		if err := as.scan.Update(op, valueFor(as.scan.Type(), v)); err != nil {
			return fmt.Errorf("%s: %w", as.label, err)
		}
		if i < len(scans)-1 {
			time.Sleep(pacingDelay)
		}
	}
	return nil
}

func updateBounded(scans []activeScan, min, max float64) error {
	for _, as := range scans {
		if err := as.scan.Update(memprobe.OpGreaterEq, valueFor(as.scan.Type(), min)); err != nil {
			return fmt.Errorf("%s: %w", as.label, err)
		}
		time.Sleep(pacingDelay)
		if err := as.scan.Update(memprobe.OpLessEq, valueFor(as.scan.Type(), max)); err != nil {
			return fmt.Errorf("%s: %w", as.label, err)
		}
		time.Sleep(pacingDelay)
	}
	return nil
}

func setEach(scans []activeScan, v float64) error {
	for i, as := range scans {
		if err := as.scan.SetValue(valueFor(as.scan.Type(), v)); err != nil {
			return fmt.Errorf("%s: %w", as.label, err)
		}
		if i < len(scans)-1 {
			time.Sleep(pacingDelay)
		}
	}
	return nil
}

func refreshEach(scans []activeScan) error {
	for i, as := range scans {
		if err := as.scan.Refresh(); err != nil {
			return fmt.Errorf("%s: %w", as.label, err)
		}
		if i < len(scans)-1 {
			time.Sleep(pacingDelay)
		}
	}
	return nil
}

// eliminateCombined drops the hit at the given 1-based index across the
// listing formed by concatenating every active scan's hits in order.
func eliminateCombined(scans []activeScan, index int) {
	if index < 1 {
		return
	}
	offset := index - 1
	for _, as := range scans {
		if offset < as.scan.HitCount() {
			as.scan.Eliminate(offset)
			return
		}
		offset -= as.scan.HitCount()
	}
}
