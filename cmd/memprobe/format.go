package main

import (
	"fmt"
	"io"

	"github.com/kestrelsoft/memprobe"
)

// activeScan pairs a scan with the label used to print its hits.
type activeScan struct {
	label string
	scan  *memprobe.Scan
}

// printHits prints the combined hit count across every active scan, then
// up to the first 32 hits from each with its interpreted value and
// hexadecimal address.
func printHits(w io.Writer, scans []activeScan) {
	total := 0
	for _, as := range scans {
		total += as.scan.HitCount()
	}
	fmt.Fprintf(w, "%d hit(s) total\n", total)

	for _, as := range scans {
		count := as.scan.HitCount()
		if count == 0 {
			continue
		}
		shown := count
		if shown > 32 {
			shown = 32
		}
		fmt.Fprintf(w, "[%s] %d hit(s):\n", as.label, count)
		for i := 0; i < shown; i++ {
			fmt.Fprintf(w, "  %3d. %-12s @ %s\n", i+1, as.scan.Value(i).String(), as.scan.Hit(i).String())
		}
		if count > shown {
			fmt.Fprintf(w, "  ... (%d more not shown)\n", count-shown)
		}
	}
}
