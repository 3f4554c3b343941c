// Command simdcsv runs the structural scanner over a file and reports
// what it found. File ingestion, flag parsing, and timing live here
// rather than in the core package, which only ever sees an
// already-materialized buffer.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/csvidx/simdcsv"
	"github.com/klauspost/cpuid/v2"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("simdcsv", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "print elapsed time, throughput, and structural-offset count")
	dump := fs.Bool("d", false, "dump every structural offset, one per line")
	iterations := fs.Int("i", 1, "repeat the scan N times, discarding all but the last result")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: simdcsv [-v] [-d] [-i N] <FILE>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	path := fs.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simdcsv: %v\n", err)
		return 1
	}

	if *iterations < 1 {
		*iterations = 1
	}

	var index *simdcsv.StructuralIndex
	var elapsed time.Duration

	for i := 0; i < *iterations; i++ {
		padded, err := simdcsv.NewPaddedBuffer(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "simdcsv: %v\n", err)
			return 1
		}
		start := time.Now()
		idx, err := simdcsv.FindIndexes(padded)
		if err != nil {
			fmt.Fprintf(os.Stderr, "simdcsv: %v\n", err)
			return 1
		}
		elapsed = time.Since(start)
		index = idx
	}

	if *dump {
		for _, offset := range index.Offsets() {
			fmt.Println(offset)
		}
	}

	if *verbose {
		mbPerSec := float64(len(data)) / 1024 / 1024 / elapsed.Seconds()
		fmt.Fprintf(os.Stderr, "cpu:        %s\n", cpuid.CPU.BrandName)
		fmt.Fprintf(os.Stderr, "bytes:      %d\n", len(data))
		fmt.Fprintf(os.Stderr, "offsets:    %d\n", index.Len())
		fmt.Fprintf(os.Stderr, "time:       %v\n", elapsed)
		fmt.Fprintf(os.Stderr, "throughput: %.2f MB/s\n", mbPerSec)
	}

	return 0
}
