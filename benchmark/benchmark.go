// benchmark.go
// Measures execution time and memory usage for any wrapped tool run

package benchmark

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"
)

// Run wraps f and reports its runtime and memory usage to w, along with
// host and OS information for repeatability.
func Run(label string, w io.Writer, f func()) {
	fmt.Fprintf(w, "[Benchmark] Running: %s\n", label)

	fmt.Fprintln(w, "[Benchmark] Timestamp:", time.Now().Format(time.RFC1123))
	if host, err := os.Hostname(); err == nil {
		fmt.Fprintln(w, "[Benchmark] Hostname:", host)
	}
	fmt.Fprintln(w, "[Benchmark] Go Version:", runtime.Version())
	fmt.Fprintf(w, "[Benchmark] OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	runtime.GC()
	var memStart, memEnd runtime.MemStats
	runtime.ReadMemStats(&memStart)
	start := time.Now()
	startGoroutines := runtime.NumGoroutine()

	f()

	elapsed := time.Since(start)
	runtime.ReadMemStats(&memEnd)
	endGoroutines := runtime.NumGoroutine()

	fmt.Fprintf(w, "[Benchmark] Time Elapsed: %v\n", elapsed)
	fmt.Fprintf(w, "[Benchmark] Total Allocated: %.2f MB\n", mb(memEnd.TotalAlloc-memStart.TotalAlloc))
	fmt.Fprintf(w, "[Benchmark] Heap In Use: %.2f MB\n", mb(memEnd.HeapAlloc))
	fmt.Fprintf(w, "[Benchmark] GC Cycles: %d\n", memEnd.NumGC-memStart.NumGC)
	fmt.Fprintf(w, "[Benchmark] Total System Memory: %.2f MB\n", mb(memEnd.Sys))
	fmt.Fprintf(w, "[Benchmark] CPU Cores: %d (GOMAXPROCS %d)\n", runtime.NumCPU(), runtime.GOMAXPROCS(0))
	fmt.Fprintf(w, "[Benchmark] Goroutines: %d → %d\n", startGoroutines, endGoroutines)
	fmt.Fprintln(w, "[Benchmark] ----------------------------------------")
}

func mb(b uint64) float64 { return float64(b) / 1024.0 / 1024.0 }
