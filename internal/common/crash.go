package common

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// WriteCrashReport writes a panic report into dir and returns its path.
// Falls back to stderr when the file cannot be written.
func WriteCrashReport(dir string, panicVal any, stack []byte) string {
	var report bytes.Buffer
	fmt.Fprintf(&report, "=== MOVERS CRASH REPORT ===\n")
	fmt.Fprintf(&report, "Time: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&report, "Version: %s\n", GetFullVersion())
	fmt.Fprintf(&report, "GOOS/GOARCH: %s/%s\n\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&report, "=== PANIC ===\n%v\n\n", panicVal)
	fmt.Fprintf(&report, "=== STACK ===\n%s\n", stack)

	if err := os.MkdirAll(dir, 0755); err == nil {
		path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("2006-01-02T15-04-05")))
		if err := os.WriteFile(path, report.Bytes(), 0644); err == nil {
			fmt.Fprintf(os.Stderr, "\n!!! FATAL CRASH - Report saved to: %s !!!\n", path)
			return path
		}
	}

	os.Stderr.Write(report.Bytes())
	return ""
}

// RecoverWithCrashReport is deferred at the top of main.
func RecoverWithCrashReport(dir string) {
	if r := recover(); r != nil {
		buf := make([]byte, 64*1024)
		n := runtime.Stack(buf, false)
		WriteCrashReport(dir, r, buf[:n])
		os.Exit(2)
	}
}
