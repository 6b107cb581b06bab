package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Execute runs a planned engine command (args[0] is the binary) through r and
// captures stderr for failure reporting. When debugLog is non-empty, the full
// command line and the engine's combined output are persisted there as an
// observability artifact; a failure to write the artifact never fails the
// conversion itself.
func Execute(ctx context.Context, r Runner, args []string, debugLog string) Result {
	res := r.Run(ctx, args[0], args[1:]...)

	if debugLog != "" {
		writeDebugLog(debugLog, args, res)
	}
	return res
}

// writeDebugLog persists one invocation's command and output.
func writeDebugLog(path string, args []string, res Result) {
	var b strings.Builder
	b.WriteString("command: " + strings.Join(args, " ") + "\n")
	b.WriteString(fmt.Sprintf("exit: %d\n", res.ExitCode()))
	if res.Stdout != "" {
		b.WriteString("--- stdout ---\n" + res.Stdout)
		if !strings.HasSuffix(res.Stdout, "\n") {
			b.WriteString("\n")
		}
	}
	if res.Stderr != "" {
		b.WriteString("--- stderr ---\n" + res.Stderr)
		if !strings.HasSuffix(res.Stderr, "\n") {
			b.WriteString("\n")
		}
	}
	_ = os.WriteFile(path, []byte(b.String()), 0o644)
}

// StderrTail returns the last n lines of captured stderr, joined with "; ",
// for compact failure reasons in the batch summary.
func StderrTail(stderr string, n int) string {
	s := strings.TrimSpace(stderr)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "; ")
}
