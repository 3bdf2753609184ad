// Package media wraps the two external tools the pipeline depends on: the
// yt-dlp download tool and the ffmpeg trim tool. Both are driven through
// their command-line contracts and report structured results.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"
)

const maxStderrBytes = 8 * 1024 // 8 KB tail of stderr kept for diagnostics

// Mode selects the kind of clip being produced.
type Mode string

const (
	ModeAudio Mode = "audio"
	ModeVideo Mode = "video"
)

// OutputExt returns the container extension clips of this mode are written to.
func (m Mode) OutputExt() string {
	if m == ModeAudio {
		return ".mp3"
	}
	return ".mp4"
}

// Tool identifies which external collaborator produced an error.
type Tool string

const (
	ToolDownloader Tool = "downloader"
	ToolTrimmer    Tool = "trimmer"
)

// ToolError is a failed external tool invocation: non-zero exit, or an exit 0
// that left no usable output behind.
type ToolError struct {
	Tool       Tool
	ExitCode   int
	StderrTail string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s exited %d: %s", e.Tool, e.ExitCode, e.StderrTail)
}

// RunResult is the structured outcome of one tool invocation.
type RunResult struct {
	ExitCode   int
	StderrTail string // last N bytes of stderr
	Duration   time.Duration
}

// IsSuccess returns true when the subprocess exited cleanly.
func (r RunResult) IsSuccess() bool { return r.ExitCode == 0 }

// CommandRunner executes an external command. The production implementation
// uses os/exec; tests inject a fake.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) RunResult
}

// ExecRunner is the production CommandRunner.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) RunResult {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)

	// Capture stderr with bounded buffer
	var stderrBuf bytes.Buffer
	cmd.Stderr = &limitedWriter{w: &stderrBuf, limit: maxStderrBytes}
	cmd.Stdout = io.Discard

	err := cmd.Run()
	elapsed := time.Since(start)

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	return RunResult{
		ExitCode:   exitCode,
		StderrTail: stderrBuf.String(),
		Duration:   elapsed,
	}
}

// resolveBinary finds the tool on PATH, or verifies a configured path.
func resolveBinary(path string) (string, error) {
	p, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%q not found on PATH: %w", path, err)
	}
	return p, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter is an io.Writer that keeps only the last `limit` bytes.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		// Keep only the tail
		b := lw.w.Bytes()
		lw.w.Reset()
		lw.w.Write(b[len(b)-lw.limit:])
	}
	return n, nil
}
