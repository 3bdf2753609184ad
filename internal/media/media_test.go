package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clipbot/clipbot/internal/timecode"
)

type fakeRunner struct {
	lastName string
	lastArgs []string
	result   RunResult
	onRun    func(name string, args []string)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) RunResult {
	f.lastName = name
	f.lastArgs = args
	if f.onRun != nil {
		f.onRun(name, args)
	}
	return f.result
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDownloader_AudioModeArgs(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "clip-abc")

	runner := &fakeRunner{
		onRun: func(_ string, _ []string) {
			os.WriteFile(base+".m4a", []byte("audio"), 0644)
		},
	}
	d, err := NewDownloader("yt-dlp", discardLogger(), WithDownloadRunner(runner))
	if err != nil {
		t.Fatalf("NewDownloader error: %v", err)
	}

	path, err := d.Fetch(context.Background(), "https://youtu.be/abc", ModeAudio, base)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if path != base+".m4a" {
		t.Errorf("path = %q, want probed .m4a file", path)
	}

	joined := strings.Join(runner.lastArgs, " ")
	if !strings.Contains(joined, "-f bestaudio") {
		t.Errorf("audio mode args missing bestaudio selector: %v", runner.lastArgs)
	}
	if strings.Contains(joined, "--merge-output-format") {
		t.Errorf("audio mode must not request merge: %v", runner.lastArgs)
	}
	for _, want := range []string{"--no-playlist", "--no-warnings"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %s: %v", want, runner.lastArgs)
		}
	}
	if runner.lastArgs[len(runner.lastArgs)-1] != "https://youtu.be/abc" {
		t.Errorf("url must be the final argument: %v", runner.lastArgs)
	}
}

func TestDownloader_VideoModeArgs(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "clip-abc")

	runner := &fakeRunner{
		onRun: func(_ string, _ []string) {
			os.WriteFile(base+".mp4", []byte("video"), 0644)
		},
	}
	d, _ := NewDownloader("yt-dlp", discardLogger(), WithDownloadRunner(runner))

	path, err := d.Fetch(context.Background(), "https://youtu.be/abc", ModeVideo, base)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if path != base+".mp4" {
		t.Errorf("path = %q, want probed .mp4 file", path)
	}

	joined := strings.Join(runner.lastArgs, " ")
	if !strings.Contains(joined, "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best") {
		t.Errorf("video mode args missing constrained selector with fallback: %v", runner.lastArgs)
	}
	if !strings.Contains(joined, "--merge-output-format mp4") {
		t.Errorf("video mode args missing merge to mp4: %v", runner.lastArgs)
	}
	if !strings.Contains(joined, base+".%(ext)s") {
		t.Errorf("output template missing: %v", runner.lastArgs)
	}
}

func TestDownloader_ToolFailure(t *testing.T) {
	runner := &fakeRunner{result: RunResult{ExitCode: 1, StderrTail: "ERROR: video unavailable"}}
	d, _ := NewDownloader("yt-dlp", discardLogger(), WithDownloadRunner(runner))

	_, err := d.Fetch(context.Background(), "https://youtu.be/bad", ModeVideo, filepath.Join(t.TempDir(), "x"))
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}

	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error %T is not *ToolError", err)
	}
	if toolErr.Tool != ToolDownloader {
		t.Errorf("Tool = %q, want downloader", toolErr.Tool)
	}
	if toolErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", toolErr.ExitCode)
	}
}

func TestDownloader_NoOutputFile(t *testing.T) {
	// Exit 0 but nothing produced under any known extension.
	runner := &fakeRunner{}
	d, _ := NewDownloader("yt-dlp", discardLogger(), WithDownloadRunner(runner))

	_, err := d.Fetch(context.Background(), "https://youtu.be/abc", ModeAudio, filepath.Join(t.TempDir(), "x"))
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Tool != ToolDownloader {
		t.Fatalf("want downloader ToolError for missing output, got %v", err)
	}
}

func TestProbeDownload(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "clip")

	if _, ok := ProbeDownload(base); ok {
		t.Fatal("probe should miss with no files present")
	}

	os.WriteFile(base+".webm", []byte("x"), 0644)
	path, ok := ProbeDownload(base)
	if !ok || path != base+".webm" {
		t.Errorf("ProbeDownload = %q, %v, want the .webm file", path, ok)
	}
}

func TestTrimmer_VideoStreamCopy(t *testing.T) {
	runner := &fakeRunner{}
	tr, err := NewTrimmer("ffmpeg", discardLogger(), WithTrimRunner(runner))
	if err != nil {
		t.Fatalf("NewTrimmer error: %v", err)
	}

	start := timecode.Timestamp{Minutes: 1, Seconds: 20}
	end := timecode.Timestamp{Minutes: 2, Seconds: 45}
	if err := tr.Cut(context.Background(), "in.mp4", "out.mp4", start, end, ModeVideo); err != nil {
		t.Fatalf("Cut error: %v", err)
	}

	joined := strings.Join(runner.lastArgs, " ")
	for _, want := range []string{"-i in.mp4", "-ss 00:01:20", "-to 00:02:45", "-c copy", "-y out.mp4"} {
		if !strings.Contains(joined, want) {
			t.Errorf("video args missing %q: %v", want, runner.lastArgs)
		}
	}
	if strings.Contains(joined, "-vn") {
		t.Errorf("video mode must not strip the video stream: %v", runner.lastArgs)
	}
}

func TestTrimmer_AudioReEncode(t *testing.T) {
	runner := &fakeRunner{}
	tr, _ := NewTrimmer("ffmpeg", discardLogger(), WithTrimRunner(runner))

	start := timecode.Timestamp{Seconds: 10}
	end := timecode.Timestamp{Seconds: 30}
	if err := tr.Cut(context.Background(), "in.webm", "out.mp3", start, end, ModeAudio); err != nil {
		t.Fatalf("Cut error: %v", err)
	}

	joined := strings.Join(runner.lastArgs, " ")
	for _, want := range []string{"-vn", "-acodec libmp3lame", "-ab " + AudioBitrate} {
		if !strings.Contains(joined, want) {
			t.Errorf("audio args missing %q: %v", want, runner.lastArgs)
		}
	}
	if strings.Contains(joined, "-c copy") {
		t.Errorf("audio mode must re-encode, not stream copy: %v", runner.lastArgs)
	}
}

func TestTrimmer_ToolFailure(t *testing.T) {
	runner := &fakeRunner{result: RunResult{ExitCode: 1, StderrTail: "Invalid duration"}}
	tr, _ := NewTrimmer("ffmpeg", discardLogger(), WithTrimRunner(runner))

	err := tr.Cut(context.Background(), "in.mp4", "out.mp4", timecode.Timestamp{}, timecode.Timestamp{Seconds: 5}, ModeVideo)
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Tool != ToolTrimmer {
		t.Fatalf("want trimmer ToolError, got %v", err)
	}
}

func TestMode_OutputExt(t *testing.T) {
	if got := ModeAudio.OutputExt(); got != ".mp3" {
		t.Errorf("audio ext = %q", got)
	}
	if got := ModeVideo.OutputExt(); got != ".mp4" {
		t.Errorf("video ext = %q", got)
	}
}

func TestLimitedWriter_KeepsOnlyTail(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, limit: 10}

	lw.Write([]byte("hello"))
	lw.Write([]byte(" world of test data"))

	got := buf.String()
	if len(got) > 10 {
		t.Errorf("buffer length %d exceeds limit 10", len(got))
	}
	if got != " test data" {
		t.Errorf("after overflow got %q, want %q", got, " test data")
	}
}

func TestNewDownloader_MissingBinary(t *testing.T) {
	if _, err := NewDownloader("/nonexistent/yt-dlp-999", discardLogger()); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
