package media

import (
	"context"
	"log/slog"

	"github.com/clipbot/clipbot/internal/timecode"
)

// AudioBitrate is the fixed re-encode bitrate for audio clips.
const AudioBitrate = "128k"

// Trimmer cuts a time range out of a media file via the ffmpeg command-line
// contract.
type Trimmer struct {
	bin    string
	runner CommandRunner
	logger *slog.Logger
}

// TrimmerOption configures a Trimmer.
type TrimmerOption func(*Trimmer)

// WithTrimRunner sets a custom command runner (for testing)
func WithTrimRunner(r CommandRunner) TrimmerOption {
	return func(t *Trimmer) {
		t.runner = r
	}
}

// NewTrimmer resolves the trim tool binary and returns a Trimmer.
func NewTrimmer(path string, logger *slog.Logger, opts ...TrimmerOption) (*Trimmer, error) {
	t := &Trimmer{runner: ExecRunner{}, logger: logger}
	for _, opt := range opts {
		opt(t)
	}

	if _, ok := t.runner.(ExecRunner); ok {
		bin, err := resolveBinary(path)
		if err != nil {
			return nil, err
		}
		t.bin = bin
	} else {
		t.bin = path
	}
	return t, nil
}

// Cut extracts [start, end] from inPath into outPath. Video mode trims by
// stream copy, preserving the source encoding. Audio mode re-encodes to MP3
// at a fixed bitrate and strips the video stream, since the source audio
// codec is not guaranteed to stand alone in an audio container.
func (t *Trimmer) Cut(ctx context.Context, inPath, outPath string, start, end timecode.Timestamp, mode Mode) error {
	args := []string{
		"-i", inPath,
		"-ss", start.String(),
		"-to", end.String(),
	}
	if mode == ModeAudio {
		args = append(args,
			"-vn",
			"-acodec", "libmp3lame",
			"-ab", AudioBitrate,
		)
	} else {
		args = append(args, "-c", "copy")
	}
	args = append(args, "-y", outPath)

	t.logger.Info("trimming clip", "mode", mode, "start", start.String(), "end", end.String())

	result := t.runner.Run(ctx, t.bin, args...)
	if !result.IsSuccess() {
		t.logger.Warn("trim tool failed",
			"exit_code", result.ExitCode,
			"duration_ms", result.Duration.Milliseconds(),
			"stderr_tail", truncate(result.StderrTail, 512),
		)
		return &ToolError{Tool: ToolTrimmer, ExitCode: result.ExitCode, StderrTail: result.StderrTail}
	}

	return nil
}
