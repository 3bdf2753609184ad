package media

import (
	"context"
	"log/slog"
	"os"
)

// knownExtensions is the set of container/codec extensions the download tool
// is expected to produce. The tool picks its own final extension, so the
// produced file is located by probing these against the requested base path.
var knownExtensions = []string{"mp4", "mkv", "webm", "m4a", "mp3", "opus", "ogg", "aac", "wav"}

// Downloader fetches remote media via the yt-dlp command-line contract.
type Downloader struct {
	bin    string
	runner CommandRunner
	logger *slog.Logger
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithDownloadRunner sets a custom command runner (for testing)
func WithDownloadRunner(r CommandRunner) DownloaderOption {
	return func(d *Downloader) {
		d.runner = r
	}
}

// NewDownloader resolves the download tool binary and returns a Downloader.
func NewDownloader(path string, logger *slog.Logger, opts ...DownloaderOption) (*Downloader, error) {
	d := &Downloader{runner: ExecRunner{}, logger: logger}
	for _, opt := range opts {
		opt(d)
	}

	if _, ok := d.runner.(ExecRunner); ok {
		bin, err := resolveBinary(path)
		if err != nil {
			return nil, err
		}
		d.bin = bin
	} else {
		d.bin = path
	}
	return d, nil
}

// Fetch downloads the media at url into a file named from basePath, and
// returns the path of the file the tool actually produced. Audio mode
// requests the best audio-only stream; video mode requests the best
// MP4-compatible combination, falling back to best overall, merged to MP4.
func (d *Downloader) Fetch(ctx context.Context, url string, mode Mode, basePath string) (string, error) {
	var args []string
	if mode == ModeAudio {
		args = append(args, "-f", "bestaudio")
	} else {
		args = append(args,
			"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best",
			"--merge-output-format", "mp4",
		)
	}
	args = append(args,
		"--no-playlist",
		"--no-warnings",
		"-o", basePath+".%(ext)s",
		url,
	)

	d.logger.Info("downloading media", "mode", mode, "url", url)

	result := d.runner.Run(ctx, d.bin, args...)
	if !result.IsSuccess() {
		d.logger.Warn("download tool failed",
			"exit_code", result.ExitCode,
			"duration_ms", result.Duration.Milliseconds(),
			"stderr_tail", truncate(result.StderrTail, 512),
		)
		return "", &ToolError{Tool: ToolDownloader, ExitCode: result.ExitCode, StderrTail: result.StderrTail}
	}

	path, ok := ProbeDownload(basePath)
	if !ok {
		return "", &ToolError{Tool: ToolDownloader, ExitCode: 0, StderrTail: "no output file produced"}
	}

	d.logger.Info("download complete",
		"path", path,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return path, nil
}

// ProbeDownload checks the known extensions against basePath and returns the
// first produced file found.
func ProbeDownload(basePath string) (string, bool) {
	for _, ext := range knownExtensions {
		candidate := basePath + "." + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
