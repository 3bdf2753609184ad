package clip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/clipbot/clipbot/internal/media"
)

// Runner executes clip pipelines. One Run call owns its transient files
// exclusively and removes them before returning, whatever the outcome.
type Runner struct {
	downloader Downloader
	trimmer    Trimmer
	workDir    string
	logger     *slog.Logger
	inFlight   atomic.Int64
}

func NewRunner(downloader Downloader, trimmer Trimmer, workDir string, logger *slog.Logger) (*Runner, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create work dir: %w", err)
	}
	return &Runner{
		downloader: downloader,
		trimmer:    trimmer,
		workDir:    workDir,
		logger:     logger,
	}, nil
}

// InFlight returns the number of pipelines currently running.
func (r *Runner) InFlight() int64 {
	return r.inFlight.Load()
}

// Run drives one request through download, cut, size check and upload.
// Stages are strictly sequential with no retries; once started the pipeline
// runs to a terminal state.
func (r *Runner) Run(ctx context.Context, req Request, n Notifier) (out Outcome) {
	r.inFlight.Add(1)
	defer r.inFlight.Add(-1)

	id := NewID()
	log := r.logger.With("clip_id", id, "mode", req.Mode)

	base := filepath.Join(r.workDir, "clip-"+id)
	outPath := base + "-cut" + req.Mode.OutputExt()

	defer r.cleanup(log, base, outPath)

	defer func() {
		if p := recover(); p != nil {
			log.Error("pipeline panic", "panic", p)
			out = Outcome{State: StateFailed, Reason: ReasonInternal, Err: fmt.Errorf("pipeline panic: %v", p)}
		}
	}()

	log.Info("pipeline started", "url", req.URL, "start", req.Start.String(), "end", req.End.String())

	n.Stage(ctx, StateDownloading)
	srcPath, err := r.downloader.Fetch(ctx, req.URL, req.Mode, base)
	if err != nil {
		return r.fail(log, err)
	}

	n.Stage(ctx, StateCutting)
	if err := r.trimmer.Cut(ctx, srcPath, outPath, req.Start, req.End, req.Mode); err != nil {
		return r.fail(log, err)
	}

	n.Stage(ctx, StateSizeCheck)
	info, err := os.Stat(outPath)
	if err != nil {
		// A clean trim exit with no file behind it is a trim failure, same
		// as the zero-byte case below.
		if os.IsNotExist(err) {
			return r.fail(log, &media.ToolError{Tool: media.ToolTrimmer, ExitCode: 0, StderrTail: "no output file produced"})
		}
		return r.fail(log, fmt.Errorf("cannot stat produced clip: %w", err))
	}
	size := info.Size()

	// An empty output means the requested range lies outside the source's
	// actual duration. That is a trim failure, not an oversize clip.
	if size == 0 {
		return r.fail(log, &media.ToolError{Tool: media.ToolTrimmer, ExitCode: 0, StderrTail: "produced clip is empty"})
	}

	if size > MaxUploadBytes {
		log.Info("clip exceeds upload ceiling", "bytes", size)
		n.Stage(ctx, StateTooLarge)
		return Outcome{State: StateTooLarge, OutputBytes: size}
	}

	n.Stage(ctx, StateUploading)
	err = n.Deliver(ctx, Delivery{
		Path:     outPath,
		Mode:     req.Mode,
		Start:    req.Start,
		End:      req.End,
		Duration: req.Duration(),
	})
	if err != nil {
		return r.fail(log, fmt.Errorf("upload failed: %w", err))
	}

	n.Stage(ctx, StateDone)
	log.Info("pipeline complete", "bytes", size)
	return Outcome{State: StateDone, OutputBytes: size}
}

func (r *Runner) fail(log *slog.Logger, err error) Outcome {
	reason := ReasonInternal
	var toolErr *media.ToolError
	if errors.As(err, &toolErr) {
		switch toolErr.Tool {
		case media.ToolDownloader:
			reason = ReasonDownload
		case media.ToolTrimmer:
			reason = ReasonTrim
		}
	}
	log.Warn("pipeline failed", "reason", reason, "error", err)
	return Outcome{State: StateFailed, Reason: reason, Err: err}
}

// cleanup removes the output file, the expected download path, and any file
// sharing the download's base name under another extension. Removal errors
// are logged and swallowed; they never replace the pipeline outcome.
func (r *Runner) cleanup(log *slog.Logger, base, outPath string) {
	paths := []string{outPath}
	if matches, err := filepath.Glob(base + ".*"); err == nil {
		paths = append(paths, matches...)
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warn("cleanup failed", "path", p, "error", err)
		}
	}
}
