// Package clip runs the per-request pipeline that turns a YouTube URL and a
// time range into a trimmed audio or video file: download, cut, size check,
// upload, with guaranteed cleanup of transient files on every exit path.
package clip

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/clipbot/clipbot/internal/media"
	"github.com/clipbot/clipbot/internal/timecode"
)

// MaxUploadBytes is the delivery transport's upload ceiling (50 MiB). Outputs
// above it terminate the pipeline cleanly instead of attempting an upload.
const MaxUploadBytes = 50 * 1024 * 1024

// State is a stage of the pipeline. Progress states are strictly sequential;
// StateFailed is reachable from any of them, StateTooLarge only from the size
// check.
type State string

const (
	StateDownloading State = "downloading"
	StateCutting     State = "cutting"
	StateSizeCheck   State = "size_check"
	StateUploading   State = "uploading"
	StateDone        State = "done"
	StateFailed      State = "failed"
	StateTooLarge    State = "too_large"
)

// Reason classifies a failure by the stage whose tool reported it, so the
// conversation layer can pick the matching explanation.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonDownload Reason = "download" // link invalid or video unavailable
	ReasonTrim     Reason = "trim"     // range outside the source duration
	ReasonInternal Reason = "internal" // unclassified; raw error text surfaces
)

// Request is the fully-resolved input to one pipeline run. It exists only for
// the duration of that run.
type Request struct {
	URL   string
	Start timecode.Timestamp
	End   timecode.Timestamp
	Mode  media.Mode
}

// Duration returns end - start in whole seconds.
func (r Request) Duration() int {
	return r.End.TotalSeconds() - r.Start.TotalSeconds()
}

// Delivery is the finished clip handed to the transport for upload.
type Delivery struct {
	Path     string
	Mode     media.Mode
	Start    timecode.Timestamp
	End      timecode.Timestamp
	Duration int // whole seconds; non-positive values are not attached
}

// Notifier receives progress and the finished clip. Stage updates are best
// effort; Deliver is the upload itself and its error fails the pipeline.
type Notifier interface {
	Stage(ctx context.Context, s State)
	Deliver(ctx context.Context, d Delivery) error
}

// Outcome is the terminal result of one pipeline run.
type Outcome struct {
	State       State
	Reason      Reason
	Err         error
	OutputBytes int64
}

// Downloader fetches remote media to a local file.
type Downloader interface {
	Fetch(ctx context.Context, url string, mode media.Mode, basePath string) (string, error)
}

// Trimmer cuts a time range out of a local media file.
type Trimmer interface {
	Cut(ctx context.Context, inPath, outPath string, start, end timecode.Timestamp, mode media.Mode) error
}

// NewID returns a random identifier used to name transient files, so
// concurrent pipelines never collide on disk.
func NewID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
