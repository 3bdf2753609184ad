package bot

import (
	"fmt"

	"github.com/clipbot/clipbot/internal/clip"
	"github.com/clipbot/clipbot/internal/media"
	"github.com/clipbot/clipbot/internal/timecode"
)

// All user-facing copy lives here so the routing logic stays readable.

const (
	usageHelp = "Send me a YouTube link and two timestamps and I'll cut that part out for you.\n\n" +
		"Example: https://youtu.be/dQw4w9WgXcQ from 1:20 to 2:45"

	missingTimesPrompt = "Got the link. Now tell me the time range.\n\n" +
		"Timestamps can look like 45, 1:20 or 1:02:45. Example: from 1:20 to 2:45"

	missingURLPrompt = "Got the time range. Now send me the YouTube link for it."

	formatPrompt = "What should I cut?"

	resubmitPrompt = "I don't have a pending request for this chat anymore. Send the link and timestamps again."

	failedDownloadText = "Couldn't download that video. The link may be invalid or the video unavailable."

	failedTrimText = "Couldn't cut that range. It may be outside the video's actual duration."

	tooLargeText = "The clip came out over 50 MB, which is more than I can send. " +
		"Try a shorter segment, or audio instead of video."
)

func orderingRejectText(start, end timecode.Timestamp) string {
	return fmt.Sprintf("The start time %s is not before the end time %s. Swap them and try again.", start, end)
}

func stageText(s clip.State) string {
	switch s {
	case clip.StateDownloading:
		return "⏳ Downloading…"
	case clip.StateCutting:
		return "✂️ Cutting your clip…"
	case clip.StateSizeCheck:
		return "🔎 Checking the result…"
	case clip.StateUploading:
		return "📤 Uploading…"
	case clip.StateDone:
		return "✅ Done!"
	case clip.StateTooLarge:
		return tooLargeText
	default:
		return string(s)
	}
}

func failureText(out clip.Outcome) string {
	switch out.Reason {
	case clip.ReasonDownload:
		return failedDownloadText
	case clip.ReasonTrim:
		return failedTrimText
	default:
		return fmt.Sprintf("Something went wrong: %v", out.Err)
	}
}

func captionText(mode media.Mode, start, end timecode.Timestamp) string {
	return fmt.Sprintf("%s clip %s – %s", mode, start, end)
}
