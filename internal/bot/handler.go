// Package bot routes incoming Telegram updates: free-text messages are parsed
// into pending clip requests, format-choice button presses start the pipeline.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/clipbot/clipbot/internal/clip"
	"github.com/clipbot/clipbot/internal/history"
	"github.com/clipbot/clipbot/internal/media"
	"github.com/clipbot/clipbot/internal/session"
	"github.com/clipbot/clipbot/internal/telegram"
	"github.com/clipbot/clipbot/internal/timecode"
)

const (
	callbackAudio = "audio"
	callbackVideo = "video"

	pollTimeoutSec = 30
	pollRetryDelay = 3 * time.Second
)

// Transport is the subset of the Telegram client the handler needs. The
// production implementation is *telegram.Client; tests inject a fake.
type Transport interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) (telegram.Message, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string) error
	EditMessageReplyMarkup(ctx context.Context, chatID, messageID int64, markup *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
	SendAudio(ctx context.Context, up telegram.MediaUpload) error
	SendVideo(ctx context.Context, up telegram.MediaUpload) error
}

// Pipeline runs one clip request to a terminal state.
type Pipeline interface {
	Run(ctx context.Context, req clip.Request, n clip.Notifier) clip.Outcome
}

// Handler owns conversation state and all user-facing behavior.
type Handler struct {
	transport Transport
	sessions  session.Store
	pipeline  Pipeline
	hist      history.Repository // may be nil; history is best effort
	logger    *slog.Logger
}

func NewHandler(transport Transport, sessions session.Store, pipeline Pipeline, hist history.Repository, logger *slog.Logger) *Handler {
	return &Handler{
		transport: transport,
		sessions:  sessions,
		pipeline:  pipeline,
		hist:      hist,
		logger:    logger,
	}
}

// Run long-polls for updates until ctx is cancelled. Each update is handled
// in its own goroutine so one chat's pipeline never blocks another's.
func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("update loop started")

	var offset int64
	for {
		if ctx.Err() != nil {
			h.logger.Info("update loop stopping")
			return nil
		}

		updates, err := h.transport.GetUpdates(ctx, offset, pollTimeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				h.logger.Info("update loop stopping")
				return nil
			}
			h.logger.Warn("getUpdates failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			go h.HandleUpdate(ctx, u)
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, u telegram.Update) {
	switch {
	case u.CallbackQuery != nil:
		h.HandleCallback(ctx, *u.CallbackQuery)
	case u.Message != nil && u.Message.Text != "":
		h.HandleMessage(ctx, *u.Message)
	}
}

// HandleMessage parses a text message into one of five mutually exclusive
// outcomes: complete request, misordered range, missing times, missing URL,
// or generic help.
func (h *Handler) HandleMessage(ctx context.Context, msg telegram.Message) {
	chatID := msg.Chat.ID
	log := h.logger.With("chat_id", chatID)

	url, hasURL := timecode.ExtractURL(msg.Text)
	start, end, hasTimes := timecode.ExtractPair(msg.Text)

	switch {
	case hasURL && hasTimes && start.Before(end):
		h.sessions.Put(chatID, session.PendingRequest{URL: url, Start: start, End: end})
		log.Info("pending request stored", "url", url, "start", start.String(), "end", end.String())
		h.send(ctx, chatID, formatPrompt, formatKeyboard())

	case hasURL && hasTimes:
		log.Info("rejected misordered range", "start", start.String(), "end", end.String())
		h.send(ctx, chatID, orderingRejectText(start, end), nil)

	case hasURL:
		h.send(ctx, chatID, missingTimesPrompt, nil)

	case hasTimes:
		h.send(ctx, chatID, missingURLPrompt, nil)

	default:
		h.send(ctx, chatID, usageHelp, nil)
	}
}

// HandleCallback consumes the chat's pending request and runs the pipeline,
// reporting progress through a freshly created status message.
func (h *Handler) HandleCallback(ctx context.Context, cb telegram.CallbackQuery) {
	// Acknowledge immediately so the button does not appear stuck.
	if err := h.transport.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		h.logger.Warn("answerCallbackQuery failed", "error", err)
	}

	if cb.Message == nil {
		h.logger.Warn("callback without originating message", "callback_id", cb.ID)
		return
	}
	chatID := cb.Message.Chat.ID
	log := h.logger.With("chat_id", chatID)

	var mode media.Mode
	switch cb.Data {
	case callbackAudio:
		mode = media.ModeAudio
	case callbackVideo:
		mode = media.ModeVideo
	default:
		log.Warn("unknown callback data", "data", cb.Data)
		return
	}

	pending, ok := h.sessions.Take(chatID)
	if !ok {
		h.send(ctx, chatID, resubmitPrompt, nil)
		return
	}

	// Remove the choice keyboard from the prompt; best effort.
	if err := h.transport.EditMessageReplyMarkup(ctx, chatID, cb.Message.MessageID, nil); err != nil {
		log.Warn("failed to clear format keyboard", "error", err)
	}

	status, err := h.transport.SendMessage(ctx, chatID, stageText(clip.StateDownloading), nil)
	if err != nil {
		log.Error("failed to create status message", "error", err)
		return
	}

	req := clip.Request{URL: pending.URL, Start: pending.Start, End: pending.End, Mode: mode}
	h.runPipeline(ctx, chatID, status.MessageID, req)
}

func (h *Handler) runPipeline(ctx context.Context, chatID, statusID int64, req clip.Request) {
	recID := clip.NewID()
	started := time.Now()
	h.recordStart(ctx, recID, chatID, req)

	n := &notifier{h: h, chatID: chatID, statusID: statusID}
	out := h.pipeline.Run(ctx, req, n)

	if out.State == clip.StateFailed {
		h.edit(ctx, chatID, statusID, failureText(out))
	}

	errMsg := ""
	if out.Err != nil {
		errMsg = out.Err.Error()
	}
	h.recordFinish(ctx, recID, string(out.State), errMsg, out.OutputBytes, time.Since(started).Milliseconds())
}

// notifier adapts pipeline progress to status-message edits and the finished
// clip to a media upload.
type notifier struct {
	h        *Handler
	chatID   int64
	statusID int64
}

func (n *notifier) Stage(ctx context.Context, s clip.State) {
	n.h.edit(ctx, n.chatID, n.statusID, stageText(s))
}

func (n *notifier) Deliver(ctx context.Context, d clip.Delivery) error {
	up := telegram.MediaUpload{
		ChatID:   n.chatID,
		Path:     d.Path,
		Caption:  captionText(d.Mode, d.Start, d.End),
		Duration: d.Duration,
	}
	if d.Mode == media.ModeAudio {
		return n.h.transport.SendAudio(ctx, up)
	}
	return n.h.transport.SendVideo(ctx, up)
}

func formatKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "🎵 Audio", CallbackData: callbackAudio},
			{Text: "🎬 Video", CallbackData: callbackVideo},
		}},
	}
}

func (h *Handler) send(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) {
	if _, err := h.transport.SendMessage(ctx, chatID, text, markup); err != nil {
		h.logger.Warn("sendMessage failed", "chat_id", chatID, "error", err)
	}
}

func (h *Handler) edit(ctx context.Context, chatID, messageID int64, text string) {
	if err := h.transport.EditMessageText(ctx, chatID, messageID, text); err != nil {
		h.logger.Warn("editMessageText failed", "chat_id", chatID, "error", err)
	}
}

func (h *Handler) recordStart(ctx context.Context, id string, chatID int64, req clip.Request) {
	if h.hist == nil {
		return
	}
	err := h.hist.RecordStart(ctx, &history.Clip{
		ID:      id,
		ChatID:  chatID,
		URL:     req.URL,
		StartTS: req.Start.String(),
		EndTS:   req.End.String(),
		Mode:    string(req.Mode),
	})
	if err != nil {
		h.logger.Warn("history record failed", "error", err)
	}
}

func (h *Handler) recordFinish(ctx context.Context, id, state, errMsg string, bytes, durationMs int64) {
	if h.hist == nil {
		return
	}
	if err := h.hist.RecordFinish(ctx, id, state, errMsg, bytes, durationMs); err != nil {
		h.logger.Warn("history record failed", "error", err)
	}
}
