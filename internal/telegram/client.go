package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the production Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// APIError represents a non-OK response from the Bot API.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error: HTTP %d: %s", e.StatusCode, e.Description)
}

// Client talks to the Telegram Bot API over HTTP. The base URL is injectable
// so tests can point it at a local server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			// Long-poll requests block up to the poll timeout server-side;
			// leave headroom on top of it.
			Timeout: 90 * time.Second,
		},
		logger: logger,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// call posts form-encoded parameters to a Bot API method and returns the raw
// result payload.
func (c *Client) call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	return c.decode(method, resp)
}

func (c *Client) decode(method string, resp *http.Response) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Description: string(body)}
	}
	if !parsed.OK {
		return nil, &APIError{StatusCode: resp.StatusCode, Description: parsed.Description}
	}
	return parsed.Result, nil
}

// GetUpdates long-polls for new updates after offset. timeout is the
// server-side poll timeout in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(timeout))
	params.Set("allowed_updates", `["message","callback_query"]`)

	result, err := c.call(ctx, "getUpdates", params)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("parse updates: %w", err)
	}
	return updates, nil
}

// SendMessage sends text to a chat, optionally with an inline keyboard, and
// returns the sent message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) (Message, error) {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("text", text)
	if markup != nil {
		encoded, err := json.Marshal(markup)
		if err != nil {
			return Message{}, fmt.Errorf("marshal reply markup: %w", err)
		}
		params.Set("reply_markup", string(encoded))
	}

	result, err := c.call(ctx, "sendMessage", params)
	if err != nil {
		return Message{}, err
	}

	var msg Message
	if err := json.Unmarshal(result, &msg); err != nil {
		return Message{}, fmt.Errorf("parse sent message: %w", err)
	}
	return msg, nil
}

// EditMessageText replaces the text of an existing message in place.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("message_id", strconv.FormatInt(messageID, 10))
	params.Set("text", text)

	_, err := c.call(ctx, "editMessageText", params)
	return err
}

// EditMessageReplyMarkup replaces the inline keyboard of a message. A nil
// markup removes the keyboard.
func (c *Client) EditMessageReplyMarkup(ctx context.Context, chatID, messageID int64, markup *InlineKeyboardMarkup) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("message_id", strconv.FormatInt(messageID, 10))
	if markup == nil {
		markup = &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{}}
	}
	encoded, err := json.Marshal(markup)
	if err != nil {
		return fmt.Errorf("marshal reply markup: %w", err)
	}
	params.Set("reply_markup", string(encoded))

	_, err = c.call(ctx, "editMessageReplyMarkup", params)
	return err
}

// AnswerCallbackQuery acknowledges a button press so the client UI does not
// show the query as pending.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	params := url.Values{}
	params.Set("callback_query_id", callbackID)

	_, err := c.call(ctx, "answerCallbackQuery", params)
	return err
}

// SendAudio uploads an audio file to a chat.
func (c *Client) SendAudio(ctx context.Context, up MediaUpload) error {
	return c.sendFile(ctx, "sendAudio", "audio", up)
}

// SendVideo uploads a video file to a chat.
func (c *Client) SendVideo(ctx context.Context, up MediaUpload) error {
	return c.sendFile(ctx, "sendVideo", "video", up)
}

func (c *Client) sendFile(ctx context.Context, method, field string, up MediaUpload) error {
	file, err := os.Open(up.Path)
	if err != nil {
		return fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	_ = writer.WriteField("chat_id", strconv.FormatInt(up.ChatID, 10))
	if up.Caption != "" {
		_ = writer.WriteField("caption", up.Caption)
	}
	if up.Duration > 0 {
		_ = writer.WriteField("duration", strconv.Itoa(up.Duration))
	}

	part, err := writer.CreateFormFile(field, filepath.Base(up.Path))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy upload file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Info("uploading media",
		"method", method,
		"chat_id", up.ChatID,
		"bytes", body.Len(),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	_, err = c.decode(method, resp)
	return err
}
