package source

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	ptn "github.com/razsteinmetz/go-ptn"

	"github.com/mediafold/mediafold/internal/media"
	"github.com/mediafold/mediafold/internal/normalize"
)

// ChatMessage is one media-bearing message from a chat export dump.
type ChatMessage struct {
	ChatID     int64  `json:"chat_id"`
	MessageID  int64  `json:"message_id"`
	FileName   string `json:"file_name"`
	FileSize   int64  `json:"file_size"`
	Caption    string `json:"caption,omitempty"`
	ChatTitle  string `json:"chat_title,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// ChatAdapter converts chat export messages into raw media items. Release
// names are parsed with go-ptn; when a title and year parse confidently the
// adapter attaches the hash-form identity so items re-forwarded across chats
// still link to the same work.
type ChatAdapter struct {
	log *slog.Logger
}

// NewChatAdapter creates a chat source adapter.
func NewChatAdapter() *ChatAdapter {
	return &ChatAdapter{log: slog.With("component", "source.chat")}
}

// Parse reads a chat export JSON array and converts each message.
func (a *ChatAdapter) Parse(r io.Reader) ([]media.RawItem, error) {
	var messages []ChatMessage
	if err := json.NewDecoder(r).Decode(&messages); err != nil {
		return nil, fmt.Errorf("failed to decode chat export: %w", err)
	}

	items := make([]media.RawItem, 0, len(messages))
	for _, msg := range messages {
		items = append(items, a.Convert(msg))
	}
	return items, nil
}

// Convert builds the raw item for one chat message.
func (a *ChatAdapter) Convert(msg ChatMessage) media.RawItem {
	name := msg.FileName
	if name == "" {
		name = msg.Caption
	}

	item := media.RawItem{
		OriginalTitle: name,
		Kind:          media.KindUnknown,
		DurationMs:    msg.DurationMs,
		Pipeline:      media.PipelineChat,
		SourceItemID:  fmt.Sprintf("%d:%d", msg.ChatID, msg.MessageID),
		SourceLabel:   msg.ChatTitle,
		Attrs: map[string]string{
			"chat_id":    strconv.FormatInt(msg.ChatID, 10),
			"message_id": strconv.FormatInt(msg.MessageID, 10),
			"file_size":  strconv.FormatInt(msg.FileSize, 10),
		},
	}

	parsed, err := ptn.Parse(name)
	if err != nil {
		a.log.Debug("Release name did not parse", "name", name, "error", err)
		return item
	}

	if parsed.Year > 0 {
		year := parsed.Year
		item.Year = &year
	}
	if parsed.Season > 0 && parsed.Episode > 0 {
		season, episode := parsed.Season, parsed.Episode
		item.Season = &season
		item.Episode = &episode
		item.Kind = media.KindEpisode
	} else if parsed.Year > 0 {
		item.Kind = media.KindMovie
	}

	// A confident title+year parse earns the hash-form identity, so the
	// same release forwarded through different chats dedups into one work.
	if strings.TrimSpace(parsed.Title) != "" && item.Year != nil && item.Kind == media.KindMovie {
		item.ExplicitIdentity = normalize.GlobalIdentity(parsed.Title, item.Year)
	}

	return item
}

// PlayableHints implements normalize.HintBuilder for the chat pipeline.
func (a *ChatAdapter) PlayableHints(item media.RawItem) map[string]string {
	hints := map[string]string{}
	if v, ok := item.Attrs["chat_id"]; ok {
		hints["chat_id"] = v
	}
	if v, ok := item.Attrs["message_id"]; ok {
		hints["message_id"] = v
	}
	return hints
}
