// Package report decodes the result payload produced by the external
// report service and turns its frequency tables into bubble items.
//
// The payload looks like:
//
//	{
//	  "per_chat": [{"chat_id": "1", "chat_name": "Family", "message_count": 120, ...}],
//	  "aggregate": {
//	    "total_messages": 5120,
//	    "word_frequency": {"lol": 50, "ok": 30},
//	    "emoji_frequency": {"😂": 41},
//	    ...
//	  }
//	}
//
// Frequency objects keep their document order, which is what the bubble
// engine uses to break weight ties.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/wordbubbles/pkg/bubble"
	"github.com/matzehuels/wordbubbles/pkg/errors"
)

// Frequency sources a cloud can be built from.
const (
	SourceWords  = "words"
	SourceEmojis = "emojis"
)

// ValidSources is the set of supported frequency sources.
var ValidSources = map[string]bool{
	SourceWords:  true,
	SourceEmojis: true,
}

// Result is the complete report payload.
type Result struct {
	PerChat   []ChatResult `json:"per_chat"`
	Aggregate Aggregate    `json:"aggregate"`
}

// ChatResult holds per-conversation numbers.
type ChatResult struct {
	ChatID             string             `json:"chat_id"`
	ChatName           string             `json:"chat_name"`
	MessageCount       int                `json:"message_count"`
	SentimentBreakdown map[string]float64 `json:"sentiment_breakdown,omitempty"`
}

// Aggregate is the cross-chat summary.
type Aggregate struct {
	UserID           string                    `json:"user_id"`
	TotalChats       int                       `json:"total_chats"`
	TotalMessages    int                       `json:"total_messages"`
	WordFrequency    Frequencies               `json:"word_frequency"`
	EmojiFrequency   Frequencies               `json:"emoji_frequency"`
	WordcloudImage   string                    `json:"wordcloud_image,omitempty"`
	SentimentByMonth map[string]MonthSentiment `json:"sentiment_by_month,omitempty"`
	Persona          *Persona                  `json:"persona,omitempty"`
	TopWords         []string                  `json:"top_words,omitempty"`
	TopEmojis        []string                  `json:"top_emojis,omitempty"`
	HourDistribution map[int]int               `json:"hour_distribution,omitempty"`
	AngriestDay      string                    `json:"angriest_day,omitempty"`
}

// MonthSentiment is the mood label of one month.
type MonthSentiment struct {
	Primary     string  `json:"primary"`
	Secondary   string  `json:"secondary"`
	Confidence  float64 `json:"confidence"`
	VibeSummary string  `json:"vibe_summary"`
}

// Persona is the character the account was matched with.
type Persona struct {
	PersonaID   string  `json:"persona_id"`
	PersonaName string  `json:"persona_name"`
	Show        string  `json:"show"`
	Traits      string  `json:"traits"`
	MatchReason string  `json:"match_reason"`
	Confidence  float64 `json:"confidence"`
}

// Items returns the frequency table selected by source as bubble items.
func (r *Result) Items(source string) ([]bubble.Item, error) {
	switch source {
	case SourceWords, "":
		return r.Aggregate.WordFrequency.Items(), nil
	case SourceEmojis:
		return r.Aggregate.EmojiFrequency.Items(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidSource, "unknown source %q (must be words or emojis)", source)
	}
}

// Read decodes a report payload from r.
func Read(r io.Reader) (*Result, error) {
	var res Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode report")
	}
	return &res, nil
}

// ReadFile decodes a report payload from the file at path.
func ReadFile(path string) (*Result, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(data))
}

// ReadItems loads bubble items from path. The file may hold a full report
// payload, in which case source picks the table, or a bare frequency object
// such as {"lol": 50, "ok": 30}.
func ReadItems(path, source string) ([]bubble.Item, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeItems(data, source)
}

// DecodeItems is ReadItems for an in-memory document.
func DecodeItems(data []byte, source string) ([]bubble.Item, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode input")
	}

	if _, ok := probe["aggregate"]; ok {
		res, err := Read(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return res.Items(source)
	}

	var f Frequencies
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode frequencies")
	}
	return f.Items(), nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
