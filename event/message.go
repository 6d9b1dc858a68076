// Package event implements the per-player event stream: a single subscriber, ordered,
// non-blocking publish endpoint carrying a discriminated set of playback notifications.
package event

import (
	"encoding/json"
	"fmt"
)

// Type discriminates Message variants.
type Type string

const (
	Initialized     Type = "initialized"
	BufferingStart  Type = "bufferingStart"
	BufferingUpdate Type = "bufferingUpdate"
	BufferingEnd    Type = "bufferingEnd"
	Completed       Type = "completed"
	Error           Type = "error"
)

// Range is a buffered span in milliseconds, encoded as [start, end].
type Range [2]int64

// Message is one event. Only the fields relevant to Event are populated.
type Message struct {
	Event Type `json:"event" jsonschema:"enum=initialized,enum=bufferingStart,enum=bufferingUpdate,enum=bufferingEnd,enum=completed,enum=error"`

	// initialized
	Duration int64 `json:"duration,omitempty" jsonschema:"description=Media duration in milliseconds"`
	Width    int   `json:"width,omitempty" jsonschema:"description=Orientation normalized width"`
	Height   int   `json:"height,omitempty" jsonschema:"description=Orientation normalized height"`

	// bufferingUpdate
	Values []Range `json:"values,omitempty" jsonschema:"description=Buffered ranges in milliseconds"`

	// error
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (m Message) String() string {
	switch m.Event {
	case Initialized:
		return fmt.Sprintf("%s duration=%dms size=%dx%d", m.Event, m.Duration, m.Width, m.Height)
	case BufferingUpdate:
		return fmt.Sprintf("%s %v", m.Event, m.Values)
	case Error:
		return fmt.Sprintf("%s %s: %s", m.Event, m.Code, m.Message)
	default:
		return string(m.Event)
	}
}

// MarshalJSON writes only the fields of the message's variant.
// An initialized event always carries duration, width and height, even when zero.
func (m Message) MarshalJSON() ([]byte, error) {
	type fields Message
	if m.Event != Initialized {
		return json.Marshal(fields(m))
	}

	return json.Marshal(struct {
		Event    Type  `json:"event"`
		Duration int64 `json:"duration"`
		Width    int   `json:"width"`
		Height   int   `json:"height"`
	}{m.Event, m.Duration, m.Width, m.Height})
}

// IsError reports whether the message is on the error path.
func (m Message) IsError() bool {
	return m.Event == Error
}

func NewInitialized(durationMillis int64, width, height int) Message {
	return Message{Event: Initialized, Duration: durationMillis, Width: width, Height: height}
}

func NewBufferingStart() Message {
	return Message{Event: BufferingStart}
}

func NewBufferingUpdate(startMillis, endMillis int64) Message {
	return Message{Event: BufferingUpdate, Values: []Range{{startMillis, endMillis}}}
}

func NewBufferingEnd() Message {
	return Message{Event: BufferingEnd}
}

func NewCompleted() Message {
	return Message{Event: Completed}
}

func NewError(code, message string) Message {
	return Message{Event: Error, Code: code, Message: message}
}
