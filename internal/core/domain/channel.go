package domain

import "strings"

// ChannelID identifies one of the four verification analyses
type ChannelID string

const (
	ChannelSource    ChannelID = "source"
	ChannelDetail    ChannelID = "detail"
	ChannelFactual   ChannelID = "factual"
	ChannelTechnical ChannelID = "technical"
)

// Channel describes a verification analysis. Descriptors are immutable.
type Channel struct {
	ID           ChannelID
	Label        string
	BackendToken string
	Accent       string // terminal colour code
	Placeholder  string // shown until a result exists
}

var registry = []Channel{
	{
		ID:           ChannelSource,
		Label:        "Scan for Source Verification",
		BackendToken: "source_verification",
		Accent:       "5",
		Placeholder:  "Source verification results will be displayed here",
	},
	{
		ID:           ChannelDetail,
		Label:        "Scan for Detail Verification",
		BackendToken: "detail_verification",
		Accent:       "2",
		Placeholder:  "Detail verification results will be displayed here",
	},
	{
		ID:           ChannelFactual,
		Label:        "Scan for Factual Accuracy",
		BackendToken: "factual_accuracy_verification",
		Accent:       "3",
		Placeholder:  "Factual accuracy verification results will be displayed here",
	},
	{
		ID:           ChannelTechnical,
		Label:        "Scan for Technical Verification",
		BackendToken: "technical_detail_verification",
		Accent:       "1",
		Placeholder:  "Technical verification results will be displayed here",
	},
}

// Channels returns the channel descriptors in display order
func Channels() []Channel {
	out := make([]Channel, len(registry))
	copy(out, registry)
	return out
}

// LookupChannel returns the descriptor for id
func LookupChannel(id ChannelID) (Channel, bool) {
	for _, c := range registry {
		if c.ID == id {
			return c, true
		}
	}
	return Channel{}, false
}

// ParseChannelID accepts a channel id or its backend token, case-insensitively
func ParseChannelID(s string) (ChannelID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range registry {
		if string(c.ID) == s || c.BackendToken == s {
			return c.ID, nil
		}
	}
	return "", &UnknownChannelError{Value: s}
}

// Status is the dispatch state of a channel
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ChannelState is the mutable state of one channel.
// A finished dispatch sets either ResultText (Succeeded) or ErrorMessage
// (Failed). The last outcome stays in place while a redispatch is Pending.
type ChannelState struct {
	ID           ChannelID
	Status       Status
	ResultText   string
	ErrorMessage string
	Expanded     bool
}

// Snapshot is a copy of the controller state handed to the presentation layer
type Snapshot struct {
	Version     uint64         // increases with every controller change
	Channels    []ChannelState // registry order
	Busy        bool
	Active      ChannelID
	Notice      string
	Attachments []AttachmentInfo
}

// Channel returns the state for id from the snapshot
func (s Snapshot) Channel(id ChannelID) (ChannelState, bool) {
	for _, c := range s.Channels {
		if c.ID == id {
			return c, true
		}
	}
	return ChannelState{}, false
}

// PendingCount returns how many channels are pending. It is never more
// than one; callers can use it to assert the single-flight rule.
func (s Snapshot) PendingCount() int {
	n := 0
	for _, c := range s.Channels {
		if c.Status == StatusPending {
			n++
		}
	}
	return n
}
