package domain

import (
	"errors"
	"testing"
	"time"
)

func TestChannels_OrderAndTokens(t *testing.T) {
	expected := []struct {
		id    ChannelID
		token string
	}{
		{ChannelSource, "source_verification"},
		{ChannelDetail, "detail_verification"},
		{ChannelFactual, "factual_accuracy_verification"},
		{ChannelTechnical, "technical_detail_verification"},
	}

	channels := Channels()
	if len(channels) != len(expected) {
		t.Fatalf("expected %d channels, got %d", len(expected), len(channels))
	}

	for i, want := range expected {
		if channels[i].ID != want.id {
			t.Errorf("channel %d: ID = %q, want %q", i, channels[i].ID, want.id)
		}
		if channels[i].BackendToken != want.token {
			t.Errorf("channel %d: BackendToken = %q, want %q", i, channels[i].BackendToken, want.token)
		}
		if channels[i].Label == "" || channels[i].Placeholder == "" {
			t.Errorf("channel %d is missing display metadata", i)
		}
	}
}

func TestChannels_ReturnsCopy(t *testing.T) {
	channels := Channels()
	channels[0].BackendToken = "tampered"

	again := Channels()
	if again[0].BackendToken != "source_verification" {
		t.Errorf("registry was mutated through returned slice: %q", again[0].BackendToken)
	}
}

func TestParseChannelID(t *testing.T) {
	tests := []struct {
		input   string
		want    ChannelID
		wantErr bool
	}{
		{"source", ChannelSource, false},
		{"  Detail ", ChannelDetail, false},
		{"factual_accuracy_verification", ChannelFactual, false},
		{"TECHNICAL", ChannelTechnical, false},
		{"grammar", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseChannelID(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownChannel) {
				t.Errorf("ParseChannelID(%q) error = %v, want ErrUnknownChannel", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseChannelID(%q) unexpected error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseChannelID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStatusString(t *testing.T) {
	if StatusIdle.String() != "idle" || StatusPending.String() != "pending" ||
		StatusSucceeded.String() != "succeeded" || StatusFailed.String() != "failed" {
		t.Error("unexpected status names")
	}
}

func TestNewAttachedFile_OwnsContent(t *testing.T) {
	data := []byte("hello")
	f := NewAttachedFile(FileInput{Name: "a.txt", Data: data, ModTime: time.Unix(0, 0)}, PreviewHandle{})

	data[0] = 'j'
	if string(f.Content()) != "hello" {
		t.Errorf("attachment content aliased caller buffer: %q", f.Content())
	}

	out := f.Content()
	out[0] = 'x'
	if string(f.Content()) != "hello" {
		t.Errorf("Content() exposed internal buffer")
	}

	if f.Size != 5 {
		t.Errorf("Size = %d, want 5", f.Size)
	}
	if f.Info().HasPreview {
		t.Error("expected no preview for zero handle")
	}
}
