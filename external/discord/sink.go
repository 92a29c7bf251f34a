package discord

import (
	"context"
	"fmt"

	discordpkg "github.com/foxseedlab/vox/internal/discord"
	"github.com/foxseedlab/vox/internal/output"
)

// ChannelSink posts each translation to a text channel.
type ChannelSink struct {
	client    discordpkg.Client
	channelID string
}

func NewChannelSink(client discordpkg.Client, channelID string) *ChannelSink {
	return &ChannelSink{client: client, channelID: channelID}
}

func (s *ChannelSink) Name() string { return "discord" }

func (s *ChannelSink) Emit(ctx context.Context, out output.Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.client.SendChannelMessage(s.channelID, formatMessage(out))
}

func (s *ChannelSink) PublishTranscript(ctx context.Context, tr output.Transcript) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.client.SendChannelMessageWithFile(discordpkg.FileMessage{
		ChannelID: s.channelID,
		Content:   fmt.Sprintf("Transcript for session `%s`", tr.SessionID),
		Filename:  tr.Filename,
		FileBody:  tr.Body,
	})
}

func formatMessage(out output.Output) string {
	if out.Source == "" || out.Source == out.Text {
		return out.Text
	}
	return fmt.Sprintf("%s\n> %s", out.Text, out.Source)
}
