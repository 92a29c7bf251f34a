package discord

import "context"

type FileMessage struct {
	ChannelID string
	Content   string
	Filename  string
	FileBody  []byte
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	JoinVoiceChannel(guildID, channelID string) (VoiceConnection, error)
	SendChannelMessage(channelID, content string) error
	SendChannelMessageWithFile(msg FileMessage) error
}

// VoiceConnection delivers raw Opus packets of everyone speaking in a channel.
type VoiceConnection interface {
	Disconnect() error
	// ReceiveAudio blocks until the connection stops receiving.
	ReceiveAudio(callback func(userID string, opusPacket []byte))
}
