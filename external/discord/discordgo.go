package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/foxseedlab/vox/internal/discord"
)

var errNotConnected = errors.New("discord session is not connected")

type Client struct {
	mu      sync.Mutex
	session *discordgo.Session
	token   string
}

func NewClient(token string) discordpkg.Client {
	return &Client{token: token}
}

func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsGuildVoiceStates | discordgo.IntentsGuildMessages)
	s.State.TrackVoice = true
	if err := s.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	c.session = s
	if s.State != nil && s.State.User != nil {
		slog.Info("connected to discord", "bot_user_id", s.State.User.ID)
	}
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}

func (c *Client) current() (*discordgo.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, errNotConnected
	}
	return c.session, nil
}

// JoinVoiceChannel joins muted and undeafened so the bot only listens.
func (c *Client) JoinVoiceChannel(guildID, channelID string) (discordpkg.VoiceConnection, error) {
	s, err := c.current()
	if err != nil {
		return nil, err
	}
	vc, err := s.ChannelVoiceJoin(guildID, channelID, true, false)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel %s: %w", channelID, err)
	}
	return &voiceConnectionImpl{vc: vc, done: make(chan struct{})}, nil
}

func (c *Client) SendChannelMessage(channelID, content string) error {
	s, err := c.current()
	if err != nil {
		return err
	}
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		return describeRESTError(channelID, err)
	}
	return nil
}

func (c *Client) SendChannelMessageWithFile(msg discordpkg.FileMessage) error {
	s, err := c.current()
	if err != nil {
		return err
	}
	_, err = s.ChannelMessageSendComplex(msg.ChannelID, &discordgo.MessageSend{
		Content: msg.Content,
		Files: []*discordgo.File{
			{Name: msg.Filename, ContentType: "text/plain", Reader: bytes.NewReader(msg.FileBody)},
		},
	})
	if err != nil {
		return describeRESTError(msg.ChannelID, err)
	}
	return nil
}

func describeRESTError(channelID string, err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("discord channel %s not found: %w", channelID, err)
		case http.StatusForbidden:
			return fmt.Errorf("missing permission to post in discord channel %s: %w", channelID, err)
		}
	}
	return fmt.Errorf("failed to post to discord channel %s: %w", channelID, err)
}

type voiceConnectionImpl struct {
	vc   *discordgo.VoiceConnection
	done chan struct{}
	once sync.Once
}

// Disconnect also ends ReceiveAudio; discordgo never closes OpusRecv itself.
func (v *voiceConnectionImpl) Disconnect() error {
	v.once.Do(func() { close(v.done) })
	return v.vc.Disconnect()
}

func (v *voiceConnectionImpl) ReceiveAudio(callback func(userID string, opusPacket []byte)) {
	if v.vc.OpusRecv == nil {
		return
	}
	ssrcToUser := make(map[uint32]string)
	var mu sync.RWMutex
	v.vc.AddHandler(func(vc *discordgo.VoiceConnection, vs *discordgo.VoiceSpeakingUpdate) {
		if !vs.Speaking {
			return
		}
		mu.Lock()
		ssrcToUser[uint32(vs.SSRC)] = vs.UserID
		mu.Unlock()
	})
	for {
		var p *discordgo.Packet
		var ok bool
		select {
		case <-v.done:
			return
		case p, ok = <-v.vc.OpusRecv:
			if !ok {
				return
			}
		}
		if p == nil || len(p.Opus) == 0 {
			continue
		}
		mu.RLock()
		userID := ssrcToUser[p.SSRC]
		mu.RUnlock()
		if userID == "" {
			userID = strconv.FormatUint(uint64(p.SSRC), 10)
		}
		callback(userID, p.Opus)
	}
}
