// internal/discord/gateway.go

// Package discord adapts the discordgo session to the bridge: it subscribes
// to the channel and message events, translates them into the tagged event
// variant, and forwards them one at a time.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"ticket-bridge/internal/common/logger"
	"ticket-bridge/internal/ticket"
)

// Sink receives translated gateway events. *bridge.Bridge implements it.
type Sink interface {
	HandleEvent(ctx context.Context, ev ticket.Event)
}

type Gateway struct {
	session *discordgo.Session
	sink    Sink
	logger  logger.Logger
}

// NewGateway builds a session subscribed to channel create/delete/update and
// message create. SyncEvents keeps delivery sequential so each event is
// handled to completion before the next, blocking remote calls included.
func NewGateway(botToken string, sink Sink, log logger.Logger) (*Gateway, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent
	session.SyncEvents = true

	g := &Gateway{
		session: session,
		sink:    sink,
		logger:  log,
	}

	session.AddHandler(g.onReady)
	session.AddHandler(g.onChannelCreate)
	session.AddHandler(g.onChannelDelete)
	session.AddHandler(g.onChannelUpdate)
	session.AddHandler(g.onMessageCreate)

	return g, nil
}

// Open connects to the gateway and starts delivering events.
func (g *Gateway) Open() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (g *Gateway) Close() error {
	return g.session.Close()
}

func (g *Gateway) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	g.logger.Info("logged in to discord", map[string]interface{}{
		"username": r.User.Username,
	})
}

func (g *Gateway) onChannelCreate(_ *discordgo.Session, e *discordgo.ChannelCreate) {
	g.sink.HandleEvent(context.Background(), ticket.Event{
		Type:    ticket.EventChannelCreated,
		Channel: channelOf(e.Channel),
	})
}

func (g *Gateway) onChannelDelete(_ *discordgo.Session, e *discordgo.ChannelDelete) {
	g.sink.HandleEvent(context.Background(), ticket.Event{
		Type:    ticket.EventChannelDeleted,
		Channel: channelOf(e.Channel),
	})
}

func (g *Gateway) onChannelUpdate(_ *discordgo.Session, e *discordgo.ChannelUpdate) {
	if e.BeforeUpdate == nil {
		// State cache missed the channel; without the old name a rename
		// cannot be classified.
		g.logger.Debug("channel update without cached previous state", map[string]interface{}{
			"channelId": e.ID,
		})
		return
	}
	if e.BeforeUpdate.Name == e.Name {
		return
	}

	g.sink.HandleEvent(context.Background(), ticket.Event{
		Type:    ticket.EventChannelRenamed,
		Channel: channelOf(e.Channel),
		OldName: e.BeforeUpdate.Name,
	})
}

func (g *Gateway) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	ch, err := s.State.Channel(m.ChannelID)
	if err != nil {
		ch, err = s.Channel(m.ChannelID)
		if err != nil {
			g.logger.WithError(err).Error("failed to resolve channel for message", map[string]interface{}{
				"channelId": m.ChannelID,
			})
			return
		}
	}

	mentions := make([]string, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		mentions = append(mentions, u.Username)
	}

	attachments := make([]string, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, a.URL)
	}

	g.sink.HandleEvent(context.Background(), ticket.Event{
		Type:    ticket.EventMessageCreated,
		Channel: channelOf(ch),
		Message: ticket.Message{
			ID:          m.ID,
			Content:     m.Content,
			AuthorID:    m.Author.ID,
			AuthorName:  m.Author.Username,
			Mentions:    mentions,
			Attachments: attachments,
		},
	})
}

func channelOf(c *discordgo.Channel) ticket.Channel {
	return ticket.Channel{
		ID:      c.ID,
		GuildID: c.GuildID,
		Name:    c.Name,
	}
}
