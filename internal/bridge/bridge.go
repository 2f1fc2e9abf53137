// internal/bridge/bridge.go

// Package bridge holds the channel-lifecycle-to-record state machine and the
// message router. Every remote failure is logged and swallowed: the bridge
// never retries, never propagates, and never terminates the process.
package bridge

import (
	"context"
	"strings"
	"time"

	"ticket-bridge/internal/common/logger"
	"ticket-bridge/internal/common/metrics"
	"ticket-bridge/internal/content"
	"ticket-bridge/internal/store"
	"ticket-bridge/internal/ticket"
)

// RecordAPI is the narrow slice of the workspace API the bridge needs.
// *notion.Client implements it; tests substitute fakes.
type RecordAPI interface {
	CreateRecord(ctx context.Context, ticketNumber int, channelURL string, createdAt time.Time) (string, error)
	CloseRecord(ctx context.Context, recordID string, closedAt time.Time) error
	SetAuthor(ctx context.Context, recordID, username string) error
	SetClosedBy(ctx context.Context, recordID, username string) error
	AppendMessage(ctx context.Context, recordID, authorName string, segments []content.Segment, attachmentURLs []string) error
}

// Config holds the message-routing settings.
type Config struct {
	// TicketBotID is the user ID of the ticket-tool bot whose messages carry
	// the resolution markers. Messages from this ID are never mirrored.
	TicketBotID string
	// StartMarker marks the bot message whose first mention is the ticket
	// author.
	StartMarker string
	// ClosedByMarker marks the bot message whose first mention closed the
	// ticket. Empty disables closed-by resolution.
	ClosedByMarker string
}

type Bridge struct {
	config     *Config
	classifier *ticket.Classifier
	store      store.Store
	records    RecordAPI
	logger     logger.Logger
	now        func() time.Time
}

func New(config *Config, classifier *ticket.Classifier, st store.Store, records RecordAPI, log logger.Logger) *Bridge {
	return &Bridge{
		config:     config,
		classifier: classifier,
		store:      st,
		records:    records,
		logger:     log,
		now:        time.Now,
	}
}

// HandleEvent routes one gateway event. It always returns with the event
// fully handled; failures are logged, counted, and dropped.
func (b *Bridge) HandleEvent(ctx context.Context, ev ticket.Event) {
	metrics.EventsHandled.WithLabelValues(ev.Type.String()).Inc()

	switch ev.Type {
	case ticket.EventChannelCreated:
		b.handleChannelCreated(ctx, ev)
	case ticket.EventChannelDeleted:
		b.handleChannelDeleted(ctx, ev)
	case ticket.EventChannelRenamed:
		b.handleChannelRenamed(ctx, ev)
	case ticket.EventMessageCreated:
		b.handleMessage(ctx, ev)
	}
}

func (b *Bridge) handleChannelCreated(ctx context.Context, ev ticket.Event) {
	kind, number := b.classifier.Classify(ev.Channel.Name)
	if kind != ticket.KindOpen {
		return
	}

	if existing, ok := b.store.Get(number); ok {
		// The record ID is assigned once and never reassigned.
		b.logger.Debug("ticket already mapped, skipping create", map[string]interface{}{
			"ticket":   number,
			"recordId": existing,
		})
		return
	}

	recordID, err := b.records.CreateRecord(ctx, number, ev.Channel.JumpURL(), b.now())
	if err != nil {
		metrics.RemoteCallFailures.WithLabelValues("create_record").Inc()
		b.logger.WithError(err).Error("failed to create record for ticket", map[string]interface{}{
			"ticket": number,
		})
		return
	}

	if err := b.store.Put(ctx, number, recordID); err != nil {
		b.logger.WithError(err).Error("failed to persist ticket mapping", map[string]interface{}{
			"ticket":   number,
			"recordId": recordID,
		})
		return
	}

	metrics.RecordsCreated.Inc()
	b.logger.Info("created record for ticket", map[string]interface{}{
		"ticket":   number,
		"recordId": recordID,
	})
}

func (b *Bridge) handleChannelDeleted(ctx context.Context, ev ticket.Event) {
	kind, number := b.classifier.Classify(ev.Channel.Name)
	if kind != ticket.KindOpen {
		return
	}
	b.closeTicket(ctx, number)
}

func (b *Bridge) handleChannelRenamed(ctx context.Context, ev ticket.Event) {
	oldKind, _ := b.classifier.Classify(ev.OldName)
	if oldKind != ticket.KindOpen {
		return
	}

	newKind, number := b.classifier.Classify(ev.Channel.Name)
	if newKind != ticket.KindClosed {
		return
	}
	b.closeTicket(ctx, number)
}

func (b *Bridge) closeTicket(ctx context.Context, number int) {
	recordID, ok := b.store.Get(number)
	if !ok {
		b.logger.Error("no record mapped for ticket", map[string]interface{}{
			"ticket": number,
		})
		return
	}

	if err := b.records.CloseRecord(ctx, recordID, b.now()); err != nil {
		metrics.RemoteCallFailures.WithLabelValues("close_record").Inc()
		b.logger.WithError(err).Error("failed to close record for ticket", map[string]interface{}{
			"ticket":   number,
			"recordId": recordID,
		})
		return
	}

	b.logger.Info("closed record for ticket", map[string]interface{}{
		"ticket":   number,
		"recordId": recordID,
	})
}

func (b *Bridge) handleMessage(ctx context.Context, ev ticket.Event) {
	kind, number := b.classifier.Classify(ev.Channel.Name)
	if kind == ticket.KindUnknown {
		return
	}

	msg := ev.Message
	fromBot := msg.AuthorID == b.config.TicketBotID

	switch {
	case kind == ticket.KindOpen && fromBot && b.config.StartMarker != "" && strings.Contains(msg.Content, b.config.StartMarker):
		b.resolveAuthor(ctx, number, msg)
	case fromBot && b.config.ClosedByMarker != "" && strings.Contains(msg.Content, b.config.ClosedByMarker):
		b.resolveClosedBy(ctx, number, msg)
	case kind == ticket.KindOpen && !fromBot:
		b.appendContent(ctx, number, msg)
	}
}

func (b *Bridge) resolveAuthor(ctx context.Context, number int, msg ticket.Message) {
	if len(msg.Mentions) == 0 {
		b.logger.Error("no user mentioned in ticket start message", map[string]interface{}{
			"ticket":  number,
			"content": msg.Content,
		})
		return
	}
	username := msg.Mentions[0]

	recordID, ok := b.store.Get(number)
	if !ok {
		b.logger.Error("no record mapped for ticket", map[string]interface{}{
			"ticket": number,
		})
		return
	}

	b.logger.Info("resolving ticket author", map[string]interface{}{
		"ticket":   number,
		"username": username,
		"recordId": recordID,
	})

	if err := b.records.SetAuthor(ctx, recordID, username); err != nil {
		metrics.RemoteCallFailures.WithLabelValues("set_author").Inc()
		b.logger.WithError(err).Error("failed to resolve ticket author", map[string]interface{}{
			"ticket": number,
		})
	}
}

func (b *Bridge) resolveClosedBy(ctx context.Context, number int, msg ticket.Message) {
	if len(msg.Mentions) == 0 {
		b.logger.Error("no user mentioned in closed-by message", map[string]interface{}{
			"ticket":  number,
			"content": msg.Content,
		})
		return
	}
	username := msg.Mentions[0]

	recordID, ok := b.store.Get(number)
	if !ok {
		b.logger.Error("no record mapped for ticket", map[string]interface{}{
			"ticket": number,
		})
		return
	}

	b.logger.Info("resolving ticket closer", map[string]interface{}{
		"ticket":   number,
		"username": username,
		"recordId": recordID,
	})

	if err := b.records.SetClosedBy(ctx, recordID, username); err != nil {
		metrics.RemoteCallFailures.WithLabelValues("set_closed_by").Inc()
		b.logger.WithError(err).Error("failed to resolve ticket closer", map[string]interface{}{
			"ticket": number,
		})
	}
}

func (b *Bridge) appendContent(ctx context.Context, number int, msg ticket.Message) {
	recordID, ok := b.store.Get(number)
	if !ok {
		b.logger.Error("no record mapped for ticket", map[string]interface{}{
			"ticket": number,
		})
		return
	}

	segments := content.SplitLinks(msg.Content)

	if err := b.records.AppendMessage(ctx, recordID, msg.AuthorName, segments, msg.Attachments); err != nil {
		metrics.RemoteCallFailures.WithLabelValues("append_message").Inc()
		b.logger.WithError(err).Error("failed to append message to record", map[string]interface{}{
			"ticket":   number,
			"recordId": recordID,
		})
		return
	}

	metrics.MessagesAppended.Inc()
	b.logger.Info("appended message to record", map[string]interface{}{
		"ticket":   number,
		"recordId": recordID,
	})
}
