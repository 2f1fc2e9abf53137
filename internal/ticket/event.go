// internal/ticket/event.go
package ticket

// EventType tags the gateway events the bridge reacts to.
type EventType int

const (
	EventChannelCreated EventType = iota
	EventChannelDeleted
	EventChannelRenamed
	EventMessageCreated
)

func (t EventType) String() string {
	switch t {
	case EventChannelCreated:
		return "channel_created"
	case EventChannelDeleted:
		return "channel_deleted"
	case EventChannelRenamed:
		return "channel_renamed"
	case EventMessageCreated:
		return "message_created"
	default:
		return "unknown"
	}
}

// Channel is the slice of a gateway channel the bridge cares about.
type Channel struct {
	ID      string
	GuildID string
	Name    string
}

// JumpURL returns the platform link to the channel, stored on the remote
// record so a reader can jump back to the conversation.
func (c Channel) JumpURL() string {
	return "https://discord.com/channels/" + c.GuildID + "/" + c.ID
}

// Message is the slice of a gateway message the bridge cares about.
type Message struct {
	ID          string
	Content     string
	AuthorID    string
	AuthorName  string
	Mentions    []string // usernames, in mention order
	Attachments []string // attachment URLs, in upload order
}

// Event is the tagged variant dispatched to the bridge. Channel is always
// set; OldName only for renames; Message only for message events.
type Event struct {
	Type    EventType
	Channel Channel
	OldName string
	Message Message
}
