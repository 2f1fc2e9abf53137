// internal/ticket/classifier.go
package ticket

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind classifies a channel name.
type Kind int

const (
	KindUnknown Kind = iota
	KindOpen
	KindClosed
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Classifier matches channel names against the open- and closed-ticket
// patterns. The first capturing group of each pattern is the ticket number.
type Classifier struct {
	open   *regexp.Regexp
	closed *regexp.Regexp
}

func NewClassifier(openPattern, closedPattern string) (*Classifier, error) {
	// Patterns are anchored at the start of the name; a ticket pattern that
	// matches mid-name would misclassify unrelated channels.
	open, err := regexp.Compile("^(?:" + openPattern + ")")
	if err != nil {
		return nil, fmt.Errorf("open ticket pattern: %w", err)
	}
	if open.NumSubexp() < 1 {
		return nil, fmt.Errorf("open ticket pattern %q has no capturing group", openPattern)
	}

	closed, err := regexp.Compile("^(?:" + closedPattern + ")")
	if err != nil {
		return nil, fmt.Errorf("closed ticket pattern: %w", err)
	}
	if closed.NumSubexp() < 1 {
		return nil, fmt.Errorf("closed ticket pattern %q has no capturing group", closedPattern)
	}

	return &Classifier{open: open, closed: closed}, nil
}

// Classify returns the kind of the channel and its ticket number. Names that
// match neither pattern, or whose captured group is not an integer, are
// KindUnknown with number 0.
func (c *Classifier) Classify(name string) (Kind, int) {
	if m := c.open.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return KindOpen, n
		}
	}
	if m := c.closed.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return KindClosed, n
		}
	}
	return KindUnknown, 0
}
