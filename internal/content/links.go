// internal/content/links.go

// Package content decomposes message text into the ordered plain-text and
// URL segments that become rich-text runs on the remote record.
package content

import "regexp"

var urlRegex = regexp.MustCompile(`(.*?)(https?://[^\s]+)`)

// Segment is a span of message text. URL segments become hyperlinks.
type Segment struct {
	Text string
	URL  bool
}

// SplitLinks splits a message into plain-text and URL segments in original
// order. A message without URLs is returned as a single plain segment, and
// concatenating the segment texts always reproduces the input.
func SplitLinks(msg string) []Segment {
	matches := urlRegex.FindAllStringSubmatchIndex(msg, -1)
	if len(matches) == 0 {
		return []Segment{{Text: msg}}
	}

	var segments []Segment
	last := 0
	for _, m := range matches {
		urlStart, urlEnd := m[4], m[5]
		if urlStart > last {
			segments = append(segments, Segment{Text: msg[last:urlStart]})
		}
		segments = append(segments, Segment{Text: msg[urlStart:urlEnd], URL: true})
		last = urlEnd
	}
	if last < len(msg) {
		segments = append(segments, Segment{Text: msg[last:]})
	}
	return segments
}
