// internal/notion/blocks.go
package notion

import (
	"ticket-bridge/internal/content"
)

// messageBlocks renders one chat message as Notion blocks: a paragraph whose
// first run is the bold author prefix, followed by the message's text and
// hyperlink runs, then one external image block per attachment.
func messageBlocks(authorName string, segments []content.Segment, attachmentURLs []string) []block {
	runs := []richText{
		{
			Type:        "text",
			Text:        textContent{Content: authorName + ": "},
			Annotations: &annotations{Bold: true},
		},
	}

	for _, seg := range segments {
		run := richText{
			Type: "text",
			Text: textContent{Content: seg.Text},
		}
		if seg.URL {
			run.Text.Link = &textLink{URL: seg.Text}
		}
		runs = append(runs, run)
	}

	blocks := []block{
		{
			Object: "block",
			Type:   "paragraph",
			Paragraph: &paragraph{
				RichText: runs,
				Color:    "default",
			},
		},
	}

	for _, url := range attachmentURLs {
		blocks = append(blocks, block{
			Object: "block",
			Type:   "image",
			Image: &image{
				Type:     "external",
				External: externalURL{URL: url},
			},
		})
	}

	return blocks
}

func richTextProperty(value string) map[string]interface{} {
	return map[string]interface{}{
		"rich_text": []map[string]interface{}{
			{"text": map[string]interface{}{"content": value}},
		},
	}
}
