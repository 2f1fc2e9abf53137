// internal/notion/client.go

// Package notion is a thin client for the subset of the Notion API the
// bridge uses: page creation and updates in the ticket database, block
// appends, and one-time database provisioning.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ticket-bridge/internal/content"
)

const (
	apiVersion = "2022-06-28"

	statusOpen   = "Open 🔓"
	statusClosed = "Closed ✅"
	pageIcon     = "🎫"
)

type Client struct {
	token      string
	databaseID string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Notion client for one ticket database. baseURL is
// normally "https://api.notion.com/v1"; tests point it at a local server.
func NewClient(token, databaseID, baseURL string) *Client {
	return &Client{
		token:      token,
		databaseID: databaseID,
		baseURL:    baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// CreateRecord creates a page for a new ticket and returns its ID.
func (c *Client) CreateRecord(ctx context.Context, ticketNumber int, channelURL string, createdAt time.Time) (string, error) {
	payload := map[string]interface{}{
		"parent": map[string]interface{}{"database_id": c.databaseID},
		"icon":   map[string]interface{}{"emoji": pageIcon},
		"properties": map[string]interface{}{
			"Name": map[string]interface{}{
				"title": []map[string]interface{}{
					{"text": map[string]interface{}{"content": fmt.Sprintf("Ticket #%d", ticketNumber)}},
				},
			},
			"Ticket Status": map[string]interface{}{
				"select": map[string]interface{}{"name": statusOpen},
			},
			"Created At": map[string]interface{}{
				"date": map[string]interface{}{"start": createdAt.Format(time.RFC3339)},
			},
			"Related Links": map[string]interface{}{
				"url": channelURL,
			},
		},
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/pages", payload, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("no page id in response")
	}
	return resp.ID, nil
}

// CloseRecord marks a ticket page closed and stamps the closing time.
func (c *Client) CloseRecord(ctx context.Context, recordID string, closedAt time.Time) error {
	payload := map[string]interface{}{
		"properties": map[string]interface{}{
			"Ticket Status": map[string]interface{}{
				"select": map[string]interface{}{"name": statusClosed},
			},
			"Closed At": map[string]interface{}{
				"date": map[string]interface{}{"start": closedAt.Format(time.RFC3339)},
			},
		},
	}
	return c.do(ctx, http.MethodPatch, "/pages/"+recordID, payload, nil)
}

// SetAuthor fills the page's Author property.
func (c *Client) SetAuthor(ctx context.Context, recordID, username string) error {
	payload := map[string]interface{}{
		"properties": map[string]interface{}{
			"Author": richTextProperty(username),
		},
	}
	return c.do(ctx, http.MethodPatch, "/pages/"+recordID, payload, nil)
}

// SetClosedBy fills the page's Closed By property.
func (c *Client) SetClosedBy(ctx context.Context, recordID, username string) error {
	payload := map[string]interface{}{
		"properties": map[string]interface{}{
			"Closed By": richTextProperty(username),
		},
	}
	return c.do(ctx, http.MethodPatch, "/pages/"+recordID, payload, nil)
}

// AppendMessage appends one chat message to a ticket page as a paragraph
// block (bold author prefix, text and hyperlink runs) plus an external image
// block per attachment.
func (c *Client) AppendMessage(ctx context.Context, recordID, authorName string, segments []content.Segment, attachmentURLs []string) error {
	payload := map[string]interface{}{
		"children": messageBlocks(authorName, segments, attachmentURLs),
	}
	return c.do(ctx, http.MethodPatch, "/blocks/"+recordID+"/children", payload, nil)
}

// ProvisionDatabase writes the ticket database's title, description, and
// property schema. Run once via the init command.
func (c *Client) ProvisionDatabase(ctx context.Context) error {
	payload := map[string]interface{}{
		"title": []map[string]interface{}{
			{"text": map[string]interface{}{"content": "Discord Tickets 🎫"}},
		},
		"description": []map[string]interface{}{
			{"text": map[string]interface{}{"content": "Database for Discord support tickets. Each ticket is a page in this database; messages in the ticket channels are appended to the page in real time."}},
		},
		"properties": map[string]interface{}{
			"Name": map[string]interface{}{"title": map[string]interface{}{}},
			"Ticket Status": map[string]interface{}{
				"select": map[string]interface{}{
					"options": []map[string]interface{}{
						{"name": statusOpen, "color": "yellow"},
						{"name": statusClosed, "color": "green"},
					},
				},
			},
			"Created At":    map[string]interface{}{"date": map[string]interface{}{}},
			"Closed At":     map[string]interface{}{"date": map[string]interface{}{}},
			"Author":        map[string]interface{}{"rich_text": map[string]interface{}{}},
			"Closed By":     map[string]interface{}{"rich_text": map[string]interface{}{}},
			"Related Links": map[string]interface{}{"url": map[string]interface{}{}},
		},
	}
	return c.do(ctx, http.MethodPatch, "/databases/"+c.databaseID, payload, nil)
}
