// Package hass fetches the entities a Home Assistant instance exposes
// to voice assistants, for use as list values in sentences templates.
package hass

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gorilla/websocket"
)

// Client talks to the Home Assistant websocket API.
type Client struct {
	Host     string
	Port     int
	Protocol string // "http" or "https"
	Token    string
}

// message is the envelope for websocket API frames.
type message struct {
	ID          int             `json:"id,omitempty"`
	Type        string          `json:"type"`
	AccessToken string          `json:"access_token,omitempty"`
	Success     *bool           `json:"success,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

type state struct {
	EntityID   string `json:"entity_id"`
	Attributes struct {
		FriendlyName string `json:"friendly_name"`
	} `json:"attributes"`
}

type exposeResult struct {
	ExposedEntities map[string]map[string]bool `json:"exposed_entities"`
}

// WebsocketURL returns the ws:// or wss:// endpoint.
func (c *Client) WebsocketURL() string {
	scheme := "ws"
	if c.Protocol == "https" {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d/api/websocket", scheme, c.Host, c.Port)
}

// ExposedLists returns the friendly names of entities exposed to the
// conversation assistant, grouped by entity domain (light, switch, ...).
func (c *Client) ExposedLists(ctx context.Context) (map[string][]string, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.WebsocketURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("connect to home assistant: %w", err)
	}
	defer conn.Close()

	if err := c.authenticate(conn); err != nil {
		return nil, err
	}

	var exposed exposeResult
	if err := c.command(conn, 1, "homeassistant/expose_entity/list", &exposed); err != nil {
		return nil, err
	}

	var states []state
	if err := c.command(conn, 2, "get_states", &states); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(states))
	for _, s := range states {
		name := s.Attributes.FriendlyName
		if name == "" {
			name = s.EntityID
		}
		names[s.EntityID] = name
	}

	lists := make(map[string][]string)
	for entityID, assistants := range exposed.ExposedEntities {
		if !assistants["conversation"] {
			continue
		}
		domain, _, _ := strings.Cut(entityID, ".")
		name, ok := names[entityID]
		if !ok {
			name = entityID
		}
		lists[domain] = append(lists[domain], name)
	}
	for domain := range lists {
		sort.Strings(lists[domain])
	}
	return lists, nil
}

// authenticate performs the auth handshake. The server always opens
// with auth_required.
func (c *Client) authenticate(conn *websocket.Conn) error {
	var hello message
	if err := conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("read auth_required: %w", err)
	}
	if hello.Type != "auth_required" {
		return fmt.Errorf("unexpected frame %q, want auth_required", hello.Type)
	}

	if err := conn.WriteJSON(message{Type: "auth", AccessToken: c.Token}); err != nil {
		return fmt.Errorf("send auth: %w", err)
	}

	var reply message
	if err := conn.ReadJSON(&reply); err != nil {
		return fmt.Errorf("read auth reply: %w", err)
	}
	if reply.Type != "auth_ok" {
		return fmt.Errorf("authentication failed: %s", reply.Type)
	}
	return nil
}

// command sends one command and decodes the matching result frame.
func (c *Client) command(conn *websocket.Conn, id int, cmdType string, result any) error {
	if err := conn.WriteJSON(message{ID: id, Type: cmdType}); err != nil {
		return fmt.Errorf("send %s: %w", cmdType, err)
	}

	for {
		var reply message
		if err := conn.ReadJSON(&reply); err != nil {
			return fmt.Errorf("read %s result: %w", cmdType, err)
		}
		if reply.Type != "result" || reply.ID != id {
			// Event frames and unrelated results are skipped.
			continue
		}
		if reply.Success != nil && !*reply.Success {
			return fmt.Errorf("%s failed", cmdType)
		}
		if result != nil && len(reply.Result) > 0 {
			if err := json.Unmarshal(reply.Result, result); err != nil {
				return fmt.Errorf("decode %s result: %w", cmdType, err)
			}
		}
		return nil
	}
}
