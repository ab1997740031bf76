package hass

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strconv"
	"testing"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// fakeHass speaks enough of the websocket API for the client.
func fakeHass(t *testing.T, wantToken string) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		conn.WriteJSON(map[string]any{"type": "auth_required"})

		var auth struct {
			Type        string `json:"type"`
			AccessToken string `json:"access_token"`
		}
		if err := conn.ReadJSON(&auth); err != nil {
			return
		}
		if auth.AccessToken != wantToken {
			conn.WriteJSON(map[string]any{"type": "auth_invalid"})
			return
		}
		conn.WriteJSON(map[string]any{"type": "auth_ok"})

		for {
			var cmd struct {
				ID   int    `json:"id"`
				Type string `json:"type"`
			}
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			var result any
			switch cmd.Type {
			case "homeassistant/expose_entity/list":
				result = map[string]any{
					"exposed_entities": map[string]any{
						"light.kitchen":  map[string]bool{"conversation": true},
						"light.hallway":  map[string]bool{"conversation": true},
						"switch.heater":  map[string]bool{"conversation": true},
						"camera.doorbel": map[string]bool{"conversation": false},
					},
				}
			case "get_states":
				result = []map[string]any{
					{"entity_id": "light.kitchen", "attributes": map[string]any{"friendly_name": "Kitchen Light"}},
					{"entity_id": "light.hallway", "attributes": map[string]any{"friendly_name": "Hallway Light"}},
					{"entity_id": "switch.heater", "attributes": map[string]any{}},
				}
			default:
				result = nil
			}
			raw, _ := json.Marshal(result)
			conn.WriteJSON(map[string]any{
				"id": cmd.ID, "type": "result", "success": true,
				"result": json.RawMessage(raw),
			})
		}
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(u.Port())
	return &Client{Host: u.Hostname(), Port: port, Protocol: "http", Token: wantToken}
}

func TestExposedLists(t *testing.T) {
	client := fakeHass(t, "token123")

	lists, err := client.ExposedLists(context.Background())
	if err != nil {
		t.Fatalf("ExposedLists: %v", err)
	}

	want := map[string][]string{
		"light":  {"Hallway Light", "Kitchen Light"},
		"switch": {"switch.heater"}, // falls back to entity id without a friendly name
	}
	if !reflect.DeepEqual(lists, want) {
		t.Fatalf("ExposedLists = %v, want %v", lists, want)
	}
}

func TestAuthFailure(t *testing.T) {
	client := fakeHass(t, "token123")
	client.Token = "wrong"

	_, err := client.ExposedLists(context.Background())
	if err == nil {
		t.Fatal("expected auth failure")
	}
}

func TestWebsocketURL(t *testing.T) {
	c := &Client{Host: "ha.local", Port: 8123, Protocol: "http"}
	if got := c.WebsocketURL(); got != "ws://ha.local:8123/api/websocket" {
		t.Fatalf("WebsocketURL = %q", got)
	}
	c.Protocol = "https"
	if got := c.WebsocketURL(); got != "wss://ha.local:8123/api/websocket" {
		t.Fatalf("WebsocketURL = %q", got)
	}
}
