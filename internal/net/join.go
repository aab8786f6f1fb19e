package net

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/coder/websocket"
)

// Join starts a battle on a running skirmish-web server and plays it from
// the terminal over a websocket.
func Join(ctx context.Context, baseURL string, req StartRequest, in io.Reader, out io.Writer) (string, error) {
	baseURL = strings.TrimRight(baseURL, "/")

	sess, err := startRemote(ctx, baseURL, req)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(out, "Joined battle session %s\n", sess.ID)

	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws/battles/" + sess.ID
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.CloseNow()

	client := NewClient(NewWSTransport(conn), in, out)
	outcome, err := client.RunREPL(ctx)
	if err != nil {
		return "", err
	}
	conn.Close(websocket.StatusNormalClosure, "")
	return outcome, nil
}

func startRemote(ctx context.Context, baseURL string, req StartRequest) (*SessionView, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode start request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/battles/start", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build start request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("start battle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return nil, fmt.Errorf("start battle: %s: %s", resp.Status, apiErr.Error)
	}

	var sess SessionView
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}
