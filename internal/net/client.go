package net

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Client renders battle messages to a terminal and reads numbered choices.
type Client struct {
	t   Transport
	in  *bufio.Reader
	out io.Writer
}

// NewClient creates a REPL client over t.
func NewClient(t Transport, in io.Reader, out io.Writer) *Client {
	return &Client{t: t, in: bufio.NewReader(in), out: out}
}

// RunREPL reads server messages and handles them interactively until the
// battle ends. It returns the final outcome ("win", "loss" or "exited").
func (c *Client) RunREPL(ctx context.Context) (string, error) {
	for {
		var msg ServerMessage
		if err := c.t.Recv(ctx, &msg); err != nil {
			return "", fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case "notify":
			c.renderEvent(msg.Event)

		case "choose_action":
			c.renderState(msg.State)
			c.renderActions(msg.Actions)
			idx, err := c.readChoice(len(msg.Actions))
			if err != nil {
				return "", err
			}
			if err := c.t.Send(ctx, ClientMessage{Type: "action", Index: idx}); err != nil {
				return "", fmt.Errorf("send action: %w", err)
			}

		case "error":
			fmt.Fprintf(c.out, "! %s\n", msg.Result)

		case "game_over":
			c.renderGameOver(msg)
			return msg.Outcome, nil
		}
	}
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	phase := ev.Phase
	for len(phase) < 14 {
		phase += " "
	}
	fmt.Fprintf(c.out, "T%-2d %s| %s\n", ev.Turn, phase, ev.Details)
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}
	w := c.out
	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════╗")
	fmt.Fprintf(w, "║  ENEMY   %s\n", formatRow(sv.Enemy))
	fmt.Fprintln(w, "║──────────────────────────────────────────────────────")
	fmt.Fprintf(w, "║  ACTIVE  %s\n", formatRow(sv.Active))
	fmt.Fprintf(w, "║  Energy: %d  Draw pile: %d  Discard: %d  Defeated: %d\n",
		sv.Energy, sv.DrawPileCount, sv.DiscardCount, len(sv.Defeated))
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════╝")
	fmt.Fprintf(w, "Turn %d | %s\n", sv.Turn, sv.Phase)

	if len(sv.Hand) > 0 {
		fmt.Fprint(w, "\nHand: ")
		for i, cv := range sv.Hand {
			mark := ""
			if !cv.Playable {
				mark = "*"
			}
			fmt.Fprintf(w, "[%d] %s (%d)%s  ", i+1, cv.Name, cv.Cost, mark)
		}
		fmt.Fprintln(w)
	}
}

func formatRow(cards []CardView) string {
	if len(cards) == 0 {
		return "[ ]"
	}
	parts := make([]string, 0, len(cards))
	for _, cv := range cards {
		s := fmt.Sprintf("[%s %d/%d]", cv.Name, cv.Attack, cv.HP)
		if cv.Attacked {
			s += "z"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func (c *Client) renderActions(actions []ActionView) {
	fmt.Fprintln(c.out, "\nActions:")
	for _, a := range actions {
		fmt.Fprintf(c.out, "  %d) %s\n", a.Index+1, a.Desc)
	}
}

// readChoice returns a 0-indexed choice. Input ends are reported as io.EOF.
func (c *Client) readChoice(count int) (int, error) {
	for {
		fmt.Fprint(c.out, "> ")
		line, err := c.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" && err != nil {
			return 0, fmt.Errorf("read choice: %w", err)
		}
		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > count {
			fmt.Fprintf(c.out, "Enter a number between 1 and %d\n", count)
			if err != nil {
				return 0, fmt.Errorf("read choice: %w", err)
			}
			continue
		}
		return n - 1, nil
	}
}

func (c *Client) renderGameOver(msg ServerMessage) {
	w := c.out
	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════")
	switch msg.Outcome {
	case "win":
		fmt.Fprintln(w, "          VICTORY")
	case "loss":
		fmt.Fprintln(w, "          DEFEAT")
	default:
		fmt.Fprintln(w, "          BATTLE LEFT")
	}
	fmt.Fprintln(w, "═══════════════════════════════════")
	if msg.Result != "" {
		fmt.Fprintln(w, msg.Result)
		fmt.Fprintln(w, "═══════════════════════════════════")
	}
}
