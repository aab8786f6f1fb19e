package net

// Message types for the JSON battle protocol. The same envelopes travel over
// a local pipe (skirmish-cli play) and over websockets (/ws/battles/{id}).

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"` // "notify", "choose_action", "game_over" or "error"

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For "choose_action"
	Actions []ActionView `json:"actions,omitempty"`
	State   *StateView   `json:"state,omitempty"`

	// For "game_over" and "error"
	Outcome string `json:"outcome,omitempty"`
	Result  string `json:"result,omitempty"`
}

// EventView is a simplified combat event for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Side    string `json:"side"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// ActionView is a numbered action choice.
type ActionView struct {
	Index      int    `json:"index"`
	Type       string `json:"type"`
	Desc       string `json:"desc"`
	InstanceID int    `json:"instanceId,omitempty"`
	TargetID   int    `json:"targetId,omitempty"`
}

// CardView describes one card instance on the table.
type CardView struct {
	InstanceID int    `json:"instanceId"`
	CardID     int    `json:"cardId"`
	Name       string `json:"name"`
	Cost       int    `json:"cost"`
	Attack     int    `json:"attack"`
	HP         int    `json:"hp"`
	MaxHP      int    `json:"maxHp"`
	Attacked   bool   `json:"attacked,omitempty"`
	Playable   bool   `json:"playable,omitempty"`
}

// StateView is the battle state as the player sees it.
type StateView struct {
	Turn          int        `json:"turn"`
	Phase         string     `json:"phase"`
	Energy        int        `json:"energy"`
	Hand          []CardView `json:"hand"`
	Active        []CardView `json:"active"`
	Enemy         []CardView `json:"enemy"`
	Defeated      []CardView `json:"defeated"`
	DrawPileCount int        `json:"drawPileCount"`
	DiscardCount  int        `json:"discardCount"`
	Over          bool       `json:"over"`
	Closed        bool       `json:"closed"`
	Result        string     `json:"result,omitempty"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"` // "action"

	// For "action"
	Index int `json:"index"`
}

// --- REST ---

// SessionView is returned by the battle REST endpoints.
type SessionView struct {
	ID       string       `json:"id"`
	BattleID *int         `json:"battleID"` // nil for a random battle
	State    *StateView   `json:"state"`
	Actions  []ActionView `json:"actions"`
	Events   []EventView  `json:"events"`
	Outcome  string       `json:"outcome,omitempty"`
}

// StartRequest is the body of POST /api/battles/start.
type StartRequest struct {
	BattleID *int `json:"battleID,omitempty"`
	Ladder   bool `json:"ladder,omitempty"` // take the next ladder battle instead
}
