package server

import (
	"encoding/json"

	"WaveDefence/internal/game"
	"WaveDefence/internal/host"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type connectDTO struct {
	Name string `json:"name"`
}

type launchDTO struct {
	Zone game.ZoneID `json:"zone"`
}

type inviteDTO struct {
	Player game.PlayerID `json:"player"`
}

type destroyDTO struct {
	Entity game.EntityID `json:"entity"`
}

type commandDTO struct {
	Line string `json:"line"`
}

// frame is every server to client message on /ws.
type frame struct {
	Type     string         `json:"type"`
	Player   game.PlayerID  `json:"player,omitempty"`
	Ship     game.EntityID  `json:"ship,omitempty"`
	Group    game.GroupID   `json:"group,omitempty"`
	Error    string         `json:"error,omitempty"`
	Messages []host.Message `json:"messages,omitempty"`
}

type eventFrame struct {
	Type  string     `json:"type"`
	Event game.Event `json:"event"`
}

type healthDTO struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Dropped  int64  `json:"dropped_index_events"`
}
