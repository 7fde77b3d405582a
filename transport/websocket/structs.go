package websocket

import "encoding/json"

// Message is the envelope for everything crossing the socket, inbound and
// outbound: an action discriminator plus an action-specific payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	Room struct {
		ID string `json:"id"`
	} `json:"room"`
	Player struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"player"`
}

type StartPayload struct {
	Width       int `json:"width"`
	Height      int `json:"height"`
	MineCount   int `json:"mineCount"`
	TurnSeconds int `json:"turnSeconds"`
}

type MovePayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type JoinedPayload struct {
	Room struct {
		ID string `json:"id"`
	} `json:"room"`
	Player struct {
		ID   string `json:"id"`
		Name string `json:"name,omitempty"`
	} `json:"player"`
}
