package entity

// RoomSnapshot is the durable view of a room handed to the persistence
// bridge. It carries settings and roster only, never live grid state.
type RoomSnapshot struct {
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	MineCount   int      `json:"mineCount"`
	TurnSeconds int      `json:"turnSeconds"`
	PlayerIDs   []string `json:"playerIds"`
}
