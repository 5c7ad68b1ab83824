package connection

type ReqJoinGame struct {
	GameCode string `json:"game_code"`
}
