package connection

// SessionMessage is a frame addressed to another session of the same
// match.
type SessionMessage struct {
	PayloadType uint8
	ReceiverID  string
	GameCode    string
	Payload     any
}

func NewSessionMessageJSON(receiverId string, gameCode string, p any) SessionMessage {
	return SessionMessage{
		PayloadType: MessageTypeJSON,
		ReceiverID:  receiverId,
		GameCode:    gameCode,
		Payload:     p,
	}
}

func NewSessionMessageBytes(receiverId string, gameCode string, p []byte) SessionMessage {
	return SessionMessage{
		PayloadType: MessageTypeBytes,
		ReceiverID:  receiverId,
		GameCode:    gameCode,
		Payload:     p,
	}
}
