package connection

import "github.com/saeidalz13/warzones/models/session"

const (
	CodeSessionID uint8 = iota
	CodeCreateGame
	CodeJoinGame
	CodeOtherPlayerJoined
	CodeLeaveGame
	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent

	CodeOtherPlayerDisconnected

	// Game traffic relayed untouched to the other seat
	CodeShipsReady
	CodeAttack
	CodeAttackResult
	CodePowerupUsed
)

type Signal struct {
	Code uint8 `json:"code"`
}

func NewSignal(code uint8) Signal {
	return Signal{Code: code}
}

// IsRelayCode reports whether the server forwards a code to the other
// seat without looking at its payload.
func IsRelayCode(code uint8) bool {
	return code >= CodeShipsReady && code <= CodePowerupUsed
}

var peerCodes = map[session.PeerMessageType]uint8{
	session.MsgShipsReady:   CodeShipsReady,
	session.MsgAttack:       CodeAttack,
	session.MsgAttackResult: CodeAttackResult,
	session.MsgPowerupUsed:  CodePowerupUsed,
}

// CodeForPeerMessage maps controller traffic onto relay codes.
func CodeForPeerMessage(t session.PeerMessageType) (uint8, bool) {
	code, ok := peerCodes[t]
	return code, ok
}
