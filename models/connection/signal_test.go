package connection

import (
	"fmt"
	"testing"

	"github.com/saeidalz13/warzones/models/session"
)

func TestFetchCodeFromMsg(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		code    uint8
		wantErr bool
	}{
		{name: "code", payload: `{"code":9,"payload":{"x":1}}`, code: CodeAttack},
		{name: "zero code", payload: `{"code":0}`, code: CodeSessionID},
		{name: "absent", payload: `{"payload":{}}`, wantErr: true},
		{name: "not json", payload: `code`, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, err := FetchCodeFromMsg([]byte(test.payload))
			if test.wantErr {
				if err == nil {
					t.Fatalf("expected an error\t got code: %d", code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if code != test.code {
				t.Fatalf("expected code: %d\t got: %d", test.code, code)
			}
		})
	}
}

func TestRelayCodes(t *testing.T) {
	for _, msgType := range []session.PeerMessageType{session.MsgShipsReady, session.MsgAttack, session.MsgAttackResult, session.MsgPowerupUsed} {
		code, ok := CodeForPeerMessage(msgType)
		if !ok || !IsRelayCode(code) {
			t.Fatalf("expected %s to be relayed\t got code: %d", msgType, code)
		}
	}
	for _, code := range []uint8{CodeSessionID, CodeCreateGame, CodeJoinGame, CodeLeaveGame, CodeOtherPlayerDisconnected} {
		if IsRelayCode(code) {
			t.Fatalf("expected code %d handled by the server", code)
		}
	}
}

func TestIsConnErr(t *testing.T) {
	err := fmt.Errorf("listen: %w", NewConnErr(ConnPeerLeft).AddDesc("closed"))
	if !IsConnErr(err, ConnPeerLeft) {
		t.Fatal("expected a wrapped peer-left error to match")
	}
	if IsConnErr(err, ConnLoopBreak) {
		t.Fatal("expected a different code not to match")
	}
}
