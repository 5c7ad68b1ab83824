package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sqlc-dev/pqtype"
	"go.uber.org/zap"

	"github.com/saeidalz13/warzones/db/sqlc"
	mb "github.com/saeidalz13/warzones/models/battleship"
	mc "github.com/saeidalz13/warzones/models/connection"
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: time.Second * 5,
	ReadBufferSize:   2048,
	WriteBufferSize:  2048,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

// RequestProcessor runs the lobby and relays game traffic between the
// two seats of a match. It never looks inside relayed payloads; each
// client is authoritative for its own board.
type RequestProcessor struct {
	sessionManager mc.SessionManager
	gameManager    mb.GameManager
	analytics      *sqlc.AnalyticsManager
	logger         *zap.Logger
}

func NewRequestProcessor(
	sessionManager mc.SessionManager,
	gameManager mb.GameManager,
	analytics *sqlc.AnalyticsManager,
	logger *zap.Logger,
) *RequestProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestProcessor{
		sessionManager: sessionManager,
		gameManager:    gameManager,
		analytics:      analytics,
		logger:         logger,
	}
}

func (rp *RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Upgrade replies to the client itself on failure
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		rp.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	rp.logger.Info("a new connection established", zap.String("remote", conn.RemoteAddr().String()))
	rp.processSessionRequests(rp.sessionManager.GenerateNewSession(conn))
}

func (rp *RequestProcessor) processSessionRequests(session *mc.Session) {
	defer func() {
		rp.leaveMatch(session)
		_ = session.Conn().Close()
		rp.sessionManager.TerminateSession(session.Id())
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: session.Id()})
	if err := rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON); err != nil {
		return
	}

	var serverInet pqtype.Inet
	if rp.analytics != nil {
		inet, err := sqlc.ServerInet(session.Conn().LocalAddr().String())
		if err != nil {
			rp.logger.Warn("server address not usable for analytics", zap.Error(err))
		}
		serverInet = inet
	}

sessionLoop:
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			break sessionLoop
		}

		code, err := mc.FetchCodeFromMsg(payload)
		if err != nil {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
			msg.AddError("incoming req payload must contain 'code' field", "")
			if err := rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		switch {
		case code == mc.CodeCreateGame:
			if err := rp.handleCreateGame(session, serverInet); err != nil {
				break sessionLoop
			}

		case code == mc.CodeJoinGame:
			if err := rp.handleJoinGame(session, payload, serverInet); err != nil {
				break sessionLoop
			}

		case code == mc.CodeLeaveGame:
			break sessionLoop

		// Game traffic goes to the other seat byte for byte
		case mc.IsRelayCode(code):
			if err := rp.handleRelay(session, code, payload); err != nil {
				break sessionLoop
			}

		default:
			respInvalidSignal := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
			respInvalidSignal.AddError("", "invalid code in the incoming payload")
			if err := rp.sessionManager.WriteToSessionConn(session, respInvalidSignal, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
		}
	}
}

func (rp *RequestProcessor) handleCreateGame(session *mc.Session, serverInet pqtype.Inet) error {
	if match, _ := session.Seat(); match != nil {
		return rp.replyError(session, mc.CodeCreateGame, "already seated in match "+match.Code())
	}

	match := rp.gameManager.CreateMatch(session.Id())
	session.SetSeat(match, match.Host())
	rp.logger.Info("match created", zap.String("code", match.Code()), zap.String("session", session.Id()))

	if rp.analytics != nil && serverInet.Valid {
		// analytics never block a match
		if err := rp.analytics.IncrementGamesCreatedCount(context.Background(), serverInet); err != nil {
			rp.logger.Warn("failed to count created game", zap.Error(err))
		}
	}

	resp := mc.NewMessage[mc.RespCreateGame](mc.CodeCreateGame)
	resp.AddPayload(mc.RespCreateGame{GameCode: match.Code()})
	return rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON)
}

func (rp *RequestProcessor) handleJoinGame(session *mc.Session, payload []byte, serverInet pqtype.Inet) error {
	if match, _ := session.Seat(); match != nil {
		return rp.replyError(session, mc.CodeJoinGame, "already seated in match "+match.Code())
	}

	var req mc.Message[mc.ReqJoinGame]
	if err := json.Unmarshal(payload, &req); err != nil {
		return rp.replyError(session, mc.CodeJoinGame, err.Error())
	}

	match, player, err := rp.gameManager.JoinMatch(req.Payload.GameCode, session.Id())
	if err != nil {
		return rp.replyError(session, mc.CodeJoinGame, err.Error())
	}
	session.SetSeat(match, player)
	rp.logger.Info("player joined match", zap.String("code", match.Code()), zap.String("session", session.Id()))

	if rp.analytics != nil && serverInet.Valid {
		if err := rp.analytics.IncrementGamesJoinedCount(context.Background(), serverInet); err != nil {
			rp.logger.Warn("failed to count joined game", zap.Error(err))
		}
	}

	resp := mc.NewMessage[mc.RespJoinGame](mc.CodeJoinGame)
	resp.AddPayload(mc.RespJoinGame{GameCode: match.Code(), IsHost: false})
	if err := rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON); err != nil {
		return err
	}

	joined := mc.NewMessage[mc.RespJoinGame](mc.CodeOtherPlayerJoined)
	joined.AddPayload(mc.RespJoinGame{GameCode: match.Code(), IsHost: true})
	if err := rp.sessionManager.Communicate(mc.NewSessionMessageJSON(match.Host().SessionID, match.Code(), joined)); err != nil {
		// the host left while we were joining
		rp.logger.Warn("host unreachable", zap.String("code", match.Code()), zap.Error(err))
		return rp.notifyDisconnected(session)
	}
	return nil
}

func (rp *RequestProcessor) handleRelay(session *mc.Session, code uint8, payload []byte) error {
	match, player := session.Seat()
	if match == nil {
		return rp.replyError(session, code, "not seated in a match")
	}
	other := match.OtherPlayer(player)
	if other == nil {
		return rp.replyError(session, code, "opponent has not joined yet")
	}

	if code == mc.CodeShipsReady {
		match.MarkReady(player)
	}

	if err := rp.sessionManager.Communicate(mc.NewSessionMessageBytes(other.SessionID, match.Code(), payload)); err != nil {
		rp.logger.Warn("relay failed", zap.String("code", match.Code()), zap.Uint8("signal", code), zap.Error(err))
		return rp.notifyDisconnected(session)
	}
	return nil
}

// leaveMatch frees both seats and tells the other player, if any.
func (rp *RequestProcessor) leaveMatch(session *mc.Session) {
	match, player := session.Seat()
	if match == nil {
		return
	}
	session.SetSeat(nil, nil)
	match.Finish()
	rp.gameManager.TerminateMatch(match.Code())

	other := match.OtherPlayer(player)
	if other == nil {
		return
	}
	msg := mc.NewMessage[mc.NoPayload](mc.CodeOtherPlayerDisconnected)
	if err := rp.sessionManager.Communicate(mc.NewSessionMessageJSON(other.SessionID, match.Code(), msg)); err != nil {
		rp.logger.Debug("other player already gone", zap.String("code", match.Code()))
	}
	if otherSession, err := rp.sessionManager.FindSession(other.SessionID); err == nil {
		otherSession.SetSeat(nil, nil)
	}
	rp.logger.Info("match closed", zap.String("code", match.Code()), zap.String("left", session.Id()))
}

// notifyDisconnected frees the seat of a player whose opponent cannot be
// reached anymore.
func (rp *RequestProcessor) notifyDisconnected(session *mc.Session) error {
	if match, _ := session.Seat(); match != nil {
		match.Finish()
		rp.gameManager.TerminateMatch(match.Code())
	}
	session.SetSeat(nil, nil)
	msg := mc.NewMessage[mc.NoPayload](mc.CodeOtherPlayerDisconnected)
	return rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON)
}

func (rp *RequestProcessor) replyError(session *mc.Session, code uint8, details string) error {
	msg := mc.NewMessage[mc.NoPayload](code)
	msg.AddError(details, "")
	return rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON)
}
