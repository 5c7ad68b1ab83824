package connection

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	mb "github.com/saeidalz13/warzones/models/battleship"
)

const (
	maxWriteWsRetries uint8 = 2
	backOffFactor     uint8 = 2
)

const (
	MessageTypeBytes uint8 = iota
	MessageTypeJSON
)

type ConnectionHandler interface {
	handleReadFromConnErr(err error, retries uint8) uint8
	writeToConnWithRetry(msg any, msgType uint8) error
	onConnErr(err error) uint8
}

// Session is one websocket client of the relay server and the match
// seat it occupies, if any.
type Session struct {
	id        string
	conn      *websocket.Conn
	logger    *zap.Logger
	createdAt time.Time

	// gorilla/websocket allows a single concurrent writer.
	writeMu sync.Mutex

	mu     sync.Mutex
	match  *mb.Match
	player *mb.Player
}

var _ ConnectionHandler = (*Session)(nil)

func NewSession(id string, conn *websocket.Conn, logger *zap.Logger) *Session {
	return &Session{
		id:        id,
		conn:      conn,
		logger:    logger.With(zap.String("session", id)),
		createdAt: time.Now(),
	}
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Conn() *websocket.Conn {
	return s.conn
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) Seat() (*mb.Match, *mb.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match, s.player
}

func (s *Session) SetSeat(match *mb.Match, player *mb.Player) {
	s.mu.Lock()
	s.match, s.player = match, player
	s.mu.Unlock()
}

func (s *Session) onConnErr(err error) uint8 {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		s.logger.Warn("timeout error", zap.Error(err))
		return ConnLoopRetry
	}

	if websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
		s.logger.Warn("high server load/traffic error", zap.Error(err))
		return ConnLoopRetry
	}

	if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
		s.logger.Info("connection closed", zap.Error(err))
		return ConnLoopBreak
	}

	/*
		A client that sends binary frames or invalid UTF-8 is not one of
		ours. Breaking keeps it from flooding the relay.
	*/
	if websocket.IsCloseError(err, websocket.CloseInvalidFramePayloadData, websocket.CloseUnsupportedData, websocket.CloseMessageTooBig, websocket.ClosePolicyViolation) {
		s.logger.Warn("non-critical error", zap.Error(err))
		return ConnLoopBreak
	}

	s.logger.Error("unexpected connection error", zap.Error(err))
	return ConnLoopBreak
}

// Writes to the connection of that session. Timeouts are retried with a
// linear back off.
func (s *Session) writeToConnWithRetry(msg any, msgType uint8) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var retries uint8
	for {
		var err error

		switch msgType {
		case MessageTypeJSON:
			err = s.conn.WriteJSON(msg)

		case MessageTypeBytes:
			respBytes, ok := msg.([]byte)
			if !ok {
				return NewConnErr(ConnInvalidMsgType).AddDesc("msg type expected: []byte got invalid")
			}
			err = s.conn.WriteMessage(websocket.TextMessage, respBytes)

		default:
			return NewConnErr(ConnInvalidMsgType).AddDesc("invalid message type to write with retry")
		}

		if err == nil {
			return nil
		}

		switch s.onConnErr(err) {
		case ConnLoopRetry:
			if retries < maxWriteWsRetries {
				retries++
				s.logger.Warn("writing to ws failed; retrying", zap.Uint8("retry", retries))
				time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
				continue
			}
			return NewConnErr(ConnLoopBreak).AddDesc("max write retries reached: " + err.Error())

		default:
			return NewConnErr(ConnLoopBreak).AddDesc("breaking write loop due to: " + err.Error())
		}
	}
}

// Handles the errors that occur when reading from the ws connection.
// `ConnLoopContinue` asks the caller to read again.
func (s *Session) handleReadFromConnErr(err error, retries uint8) uint8 {
	switch s.onConnErr(err) {
	case ConnLoopRetry:
		if retries < maxWriteWsRetries {
			s.logger.Warn("failed to read from ws conn; retrying", zap.Uint8("retry", retries))
			time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
			return ConnLoopContinue
		}
		return ConnLoopBreak

	default:
		return ConnLoopBreak
	}
}
