package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/saeidalz13/warzones/models/session"
)

const dialTimeout = time.Second * 10

// Client is a player's link to the relay server. It carries the lobby
// handshake and then serves as the controller's session.Peer.
type Client struct {
	conn      *websocket.Conn
	logger    *zap.Logger
	sessionID string
	writeMu   sync.Mutex
}

var _ session.Peer = (*Client)(nil)

func Dial(ctx context.Context, url string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := readReply[RespSessionId](conn, CodeSessionID)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Client{
		conn:      conn,
		logger:    logger.With(zap.String("session", resp.SessionID)),
		sessionID: resp.SessionID,
	}, nil
}

func (c *Client) SessionID() string {
	return c.sessionID
}

// CreateGame opens a match and returns the code to share with the
// opponent.
func (c *Client) CreateGame() (string, error) {
	if err := c.write(NewMessage[NoPayload](CodeCreateGame)); err != nil {
		return "", err
	}
	resp, err := readReply[RespCreateGame](c.conn, CodeCreateGame)
	if err != nil {
		return "", err
	}
	return resp.GameCode, nil
}

func (c *Client) JoinGame(code string) (RespJoinGame, error) {
	msg := NewMessage[ReqJoinGame](CodeJoinGame)
	msg.AddPayload(ReqJoinGame{GameCode: code})
	if err := c.write(msg); err != nil {
		return RespJoinGame{}, err
	}
	return readReply[RespJoinGame](c.conn, CodeJoinGame)
}

// WaitForOpponent blocks the host until someone joins its match.
func (c *Client) WaitForOpponent(ctx context.Context) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(deadline)
		defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()
	}
	_, err := readReply[RespJoinGame](c.conn, CodeOtherPlayerJoined)
	return err
}

func (c *Client) Send(msg session.PeerMessage) error {
	code, ok := CodeForPeerMessage(msg.Type)
	if !ok {
		return NewConnErr(ConnInvalidMsgType).AddDesc("unknown peer message: " + string(msg.Type))
	}
	out := NewMessage[session.PeerMessage](code)
	out.AddPayload(msg)
	return c.write(out)
}

// Listen hands every relayed game message to handle until the context
// ends, the connection fails or the opponent leaves.
func (c *Client) Listen(ctx context.Context, handle func(session.PeerMessage)) error {
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		code, err := FetchCodeFromMsg(payload)
		if err != nil {
			c.logger.Warn("frame without code", zap.Error(err))
			continue
		}

		switch {
		case IsRelayCode(code):
			var msg Message[session.PeerMessage]
			if err := json.Unmarshal(payload, &msg); err != nil {
				c.logger.Warn("invalid relayed message", zap.Uint8("code", code), zap.Error(err))
				continue
			}
			handle(msg.Payload)

		case code == CodeOtherPlayerDisconnected:
			return NewConnErr(ConnPeerLeft).AddDesc("opponent left the match")

		default:
			var msg Message[NoPayload]
			if err := json.Unmarshal(payload, &msg); err == nil && msg.Error != nil {
				c.logger.Warn("server error", zap.Uint8("code", code), zap.String("details", msg.Error.ErrorDetails))
			}
		}
	}
}

// Close leaves the match and closes the connection.
func (c *Client) Close() error {
	_ = c.write(NewMessage[NoPayload](CodeLeaveGame))
	return c.conn.Close()
}

func (c *Client) write(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func readReply[T any](conn *websocket.Conn, code uint8) (T, error) {
	var msg Message[T]
	if err := conn.ReadJSON(&msg); err != nil {
		return msg.Payload, err
	}
	if msg.Error != nil {
		return msg.Payload, fmt.Errorf("server replied with code %d: %s", msg.Code, msg.Error.ErrorDetails)
	}
	if msg.Code != code {
		return msg.Payload, fmt.Errorf("expected code %d\tgot: %d", code, msg.Code)
	}
	return msg.Payload, nil
}
