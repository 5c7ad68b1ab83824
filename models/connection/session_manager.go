package connection

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	cerr "github.com/saeidalz13/warzones/internal/error"
)

const defaultCleanupInterval = time.Minute * 20

type SessionManager interface {
	GenerateNewSession(conn *websocket.Conn) *Session
	FindSession(sessionId string) (*Session, error)
	TerminateSession(sessionId string)
	Communicate(msg SessionMessage) error
	WriteToSessionConn(session *Session, msg any, msgType uint8) error
	ReadFromSessionConn(session *Session) (int, []byte, error)
	CleanupPeriodically(ctx context.Context)
	Count() int
}

type WarzonesSessionManager struct {
	cleanupInterval time.Duration
	sessions        map[string]*Session
	logger          *zap.Logger
	mu              sync.RWMutex
}

var _ SessionManager = (*WarzonesSessionManager)(nil)

type ManagerOption func(*WarzonesSessionManager)

func WithManagerLogger(logger *zap.Logger) ManagerOption {
	return func(m *WarzonesSessionManager) {
		m.logger = logger
	}
}

func WithCleanupInterval(d time.Duration) ManagerOption {
	return func(m *WarzonesSessionManager) {
		m.cleanupInterval = d
	}
}

func NewWarzonesSessionManager(opts ...ManagerOption) *WarzonesSessionManager {
	m := &WarzonesSessionManager{
		sessions:        make(map[string]*Session, 10),
		cleanupInterval: defaultCleanupInterval,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *WarzonesSessionManager) GenerateNewSession(conn *websocket.Conn) *Session {
	sessionId := base64.RawURLEncoding.EncodeToString([]byte(uuid.New().String()))
	session := NewSession(sessionId, conn, m.logger)

	m.mu.Lock()
	m.sessions[sessionId] = session
	m.mu.Unlock()
	return session
}

func (m *WarzonesSessionManager) FindSession(sessionId string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, prs := m.sessions[sessionId]
	if !prs || session == nil {
		return nil, cerr.SessionNotFound(sessionId)
	}
	return session, nil
}

func (m *WarzonesSessionManager) TerminateSession(sessionId string) {
	m.mu.Lock()
	delete(m.sessions, sessionId)
	m.mu.Unlock()
	m.logger.Info("session terminated", zap.String("session", sessionId))
}

// Communicate sends msg from one session to another.
func (m *WarzonesSessionManager) Communicate(msg SessionMessage) error {
	receiver, err := m.FindSession(msg.ReceiverID)
	if err != nil {
		return err
	}
	if match, _ := receiver.Seat(); match == nil || match.Code() != msg.GameCode {
		return cerr.SessionNotFound(msg.ReceiverID)
	}
	return m.WriteToSessionConn(receiver, msg.Payload, msg.PayloadType)
}

func (m *WarzonesSessionManager) WriteToSessionConn(session *Session, msg any, msgType uint8) error {
	return session.writeToConnWithRetry(msg, msgType)
}

func (m *WarzonesSessionManager) ReadFromSessionConn(session *Session) (int, []byte, error) {
	var retries uint8

	for {
		messageType, payload, err := session.conn.ReadMessage()
		if err == nil {
			return messageType, payload, nil
		}

		if session.handleReadFromConnErr(err, retries) == ConnLoopContinue {
			retries++
			continue
		}
		return -1, nil, err
	}
}

// To ensure that there is no dangling connections, sessions older than
// the cleanup interval are dropped.
func (m *WarzonesSessionManager) CleanupPeriodically(ctx context.Context) {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		for id, session := range m.sessions {
			if time.Since(session.createdAt) > m.cleanupInterval {
				delete(m.sessions, id)
				_ = session.conn.Close()
				m.logger.Info("stale session removed", zap.String("session", id))
			}
		}
		m.mu.Unlock()
	}
}

func (m *WarzonesSessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

var errSignalAbsent = errors.New("incoming message has no code")

// FetchCodeFromMsg reads only the code of an incoming frame.
func FetchCodeFromMsg(payload []byte) (uint8, error) {
	var signal struct {
		Code *uint8 `json:"code"`
	}
	if err := json.Unmarshal(payload, &signal); err != nil {
		return 0, err
	}
	if signal.Code == nil {
		return 0, errSignalAbsent
	}
	return *signal.Code, nil
}

// IsConnErr reports whether err is a ConnErr with the given code.
func IsConnErr(err error, code uint8) bool {
	var connErr ConnErr
	return errors.As(err, &connErr) && connErr.Code() == code
}
