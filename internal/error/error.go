package error

import (
	"errors"
	"fmt"
)

const (
	ConstErrAttackFailed = "attack operation failed"
)

// Sentinels. Constructors below wrap them with the offending values so
// callers can still match with errors.Is.
var (
	ErrInvalidPlacement    = errors.New("invalid placement")
	ErrInvalidAttackTarget = errors.New("invalid attack target")
	ErrNoLegalAIMove       = errors.New("no legal move left for the computer")
	ErrDesyncOnRemote      = errors.New("remote result disagrees with local state")

	ErrWrongPhase         = errors.New("action not allowed in current phase")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrTurnInProgress     = errors.New("a turn is already being processed")
	ErrWrongInputMode     = errors.New("action not allowed in current input mode")
	ErrPowerupUnavailable = errors.New("powerup cannot be used")
	ErrUndoUnavailable    = errors.New("nothing to undo")
	ErrInvalidMode        = errors.New("invalid game mode")
	ErrMissingPeer        = errors.New("online game needs a peer")

	ErrMissionNotExists = errors.New("mission does not exist")
	ErrMissionLocked    = errors.New("mission is locked")

	ErrGameNotExists    = errors.New("game does not exist")
	ErrGameIsFull       = errors.New("game already has two players")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrNilPayload       = errors.New("payload is nil")
)

func InvalidAttackTarget(layer string, index int) error {
	return fmt.Errorf("%w: cell already resolved or out of bound\tlayer: %s\tindex: %d", ErrInvalidAttackTarget, layer, index)
}

func InvalidPlacement(ship string, status string) error {
	return fmt.Errorf("%w\tship: %s\tstatus: %s", ErrInvalidPlacement, ship, status)
}

func DesyncOnRemote(localOver, remoteOver bool) error {
	return fmt.Errorf("%w\tlocal game over: %t\tremote game over: %t", ErrDesyncOnRemote, localOver, remoteOver)
}

func WrongPhase(phase string) error {
	return fmt.Errorf("%w: %s", ErrWrongPhase, phase)
}

func InvalidMode(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidMode, reason)
}

func WrongInputMode(mode string) error {
	return fmt.Errorf("%w: %s", ErrWrongInputMode, mode)
}

func PowerupUnavailable(powerup, reason string) error {
	return fmt.Errorf("%w\tpowerup: %s\treason: %s", ErrPowerupUnavailable, powerup, reason)
}

func MissionNotExists(missionId int) error {
	return fmt.Errorf("%w, id: %d", ErrMissionNotExists, missionId)
}

func MissionLocked(missionId, highestUnlocked int) error {
	return fmt.Errorf("%w, id: %d\thighest unlocked: %d", ErrMissionLocked, missionId, highestUnlocked)
}

func GameNotExists(gameUuid string) error {
	return fmt.Errorf("%w, uuid: %s", ErrGameNotExists, gameUuid)
}

func GameIsFull(gameUuid string) error {
	return fmt.Errorf("%w, uuid: %s", ErrGameIsFull, gameUuid)
}

func SnapshotNotFound(id string) error {
	return fmt.Errorf("%w, id: %s", ErrSnapshotNotFound, id)
}

func SessionNotFound(sessionId string) error {
	return fmt.Errorf("%w, id: %s", ErrSessionNotFound, sessionId)
}

func ErrInvalidLayer(layer string) error {
	return fmt.Errorf("invalid layer:\t%s", layer)
}

func ErrInvalidOrientation(orientation string) error {
	return fmt.Errorf("invalid orientation:\t%s", orientation)
}

func ErrInvalidSide(side string) error {
	return fmt.Errorf("invalid side:\t%s", side)
}

func ErrInvalidPowerup(powerup string) error {
	return fmt.Errorf("invalid powerup:\t%s", powerup)
}

func ErrInvalidOutcome(outcome string) error {
	return fmt.Errorf("invalid attack outcome:\t%s", outcome)
}

func ErrInvalidModifier(modifier string) error {
	return fmt.Errorf("invalid mission modifier:\t%s", modifier)
}

func ErrCorruptSnapshot(reason string) error {
	return fmt.Errorf("snapshot cannot be restored: %s", reason)
}
