package booking

import (
	"context"
	"fmt"

	"fitclub/internal/apperrors"
	"fitclub/internal/events"
	"fitclub/internal/logger"
	"fitclub/internal/metrics"
)

// transitions lists the allowed edges of the session lifecycle. Every edge is
// currently open, including Completed back to Scheduled.
var transitions = map[SessionStatus]map[SessionStatus]bool{
	StatusScheduled: {StatusScheduled: true, StatusCompleted: true, StatusCancelled: true, StatusNoShow: true},
	StatusCompleted: {StatusScheduled: true, StatusCompleted: true, StatusCancelled: true, StatusNoShow: true},
	StatusCancelled: {StatusScheduled: true, StatusCompleted: true, StatusCancelled: true, StatusNoShow: true},
	StatusNoShow:    {StatusScheduled: true, StatusCompleted: true, StatusCancelled: true, StatusNoShow: true},
}

func CanTransition(from, to SessionStatus) bool {
	return transitions[from][to]
}

type StatusMachine interface {
	UpdateStatus(ctx context.Context, sessionID int, newStatus string) (*PTSession, error)
	UpdateSessionNotes(ctx context.Context, sessionID int, notes string) (*PTSession, error)
}

type statusMachine struct {
	repo Repository
	hooks
}

func NewStatusMachine(repo Repository, opts ...Option) StatusMachine {
	return &statusMachine{
		repo:  repo,
		hooks: newHooks(opts),
	}
}

func (m *statusMachine) UpdateStatus(ctx context.Context, sessionID int, newStatus string) (*PTSession, error) {
	to, err := ParseSessionStatus(newStatus)
	if err != nil {
		return nil, err
	}

	var session PTSession
	var from SessionStatus
	err = m.repo.WithinTx(ctx, func(tx Repository) error {
		current, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			return notFound(err, "session", sessionID)
		}
		from = current.Status

		if !CanTransition(from, to) {
			return apperrors.Conflict(fmt.Sprintf("session %d cannot move from %s to %s", sessionID, from, to))
		}

		// A cancelled session gave up its slot; taking it back needs the slot
		// to still be free.
		if !from.Active() && to.Active() {
			if err := tx.LockSchedule(ctx, current.RoomID, current.TrainerID, current.ScheduledDate); err != nil {
				return err
			}
			if err := ensureFree(ctx, tx, current.RoomID, current.TrainerID, current.ScheduledDate, current.Slot(), 0); err != nil {
				return err
			}
		}

		if err := tx.UpdateSessionStatus(ctx, sessionID, to); err != nil {
			return notFound(err, "session", sessionID)
		}
		session = *current
		session.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordStatusChange(string(from), string(to))
	logger.Info("session status updated", "session_id", sessionID, "from", from, "to", to)
	m.invalidate(ctx, session.TrainerID, session.RoomID)
	m.publish(ctx, events.New(events.SessionStatusChanged, sessionKey(sessionID), map[string]any{
		"session_id": sessionID,
		"from":       from,
		"to":         to,
	}))
	return &session, nil
}

func (m *statusMachine) UpdateSessionNotes(ctx context.Context, sessionID int, notes string) (*PTSession, error) {
	normalized := normalizeNotes(&notes)

	var session PTSession
	err := m.repo.WithinTx(ctx, func(tx Repository) error {
		current, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			return notFound(err, "session", sessionID)
		}
		if err := tx.UpdateSessionNotes(ctx, sessionID, normalized); err != nil {
			return notFound(err, "session", sessionID)
		}
		session = *current
		session.Notes = normalized
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("session notes updated", "session_id", sessionID)
	return &session, nil
}
