package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/selection"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/websocket"
)

// SelectionService drives the per-student course and semester selection
type SelectionService interface {
	Current(ctx context.Context, userID int64) (selection.Snapshot, error)
	SelectCourse(ctx context.Context, userID int64, courseID string) (selection.Snapshot, error)
	DeselectCourse(ctx context.Context, userID int64) (selection.Snapshot, error)
	// SelectSemester starts the semester fetch. With wait set it returns once
	// the fetch has settled or ctx is done, whichever comes first.
	SelectSemester(ctx context.Context, userID int64, semester int, wait bool) (selection.Snapshot, error)
	// Commands adapts the service to websocket commands
	Commands() websocket.SelectionCommander
	End(userID int64)
}

type selectionServiceImpl struct {
	manager *selection.Manager
	logger  zerolog.Logger
}

// NewSelectionService creates a new SelectionService
func NewSelectionService(manager *selection.Manager, logger zerolog.Logger) SelectionService {
	return &selectionServiceImpl{
		manager: manager,
		logger:  logger,
	}
}

func (s *selectionServiceImpl) Current(ctx context.Context, userID int64) (selection.Snapshot, error) {
	session, err := s.manager.Session(ctx, userID)
	if err != nil {
		return selection.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

func (s *selectionServiceImpl) SelectCourse(ctx context.Context, userID int64, courseID string) (selection.Snapshot, error) {
	session, err := s.manager.Session(ctx, userID)
	if err != nil {
		return selection.Snapshot{}, err
	}
	return session.SelectCourse(courseID)
}

func (s *selectionServiceImpl) DeselectCourse(ctx context.Context, userID int64) (selection.Snapshot, error) {
	session, err := s.manager.Session(ctx, userID)
	if err != nil {
		return selection.Snapshot{}, err
	}
	return session.DeselectCourse()
}

func (s *selectionServiceImpl) SelectSemester(ctx context.Context, userID int64, semester int, wait bool) (selection.Snapshot, error) {
	session, err := s.manager.Session(ctx, userID)
	if err != nil {
		return selection.Snapshot{}, err
	}
	snap, err := session.SelectSemester(semester)
	if err != nil || !wait || !snap.Loading {
		return snap, err
	}

	settled, err := session.Await(ctx, snap.Generation)
	if err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		// the fetch keeps going; the client sees Loading and gets the rest over the socket
		s.logger.Debug().Int64("userID", userID).Msg("Stopped waiting for semester fetch")
		return settled, nil
	}
	return settled, err
}

func (s *selectionServiceImpl) End(userID int64) {
	s.manager.End(userID)
}

func (s *selectionServiceImpl) Commands() websocket.SelectionCommander {
	return selectionCommands{svc: s}
}

type selectionCommands struct {
	svc *selectionServiceImpl
}

func (c selectionCommands) SelectCourse(ctx context.Context, userID int64, courseID string) error {
	_, err := c.svc.SelectCourse(ctx, userID, courseID)
	return err
}

func (c selectionCommands) DeselectCourse(ctx context.Context, userID int64) error {
	_, err := c.svc.DeselectCourse(ctx, userID)
	return err
}

func (c selectionCommands) SelectSemester(ctx context.Context, userID int64, semester int) error {
	_, err := c.svc.SelectSemester(ctx, userID, semester, false)
	return err
}
