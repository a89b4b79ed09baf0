package domain

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
)

// Service is the bookmark core: it authenticates, validates, enforces
// ownership and talks to the gateway. It holds no mutable state and is safe
// for concurrent use.
type Service struct {
	sessions    SessionResolver
	gateway     Gateway
	invalidator Invalidator
	logger      logger.Logger
}

// NewService wires the core. A nil invalidator disables the signal.
func NewService(sessions SessionResolver, gateway Gateway, invalidator Invalidator, log logger.Logger) *Service {
	if invalidator == nil {
		invalidator = NopInvalidator{}
	}
	return &Service{
		sessions:    sessions,
		gateway:     gateway,
		invalidator: invalidator,
		logger:      log,
	}
}

// Create stores a new bookmark for the session owner.
func (s *Service) Create(ctx context.Context, title, url string) (*Bookmark, error) {
	owner, err := s.resolve(ctx, OpAdd)
	if err != nil {
		return nil, err
	}

	if title == "" || url == "" {
		observe(OpAdd, metrics.OutcomeInvalid)
		return nil, ErrInvalidInput
	}

	bookmark, err := s.gateway.Create(ctx, owner, title, url)
	if err != nil {
		s.logger.Error("error adding bookmark",
			logger.Owner(owner),
			logger.Error(err))
		observe(OpAdd, metrics.OutcomeFailed)
		return nil, &OperationError{Op: OpAdd, Err: err}
	}

	s.invalidate(ctx, owner)
	observe(OpAdd, metrics.OutcomeOK)

	s.logger.Debug("bookmark added",
		logger.Owner(owner),
		logger.BookmarkID(bookmark.ID))
	return bookmark, nil
}

// Delete removes a bookmark after checking that the session owner owns it.
func (s *Service) Delete(ctx context.Context, id string) error {
	owner, err := s.resolve(ctx, OpDelete)
	if err != nil {
		return err
	}

	bookmark, err := s.gateway.FindByID(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		observe(OpDelete, metrics.OutcomeNotFound)
		return ErrNotFound
	case err != nil:
		return s.deleteFailed(owner, id, err)
	}

	// Ownership must be checked before the delete call.
	if !bookmark.OwnedBy(owner) {
		s.logger.Warn("refused to delete bookmark of another owner",
			logger.Owner(owner),
			logger.BookmarkID(id))
		observe(OpDelete, metrics.OutcomeForbidden)
		return ErrForbidden
	}

	err = s.gateway.DeleteByID(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		// A concurrent delete got there first; the record is gone either way.
		observe(OpDelete, metrics.OutcomeNotFound)
		return ErrNotFound
	case err != nil:
		return s.deleteFailed(owner, id, err)
	}

	s.invalidate(ctx, owner)
	observe(OpDelete, metrics.OutcomeOK)

	s.logger.Debug("bookmark deleted",
		logger.Owner(owner),
		logger.BookmarkID(id))
	return nil
}

// List returns the session owner's bookmarks, newest first.
func (s *Service) List(ctx context.Context) ([]*Bookmark, error) {
	owner, err := s.resolve(ctx, OpList)
	if err != nil {
		return nil, err
	}

	bookmarks, err := s.gateway.ListByOwner(ctx, owner)
	if err != nil {
		s.logger.Error("error listing bookmarks",
			logger.Owner(owner),
			logger.Error(err))
		observe(OpList, metrics.OutcomeFailed)
		return nil, &OperationError{Op: OpList, Err: err}
	}

	observe(OpList, metrics.OutcomeOK)
	return bookmarks, nil
}

// Owner resolves the session owner without touching the store.
func (s *Service) Owner(ctx context.Context) (string, error) {
	return s.resolve(ctx, "")
}

func (s *Service) resolve(ctx context.Context, op string) (string, error) {
	owner, err := s.sessions.Resolve(ctx)
	if err != nil || owner == "" {
		if op != "" {
			observe(op, metrics.OutcomeUnauthenticated)
		}
		return "", ErrUnauthenticated
	}
	return owner, nil
}

func (s *Service) deleteFailed(owner, id string, err error) error {
	s.logger.Error("error deleting bookmark",
		logger.Owner(owner),
		logger.BookmarkID(id),
		logger.Error(err))
	observe(OpDelete, metrics.OutcomeFailed)
	return &OperationError{Op: OpDelete, Err: err}
}

// invalidate is best effort: the write already succeeded and reads always
// recompute from the store.
func (s *Service) invalidate(ctx context.Context, owner string) {
	if err := s.invalidator.Invalidate(ctx, owner); err != nil {
		s.logger.Warn("failed to signal bookmark list invalidation",
			logger.Owner(owner),
			logger.Error(err))
	}
}

func observe(op, outcome string) {
	metrics.BookmarkOperations.WithLabelValues(op, outcome).Inc()
}
