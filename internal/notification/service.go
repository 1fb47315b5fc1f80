package notification

import (
	"context"

	"doorparts-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	// Notify persists the notification, then broadcasts it best-effort to any
	// live connections for the staff member.
	Notify(ctx context.Context, n *Notification) error

	// NotifyAll fans one event out to a set of staff members.
	NotifyAll(ctx context.Context, staffIDs []uint, build func(staffID uint) *Notification)

	List(ctx context.Context, staffID uint, unreadOnly bool, limit int32) ([]*Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, staffID uint) error
	MarkAllRead(ctx context.Context, staffID uint) error
}

type service struct {
	repo Repository
	hub  *Hub
}

func NewService(repo Repository, hub *Hub) Service {
	return &service{repo: repo, hub: hub}
}

func (s *service) Notify(ctx context.Context, n *Notification) error {
	// Durable record first; realtime delivery never gates on it succeeding
	// the other way around.
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	s.hub.Broadcast(n)
	return nil
}

func (s *service) NotifyAll(ctx context.Context, staffIDs []uint, build func(staffID uint) *Notification) {
	for _, id := range staffIDs {
		if err := s.Notify(ctx, build(id)); err != nil {
			logger.FromCtx(ctx).Error("failed to persist notification",
				zap.Uint("staff_id", id),
				zap.Error(err),
			)
		}
	}
}

func (s *service) List(ctx context.Context, staffID uint, unreadOnly bool, limit int32) ([]*Notification, error) {
	return s.repo.ListForStaff(ctx, staffID, unreadOnly, limit)
}

func (s *service) MarkRead(ctx context.Context, id uuid.UUID, staffID uint) error {
	return s.repo.MarkRead(ctx, id, staffID)
}

func (s *service) MarkAllRead(ctx context.Context, staffID uint) error {
	return s.repo.MarkAllRead(ctx, staffID)
}
