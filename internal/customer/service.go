package customer

import (
	"context"

	"doorparts-be/internal/logger"
	"doorparts-be/internal/mailer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service wraps the repository and satisfies the checkout-time customer
// directory used by the order flow.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) EnsureCustomer(ctx context.Context, email, name string) (uuid.UUID, error) {
	return s.repo.Upsert(ctx, email, name)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter *FilterInput, limit, offset int32) ([]*Customer, int64, error) {
	customers, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (s *Service) AddNote(ctx context.Context, customerID uuid.UUID, staffID uint, body string) (*Note, error) {
	if _, err := s.repo.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	n := &Note{CustomerID: customerID, StaffID: staffID, Body: body}
	if err := s.repo.CreateNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) Notes(ctx context.Context, customerID uuid.UUID) ([]*Note, error) {
	return s.repo.ListNotes(ctx, customerID)
}

func (s *Service) EmailHistory(ctx context.Context, customerID uuid.UUID, limit int32) ([]*EmailLogEntry, error) {
	c, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.repo.EmailHistory(ctx, c.Email, limit)
}

// recordingSender decorates a mailer.Sender with a durable per-recipient
// email log. Logging failures never mask the send outcome.
type recordingSender struct {
	inner mailer.Sender
	repo  Repository
}

func NewRecordingSender(inner mailer.Sender, repo Repository) mailer.Sender {
	return &recordingSender{inner: inner, repo: repo}
}

func (s *recordingSender) Send(ctx context.Context, msg mailer.Message) error {
	sendErr := s.inner.Send(ctx, msg)

	entry := &EmailLogEntry{
		Recipient: msg.To,
		Subject:   msg.Subject,
		Template:  msg.Template,
		Delivered: sendErr == nil,
	}
	if err := s.repo.LogEmail(ctx, entry); err != nil {
		logger.FromCtx(ctx).Warn("failed to record email log entry",
			zap.String("recipient", msg.To),
			zap.Error(err),
		)
	}
	return sendErr
}
