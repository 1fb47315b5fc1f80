package staff

import (
	"context"
	"fmt"
	"time"

	"doorparts-be/internal/logger"
	"doorparts-be/internal/mailer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Login(ctx context.Context, email, password string) (string, *Staff, error)
	Create(ctx context.Context, name, email, password string, role Role) (*Staff, error)
	GetByID(ctx context.Context, id uint) (*Staff, error)
	List(ctx context.Context) ([]*Staff, error)
	ActiveStaffIDs(ctx context.Context) ([]uint, error)
	Update(ctx context.Context, s *Staff) error
	Delete(ctx context.Context, id uint) error

	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

type service struct {
	repo    Repository
	sender  mailer.Sender
	baseURL string
}

func NewService(repo Repository, sender mailer.Sender, storefrontBaseURL string) Service {
	return &service{
		repo:    repo,
		sender:  sender,
		baseURL: storefrontBaseURL,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (string, *Staff, error) {
	member, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !member.Active {
		return "", nil, ErrAccountDisabled
	}

	if !CheckPasswordHash(password, member.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(member.ID, string(member.Role), member.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, member, nil
}

func (s *service) Create(ctx context.Context, name, email, password string, role Role) (*Staff, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	member := &Staff{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}

	if err := s.repo.Create(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*Staff, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ActiveStaffIDs(ctx context.Context) ([]uint, error) {
	return s.repo.ActiveIDs(ctx)
}

func (s *service) List(ctx context.Context) ([]*Staff, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, member *Staff) error {
	if !member.Role.Valid() {
		return ErrInvalidRole
	}
	return s.repo.Update(ctx, member)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// RequestPasswordReset always reports success to the caller so the endpoint
// cannot be used to probe which emails exist.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	log := logger.FromCtx(ctx).With(zap.String("email", email))

	member, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		log.Info("password reset requested for unknown email")
		return nil
	}

	reset := &PasswordReset{
		StaffID:   member.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	if err := s.repo.CreatePasswordReset(ctx, reset); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/admin/reset-password?token=%s", s.baseURL, reset.Token)
	if err := s.sender.Send(ctx, mailer.PasswordReset(member.Email, resetURL)); err != nil {
		log.Error("failed to send password reset email", zap.Error(err))
	}

	return nil
}

func (s *service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	reset, err := s.repo.GetPasswordReset(ctx, token)
	if err != nil {
		return err
	}

	if reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) {
		return ErrResetTokenInvalid
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, reset.StaffID, hash); err != nil {
		return err
	}

	return s.repo.MarkResetUsed(ctx, reset.ID)
}
