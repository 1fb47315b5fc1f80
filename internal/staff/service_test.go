package staff

import (
	"context"
	"testing"
	"time"

	"doorparts-be/internal/mailer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, s *Staff) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uint) (*Staff, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Staff), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*Staff, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Staff), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]*Staff, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Staff), args.Error(1)
}

func (m *MockRepository) ActiveIDs(ctx context.Context) ([]uint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, s *Staff) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) CreatePasswordReset(ctx context.Context, reset *PasswordReset) error {
	return m.Called(ctx, reset).Error(0)
}

func (m *MockRepository) GetPasswordReset(ctx context.Context, token string) (*PasswordReset, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PasswordReset), args.Error(1)
}

func (m *MockRepository) MarkResetUsed(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) UpdatePassword(ctx context.Context, staffID uint, passwordHash string) error {
	return m.Called(ctx, staffID, passwordHash).Error(0)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg mailer.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// --- Tests ---

func TestLogin(t *testing.T) {
	ctx := context.Background()
	t.Setenv("JWT_SECRET", "test-secret")

	hash, err := HashPassword("correct horse")
	assert.NoError(t, err)

	active := &Staff{ID: 1, Email: "amy@example.com", PasswordHash: hash, Role: RoleAdmin, Active: true}

	t.Run("returns a signed token for valid credentials", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockSender), "https://shop.example.com")

		repo.On("GetByEmail", ctx, "amy@example.com").Return(active, nil)

		token, member, err := svc.Login(ctx, "amy@example.com", "correct horse")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, uint(1), member.ID)

		claims, err := ParseJWT(token)
		assert.NoError(t, err)
		assert.Equal(t, uint(1), claims.StaffID)
		assert.Equal(t, string(RoleAdmin), claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockSender), "https://shop.example.com")

		repo.On("GetByEmail", ctx, "amy@example.com").Return(active, nil)

		_, _, err := svc.Login(ctx, "amy@example.com", "wrong")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockSender), "https://shop.example.com")

		repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, ErrStaffNotFound)

		_, _, err := svc.Login(ctx, "ghost@example.com", "anything")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockSender), "https://shop.example.com")

		disabled := &Staff{ID: 2, Email: "bob@example.com", PasswordHash: hash, Active: false}
		repo.On("GetByEmail", ctx, "bob@example.com").Return(disabled, nil)

		_, _, err := svc.Login(ctx, "bob@example.com", "correct horse")

		assert.ErrorIs(t, err, ErrAccountDisabled)
	})
}

func TestRequestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email still reports success and sends nothing", func(t *testing.T) {
		repo := new(MockRepository)
		sender := new(MockSender)
		svc := NewService(repo, sender, "https://shop.example.com")

		repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, ErrStaffNotFound)

		err := svc.RequestPasswordReset(ctx, "ghost@example.com")

		assert.NoError(t, err)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "CreatePasswordReset", mock.Anything, mock.Anything)
	})

	t.Run("known email gets a tokenized reset link", func(t *testing.T) {
		repo := new(MockRepository)
		sender := new(MockSender)
		svc := NewService(repo, sender, "https://shop.example.com")

		repo.On("GetByEmail", ctx, "amy@example.com").
			Return(&Staff{ID: 1, Email: "amy@example.com", Active: true}, nil)
		repo.On("CreatePasswordReset", ctx, mock.MatchedBy(func(r *PasswordReset) bool {
			return r.StaffID == 1 && r.Token != "" && time.Until(r.ExpiresAt) > 50*time.Minute
		})).Return(nil)
		sender.On("Send", ctx, mock.MatchedBy(func(msg mailer.Message) bool {
			return msg.To == "amy@example.com"
		})).Return(nil)

		err := svc.RequestPasswordReset(ctx, "amy@example.com")

		assert.NoError(t, err)
		repo.AssertExpectations(t)
		sender.AssertExpectations(t)
	})
}

func TestConfirmPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("expired token", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockSender), "https://shop.example.com")

		repo.On("GetPasswordReset", ctx, "tok").Return(&PasswordReset{
			ID: 5, StaffID: 1, Token: "tok", ExpiresAt: time.Now().Add(-time.Minute),
		}, nil)

		err := svc.ConfirmPasswordReset(ctx, "tok", "new password")

		assert.ErrorIs(t, err, ErrResetTokenInvalid)
		repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("used token", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockSender), "https://shop.example.com")

		used := time.Now().Add(-time.Minute)
		repo.On("GetPasswordReset", ctx, "tok").Return(&PasswordReset{
			ID: 5, StaffID: 1, Token: "tok", ExpiresAt: time.Now().Add(time.Hour), UsedAt: &used,
		}, nil)

		err := svc.ConfirmPasswordReset(ctx, "tok", "new password")

		assert.ErrorIs(t, err, ErrResetTokenInvalid)
	})

	t.Run("valid token rewrites the password and burns the token", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockSender), "https://shop.example.com")

		repo.On("GetPasswordReset", ctx, "tok").Return(&PasswordReset{
			ID: 5, StaffID: 1, Token: "tok", ExpiresAt: time.Now().Add(time.Hour),
		}, nil)
		repo.On("UpdatePassword", ctx, uint(1), mock.AnythingOfType("string")).Return(nil)
		repo.On("MarkResetUsed", ctx, uint(5)).Return(nil)

		err := svc.ConfirmPasswordReset(ctx, "tok", "new password")

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
