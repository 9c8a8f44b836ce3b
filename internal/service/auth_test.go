package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenpulse/screenpulse/internal/domain"
	"github.com/screenpulse/screenpulse/internal/security"
	"github.com/screenpulse/screenpulse/internal/service"
)

type fakeUserRepo struct {
	byEmail map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]domain.User{}}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	if _, ok := r.byEmail[u.Email]; ok {
		return domain.User{}, domain.ErrEmailTaken
	}
	r.byEmail[u.Email] = u
	return u, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func newAuthService(repo domain.UserRepository) *service.AuthService {
	hasher := security.NewBcryptHasher(4) // min cost keeps the test fast
	signer := security.NewHS256("test-secret-test-secret-test-1234", "screenpulse-test")
	return service.NewAuthService(repo, hasher, signer, time.Hour, nil)
}

func TestRegister_NormalizesEmailAndSignsToken(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())

	res, err := svc.Register(context.Background(), "  Alice@Example.COM ", "hunter2-long")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.NotEqual(t, "hunter2-long", res.User.PasswordHash)
}

func TestRegister_RejectsWeakInput(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "hunter2-long")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Register(ctx, "not-an-email", "hunter2-long")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Register(ctx, "a@b.com", "short")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "hunter2-long")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "A@B.com", "hunter2-long")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLogin_DoesNotLeakWhichFieldFailed(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "hunter2-long")
	require.NoError(t, err)

	// unknown email and wrong password produce the same error
	_, errUnknown := svc.Login(ctx, "nobody@b.com", "hunter2-long")
	_, errWrongPw := svc.Login(ctx, "a@b.com", "wrong-password")
	assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, domain.ErrInvalidCredentials)

	res, err := svc.Login(ctx, "a@b.com", "hunter2-long")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
}
