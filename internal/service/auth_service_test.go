package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"complaint_tracker_backend/internal/config"
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 7
	}
	return args.Error(0)
}

func (m *MockUserStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRevoker struct {
	mock.Mock
}

func (m *MockRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return m.Called(ctx, jti, ttl).Error(0)
}

func (m *MockRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return cfg
}

func TestRegisterDefaultsToStudent(t *testing.T) {
	store := new(MockUserStore)
	svc := NewAuthService(store, nil, testConfig())
	ctx := context.Background()

	store.On("FindByEmail", ctx, "asha@campus.test").Return(nil, util.ErrUserNotFound)
	store.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.Student && u.Email == "asha@campus.test" && u.Password != "secret"
	})).Return(nil)

	u, err := svc.Register(ctx, RegisterInput{Name: "Asha", Email: " Asha@Campus.test ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, uint(7), u.ID)
	assert.Equal(t, model.Student, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")))
	store.AssertExpectations(t)
}

func TestRegisterRejections(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
		kind util.ErrorKind
	}{
		{"blank password", RegisterInput{Name: "a", Email: "a@b.c", Password: "  "}, util.KindValidation},
		{"bad email", RegisterInput{Name: "a", Email: "nope", Password: "x"}, util.KindValidation},
		{"bare at", RegisterInput{Name: "a", Email: "@", Password: "x"}, util.KindValidation},
		{"no domain", RegisterInput{Name: "a", Email: "a@", Password: "x"}, util.KindValidation},
		{"only ats", RegisterInput{Name: "a", Email: "@@@", Password: "x"}, util.KindValidation},
		{"space in local part", RegisterInput{Name: "a", Email: "x y@z", Password: "x"}, util.KindValidation},
		{"no name", RegisterInput{Email: "a@b.c", Password: "x"}, util.KindValidation},
		{"unknown role", RegisterInput{Name: "a", Email: "a@b.c", Password: "x", Role: "DEAN"}, util.KindValidation},
		{"admin", RegisterInput{Name: "a", Email: "a@b.c", Password: "x", Role: "ADMIN"}, util.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(MockUserStore)
			svc := NewAuthService(store, nil, testConfig())
			_, err := svc.Register(ctx, tc.in)
			assert.Equal(t, tc.kind, util.KindOf(err))
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := new(MockUserStore)
	svc := NewAuthService(store, nil, testConfig())
	ctx := context.Background()

	store.On("FindByEmail", ctx, "a@b.c").Return(&model.User{Email: "a@b.c"}, nil)

	_, err := svc.Register(ctx, RegisterInput{Name: "a", Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUserAllowsAdmin(t *testing.T) {
	store := new(MockUserStore)
	svc := NewAuthService(store, nil, testConfig())
	ctx := context.Background()

	store.On("FindByEmail", ctx, "root@campus.test").Return(nil, util.ErrUserNotFound)
	store.On("Create", ctx, mock.Anything).Return(nil)

	u, err := svc.CreateUser(ctx, RegisterInput{Name: "root", Email: "root@campus.test", Password: "pw", Role: "admin"}, true)
	require.NoError(t, err)
	assert.Equal(t, model.Admin, u.Role)
}

func registeredUser(t *testing.T, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &model.User{BaseModel: model.BaseModel{ID: 3}, Name: "w", Email: "w@campus.test", Password: string(hash), Role: model.Warden}
}

func TestLoginIssuesToken(t *testing.T) {
	store := new(MockUserStore)
	cfg := testConfig()
	svc := NewAuthService(store, nil, cfg)
	ctx := context.Background()

	store.On("FindByEmail", ctx, "w@campus.test").Return(registeredUser(t, "pw"), nil)

	token, u, err := svc.Login(ctx, "W@campus.test", "pw")
	require.NoError(t, err)
	assert.Equal(t, model.Warden, u.Role)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
	assert.Equal(t, model.Warden, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	store := new(MockUserStore)
	svc := NewAuthService(store, nil, testConfig())
	ctx := context.Background()

	store.On("FindByEmail", ctx, "w@campus.test").Return(registeredUser(t, "pw"), nil)
	store.On("FindByEmail", ctx, "ghost@campus.test").Return(nil, util.ErrUserNotFound)

	_, _, errWrong := svc.Login(ctx, "w@campus.test", "nope")
	_, _, errGhost := svc.Login(ctx, "ghost@campus.test", "pw")
	assert.ErrorIs(t, errWrong, util.ErrInvalidCredentials)
	assert.ErrorIs(t, errGhost, util.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errGhost.Error())

	_, _, err := svc.Login(ctx, "", "pw")
	assert.Equal(t, util.KindValidation, util.KindOf(err))
}

func TestValidateTokenRejectsGarbageAndForeignSecret(t *testing.T) {
	svc := NewAuthService(new(MockUserStore), nil, testConfig())
	ctx := context.Background()

	_, err := svc.ValidateToken(ctx, "not-a-token")
	assert.Equal(t, util.KindUnauthenticated, util.KindOf(err))

	foreign, err := util.GenerateJWT(&model.User{Email: "x@y.z", Role: model.Admin}, "other-secret", time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, foreign)
	assert.Equal(t, util.KindUnauthenticated, util.KindOf(err))

	expired, err := util.GenerateJWT(&model.User{Email: "x@y.z"}, "test-secret", -time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, expired)
	assert.Equal(t, util.KindUnauthenticated, util.KindOf(err))
}

func TestLogoutRevokesToken(t *testing.T) {
	revoker := new(MockRevoker)
	svc := NewAuthService(new(MockUserStore), revoker, testConfig())
	ctx := context.Background()

	token, err := util.GenerateJWT(&model.User{BaseModel: model.BaseModel{ID: 1}, Email: "a@b.c"}, "test-secret", time.Hour)
	require.NoError(t, err)
	claims, err := util.ParseJWT(token, "test-secret")
	require.NoError(t, err)

	revoker.On("IsRevoked", ctx, claims.ID).Return(false, nil).Once()
	_, err = svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	revoker.On("Revoke", ctx, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= time.Hour
	})).Return(nil)
	require.NoError(t, svc.Logout(ctx, claims))

	revoker.On("IsRevoked", ctx, claims.ID).Return(true, nil)
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, util.ErrTokenRevoked)
	revoker.AssertExpectations(t)
}

func TestLogoutWithoutRevokerIsNoop(t *testing.T) {
	svc := NewAuthService(new(MockUserStore), nil, testConfig())
	assert.NoError(t, svc.Logout(context.Background(), &util.Claims{}))
}

func TestCurrentUserMissingIsInternal(t *testing.T) {
	store := new(MockUserStore)
	svc := NewAuthService(store, nil, testConfig())
	ctx := context.Background()

	store.On("FindByID", ctx, uint(9)).Return(nil, util.ErrUserNotFound)
	store.On("FindByID", ctx, uint(3)).Return(&model.User{BaseModel: model.BaseModel{ID: 3}}, nil)

	_, err := svc.CurrentUser(ctx, 9)
	assert.Equal(t, util.KindInternal, util.KindOf(err))

	u, err := svc.CurrentUser(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, uint(3), u.ID)

	store.On("FindByID", ctx, uint(4)).Return(nil, errors.New("db down"))
	_, err = svc.CurrentUser(ctx, 4)
	assert.Error(t, err)
}
