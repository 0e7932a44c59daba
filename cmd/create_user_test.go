package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"complaint_tracker_backend/internal/config"
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/service"
	"complaint_tracker_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	mu    sync.Mutex
	users map[uint]*model.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[uint]*model.User{}}
}

func (m *memUsers) Create(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = uint(len(m.users) + 1)
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) FindByID(ctx context.Context, id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, util.ErrUserNotFound
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, util.ErrUserNotFound
}

func authFor(users service.UserStore) *service.AuthService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	return service.NewAuthService(users, nil, cfg)
}

func TestCreateUserRoleFlagDefaultsToAdmin(t *testing.T) {
	role := createUserCmd.Flags().Lookup("role")
	require.NotNil(t, role)
	assert.Equal(t, "ADMIN", role.DefValue)

	users := newMemUsers()
	var out bytes.Buffer
	u, err := createUser(context.Background(), authFor(users), service.RegisterInput{
		Name: "Root", Email: "Root@Campus.edu", Password: "changeme", Role: role.DefValue,
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, model.Admin, u.Role)
	assert.Equal(t, "root@campus.edu", u.Email)
	assert.Equal(t, "created ADMIN user root@campus.edu (id 1)\n", out.String())
}

func TestCreateUserOtherRoles(t *testing.T) {
	users := newMemUsers()
	u, err := createUser(context.Background(), authFor(users), service.RegisterInput{
		Name: "W", Email: "w@campus.edu", Password: "pw", Role: "warden",
	}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, model.Warden, u.Role)
}

func TestCreateUserRejections(t *testing.T) {
	users := newMemUsers()
	auth := authFor(users)
	_, err := createUser(context.Background(), auth, service.RegisterInput{Name: "A", Email: "a@campus.edu", Password: "pw", Role: "ADMIN"}, io.Discard)
	require.NoError(t, err)

	cases := []struct {
		name string
		in   service.RegisterInput
		kind util.ErrorKind
	}{
		{"unknown role", service.RegisterInput{Name: "B", Email: "b@campus.edu", Password: "pw", Role: "DEAN"}, util.KindValidation},
		{"bad email", service.RegisterInput{Name: "B", Email: "a@", Password: "pw", Role: "ADMIN"}, util.KindValidation},
		{"duplicate", service.RegisterInput{Name: "A2", Email: "a@campus.edu", Password: "pw", Role: "ADMIN"}, util.KindConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := createUser(context.Background(), auth, tc.in, &out)
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), "create user: "))
			assert.Equal(t, tc.kind, util.KindOf(err))
			assert.Empty(t, out.String())
		})
	}
	assert.Len(t, users.users, 1)
}

func TestCreateUserRequiresFlags(t *testing.T) {
	rootCmd.SetArgs([]string{"create-user", "--name", "Root"})
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s)")
	assert.Contains(t, err.Error(), `"email"`)
	assert.Contains(t, err.Error(), `"password"`)
}
