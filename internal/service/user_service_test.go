package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
	appErrors "github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/pkg/errors"
)

type mockUserRepo struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User
	listAll []models.User
	status  map[string]models.UserStatus
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byID:    map[string]*models.User{},
		byEmail: map[string]*models.User{},
		status:  map[string]models.UserStatus{},
	}
}

func (m *mockUserRepo) List(_ context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return m.listAll, len(m.listAll), nil
}

func (m *mockUserRepo) ListFiltered(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	return m.listAll, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := m.byID[user.ID]; !ok {
		return sql.ErrNoRows
	}
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepo) SetStatus(_ context.Context, id string, status models.UserStatus) error {
	if _, ok := m.byID[id]; !ok {
		return sql.ErrNoRows
	}
	m.status[id] = status
	return nil
}

func validCreateUserRequest() CreateUserRequest {
	return CreateUserRequest{
		Email:     "New.Staff@Example.org",
		FirstName: "Noor",
		LastName:  "Haddad",
		Role:      models.RoleCaseWorker,
		Password:  "s3cret-pass",
	}
}

func TestUserCreateDefaultsToPending(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo, nil, nil, nil, nil)

	user, err := svc.Create(context.Background(), validCreateUserRequest(), "admin-1", models.RequestMeta{})
	require.NoError(t, err)

	assert.Equal(t, models.UserStatusPending, user.Status)
	assert.Equal(t, "new.staff@example.org", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	repo.byEmail["new.staff@example.org"] = &models.User{ID: "u-1", Email: "new.staff@example.org"}
	svc := NewUserService(repo, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), validCreateUserRequest(), "admin-1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUserCreateRejectsUnknownRole(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), nil, nil, nil, nil)

	req := validCreateUserRequest()
	req.Role = "superuser"

	_, err := svc.Create(context.Background(), req, "admin-1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserCreateRecordsAudit(t *testing.T) {
	repo := newMockUserRepo()
	audit := &mockAuditLogger{}
	svc := NewUserService(repo, audit, nil, nil, nil)

	user, err := svc.Create(context.Background(), validCreateUserRequest(), "admin-1", models.RequestMeta{IP: "10.0.0.5"})
	require.NoError(t, err)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionUserCreate, audit.logs[0].Action)
	assert.Equal(t, "admin-1", *audit.logs[0].UserID)
	assert.Equal(t, user.ID, *audit.logs[0].ResourceID)
	assert.Equal(t, "10.0.0.5", audit.logs[0].IPAddress)
}

func TestUserUpdateChangesRoleAndStatus(t *testing.T) {
	repo := newMockUserRepo()
	repo.byID["u-1"] = &models.User{ID: "u-1", FirstName: "Noor", LastName: "Haddad", Role: models.RoleViewer, Status: models.UserStatusPending}
	audit := &mockAuditLogger{}
	svc := NewUserService(repo, audit, nil, nil, nil)

	active := models.UserStatusActive
	user, err := svc.Update(context.Background(), "u-1", UpdateUserRequest{
		FirstName: "Noor",
		LastName:  "Haddad",
		Role:      models.RoleManager,
		Status:    &active,
	}, "admin-1", models.RequestMeta{})
	require.NoError(t, err)

	assert.Equal(t, models.RoleManager, user.Role)
	assert.Equal(t, models.UserStatusActive, user.Status)
	require.Len(t, audit.logs, 1)
	assert.Contains(t, string(audit.logs[0].OldValues), "viewer")
	assert.Contains(t, string(audit.logs[0].NewValues), "manager")
}

func TestUserUpdateNotFound(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), nil, nil, nil, nil)

	_, err := svc.Update(context.Background(), "missing", UpdateUserRequest{
		FirstName: "Noor",
		LastName:  "Haddad",
		Role:      models.RoleViewer,
	}, "admin-1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserDeactivateMarksInactive(t *testing.T) {
	repo := newMockUserRepo()
	repo.byID["u-1"] = &models.User{ID: "u-1", Status: models.UserStatusActive}
	svc := NewUserService(repo, nil, nil, nil, nil)

	require.NoError(t, svc.Deactivate(context.Background(), "u-1", "admin-1", models.RequestMeta{}))
	assert.Equal(t, models.UserStatusInactive, repo.status["u-1"])
}

func TestUserDeactivateRefreshesDashboardCounters(t *testing.T) {
	repo := newMockUserRepo()
	repo.byID["u-1"] = &models.User{ID: "u-1", Status: models.UserStatusActive}
	stats := &mockStatsInvalidator{}
	svc := NewUserService(repo, nil, stats, nil, nil)

	require.NoError(t, svc.Deactivate(context.Background(), "u-1", "admin-1", models.RequestMeta{}))
	assert.Equal(t, 1, stats.calls)
}

func TestUserExportCSV(t *testing.T) {
	repo := newMockUserRepo()
	lastLogin := time.Date(2026, time.February, 3, 9, 15, 0, 0, time.UTC)
	repo.listAll = []models.User{
		{Email: "noor@example.org", FirstName: "Noor", LastName: "Haddad", Role: models.RoleManager, Status: models.UserStatusActive, LastLogin: &lastLogin, CreatedAt: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{Email: "sam@example.org", FirstName: "Sam", LastName: "Reyes", Role: models.RoleViewer, Status: models.UserStatusPending, CreatedAt: time.Date(2025, time.July, 2, 0, 0, 0, 0, time.UTC)},
	}
	svc := NewUserService(repo, nil, nil, nil, nil)

	payload, filename, err := svc.ExportCSV(context.Background(), models.UserFilter{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filename, "users-"))
	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Email,First Name,Last Name,Role,Status,Last Login,Created", lines[0])
	assert.Contains(t, lines[1], "2026-02-03 09:15")
	assert.Contains(t, lines[2], "sam@example.org")
}
