package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"munhuwese/internal/delivery/http/helpers"
	"munhuwese/internal/domain"
)

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	profile    *domain.User
	profileErr error
	updated    *domain.User
	updateErr  error
	deleteErr  error
	regs       []*domain.RegistrationWithEvent
	regsErr    error

	lastUpdate     domain.ProfileUpdate
	lastDeletePass string
}

func (f *fakeUserService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, userID int64, update domain.ProfileUpdate) (*domain.User, error) {
	f.lastUpdate = update
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updated, nil
}

func (f *fakeUserService) DeleteAccount(ctx context.Context, userID int64, password string) error {
	f.lastDeletePass = password
	return f.deleteErr
}

func (f *fakeUserService) ListMyRegistrations(ctx context.Context, userID int64) ([]*domain.RegistrationWithEvent, error) {
	return f.regs, f.regsErr
}

// fakeDashboardService implements domain.DashboardService for handler tests.
type fakeDashboardService struct {
	items []*domain.DashboardItem
	err   error
}

func (f *fakeDashboardService) Feed(ctx context.Context, userID int64) ([]*domain.DashboardItem, error) {
	return f.items, f.err
}

func newUserController(svc *fakeUserService, dash *fakeDashboardService, t *testing.T) *UserController {
	t.Helper()
	if dash == nil {
		dash = &fakeDashboardService{}
	}
	return NewUserController(testLogger(), svc, dash, t.TempDir())
}

func TestUserController_GetMe(t *testing.T) {
	now := time.Now()
	user := &domain.User{ID: 7, Email: "jane@example.com", Name: "Jane Doe", Role: domain.RoleUser, CreatedAt: now, UpdatedAt: now}

	tests := []struct {
		name         string
		authed       bool
		fake         *fakeUserService
		wantStatus   int
		wantBodyCode string
	}{
		{"success", true, &fakeUserService{profile: user}, http.StatusOK, ""},
		{"no claims in context", false, &fakeUserService{}, http.StatusUnauthorized, helpers.ErrCodeUnauthorized},
		{"user not found", true, &fakeUserService{profileErr: domain.ErrUserNotFound}, http.StatusNotFound, helpers.ErrCodeNotFound},
		{"service error", true, &fakeUserService{profileErr: assert.AnError}, http.StatusInternalServerError, helpers.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := newUserController(tt.fake, nil, t)

			req := httptest.NewRequest(http.MethodGet, "http://test/users/me", nil)
			if tt.authed {
				req = withClaims(req, userClaims())
			}
			rr := httptest.NewRecorder()
			ctrl.GetMe(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantBodyCode == "" {
				require.Nil(t, envelope.Error)
				data := envelope.Data.(map[string]any)
				assert.Equal(t, "jane@example.com", data["email"])
				_, exposed := data["passwordHash"]
				assert.False(t, exposed)
			} else {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestUserController_UpdateProfile(t *testing.T) {
	t.Run("json update", func(t *testing.T) {
		fake := &fakeUserService{updated: &domain.User{ID: 7, Name: "Janet"}}
		ctrl := newUserController(fake, nil, t)

		name := "Janet"
		raw, err := json.Marshal(UpdateProfileRequest{Name: &name, RemoveProfile: true})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "http://test/users/profile", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req = withClaims(req, userClaims())
		rr := httptest.NewRecorder()
		ctrl.UpdateProfile(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, fake.lastUpdate.Name)
		assert.Equal(t, "Janet", *fake.lastUpdate.Name)
		assert.True(t, fake.lastUpdate.RemoveProfileImage)
	})

	t.Run("short name rejected", func(t *testing.T) {
		ctrl := newUserController(&fakeUserService{}, nil, t)
		name := "J"
		raw, err := json.Marshal(UpdateProfileRequest{Name: &name})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "http://test/users/profile", bytes.NewReader(raw))
		req = withClaims(req, userClaims())
		rr := httptest.NewRecorder()
		ctrl.UpdateProfile(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		ctrl := newUserController(&fakeUserService{updateErr: domain.ErrDuplicateEmail}, nil, t)
		email := "taken@example.com"
		raw, err := json.Marshal(UpdateProfileRequest{Email: &email})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "http://test/users/profile", bytes.NewReader(raw))
		req = withClaims(req, userClaims())
		rr := httptest.NewRecorder()
		ctrl.UpdateProfile(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUserController_Dashboard(t *testing.T) {
	dash := &fakeDashboardService{items: []*domain.DashboardItem{
		{Type: "post", Post: &domain.PostWithMeta{Post: domain.Post{ID: 1, Title: "Hello"}}},
		{Type: "event", Event: &domain.EventWithMeta{Event: domain.Event{ID: 2, Title: "Meetup"}}},
	}}
	ctrl := newUserController(&fakeUserService{}, dash, t)

	req := withClaims(httptest.NewRequest(http.MethodGet, "http://test/dashboard", nil), userClaims())
	rr := httptest.NewRecorder()
	ctrl.Dashboard(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	envelope := decodeEnvelope(t, rr)
	items := envelope.Data.([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "post", first["type"])
}

func TestUserController_DeleteMe(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		ctrl := newUserController(&fakeUserService{deleteErr: domain.ErrInvalidCredentials}, nil, t)
		raw, err := json.Marshal(DeleteAccountRequest{Password: "wrong"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodDelete, "http://test/users/me", bytes.NewReader(raw))
		req = withClaims(req, userClaims())
		rr := httptest.NewRecorder()
		ctrl.DeleteMe(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		envelope := decodeEnvelope(t, rr)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "invalid credentials", envelope.Error.Message)
	})

	t.Run("missing password", func(t *testing.T) {
		ctrl := newUserController(&fakeUserService{}, nil, t)
		raw, err := json.Marshal(DeleteAccountRequest{})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodDelete, "http://test/users/me", bytes.NewReader(raw))
		req = withClaims(req, userClaims())
		rr := httptest.NewRecorder()
		ctrl.DeleteMe(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("success", func(t *testing.T) {
		fake := &fakeUserService{}
		ctrl := newUserController(fake, nil, t)
		raw, err := json.Marshal(DeleteAccountRequest{Password: "supersecret"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodDelete, "http://test/users/me", bytes.NewReader(raw))
		req = withClaims(req, userClaims())
		rr := httptest.NewRecorder()
		ctrl.DeleteMe(rr, req)

		require.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
		assert.Equal(t, "supersecret", fake.lastDeletePass)
	})
}

func TestUserController_MyRegistrations_emptyIsArray(t *testing.T) {
	ctrl := newUserController(&fakeUserService{}, nil, t)

	req := withClaims(httptest.NewRequest(http.MethodGet, "http://test/users/registrations", nil), userClaims())
	rr := httptest.NewRecorder()
	ctrl.MyRegistrations(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	envelope := decodeEnvelope(t, rr)
	_, isArray := envelope.Data.([]any)
	assert.True(t, isArray)
}
