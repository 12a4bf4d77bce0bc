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
	"munhuwese/internal/delivery/http/middleware"
	"munhuwese/internal/domain"
)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	listEvents  []*domain.EventWithMeta
	listErr     error
	created     *domain.Event
	createErr   error
	updated     *domain.Event
	updateErr   error
	deleteErr   error
	registered  *domain.EventRegistration
	registerErr error
	regs        []*domain.RegistrationWithUser
	regsErr     error

	lastCallerID int64
}

func (f *fakeEventService) List(ctx context.Context, callerID int64) ([]*domain.EventWithMeta, error) {
	f.lastCallerID = callerID
	return f.listEvents, f.listErr
}

func (f *fakeEventService) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = event
	event.ID = 1
	return event, nil
}

func (f *fakeEventService) Update(ctx context.Context, eventID int64, update domain.EventUpdate) (*domain.Event, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updated, nil
}

func (f *fakeEventService) Delete(ctx context.Context, eventID int64) error {
	return f.deleteErr
}

func (f *fakeEventService) Register(ctx context.Context, eventID, userID int64) (*domain.EventRegistration, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registered, nil
}

func (f *fakeEventService) ListRegistrations(ctx context.Context, eventID int64) ([]*domain.RegistrationWithUser, error) {
	return f.regs, f.regsErr
}

func withClaims(req *http.Request, claims domain.TokenClaims) *http.Request {
	return req.WithContext(middleware.SetClaims(req.Context(), claims))
}

func adminClaims() domain.TokenClaims {
	return domain.TokenClaims{UserID: 1, Email: "admin@example.com", Role: domain.RoleAdmin}
}

func userClaims() domain.TokenClaims {
	return domain.TokenClaims{UserID: 7, Email: "jane@example.com", Role: domain.RoleUser}
}

func TestEventController_List(t *testing.T) {
	fake := &fakeEventService{listEvents: []*domain.EventWithMeta{
		{Event: domain.Event{ID: 1, Title: "Meetup"}, AttendeeCount: 3},
	}}
	ctrl := NewEventController(testLogger(), fake, t.TempDir())

	t.Run("anonymous", func(t *testing.T) {
		rr := httptest.NewRecorder()
		ctrl.List(rr, httptest.NewRequest(http.MethodGet, "http://test/events", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Zero(t, fake.lastCallerID)
	})

	t.Run("authenticated caller id is passed through", func(t *testing.T) {
		req := withClaims(httptest.NewRequest(http.MethodGet, "http://test/events", nil), userClaims())
		rr := httptest.NewRecorder()
		ctrl.List(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int64(7), fake.lastCallerID)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		empty := NewEventController(testLogger(), &fakeEventService{}, t.TempDir())
		rr := httptest.NewRecorder()
		empty.List(rr, httptest.NewRequest(http.MethodGet, "http://test/events", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		envelope := decodeEnvelope(t, rr)
		_, isArray := envelope.Data.([]any)
		assert.True(t, isArray)
	})
}

func validCreateEventBody() CreateEventRequest {
	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	return CreateEventRequest{
		Title:       "Community Meetup",
		Description: "An evening of talks and networking.",
		Location:    "Town Hall",
		StartAt:     start,
		EndAt:       start.Add(2 * time.Hour),
	}
}

func TestEventController_Create(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*CreateEventRequest)
		wantStatus int
	}{
		{"valid", func(r *CreateEventRequest) {}, http.StatusCreated},
		{"title at minimum length", func(r *CreateEventRequest) { r.Title = "Art" }, http.StatusCreated},
		{"title too short", func(r *CreateEventRequest) { r.Title = "Ar" }, http.StatusBadRequest},
		{"end before start", func(r *CreateEventRequest) { r.EndAt = r.StartAt.Add(-time.Hour) }, http.StatusBadRequest},
		{"missing location", func(r *CreateEventRequest) { r.Location = "" }, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{}
			ctrl := NewEventController(testLogger(), fake, t.TempDir())

			body := validCreateEventBody()
			tt.mutate(&body)
			raw, err := json.Marshal(body)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "http://test/events", bytes.NewReader(raw))
			req.Header.Set("Content-Type", "application/json")
			req = withClaims(req, adminClaims())
			rr := httptest.NewRecorder()
			ctrl.Create(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				require.NotNil(t, fake.created)
				require.NotNil(t, fake.created.CreatorID)
				assert.Equal(t, int64(1), *fake.created.CreatorID)
			}
		})
	}
}

func TestEventController_Register(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		fake         *fakeEventService
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "success",
			fake:       &fakeEventService{registered: &domain.EventRegistration{ID: 1, EventID: 5, UserID: 7, CreatedAt: now}},
			wantStatus: http.StatusCreated,
		},
		{
			name:         "event not found",
			fake:         &fakeEventService{registerErr: domain.ErrNotFound},
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
		{
			name:         "duplicate registration",
			fake:         &fakeEventService{registerErr: domain.ErrDuplicateRegistration},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewEventController(testLogger(), tt.fake, t.TempDir())

			req := httptest.NewRequest(http.MethodPost, "http://test/events/5/register", nil)
			req.SetPathValue("eventID", "5")
			req = withClaims(req, userClaims())
			rr := httptest.NewRecorder()
			ctrl.Register(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBodyCode != "" {
				envelope := decodeEnvelope(t, rr)
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestEventController_Register_invalidID(t *testing.T) {
	ctrl := NewEventController(testLogger(), &fakeEventService{}, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "http://test/events/abc/register", nil)
	req.SetPathValue("eventID", "abc")
	req = withClaims(req, userClaims())
	rr := httptest.NewRecorder()
	ctrl.Register(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEventController_Delete(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		ctrl := NewEventController(testLogger(), &fakeEventService{deleteErr: domain.ErrNotFound}, t.TempDir())
		req := httptest.NewRequest(http.MethodDelete, "http://test/events/9", nil)
		req.SetPathValue("eventID", "9")
		rr := httptest.NewRecorder()
		ctrl.Delete(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("success", func(t *testing.T) {
		ctrl := NewEventController(testLogger(), &fakeEventService{}, t.TempDir())
		req := httptest.NewRequest(http.MethodDelete, "http://test/events/9", nil)
		req.SetPathValue("eventID", "9")
		rr := httptest.NewRecorder()
		ctrl.Delete(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
	})
}
