package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"munhuwese/internal/domain"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type mockUserRepository struct {
	byID    map[int64]*domain.User
	byEmail map[string]*domain.User
	nextID  int64
	err     error

	updatedPasswords map[int64]string
	deleted          []int64
}

func newMockUserRepository(users ...*domain.User) *mockUserRepository {
	m := &mockUserRepository{
		byID:             map[int64]*domain.User{},
		byEmail:          map[string]*domain.User{},
		nextID:           1,
		updatedPasswords: map[int64]string{},
	}
	for _, u := range users {
		m.byID[u.ID] = u
		m.byEmail[u.Email] = u
		if u.ID >= m.nextID {
			m.nextID = u.ID + 1
		}
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, u *domain.User) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = m.nextID
	m.nextID++
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) Update(ctx context.Context, u *domain.User) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	m.byID[u.ID] = u
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	m.updatedPasswords[id] = hash
	m.byID[id].PasswordHash = hash
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockEventRepository struct {
	events  map[int64]*domain.Event
	listErr error

	deleted    []int64
	deleteErrs map[int64]error
}

func newMockEventRepository(events ...*domain.Event) *mockEventRepository {
	m := &mockEventRepository{events: map[int64]*domain.Event{}, deleteErrs: map[int64]error{}}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *mockEventRepository) Create(ctx context.Context, e *domain.Event) error {
	e.ID = int64(len(m.events) + 1)
	m.events[e.ID] = e
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (m *mockEventRepository) ListEndingAfter(ctx context.Context, cutoff time.Time) ([]*domain.EventWithMeta, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*domain.EventWithMeta
	for _, e := range m.events {
		if !e.EndAt.Before(cutoff) {
			out = append(out, &domain.EventWithMeta{Event: *e})
		}
	}
	return out, nil
}

func (m *mockEventRepository) ListStartingAfter(ctx context.Context, cutoff time.Time) ([]*domain.EventWithMeta, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*domain.EventWithMeta
	for _, e := range m.events {
		if !e.StartAt.Before(cutoff) {
			out = append(out, &domain.EventWithMeta{Event: *e})
		}
	}
	return out, nil
}

func (m *mockEventRepository) ListEndedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Event, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*domain.Event
	for _, e := range m.events {
		if e.EndAt.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepository) Update(ctx context.Context, e *domain.Event) error {
	if _, ok := m.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	m.events[e.ID] = e
	return nil
}

func (m *mockEventRepository) Delete(ctx context.Context, id int64) error {
	if err, ok := m.deleteErrs[id]; ok {
		return err
	}
	if _, ok := m.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.events, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockRegistrationRepository struct {
	regs   map[string]*domain.EventRegistration // "eventID:userID"
	byUser map[int64][]*domain.RegistrationWithEvent
	nextID int64
	err    error
}

func newMockRegistrationRepository() *mockRegistrationRepository {
	return &mockRegistrationRepository{
		regs:   map[string]*domain.EventRegistration{},
		byUser: map[int64][]*domain.RegistrationWithEvent{},
		nextID: 1,
	}
}

func regKey(eventID, userID int64) string {
	return fmt.Sprintf("%d:%d", eventID, userID)
}

func (m *mockRegistrationRepository) Create(ctx context.Context, reg *domain.EventRegistration) error {
	if m.err != nil {
		return m.err
	}
	key := regKey(reg.EventID, reg.UserID)
	if _, ok := m.regs[key]; ok {
		return domain.ErrDuplicateRegistration
	}
	reg.ID = m.nextID
	m.nextID++
	m.regs[key] = reg
	return nil
}

func (m *mockRegistrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID int64) (*domain.EventRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	reg, ok := m.regs[regKey(eventID, userID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

func (m *mockRegistrationRepository) ListByEventID(ctx context.Context, eventID int64) ([]*domain.RegistrationWithUser, error) {
	var out []*domain.RegistrationWithUser
	for _, reg := range m.regs {
		if reg.EventID == eventID {
			out = append(out, &domain.RegistrationWithUser{Registration: reg})
		}
	}
	return out, nil
}

func (m *mockRegistrationRepository) ListByUserID(ctx context.Context, userID int64) ([]*domain.RegistrationWithEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.RegistrationWithEvent
	for _, reg := range m.regs {
		if reg.UserID == userID {
			out = append(out, &domain.RegistrationWithEvent{Registration: reg})
		}
	}
	out = append(out, m.byUser[userID]...)
	return out, nil
}

// mockEmailService records sends and can be told to fail.
type mockEmailService struct {
	welcomes      []*domain.WelcomeEmailData
	confirmations []*domain.RegistrationConfirmationEmailData
	resets        []*domain.PasswordResetEmailData
	err           error
}

func (m *mockEmailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.welcomes = append(m.welcomes, data)
	return nil
}

func (m *mockEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.confirmations = append(m.confirmations, data)
	return nil
}

func (m *mockEmailService) SendPasswordReset(ctx context.Context, data *domain.PasswordResetEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.resets = append(m.resets, data)
	return nil
}
