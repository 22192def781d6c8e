package rsvp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jredh-dev/hochzeit/pkg/identity"
	"github.com/jredh-dev/hochzeit/pkg/models"
)

type memStore struct {
	mu   sync.Mutex
	regs map[string]*models.Registration
	err  error
}

func (m *memStore) SaveRegistration(_ context.Context, key string, reg *models.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.regs == nil {
		m.regs = make(map[string]*models.Registration)
	}
	m.regs[key] = reg
	return nil
}

func newTestService(store Store) *Service {
	svc := NewService(store, nil)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() string {
		n++
		return "reg-" + string(rune('0'+n))
	}
	return svc
}

func TestRegister(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store)

	reg, err := svc.Register(context.Background(), Request{
		FullName:  "  Anna Muster ",
		Email:     " Anna@Example.CH ",
		PartySize: 3,
		Attending: []string{"abend", "nachmittag", "abend"},
		Message:   " Wir freuen uns! ",
	})
	require.NoError(t, err)

	assert.Equal(t, "reg-1", reg.ID)
	assert.Equal(t, "Anna Muster", reg.FullName)
	assert.Equal(t, "anna@example.ch", reg.Email)
	assert.Equal(t, 3, reg.PartySize)
	assert.Equal(t, []string{"abend", "nachmittag"}, reg.Attending)
	assert.Equal(t, "Wir freuen uns!", reg.Message)
	assert.Equal(t, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), reg.CreatedAt)
	assert.Same(t, reg, store.regs[identity.GuestKey("anna@example.ch")])
}

func TestRegister_ReplacesSameGuest(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store)

	_, err := svc.Register(context.Background(), Request{FullName: "Anna", Email: "anna@example.ch", Attending: []string{"brunch"}})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), Request{FullName: "Anna", Email: "ANNA@example.ch", Attending: []string{"abend"}})
	require.NoError(t, err)

	require.Len(t, store.regs, 1)
	for _, reg := range store.regs {
		assert.Equal(t, []string{"abend"}, reg.Attending)
	}
}

func TestRegister_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"missing name", Request{Email: "a@b.ch", Attending: []string{"abend"}}},
		{"missing email", Request{FullName: "Anna", Attending: []string{"abend"}}},
		{"email without at", Request{FullName: "Anna", Email: "anna", Attending: []string{"abend"}}},
		{"nothing attended", Request{FullName: "Anna", Email: "a@b.ch"}},
		{"blank items", Request{FullName: "Anna", Email: "a@b.ch", Attending: []string{" ", ""}}},
		{"unknown item", Request{FullName: "Anna", Email: "a@b.ch", Attending: []string{"abend", "polterabend"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			_, err := newTestService(store).Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Empty(t, store.regs)
		})
	}
}

func TestRegister_StoreFailure(t *testing.T) {
	store := &memStore{err: errors.New("deadline exceeded")}
	_, err := newTestService(store).Register(context.Background(), Request{
		FullName: "Anna", Email: "a@b.ch", Attending: []string{"abend"},
	})
	assert.ErrorIs(t, err, ErrStore)
}

func TestPartySize_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want PartySize
	}{
		{`2`, 2},
		{`"4"`, 4},
		{`2.6`, 3},
		{`0`, 1},
		{`-3`, 1},
		{`40`, MaxPartySize},
		{`"viele"`, 1},
		{`null`, 1},
		{`true`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var req Request
			require.NoError(t, json.Unmarshal([]byte(`{"partySize":`+tt.in+`}`), &req))
			assert.Equal(t, tt.want, req.PartySize)
		})
	}
}

func TestRegister_MissingPartySizeDefaultsToOne(t *testing.T) {
	var req Request
	require.NoError(t, json.Unmarshal([]byte(`{"fullName":"Anna","email":"a@b.ch","attending":["abend"]}`), &req))

	reg, err := newTestService(&memStore{}).Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.PartySize)
}
