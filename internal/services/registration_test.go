package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencecentral/internal/domain"
)

func newTestRegistrationService(st *testStores) domain.RegistrationService {
	return NewRegistrationService(st.profiles, st.conferences, st.sessions, st.tx, 5*time.Second)
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()
	alice := domain.Identity{UserID: "alice"}

	tests := []struct {
		name      string
		seats     int
		confID    string
		preAttend bool
		wantErr   error
		wantSeats int
	}{
		{name: "success", seats: 3, confID: "c1", wantSeats: 2},
		{name: "last seat", seats: 1, confID: "c1", wantSeats: 0},
		{name: "sold out", seats: 0, confID: "c1", wantErr: domain.ErrNoSeatsAvailable, wantSeats: 0},
		{name: "already registered", seats: 3, confID: "c1", preAttend: true, wantErr: domain.ErrAlreadyRegistered, wantSeats: 3},
		{name: "missing conference", seats: 3, confID: "c9", wantErr: domain.ErrNotFound, wantSeats: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestStores()
			st.conferences.put(&domain.Conference{ID: "c1", MaxAttendees: 10, SeatsAvailable: tt.seats})
			if tt.preAttend {
				p := domain.NewProfile(alice, time.Now())
				p.ConferenceIDsToAttend = []string{"c1"}
				st.profiles.byID["alice"] = p
			}
			svc := newTestRegistrationService(st)

			ok, err := svc.Register(ctx, alice, tt.confID)
			assert.Equal(t, tt.wantSeats, st.conferences.get("c1").SeatsAvailable)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, errorsBase(tt.wantErr))
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.True(t, ok)
			p, err := st.profiles.GetByID(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, []string{"c1"}, p.ConferenceIDsToAttend)
		})
	}
}

// errorsBase returns the HTTP-facing sentinel a specific error wraps.
func errorsBase(err error) error {
	switch err {
	case domain.ErrAlreadyRegistered, domain.ErrNoSeatsAvailable:
		return domain.ErrConflict
	}
	return err
}

func TestRegistrationService_RegisterTwiceDoesNotDoubleDecrement(t *testing.T) {
	ctx := context.Background()
	st := newTestStores()
	st.conferences.put(&domain.Conference{ID: "c1", MaxAttendees: 5, SeatsAvailable: 5})
	svc := newTestRegistrationService(st)
	id := domain.Identity{UserID: "bob"}

	ok, err := svc.Register(ctx, id, "c1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Register(ctx, id, "c1")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 4, st.conferences.get("c1").SeatsAvailable)
}

// The fake transactor serializes whole transactions, so this checks the
// seat arithmetic under concurrency; the row lock order against real SQL is
// checked in registration_sql_test.go.
func TestRegistrationService_ConcurrentRegistrationsNeverOversell(t *testing.T) {
	ctx := context.Background()
	const seats, callers = 7, 20

	st := newTestStores()
	st.conferences.put(&domain.Conference{ID: "c1", MaxAttendees: seats, SeatsAvailable: seats})
	svc := newTestRegistrationService(st)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, full int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Register(ctx, domain.Identity{UserID: fmt.Sprintf("user-%d", i)}, "c1")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, domain.ErrNoSeatsAvailable) {
				full++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, seats, ok)
	assert.Equal(t, callers-seats, full)
	assert.Equal(t, 0, st.conferences.get("c1").SeatsAvailable)
}

func TestRegistrationService_Unregister(t *testing.T) {
	ctx := context.Background()
	alice := domain.Identity{UserID: "alice"}

	t.Run("registered caller frees a seat", func(t *testing.T) {
		st := newTestStores()
		st.conferences.put(&domain.Conference{ID: "c1", MaxAttendees: 10, SeatsAvailable: 10})
		svc := newTestRegistrationService(st)

		_, err := svc.Register(ctx, alice, "c1")
		require.NoError(t, err)
		ok, err := svc.Unregister(ctx, alice, "c1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 10, st.conferences.get("c1").SeatsAvailable)
		p, _ := st.profiles.GetByID(ctx, "alice")
		assert.Empty(t, p.ConferenceIDsToAttend)
	})

	t.Run("not registered returns false", func(t *testing.T) {
		st := newTestStores()
		st.conferences.put(&domain.Conference{ID: "c1", MaxAttendees: 10, SeatsAvailable: 6})
		svc := newTestRegistrationService(st)

		ok, err := svc.Unregister(ctx, alice, "c1")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 6, st.conferences.get("c1").SeatsAvailable)
	})

	t.Run("missing conference", func(t *testing.T) {
		st := newTestStores()
		svc := newTestRegistrationService(st)

		_, err := svc.Unregister(ctx, alice, "c9")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("anonymous", func(t *testing.T) {
		st := newTestStores()
		st.conferences.put(&domain.Conference{ID: "c1"})
		svc := newTestRegistrationService(st)

		_, err := svc.Unregister(ctx, domain.Identity{}, "c1")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestRegistrationService_ListConferencesAttending(t *testing.T) {
	ctx := context.Background()
	st := newTestStores()
	st.conferences.put(&domain.Conference{ID: "c1", Name: "A"})
	st.conferences.put(&domain.Conference{ID: "c2", Name: "B"})
	p := domain.NewProfile(domain.Identity{UserID: "alice"}, time.Now())
	p.ConferenceIDsToAttend = []string{"c2", "gone", "c1"}
	st.profiles.byID["alice"] = p
	svc := newTestRegistrationService(st)

	got, err := svc.ListConferencesAttending(ctx, domain.Identity{UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID)
	assert.Equal(t, "c1", got[1].ID)

	empty, err := svc.ListConferencesAttending(ctx, domain.Identity{UserID: "bob"})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRegistrationService_Wishlist(t *testing.T) {
	ctx := context.Background()
	alice := domain.Identity{UserID: "alice"}

	newStores := func() *testStores {
		st := newTestStores()
		st.sessions.sessions = []*domain.Session{{ID: "s1"}, {ID: "s2"}}
		return st
	}

	t.Run("add allows duplicates and list keeps order", func(t *testing.T) {
		st := newStores()
		svc := newTestRegistrationService(st)

		for _, id := range []string{"s2", "s1", "s2"} {
			_, err := svc.AddToWishlist(ctx, alice, id)
			require.NoError(t, err)
		}
		p, err := st.profiles.GetByID(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"s2", "s1", "s2"}, p.SessionIDsWishlist)

		sessions, err := svc.ListWishlist(ctx, alice)
		require.NoError(t, err)
		require.Len(t, sessions, 3)
		assert.Equal(t, "s2", sessions[0].ID)
		assert.Equal(t, "s1", sessions[1].ID)
	})

	t.Run("add unknown session", func(t *testing.T) {
		st := newStores()
		svc := newTestRegistrationService(st)

		_, err := svc.AddToWishlist(ctx, alice, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, 0, st.tx.calls)
	})

	t.Run("remove first occurrence", func(t *testing.T) {
		st := newStores()
		p := domain.NewProfile(alice, time.Now())
		p.SessionIDsWishlist = []string{"s1", "s2", "s1"}
		st.profiles.byID["alice"] = p
		svc := newTestRegistrationService(st)

		got, err := svc.RemoveFromWishlist(ctx, alice, "s1")
		require.NoError(t, err)
		assert.Equal(t, []string{"s2", "s1"}, got.SessionIDsWishlist)
	})

	t.Run("remove entry never added", func(t *testing.T) {
		st := newStores()
		svc := newTestRegistrationService(st)

		_, err := svc.RemoveFromWishlist(ctx, alice, "s1")
		assert.ErrorIs(t, err, domain.ErrNotInWishlist)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("remove unknown session", func(t *testing.T) {
		st := newStores()
		svc := newTestRegistrationService(st)

		_, err := svc.RemoveFromWishlist(ctx, alice, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NotErrorIs(t, err, domain.ErrNotInWishlist)
	})
}
