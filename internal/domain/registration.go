package domain

import "context"

// TxStores are the repositories bound to a single transaction.
type TxStores struct {
	Profiles    ProfileRepository
	Conferences ConferenceRepository
}

// Transactor runs fn inside one database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error
}

// RegistrationService performs the attendance and wishlist mutations.
type RegistrationService interface {
	// Register returns true on success; ErrAlreadyRegistered or ErrNoSeatsAvailable otherwise.
	Register(ctx context.Context, identity Identity, conferenceID string) (bool, error)
	// Unregister returns false, without error, when the caller was not registered.
	Unregister(ctx context.Context, identity Identity, conferenceID string) (bool, error)
	ListConferencesAttending(ctx context.Context, identity Identity) ([]*Conference, error)
	AddToWishlist(ctx context.Context, identity Identity, sessionID string) (*Profile, error)
	RemoveFromWishlist(ctx context.Context, identity Identity, sessionID string) (*Profile, error)
	ListWishlist(ctx context.Context, identity Identity) ([]*Session, error)
}
