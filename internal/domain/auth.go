package domain

import "time"

// TokenVerifier verifies a bearer token and returns the caller's identity.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// TokenIssuer issues tokens (e.g. JWT) for an identity.
type TokenIssuer interface {
	Issue(identity Identity, expiry time.Duration) (string, error)
}

// TaskKeyChecker authorizes callers of the task and cron endpoints.
type TaskKeyChecker interface {
	Check(key string) error
}
