package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"conferencecentral/internal/domain"
)

var errEmptyTaskKey = errors.New("missing task key")

type bcryptTaskKeyChecker struct {
	hash []byte
}

// NewTaskKeyChecker returns a TaskKeyChecker that compares keys against a
// bcrypt hash. With an empty hash every key is rejected.
func NewTaskKeyChecker(hash string) domain.TaskKeyChecker {
	return &bcryptTaskKeyChecker{hash: []byte(hash)}
}

func (c *bcryptTaskKeyChecker) Check(key string) error {
	if key == "" {
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, errEmptyTaskKey)
	}
	if len(c.hash) == 0 {
		return fmt.Errorf("%w: task endpoints are disabled", domain.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(key)); err != nil {
		return fmt.Errorf("%w: invalid task key", domain.ErrForbidden)
	}
	return nil
}

// HashTaskKey returns the bcrypt hash to store in TASK_KEY_HASH for key.
func HashTaskKey(key string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash task key: %w", err)
	}
	return string(hash), nil
}
