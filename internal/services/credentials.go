package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the hashing cost for new credentials. Tests lower it.
var BcryptCost = bcrypt.DefaultCost // mockable

// CredentialStore maps normalized emails to bcrypt hashes.
type CredentialStore struct {
	doc *storage.Document[map[string]string]
}

func NewCredentialStore(kv storage.KV) *CredentialStore {
	return &CredentialStore{doc: storage.NewDocument[map[string]string](kv, KeyPasswords)}
}

func (c *CredentialStore) Bind(kv storage.KV) *CredentialStore {
	return &CredentialStore{doc: c.doc.Bind(kv)}
}

// Get returns the stored secret hash for email.
func (c *CredentialStore) Get(ctx context.Context, email string) (string, bool, error) {
	all, _, err := c.doc.Load(ctx)
	if err != nil {
		return "", false, err
	}
	hash, ok := all[models.NormalizeEmail(email)]
	return hash, ok, nil
}

// Set hashes secret and stores it under email, replacing any previous entry.
func (c *CredentialStore) Set(ctx context.Context, email, secret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	all, _, err := c.doc.Load(ctx)
	if err != nil {
		return err
	}
	if all == nil {
		all = make(map[string]string)
	}
	all[models.NormalizeEmail(email)] = string(hash)
	return c.doc.Save(ctx, all)
}

// Verify reports whether secret matches the credential stored for email.
// A missing credential is a mismatch, not an error.
func (c *CredentialStore) Verify(ctx context.Context, email, secret string) (bool, error) {
	hash, ok, err := c.Get(ctx, email)
	if err != nil || !ok {
		return false, err
	}
	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		// malformed hash: treat as a mismatch so the caller reports a bad password
		return false, nil
	}
	return true, nil
}
