package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/meaw-storefront/pkg/enums"
)

// SentinelPassword is the shared password of every seeded identity.
const SentinelPassword = "password"

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

type identity struct {
	user         User
	passwordHash string
}

// Directory is the fixed set of role-tagged identities login checks against.
type Directory struct {
	hasher     passwordHasher
	identities map[string]identity
}

// NewSeedDirectory builds the demo directory: one admin, one vendor, one customer.
func NewSeedDirectory(hasher passwordHasher, now time.Time) (*Directory, error) {
	if hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	hash, err := hasher.Hash(SentinelPassword)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	seeds := []User{
		{ID: "1", Email: "admin@meaw.com", Name: "অ্যাডমিন ইউজার", Role: enums.UserRoleAdmin, Avatar: avatarURL("admin")},
		{ID: "2", Email: "vendor@meaw.com", Name: "রহিম উদ্দিন", Role: enums.UserRoleVendor, Avatar: avatarURL("rahim")},
		{ID: "3", Email: "customer@meaw.com", Name: "করিম আহমেদ", Role: enums.UserRoleCustomer, Avatar: avatarURL("karim")},
	}

	d := &Directory{hasher: hasher, identities: make(map[string]identity, len(seeds))}
	for _, u := range seeds {
		u.CreatedAt = now
		u.UpdatedAt = now
		u.IsActive = true
		u.EmailVerified = true
		d.identities[normalizeEmail(u.Email)] = identity{user: u, passwordHash: hash}
	}
	return d, nil
}

// Authenticate returns the identity for email when password matches.
func (d *Directory) Authenticate(email, password string) (User, bool, error) {
	id, ok := d.identities[normalizeEmail(email)]
	if !ok {
		return User{}, false, nil
	}
	match, err := d.hasher.Verify(password, id.passwordHash)
	if err != nil {
		return User{}, false, fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return User{}, false, nil
	}
	return *id.user.clone(), true, nil
}

// Len reports the number of identities.
func (d *Directory) Len() int {
	return len(d.identities)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func avatarURL(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + seed
}
