package repository

import (
	"context"
	"fmt"

	commoncrypto "github.com/aiagents/collab-hub/internal/common/crypto"
	"github.com/aiagents/collab-hub/internal/user/domain"
)

type Seed struct {
	ID       string
	Name     string
	Email    string
	Password string
}

func DemoSeeds() []Seed {
	return []Seed{
		{ID: "1", Name: "Demo User", Email: "demo@aiagents.com", Password: "demo123"},
		{ID: "2", Name: "System Administrator", Email: "admin@aiagents.com", Password: "admin123"},
		{ID: "3", Name: "Kyle Mabbott", Email: "kyle@aiagents.com", Password: "kyle123"},
	}
}

func DemoAccounts(seeds []Seed) []domain.DemoAccount {
	accounts := make([]domain.DemoAccount, 0, len(seeds))
	for _, s := range seeds {
		accounts = append(accounts, domain.DemoAccount{Name: s.Name, Email: s.Email, Password: s.Password})
	}
	return accounts
}

// StaticDirectory is an in-process directory built from seeds at startup.
// Seed passwords are hashed on construction and discarded.
type StaticDirectory struct {
	byEmail   map[string]domain.Record
	hasher    commoncrypto.PasswordHasher
	guardHash string
}

func NewStaticDirectory(seeds []Seed, hasher commoncrypto.PasswordHasher) (*StaticDirectory, error) {
	d := &StaticDirectory{
		byEmail: make(map[string]domain.Record, len(seeds)),
		hasher:  hasher,
	}

	for _, s := range seeds {
		if s.Email == "" || s.Password == "" {
			return nil, fmt.Errorf("seed %q: email and password are required", s.ID)
		}
		if _, exists := d.byEmail[s.Email]; exists {
			return nil, fmt.Errorf("seed %q: duplicate email %s", s.ID, s.Email)
		}
		hash, err := hasher.Hash(s.Password)
		if err != nil {
			return nil, fmt.Errorf("seed %q: hash password: %w", s.ID, err)
		}
		d.byEmail[s.Email] = domain.Record{
			ID:           domain.ID(s.ID),
			Name:         s.Name,
			Email:        s.Email,
			PasswordHash: hash,
		}
	}

	guard, err := hasher.Hash(timingGuardPassword)
	if err != nil {
		return nil, fmt.Errorf("hash timing guard: %w", err)
	}
	d.guardHash = guard

	return d, nil
}

func (d *StaticDirectory) Find(ctx context.Context, email, password string) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return domain.Record{}, err
	}

	record, ok := d.byEmail[email]
	if !ok {
		_ = d.hasher.Compare(d.guardHash, password)
		return domain.Record{}, ErrUserNotFound
	}

	if err := d.hasher.Compare(record.PasswordHash, password); err != nil {
		return domain.Record{}, ErrUserNotFound
	}
	return record, nil
}

func (d *StaticDirectory) Len() int {
	return len(d.byEmail)
}
