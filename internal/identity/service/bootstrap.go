package service

import (
	"context"
	"log/slog"

	"github.com/driftlock/identity/internal/identity/domain"
	"github.com/driftlock/identity/internal/identity/store"
	"github.com/driftlock/identity/pkg/cryptox"
	"github.com/driftlock/identity/pkg/idx"
	"github.com/driftlock/identity/pkg/slogx"
)

// AdminSeed is the initial administrator account created on first boot.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

// BootstrapService seeds the first admin account so a fresh deployment
// is usable without poking the database by hand.
type BootstrapService struct {
	Store      store.Store
	BcryptCost int
}

// EnsureAdmin creates the seed admin if the users table is empty. The
// emptiness check and insert share a transaction so two racing
// instances seed at most one admin.
func (s *BootstrapService) EnsureAdmin(ctx context.Context, seed AdminSeed) error {
	log := slogx.FromContext(ctx)

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	hash, err := cryptox.HashPassword(seed.Password, s.BcryptCost)
	if err != nil {
		return err
	}

	admin := domain.User{
		ID:           idx.New().String(),
		Name:         seed.Name,
		Email:        seed.Email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return nil
		}
		return tx.Users().Create(ctx, admin)
	})
	if err != nil {
		return err
	}

	log.Info("seeded initial admin user",
		slog.String("user_id", admin.ID),
		slog.String("email", admin.Email),
	)
	return nil
}
