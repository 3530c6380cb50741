package service

import (
	"context"
	"errors"

	"github.com/driftlock/identity/internal/identity/domain"
	"github.com/driftlock/identity/internal/identity/store"
)

// UserService implements the user management operations.
type UserService struct {
	Store store.Store
}

// GetByID fetches a user by id.
func (s *UserService) GetByID(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// List returns all users, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().List(ctx)
}

// Search returns users whose name or email contains q.
func (s *UserService) Search(ctx context.Context, q string) ([]domain.User, error) {
	return s.Store.Users().Search(ctx, q)
}

// UserUpdate carries the mutable user fields. Nil means keep current.
type UserUpdate struct {
	Name  *string
	Email *string
}

// Update applies the non-nil fields and returns the updated user. The
// read and write share a transaction so concurrent updates cannot
// interleave.
func (s *UserService) Update(ctx context.Context, userID string, upd UserUpdate) (domain.User, error) {
	var updated domain.User

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			user.Name = *upd.Name
		}
		if upd.Email != nil {
			user.Email = *upd.Email
		}

		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}

		updated, err = tx.Users().GetByID(ctx, userID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return domain.User{}, ErrUserNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	return updated, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	err := s.Store.Users().Delete(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
