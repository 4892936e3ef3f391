// Package users stores the single user profile of an installation.
package users

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/rxkeeper/internal/common"
	"github.com/dmitrijs2005/rxkeeper/internal/logging"
	"github.com/dmitrijs2005/rxkeeper/internal/models"
	"github.com/dmitrijs2005/rxkeeper/internal/storage"
	"github.com/google/uuid"
)

type Store struct {
	mu      sync.Mutex
	storage storage.Storage
	logger  logging.Logger
	newID   func() string

	loaded bool
	user   *models.User
}

func NewStore(s storage.Storage, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Store{
		storage: s,
		logger:  logger.With("component", "users"),
		newID:   uuid.NewString,
	}
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	users, err := storage.Load[models.User](ctx, s.storage, common.CollectionUser)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		u := users[0]
		s.user = &u
	}
	s.loaded = true
	return nil
}

// Get returns the profile, or common.ErrNotFound before onboarding.
func (s *Store) Get(ctx context.Context) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return models.User{}, err
	}
	if s.user == nil {
		return models.User{}, fmt.Errorf("user profile: %w", common.ErrNotFound)
	}
	return *s.user, nil
}

// Onboard creates the profile with a fresh id.
func (s *Store) Onboard(ctx context.Context, p models.Profile) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return models.User{}, err
	}
	if s.user != nil {
		return models.User{}, fmt.Errorf("user profile: %w", common.ErrAlreadyExists)
	}

	u := models.User{
		ID:                s.newID(),
		SleepSchedule:     p.SleepSchedule,
		EatingTimes:       p.EatingTimes,
		Weight:            p.Weight,
		Height:            p.Height,
		BaselineBP:        p.BaselineBP,
		DischargeUploaded: p.DischargeUploaded,
	}
	if err := s.save(ctx, u); err != nil {
		return models.User{}, err
	}
	s.logger.Info(ctx, "user onboarded", "user_id", u.ID)
	return u, nil
}

// Update merges the non-nil patch fields into the profile.
func (s *Store) Update(ctx context.Context, p models.ProfilePatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return models.User{}, err
	}
	if s.user == nil {
		return models.User{}, fmt.Errorf("user profile: %w", common.ErrNotFound)
	}

	u := *s.user
	if p.SleepSchedule != nil {
		u.SleepSchedule = *p.SleepSchedule
	}
	if p.EatingTimes != nil {
		u.EatingTimes = *p.EatingTimes
	}
	if p.Weight != nil {
		u.Weight = *p.Weight
	}
	if p.Height != nil {
		u.Height = *p.Height
	}
	if p.BaselineBP != nil {
		u.BaselineBP = *p.BaselineBP
	}
	if p.DischargeUploaded != nil {
		u.DischargeUploaded = *p.DischargeUploaded
	}

	if err := s.save(ctx, u); err != nil {
		return models.User{}, err
	}
	s.logger.Info(ctx, "user profile updated", "user_id", u.ID)
	return u, nil
}

func (s *Store) save(ctx context.Context, u models.User) error {
	if err := storage.Save(ctx, s.storage, common.CollectionUser, []models.User{u}); err != nil {
		return err
	}
	s.user = &u
	return nil
}
