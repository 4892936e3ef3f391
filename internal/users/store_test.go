package users

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dmitrijs2005/rxkeeper/internal/common"
	"github.com/dmitrijs2005/rxkeeper/internal/models"
	"github.com/dmitrijs2005/rxkeeper/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStorage struct {
	storage.Storage
	err error
}

func (b *brokenStorage) WriteCollection(ctx context.Context, name string, records []json.RawMessage) error {
	if b.err != nil {
		return b.err
	}
	return b.Storage.WriteCollection(ctx, name, records)
}

func newTestStore() (*Store, *brokenStorage) {
	bs := &brokenStorage{Storage: storage.NewMemory()}
	s := NewStore(bs, nil)
	s.newID = func() string { return "user-1" }
	return s, bs
}

func TestStore_GetBeforeOnboarding(t *testing.T) {
	s, _ := newTestStore()

	_, err := s.Get(context.Background())
	require.ErrorIs(t, err, common.ErrNotFound)

	weight := "70kg"
	_, err = s.Update(context.Background(), models.ProfilePatch{Weight: &weight})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_OnboardThenGet(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	u, err := s.Onboard(ctx, models.Profile{SleepSchedule: "22:00-06:00", Weight: "70kg", DischargeUploaded: true})
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = s.Onboard(ctx, models.Profile{})
	require.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestStore_UpdateMergesFields(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.Onboard(ctx, models.Profile{Weight: "70kg", Height: "180cm"})
	require.NoError(t, err)

	bp := "120/80"
	u, err := s.Update(ctx, models.ProfilePatch{BaselineBP: &bp})
	require.NoError(t, err)
	assert.Equal(t, "120/80", u.BaselineBP)
	assert.Equal(t, "70kg", u.Weight)
	assert.Equal(t, "180cm", u.Height)
}

func TestStore_PersistsAcrossHandles(t *testing.T) {
	mem := storage.NewMemory()
	ctx := context.Background()

	u, err := NewStore(mem, nil).Onboard(ctx, models.Profile{EatingTimes: "8,13,19"})
	require.NoError(t, err)

	got, err := NewStore(mem, nil).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestStore_WriteFailureKeepsProfile(t *testing.T) {
	s, bs := newTestStore()
	ctx := context.Background()

	_, err := s.Onboard(ctx, models.Profile{Weight: "70kg"})
	require.NoError(t, err)

	bs.err = errors.New("read-only")
	weight := "72kg"
	_, err = s.Update(ctx, models.ProfilePatch{Weight: &weight})
	require.ErrorIs(t, err, bs.err)

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "70kg", got.Weight)
}
