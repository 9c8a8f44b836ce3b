package service_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenpulse/screenpulse/internal/domain"
	"github.com/screenpulse/screenpulse/internal/retention"
	"github.com/screenpulse/screenpulse/internal/service"
)

type fakeDeviceRepo struct {
	getFn func(ctx context.Context, userID, deviceID uuid.UUID) (domain.Device, error)
}

func (r *fakeDeviceRepo) CreateDevice(_ context.Context, d domain.Device) (domain.Device, error) {
	return d, nil
}
func (r *fakeDeviceRepo) ListDevices(context.Context, uuid.UUID) ([]domain.Device, error) {
	return nil, nil
}
func (r *fakeDeviceRepo) GetDevice(ctx context.Context, userID, deviceID uuid.UUID) (domain.Device, error) {
	return r.getFn(ctx, userID, deviceID)
}
func (r *fakeDeviceRepo) RenameDevice(context.Context, uuid.UUID, uuid.UUID, string) error {
	return nil
}
func (r *fakeDeviceRepo) DeleteDevice(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

// fakeShotStore doubles as ScreenshotRepository and retention.Store, backed
// by an in-memory map like the metadata table would be.
type fakeShotStore struct {
	shots     map[uuid.UUID]domain.Screenshot
	seq       int
	createErr error
}

func newFakeShotStore() *fakeShotStore {
	return &fakeShotStore{shots: map[uuid.UUID]domain.Screenshot{}}
}

func (s *fakeShotStore) CreateScreenshot(_ context.Context, shot domain.Screenshot) error {
	if s.createErr != nil {
		return s.createErr
	}
	// mimic the table default: creation time is insert time
	s.seq++
	shot.CreatedAt = time.Date(2026, 3, 10, 0, 0, s.seq, 0, time.UTC)
	s.shots[shot.ID] = shot
	return nil
}

func (s *fakeShotStore) GetScreenshot(_ context.Context, userID, id uuid.UUID) (domain.Screenshot, error) {
	shot, ok := s.shots[id]
	if !ok || shot.UserID != userID {
		return domain.Screenshot{}, domain.ErrScreenshotNotFound
	}
	return shot, nil
}

func (s *fakeShotStore) ListScreenshots(_ context.Context, userID uuid.UUID, date string) ([]domain.Screenshot, error) {
	var out []domain.Screenshot
	for _, shot := range s.shots {
		if shot.UserID == userID && (date == "" || shot.Date == date) {
			out = append(out, shot)
		}
	}
	return out, nil
}

func (s *fakeShotStore) DeleteScreenshot(_ context.Context, userID, id uuid.UUID) error {
	shot, ok := s.shots[id]
	if !ok || shot.UserID != userID {
		return domain.ErrScreenshotNotFound
	}
	delete(s.shots, id)
	return nil
}

func (s *fakeShotStore) CountInScope(_ context.Context, scope string) (int, error) {
	n := 0
	for _, shot := range s.shots {
		if shot.UserID.String() == scope {
			n++
		}
	}
	return n, nil
}

func (s *fakeShotStore) OldestInScope(_ context.Context, scope string, n int) ([]retention.Entry, error) {
	var mine []domain.Screenshot
	for _, shot := range s.shots {
		if shot.UserID.String() == scope {
			mine = append(mine, shot)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.Before(mine[j].CreatedAt) })
	if len(mine) > n {
		mine = mine[:n]
	}
	out := make([]retention.Entry, 0, len(mine))
	for _, shot := range mine {
		out = append(out, retention.Entry{ID: shot.ID.String(), BlobKey: shot.ObjectKey})
	}
	return out, nil
}

func (s *fakeShotStore) DeleteEntry(_ context.Context, scope string, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	delete(s.shots, uid)
	return nil
}

type fakeBlobs struct {
	blobs   map[string][]byte
	putErr  error
	deletes []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{blobs: map[string][]byte{}}
}

func (b *fakeBlobs) Put(_ context.Context, key string, data []byte, _ string) error {
	if b.putErr != nil {
		return b.putErr
	}
	b.blobs[key] = data
	return nil
}

func (b *fakeBlobs) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := b.blobs[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (b *fakeBlobs) Exists(_ context.Context, key string) (bool, error) {
	_, ok := b.blobs[key]
	return ok, nil
}

func (b *fakeBlobs) Delete(_ context.Context, key string) error {
	b.deletes = append(b.deletes, key)
	delete(b.blobs, key)
	return nil
}

func newScreenshotService(store *fakeShotStore, blobs *fakeBlobs, cap int, ownerOK bool) *service.ScreenshotService {
	devices := &fakeDeviceRepo{
		getFn: func(_ context.Context, userID, deviceID uuid.UUID) (domain.Device, error) {
			if !ownerOK {
				return domain.Device{}, domain.ErrDeviceNotFound
			}
			return domain.Device{ID: deviceID, UserID: userID}, nil
		},
	}
	policy := retention.New(store, blobs, cap, zerolog.Nop())
	return service.NewScreenshotService(store, devices, blobs, policy, nil, zerolog.Nop())
}

func TestScreenshotStore_RejectsEmptyData(t *testing.T) {
	svc := newScreenshotService(newFakeShotStore(), newFakeBlobs(), 5, true)

	_, err := svc.Store(context.Background(), uuid.New(), uuid.New(), service.ScreenshotMeta{}, nil, "image/png")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestScreenshotStore_RequiresOwnedDevice(t *testing.T) {
	svc := newScreenshotService(newFakeShotStore(), newFakeBlobs(), 5, false)

	_, err := svc.Store(context.Background(), uuid.New(), uuid.New(), service.ScreenshotMeta{}, []byte("png"), "image/png")
	assert.ErrorIs(t, err, domain.ErrDeviceNotFound)
}

func TestScreenshotStore_CleansBlobWhenInsertFails(t *testing.T) {
	store := newFakeShotStore()
	store.createErr = errors.New("insert failed")
	blobs := newFakeBlobs()
	svc := newScreenshotService(store, blobs, 5, true)

	_, err := svc.Store(context.Background(), uuid.New(), uuid.New(), service.ScreenshotMeta{}, []byte("png"), "image/png")
	require.Error(t, err)
	assert.Empty(t, blobs.blobs)
	assert.Len(t, blobs.deletes, 1)
}

func TestScreenshotStore_EvictsOldestBeyondCap(t *testing.T) {
	store := newFakeShotStore()
	blobs := newFakeBlobs()
	svc := newScreenshotService(store, blobs, 2, true)

	userID, deviceID := uuid.New(), uuid.New()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	var first domain.Screenshot
	for i := 0; i < 3; i++ {
		shot, err := svc.Store(context.Background(), userID, deviceID, service.ScreenshotMeta{
			Domain:    "example.com",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}, []byte("png"), "image/png")
		require.NoError(t, err)
		if i == 0 {
			first = shot
		}
	}

	n, err := store.CountInScope(context.Background(), userID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// oldest capture went first, blob included
	_, err = store.GetScreenshot(context.Background(), userID, first.ID)
	assert.ErrorIs(t, err, domain.ErrScreenshotNotFound)
	ok, _ := blobs.Exists(context.Background(), first.ObjectKey)
	assert.False(t, ok)
}

func TestScreenshotStore_EvictionOrderIsCreationNotCapture(t *testing.T) {
	store := newFakeShotStore()
	blobs := newFakeBlobs()
	svc := newScreenshotService(store, blobs, 2, true)

	userID, deviceID := uuid.New(), uuid.New()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// first upload carries the newest capture time; it is still the first
	// created, so it must be the one evicted
	captures := []time.Time{base.Add(2 * time.Hour), base, base.Add(time.Hour)}
	var first domain.Screenshot
	for i, ts := range captures {
		shot, err := svc.Store(context.Background(), userID, deviceID, service.ScreenshotMeta{
			Domain:    "example.com",
			Timestamp: ts,
		}, []byte("png"), "image/png")
		require.NoError(t, err)
		if i == 0 {
			first = shot
		}
	}

	_, err := store.GetScreenshot(context.Background(), userID, first.ID)
	assert.ErrorIs(t, err, domain.ErrScreenshotNotFound)

	n, err := store.CountInScope(context.Background(), userID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestScreenshotFetch_StaleMetadataConverges(t *testing.T) {
	store := newFakeShotStore()
	blobs := newFakeBlobs()
	svc := newScreenshotService(store, blobs, 5, true)

	userID, deviceID := uuid.New(), uuid.New()
	shot, err := svc.Store(context.Background(), userID, deviceID, service.ScreenshotMeta{}, []byte("png"), "image/png")
	require.NoError(t, err)

	// blob disappears out of band
	require.NoError(t, blobs.Delete(context.Background(), shot.ObjectKey))

	_, _, err = svc.Fetch(context.Background(), userID, shot.ID)
	assert.ErrorIs(t, err, domain.ErrScreenshotNotFound)

	// metadata row was removed too
	_, err = store.GetScreenshot(context.Background(), userID, shot.ID)
	assert.ErrorIs(t, err, domain.ErrScreenshotNotFound)
}

func TestScreenshotDelete_RemovesBlobAndMetadata(t *testing.T) {
	store := newFakeShotStore()
	blobs := newFakeBlobs()
	svc := newScreenshotService(store, blobs, 5, true)

	userID, deviceID := uuid.New(), uuid.New()
	shot, err := svc.Store(context.Background(), userID, deviceID, service.ScreenshotMeta{}, []byte("png"), "image/png")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), userID, shot.ID))

	ok, _ := blobs.Exists(context.Background(), shot.ObjectKey)
	assert.False(t, ok)
	_, err = store.GetScreenshot(context.Background(), userID, shot.ID)
	assert.ErrorIs(t, err, domain.ErrScreenshotNotFound)
}
