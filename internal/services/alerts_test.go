package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/wardline-backend/internal/errs"
	"github.com/AnshRaj112/wardline-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAlertStore struct {
	mu       sync.Mutex
	inserted []models.Alert

	// failAt makes the Nth insert (1-based) fail, simulating a mid-fan-out
	// write error. Zero disables.
	failAt int
}

func (f *fakeAlertStore) Insert(ctx context.Context, a models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt > 0 && len(f.inserted)+1 == f.failAt {
		return errors.New("insert failed")
	}
	f.inserted = append(f.inserted, a)
	return nil
}

func (f *fakeAlertStore) ListForMonitor(ctx context.Context, monitorUID string, limit, skip int) ([]models.Alert, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []models.Alert
	for _, a := range f.inserted {
		if a.MonitorUID == monitorUID {
			all = append(all, a)
		}
	}
	total := int64(len(all))
	if skip >= len(all) {
		return nil, total, nil
	}
	all = all[skip:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (f *fakeAlertStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type fakeUploader struct {
	uploads int
	url     string
}

func (u *fakeUploader) UploadVideo(ctx context.Context, data []byte, folder string) (string, error) {
	u.uploads++
	return u.url, nil
}

func newTestAlertService(sink *fakeAlertStore) *AlertService {
	svc := NewAlertService(sink, nil)
	svc.PollInterval = 2 * time.Millisecond
	svc.CancelWindow = 30 * time.Millisecond
	return svc
}

func noCode(context.Context) (string, error)               { return "", nil }
func noLocation(context.Context) (*models.Location, error) { return nil, nil }
func noVideo(context.Context) ([]byte, error)              { return nil, nil }

func monitoredUser(uid string, monitors ...string) *models.Principal {
	p := models.NewPrincipal(uid, uid+"@example.com", "User "+uid)
	p.Monitors = monitors
	return p
}

func TestTriggerDeliversCopyPerMonitor(t *testing.T) {
	sink := &fakeAlertStore{}
	svc := newTestAlertService(sink)
	p := monitoredUser("p1", "m1", "m2")

	delivered, err := svc.Trigger(context.Background(), models.AlertTypeFall, p,
		CancelCodeFunc(noCode), LocationFunc(noLocation), VideoFunc(noVideo))
	require.NoError(t, err)
	assert.True(t, delivered)

	require.Equal(t, 2, sink.count())
	first, second := sink.inserted[0], sink.inserted[1]
	assert.Equal(t, "m1", first.MonitorUID)
	assert.Equal(t, "m2", second.MonitorUID)

	// The copies are identical apart from the recipient.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Timestamp, second.Timestamp)
	assert.Equal(t, models.AlertTypeFall, first.Type)
	assert.Equal(t, "p1", first.ProtectedID)
	assert.Equal(t, models.AlertStatusSent, first.Status)
}

func TestTriggerCancelledWritesNothing(t *testing.T) {
	sink := &fakeAlertStore{}
	svc := newTestAlertService(sink)
	p := monitoredUser("p1", "m1")

	codes := CancelCodeFunc(func(context.Context) (string, error) {
		return p.AlertCancelCode, nil
	})

	delivered, err := svc.Trigger(context.Background(), models.AlertTypePanic, p,
		codes, LocationFunc(noLocation), VideoFunc(noVideo))
	require.NoError(t, err)
	assert.False(t, delivered)
	assert.Zero(t, sink.count(), "a cancelled alert leaves no record anywhere")
}

func TestTriggerWrongCodeStillDelivers(t *testing.T) {
	sink := &fakeAlertStore{}
	svc := newTestAlertService(sink)
	p := monitoredUser("p1", "m1")

	codes := CancelCodeFunc(func(context.Context) (string, error) {
		return "0000", nil
	})

	delivered, err := svc.Trigger(context.Background(), models.AlertTypeFall, p,
		codes, LocationFunc(noLocation), VideoFunc(noVideo))
	require.NoError(t, err)
	assert.True(t, delivered)
	assert.Equal(t, 1, sink.count())
}

func TestTriggerNoMonitorsDeliveredButUnwritten(t *testing.T) {
	sink := &fakeAlertStore{}
	svc := newTestAlertService(sink)
	p := monitoredUser("p1")

	delivered, err := svc.Trigger(context.Background(), models.AlertTypeAccident, p,
		CancelCodeFunc(noCode), LocationFunc(noLocation), VideoFunc(noVideo))
	require.NoError(t, err)
	assert.True(t, delivered, "no monitors is not a cancellation")
	assert.Zero(t, sink.count())
}

func TestTriggerRequiresProtectedRole(t *testing.T) {
	sink := &fakeAlertStore{}
	svc := newTestAlertService(sink)
	p := monitoredUser("m1", "x")
	p.Roles = []models.Role{models.RoleMonitor}

	_, err := svc.Trigger(context.Background(), models.AlertTypeFall, p,
		CancelCodeFunc(noCode), LocationFunc(noLocation), VideoFunc(noVideo))
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Zero(t, sink.count())
}

func TestTriggerUploadsVideoAndAttachesURL(t *testing.T) {
	sink := &fakeAlertStore{}
	uploader := &fakeUploader{url: "https://cdn.example.com/alerts/p1/clip.mp4"}
	svc := newTestAlertService(sink)
	svc.Uploader = uploader
	p := monitoredUser("p1", "m1")

	video := VideoFunc(func(context.Context) ([]byte, error) {
		return []byte("fake video bytes"), nil
	})

	delivered, err := svc.Trigger(context.Background(), models.AlertTypeFall, p,
		CancelCodeFunc(noCode), LocationFunc(noLocation), video)
	require.NoError(t, err)
	assert.True(t, delivered)

	assert.Equal(t, 1, uploader.uploads)
	require.Equal(t, 1, sink.count())
	assert.Equal(t, uploader.url, sink.inserted[0].VideoURL)
}

func TestTriggerAttachesLocation(t *testing.T) {
	sink := &fakeAlertStore{}
	svc := newTestAlertService(sink)
	p := monitoredUser("p1", "m1")

	location := LocationFunc(func(context.Context) (*models.Location, error) {
		return &models.Location{Latitude: 48.85, Longitude: 2.35}, nil
	})

	_, err := svc.Trigger(context.Background(), models.AlertTypeGeofence, p,
		CancelCodeFunc(noCode), location, VideoFunc(noVideo))
	require.NoError(t, err)

	require.Equal(t, 1, sink.count())
	require.NotNil(t, sink.inserted[0].Location)
	assert.Equal(t, 48.85, sink.inserted[0].Location.Latitude)
}

func TestTriggerMidFanOutFailureLeavesPartialWrites(t *testing.T) {
	sink := &fakeAlertStore{failAt: 2}
	svc := newTestAlertService(sink)
	p := monitoredUser("p1", "m1", "m2", "m3")

	_, err := svc.Trigger(context.Background(), models.AlertTypeFall, p,
		CancelCodeFunc(noCode), LocationFunc(noLocation), VideoFunc(noVideo))
	require.Error(t, err)

	// No rollback: the copy written before the failure stays.
	assert.Equal(t, 1, sink.count())
	assert.Equal(t, "m1", sink.inserted[0].MonitorUID)
}

func TestTriggerPublishesAfterEachWrite(t *testing.T) {
	sink := &fakeAlertStore{}
	svc := newTestAlertService(sink)
	p := monitoredUser("p1", "m1", "m2")

	var published []string
	svc.Publish = func(ctx context.Context, a models.Alert) {
		published = append(published, a.MonitorUID)
	}

	_, err := svc.Trigger(context.Background(), models.AlertTypeFall, p,
		CancelCodeFunc(noCode), LocationFunc(noLocation), VideoFunc(noVideo))
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, published)
}

func TestTriggerContextCancellation(t *testing.T) {
	sink := &fakeAlertStore{}
	svc := newTestAlertService(sink)
	svc.CancelWindow = time.Second
	p := monitoredUser("p1", "m1")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Trigger(ctx, models.AlertTypeFall, p,
		CancelCodeFunc(noCode), LocationFunc(noLocation), VideoFunc(noVideo))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sink.count())
}

func TestListForMonitorPagination(t *testing.T) {
	sink := &fakeAlertStore{}
	svc := newTestAlertService(sink)

	for i := 0; i < 5; i++ {
		require.NoError(t, sink.Insert(context.Background(), models.Alert{
			ID:         "a",
			MonitorUID: "m1",
		}))
	}

	alerts, total, err := svc.ListForMonitor(context.Background(), "m1", 2, 0)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
	assert.Equal(t, int64(5), total)

	// Out-of-range limits fall back to the default page size.
	alerts, _, err = svc.ListForMonitor(context.Background(), "m1", -1, 0)
	require.NoError(t, err)
	assert.Len(t, alerts, 5)
}
