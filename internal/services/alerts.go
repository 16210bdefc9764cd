package services

import (
	"context"
	"strings"
	"time"

	"github.com/AnshRaj112/wardline-backend/internal/errs"
	"github.com/AnshRaj112/wardline-backend/internal/models"
	"github.com/AnshRaj112/wardline-backend/internal/store"
	"github.com/google/uuid"
)

const (
	// CancelPollInterval is the cadence at which the cancellation window
	// polls for the cancel code.
	CancelPollInterval = 250 * time.Millisecond
	// CancelWindowBudget is the total grace period before an alert becomes
	// irrevocable.
	CancelWindowBudget = 10 * time.Second
)

// CancelCodeSource yields the most recent cancel code the protected user has
// entered, or "" when there is no value yet.
type CancelCodeSource interface {
	CurrentCode(ctx context.Context) (string, error)
}

// CancelCodeFunc adapts a function to a CancelCodeSource.
type CancelCodeFunc func(ctx context.Context) (string, error)

func (f CancelCodeFunc) CurrentCode(ctx context.Context) (string, error) { return f(ctx) }

// LocationSource yields the current coordinate, or nil when none is known.
type LocationSource interface {
	CurrentLocation(ctx context.Context) (*models.Location, error)
}

// LocationFunc adapts a function to a LocationSource.
type LocationFunc func(ctx context.Context) (*models.Location, error)

func (f LocationFunc) CurrentLocation(ctx context.Context) (*models.Location, error) { return f(ctx) }

// VideoSource yields captured video bytes, or nil when none were recorded.
type VideoSource interface {
	CurrentVideo(ctx context.Context) ([]byte, error)
}

// VideoFunc adapts a function to a VideoSource.
type VideoFunc func(ctx context.Context) ([]byte, error)

func (f VideoFunc) CurrentVideo(ctx context.Context) ([]byte, error) { return f(ctx) }

// VideoUploader stores video bytes and returns a retrievable URL.
type VideoUploader interface {
	UploadVideo(ctx context.Context, data []byte, folder string) (string, error)
}

// AlertService runs the cancellation window, gathers event context, and fans
// the alert out to every linked monitor. Delivery is unconditional: rule
// authorizations and time windows are a separate layer and are not consulted
// here.
type AlertService struct {
	Alerts   store.AlertStore
	Uploader VideoUploader
	// Publish, when set, is invoked best-effort after each successful copy
	// write (realtime stream). Failures there never affect delivery.
	Publish func(ctx context.Context, a models.Alert)

	// PollInterval and CancelWindow default to the package constants;
	// tests shrink them.
	PollInterval time.Duration
	CancelWindow time.Duration
	Now          func() time.Time
}

func NewAlertService(alerts store.AlertStore, uploader VideoUploader) *AlertService {
	return &AlertService{
		Alerts:       alerts,
		Uploader:     uploader,
		PollInterval: CancelPollInterval,
		CancelWindow: CancelWindowBudget,
		Now:          time.Now,
	}
}

// Trigger processes one distress event for the protected user. It returns
// delivered=false when the correct cancel code is observed within the
// window (no alert record is written anywhere), delivered=true otherwise —
// including when the user has no monitors, in which case the event is
// processed but nothing is written.
//
// I/O failures while gathering context or fanning out propagate unmodified.
// There is no retry and no rollback: a failure after some monitor writes
// leaves those copies in place.
func (s *AlertService) Trigger(
	ctx context.Context,
	alertType models.AlertType,
	protected *models.Principal,
	codes CancelCodeSource,
	location LocationSource,
	video VideoSource,
) (bool, error) {
	if protected == nil || !protected.HasRole(models.RoleProtected) {
		return false, errs.Validationf("principal does not hold the protected role")
	}

	cancelled, err := s.runCancelWindow(ctx, protected.AlertCancelCode, codes)
	if err != nil {
		return false, err
	}
	if cancelled {
		return false, nil
	}

	var loc *models.Location
	if location != nil {
		loc, err = location.CurrentLocation(ctx)
		if err != nil {
			return false, err
		}
	}

	var videoURL string
	if video != nil {
		data, err := video.CurrentVideo(ctx)
		if err != nil {
			return false, err
		}
		if len(data) > 0 {
			if s.Uploader == nil {
				return false, errs.Validationf("video upload service not available")
			}
			videoURL, err = s.Uploader.UploadVideo(ctx, data, "alerts/"+protected.UID)
			if err != nil {
				return false, err
			}
		}
	}

	alert := models.Alert{
		ID:            uuid.New().String(),
		Type:          alertType,
		Timestamp:     s.Now().UTC(),
		ProtectedID:   protected.UID,
		ProtectedName: protected.Name,
		Location:      loc,
		VideoURL:      videoURL,
		Status:        models.AlertStatusSent,
	}

	for _, monitorUID := range protected.Monitors {
		copy := alert
		copy.MonitorUID = monitorUID
		if err := s.Alerts.Insert(ctx, copy); err != nil {
			return false, err
		}
		if s.Publish != nil {
			s.Publish(ctx, copy)
		}
	}

	return true, nil
}

// runCancelWindow polls the code source every PollInterval for up to
// CancelWindow. The window runs entirely on the triggering side: it is a
// grace-period UX mechanism, not a security boundary.
func (s *AlertService) runCancelWindow(ctx context.Context, cancelCode string, codes CancelCodeSource) (bool, error) {
	if codes == nil {
		time.Sleep(s.CancelWindow)
		return false, nil
	}

	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	deadline := time.NewTimer(s.CancelWindow)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.C:
			return false, nil
		case <-ticker.C:
			entered, err := codes.CurrentCode(ctx)
			if err != nil {
				return false, err
			}
			if code := strings.TrimSpace(entered); code != "" && code == cancelCode {
				return true, nil
			}
		}
	}
}

// ListForMonitor returns a monitor's received alert copies, newest first.
func (s *AlertService) ListForMonitor(ctx context.Context, monitorUID string, limit, skip int) ([]models.Alert, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}
	return s.Alerts.ListForMonitor(ctx, monitorUID, limit, skip)
}
