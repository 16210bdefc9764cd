package models

import (
	"github.com/AnshRaj112/wardline-backend/internal/errs"
	"github.com/google/uuid"
)

// TimeWindow is a protected-owned schedule entry: allowed weekdays plus an
// hour range. Advisory only; the alert path does not consult it.
type TimeWindow struct {
	ID           string `bson:"id" json:"id"`
	ProtectedUID string `bson:"protectedUid" json:"-"`
	DaysOfWeek   []int  `bson:"daysOfWeek" json:"days_of_week"`
	StartHour    int    `bson:"startHour" json:"start_hour"`
	EndHour      int    `bson:"endHour" json:"end_hour"`
}

// NewTimeWindow validates and builds a window. The invariant is enforced
// here and never relaxed: start < end, both hours in [0,23], day set
// non-empty with days numbered 1 (Monday) through 7 (Sunday).
// Nothing is persisted when validation fails.
func NewTimeWindow(protectedUID string, days []int, startHour, endHour int) (TimeWindow, error) {
	if len(days) == 0 {
		return TimeWindow{}, errs.Validationf("at least one day of week is required")
	}
	for _, d := range days {
		if d < 1 || d > 7 {
			return TimeWindow{}, errs.Validationf("day of week must be between 1 and 7, got %d", d)
		}
	}
	if startHour < 0 || startHour > 23 {
		return TimeWindow{}, errs.Validationf("start hour must be between 0 and 23, got %d", startHour)
	}
	if endHour < 0 || endHour > 23 {
		return TimeWindow{}, errs.Validationf("end hour must be between 0 and 23, got %d", endHour)
	}
	if startHour >= endHour {
		return TimeWindow{}, errs.Validationf("start hour must be before end hour")
	}

	return TimeWindow{
		ID:           uuid.New().String(),
		ProtectedUID: protectedUID,
		DaysOfWeek:   days,
		StartHour:    startHour,
		EndHour:      endHour,
	}, nil
}
