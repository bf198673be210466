package services

import (
	"context"
	"time"

	"github.com/smileworks/clinic-backend/internal/domain/entities"
	"github.com/smileworks/clinic-backend/internal/domain/repositories"
)

// ConflictChecker detects double-bookings in a dentist's schedule
type ConflictChecker struct {
	repo repositories.AppointmentRepository
}

// NewConflictChecker creates a new conflict checker
func NewConflictChecker(repo repositories.AppointmentRepository) *ConflictChecker {
	return &ConflictChecker{repo: repo}
}

// HasConflict reports whether a candidate slot overlaps any scheduled
// appointment of the dentist. Completed and canceled appointments free their
// slots. Intervals are half-open, so a back-to-back booking that starts
// exactly when another ends is not a conflict.
func (c *ConflictChecker) HasConflict(ctx context.Context, dentistID string, start time.Time, durationMinutes int) (bool, error) {
	conflicting, err := c.findConflicts(ctx, dentistID, start, durationMinutes, "")
	if err != nil {
		return false, err
	}
	return len(conflicting) > 0, nil
}

// HasConflictExcluding behaves like HasConflict but ignores one appointment,
// so a reschedule does not collide with the slot it is vacating.
func (c *ConflictChecker) HasConflictExcluding(ctx context.Context, dentistID string, start time.Time, durationMinutes int, excludeID string) (bool, error) {
	conflicting, err := c.findConflicts(ctx, dentistID, start, durationMinutes, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicting) > 0, nil
}

func (c *ConflictChecker) findConflicts(ctx context.Context, dentistID string, start time.Time, durationMinutes int, excludeID string) ([]*entities.Appointment, error) {
	if durationMinutes <= 0 {
		durationMinutes = entities.DefaultProcedureDurationMinutes
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	existing, err := c.repo.List(ctx, repositories.AppointmentFilter{
		DentistID: dentistID,
		Status:    entities.AppointmentStatusScheduled,
	})
	if err != nil {
		return nil, err
	}

	var conflicting []*entities.Appointment
	for _, appointment := range existing {
		if excludeID != "" && appointment.ID == excludeID {
			continue
		}
		if start.Before(appointment.EndTime()) && end.After(appointment.StartTime) {
			conflicting = append(conflicting, appointment)
		}
	}

	return conflicting, nil
}
