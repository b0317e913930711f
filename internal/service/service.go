package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vani-service/api"
	"vani-service/internal/lock"
	"vani-service/internal/matching"
	"vani-service/internal/models"
	"vani-service/pkg/response"
)

type Service struct {
	store    Store
	locker   lock.Locker
	matching matching.Config
}

func NewService(store Store, locker lock.Locker, cfg matching.Config) *Service {
	return &Service{store: store, locker: locker, matching: cfg}
}

type Store interface {
	DistinctDoctors(ctx context.Context) ([]string, error)
	DistinctDepartments(ctx context.Context) ([]string, error)
	ListAll(ctx context.Context) ([]models.ScheduleEntry, error)
	ListByDoctor(ctx context.Context, doctorName string) ([]models.ScheduleEntry, error)
	ListByDepartment(ctx context.Context, department string) ([]models.ScheduleEntry, error)
	Overview(ctx context.Context) ([]models.DoctorOverview, error)

	UpdateStatusAllDays(ctx context.Context, doctorName, status string) (int64, error)
	UpdateStatusForDay(ctx context.Context, doctorName, day, status string) (int64, error)
	ReplaceAll(ctx context.Context, entries []models.ScheduleEntry) error
}

// GetDoctorInfo is the query entrypoint: load the known names, classify the
// query, fetch the matching rows and shape them. Classification ambiguity
// never surfaces as an error; only storage failures do.
func (s *Service) GetDoctorInfo(ctx context.Context, query string) (*api.ScheduleResult, error) {
	const op = "service.GetDoctorInfo"

	doctors, err := s.store.DistinctDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	departments, err := s.store.DistinctDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := matching.Resolve(query, doctors, departments, s.matching.QueryThreshold)

	switch res.Kind {
	case matching.KindAll:
		entries, err := s.store.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return &api.ScheduleResult{
			Kind: api.KindFullSchedule,
			Rows: shapeEntries(entries),
		}, nil

	case matching.KindDoctor:
		entries, err := s.store.ListByDoctor(ctx, res.Key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return &api.ScheduleResult{
			Kind:     api.KindDoctor,
			MatchKey: res.Key,
			Rows:     shapeEntries(entries),
		}, nil

	case matching.KindDepartment:
		entries, err := s.store.ListByDepartment(ctx, res.Key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return &api.ScheduleResult{
			Kind:     api.KindDepartment,
			MatchKey: res.Key,
			Rows:     shapeEntries(entries),
		}, nil

	default:
		return &api.ScheduleResult{
			Kind:             api.KindNotFound,
			ValidDepartments: departments,
		}, nil
	}
}

// UpdateDoctorStatus resolves the doctor under the stricter mutation
// threshold and updates current_status across all days or a single
// fuzzy-resolved day. An unresolvable doctor is an ok=false result, not an
// error, and leaves the table untouched.
func (s *Service) UpdateDoctorStatus(ctx context.Context, doctorQuery, status, dayQuery string) (*api.UpdateResult, error) {
	const op = "service.UpdateDoctorStatus"

	doctors, err := s.store.DistinctDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doctorName, ok := matching.ResolveDoctor(doctorQuery, doctors, s.matching.MutationThreshold)
	if !ok {
		return &api.UpdateResult{
			OK:      false,
			Message: fmt.Sprintf("Could not find doctor '%s'.", doctorQuery),
		}, nil
	}

	if dayQuery == "" || strings.EqualFold(dayQuery, models.DayAll) {
		if _, err := s.store.UpdateStatusAllDays(ctx, doctorName, status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return &api.UpdateResult{
			OK:      true,
			Message: fmt.Sprintf("Updated %s (All Days) to: %s", doctorName, status),
		}, nil
	}

	day := matching.ResolveDay(dayQuery)

	if _, err := s.store.UpdateStatusForDay(ctx, doctorName, day, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.UpdateResult{
		OK:      true,
		Message: fmt.Sprintf("Updated %s (%s) to: %s", doctorName, day, status),
	}, nil
}

// Overview renders the "- <department>: <doctor>" summary injected into the
// receptionist system prompt.
func (s *Service) Overview(ctx context.Context) (string, error) {
	const op = "service.Overview"

	docs, err := s.store.Overview(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	lines := make([]string, 0, len(docs))
	for _, doc := range docs {
		lines = append(lines, fmt.Sprintf("- %s: %s", doc.Department, doc.DoctorName))
	}

	return strings.Join(lines, "\n"), nil
}

func (s *Service) ListSchedule(ctx context.Context) ([]models.ScheduleEntry, error) {
	const op = "service.ListSchedule"

	entries, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

// ReplaceSchedule swaps the whole table for the grid's rows under the redis
// lock so two concurrent grid saves cannot interleave.
func (s *Service) ReplaceSchedule(ctx context.Context, entries []models.ScheduleEntry) error {
	const op = "service.ReplaceSchedule"

	locked, err := s.locker.Lock(ctx, lock.ScheduleReplaceKey, 10*time.Second)
	if err != nil {
		return fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lock.ScheduleReplaceKey)
	}()

	for i := range entries {
		if entries[i].CurrentStatus == "" {
			entries[i].CurrentStatus = models.StatusAvailable
		}
	}

	if err := s.store.ReplaceAll(ctx, entries); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// shapeEntries maps raw rows to the reader-facing form. Pure and
// deterministic: status other than Available folds the standard hours into
// an explanatory string.
func shapeEntries(entries []models.ScheduleEntry) []api.ShapedAvailability {
	shaped := make([]api.ShapedAvailability, 0, len(entries))
	for _, entry := range entries {
		shaped = append(shaped, shapeEntry(entry))
	}

	return shaped
}

func shapeEntry(entry models.ScheduleEntry) api.ShapedAvailability {
	isActive := strings.EqualFold(entry.CurrentStatus, models.StatusAvailable)

	availability := entry.ScheduleTime
	if !isActive {
		availability = fmt.Sprintf("Currently %s (Standard Time: %s)",
			entry.CurrentStatus, entry.ScheduleTime)
	}

	return api.ShapedAvailability{
		Doctor:       entry.DoctorName,
		Day:          entry.Day,
		Status:       entry.CurrentStatus,
		Availability: availability,
		IsActive:     isActive,
	}
}
