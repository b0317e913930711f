package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vani-service/api"
	"vani-service/internal/matching"
	"vani-service/internal/models"
	"vani-service/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps the roster in memory and mimics the storage contracts.
type fakeStore struct {
	entries []models.ScheduleEntry
	failAll bool
}

var errStorageDown = errors.New("storage down")

func seededStore() *fakeStore {
	return &fakeStore{entries: []models.ScheduleEntry{
		{ID: 1, DoctorName: "Dr. Sharma", Department: "Cardiology", Day: "Monday", ScheduleTime: "10:00 AM - 02:00 PM", CurrentStatus: "Available"},
		{ID: 2, DoctorName: "Dr. Sharma", Department: "Cardiology", Day: "Wednesday", ScheduleTime: "10:00 AM - 02:00 PM", CurrentStatus: "Available"},
		{ID: 3, DoctorName: "Dr. Gupta", Department: "Dermatology", Day: "Tuesday", ScheduleTime: "09:00 AM - 05:00 PM", CurrentStatus: "ON LEAVE"},
		{ID: 4, DoctorName: "Dr. Gupta", Department: "Dermatology", Day: "Friday", ScheduleTime: "09:00 AM - 01:00 PM", CurrentStatus: "ON LEAVE"},
		{ID: 5, DoctorName: "Dr. Anjali", Department: "General", Day: "Daily", ScheduleTime: "08:00 AM - 08:00 PM", CurrentStatus: "Available"},
		{ID: 6, DoctorName: "Dr. Khan", Department: "Neurology", Day: "Thursday", ScheduleTime: "04:00 PM - 08:00 PM", CurrentStatus: "Available"},
	}}
}

func (f *fakeStore) DistinctDoctors(ctx context.Context) ([]string, error) {
	if f.failAll {
		return nil, errStorageDown
	}
	return f.distinct(func(e models.ScheduleEntry) string { return e.DoctorName }), nil
}

func (f *fakeStore) DistinctDepartments(ctx context.Context) ([]string, error) {
	if f.failAll {
		return nil, errStorageDown
	}
	return f.distinct(func(e models.ScheduleEntry) string { return e.Department }), nil
}

func (f *fakeStore) distinct(key func(models.ScheduleEntry) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range f.entries {
		if k := key(e); !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

func (f *fakeStore) ListAll(ctx context.Context) ([]models.ScheduleEntry, error) {
	return append([]models.ScheduleEntry(nil), f.entries...), nil
}

func (f *fakeStore) ListByDoctor(ctx context.Context, name string) ([]models.ScheduleEntry, error) {
	var out []models.ScheduleEntry
	for _, e := range f.entries {
		if e.DoctorName == name {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByDepartment(ctx context.Context, dept string) ([]models.ScheduleEntry, error) {
	var out []models.ScheduleEntry
	for _, e := range f.entries {
		if e.Department == dept {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) Overview(ctx context.Context) ([]models.DoctorOverview, error) {
	seen := map[string]bool{}
	var out []models.DoctorOverview
	for _, e := range f.entries {
		if !seen[e.DoctorName] {
			seen[e.DoctorName] = true
			out = append(out, models.DoctorOverview{DoctorName: e.DoctorName, Department: e.Department})
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatusAllDays(ctx context.Context, name, status string) (int64, error) {
	var n int64
	for i := range f.entries {
		if f.entries[i].DoctorName == name {
			f.entries[i].CurrentStatus = status
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) UpdateStatusForDay(ctx context.Context, name, day, status string) (int64, error) {
	var n int64
	for i := range f.entries {
		if f.entries[i].DoctorName == name && f.entries[i].Day == day {
			f.entries[i].CurrentStatus = status
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ReplaceAll(ctx context.Context, entries []models.ScheduleEntry) error {
	f.entries = append([]models.ScheduleEntry(nil), entries...)
	return nil
}

type fakeLocker struct {
	held bool
}

func (l *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return !l.held, nil
}

func (l *fakeLocker) Unlock(ctx context.Context, key string) error { return nil }

func newTestService(store *fakeStore) *Service {
	return NewService(store, &fakeLocker{}, matching.DefaultConfig())
}

func TestGetDoctorInfo_DoctorMatch(t *testing.T) {
	svc := newTestService(seededStore())

	result, err := svc.GetDoctorInfo(context.Background(), "Sharma")
	require.NoError(t, err)
	require.Equal(t, api.KindDoctor, result.Kind)
	assert.Equal(t, "Dr. Sharma", result.MatchKey)
	require.Len(t, result.Rows, 2)

	for _, row := range result.Rows {
		assert.Equal(t, "Dr. Sharma", row.Doctor)
		assert.True(t, row.IsActive)
		assert.Equal(t, "10:00 AM - 02:00 PM", row.Availability)
	}
}

func TestGetDoctorInfo_Idempotent(t *testing.T) {
	svc := newTestService(seededStore())

	first, err := svc.GetDoctorInfo(context.Background(), "Sharma")
	require.NoError(t, err)
	second, err := svc.GetDoctorInfo(context.Background(), "Sharma")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetDoctorInfo_DepartmentMatch(t *testing.T) {
	svc := newTestService(seededStore())

	result, err := svc.GetDoctorInfo(context.Background(), "Cardiologist")
	require.NoError(t, err)
	require.Equal(t, api.KindDepartment, result.Kind)
	assert.Equal(t, "Cardiology", result.MatchKey)
	require.Len(t, result.Rows, 2)
}

func TestGetDoctorInfo_ShapingOfInactiveRows(t *testing.T) {
	svc := newTestService(seededStore())

	result, err := svc.GetDoctorInfo(context.Background(), "Gupta")
	require.NoError(t, err)
	require.Equal(t, api.KindDoctor, result.Kind)
	require.Len(t, result.Rows, 2)

	tuesday := result.Rows[0]
	assert.Equal(t, "ON LEAVE", tuesday.Status)
	assert.False(t, tuesday.IsActive)
	assert.Equal(t, "Currently ON LEAVE (Standard Time: 09:00 AM - 05:00 PM)", tuesday.Availability)
}

func TestGetDoctorInfo_CatchAll(t *testing.T) {
	svc := newTestService(seededStore())

	result, err := svc.GetDoctorInfo(context.Background(), "show me the full schedule")
	require.NoError(t, err)
	assert.Equal(t, api.KindFullSchedule, result.Kind)
	assert.Len(t, result.Rows, 6)
}

func TestGetDoctorInfo_NotFound(t *testing.T) {
	svc := newTestService(seededStore())

	result, err := svc.GetDoctorInfo(context.Background(), "Xyzzyqqq")
	require.NoError(t, err)
	assert.Equal(t, api.KindNotFound, result.Kind)
	assert.Empty(t, result.Rows)
	assert.ElementsMatch(t,
		[]string{"Cardiology", "Dermatology", "General", "Neurology"},
		result.ValidDepartments)
}

func TestGetDoctorInfo_StorageFailurePropagates(t *testing.T) {
	store := seededStore()
	store.failAll = true
	svc := newTestService(store)

	_, err := svc.GetDoctorInfo(context.Background(), "Sharma")
	require.Error(t, err)
	assert.ErrorIs(t, err, errStorageDown)
}

func TestUpdateDoctorStatus_SingleDayRoundTrip(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	result, err := svc.UpdateDoctorStatus(context.Background(), "Sharma", "ON LEAVE", "Monday")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "Updated Dr. Sharma (Monday) to: ON LEAVE", result.Message)

	info, err := svc.GetDoctorInfo(context.Background(), "Sharma")
	require.NoError(t, err)
	require.Len(t, info.Rows, 2)

	byDay := map[string]api.ShapedAvailability{}
	for _, row := range info.Rows {
		byDay[row.Day] = row
	}

	monday := byDay["Monday"]
	assert.Equal(t, "ON LEAVE", monday.Status)
	assert.False(t, monday.IsActive)
	assert.Equal(t, "Currently ON LEAVE (Standard Time: 10:00 AM - 02:00 PM)", monday.Availability)

	wednesday := byDay["Wednesday"]
	assert.Equal(t, "Available", wednesday.Status)
	assert.True(t, wednesday.IsActive)
}

func TestUpdateDoctorStatus_UnresolvableDoctorLeavesStoreUntouched(t *testing.T) {
	store := seededStore()
	before := append([]models.ScheduleEntry(nil), store.entries...)
	svc := newTestService(store)

	result, err := svc.UpdateDoctorStatus(context.Background(), "Zzztrax", "ON LEAVE", "ALL")
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, "Could not find doctor 'Zzztrax'.", result.Message)
	assert.Equal(t, before, store.entries)
}

func TestUpdateDoctorStatus_AllDaysScope(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	result, err := svc.UpdateDoctorStatus(context.Background(), "Gupta", "Available", "ALL")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "Updated Dr. Gupta (All Days) to: Available", result.Message)

	for _, entry := range store.entries {
		if entry.DoctorName == "Dr. Gupta" {
			assert.Equal(t, "Available", entry.CurrentStatus)
		} else {
			seed := seededStore()
			for _, orig := range seed.entries {
				if orig.ID == entry.ID {
					assert.Equal(t, orig.CurrentStatus, entry.CurrentStatus)
				}
			}
		}
	}
}

func TestUpdateDoctorStatus_EmptyDayDefaultsToAll(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	result, err := svc.UpdateDoctorStatus(context.Background(), "Khan", "Emergency Leave", "")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "Updated Dr. Khan (All Days) to: Emergency Leave", result.Message)
}

func TestUpdateDoctorStatus_FuzzyDay(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	result, err := svc.UpdateDoctorStatus(context.Background(), "Gupta", "Delayed (1 hr)", "tues")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "Updated Dr. Gupta (Tuesday) to: Delayed (1 hr)", result.Message)
}

func TestReplaceSchedule_Locked(t *testing.T) {
	store := seededStore()
	svc := NewService(store, &fakeLocker{held: true}, matching.DefaultConfig())

	err := svc.ReplaceSchedule(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, response.ErrLocked)
}

func TestReplaceSchedule_DefaultsStatus(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	err := svc.ReplaceSchedule(context.Background(), []models.ScheduleEntry{
		{DoctorName: "Dr. Rao", Department: "ENT", Day: "Monday", ScheduleTime: "09:00 AM - 12:00 PM"},
	})
	require.NoError(t, err)
	require.Len(t, store.entries, 1)
	assert.Equal(t, models.StatusAvailable, store.entries[0].CurrentStatus)
}

func TestOverview(t *testing.T) {
	svc := newTestService(seededStore())

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Contains(t, overview, "- Cardiology: Dr. Sharma")
	assert.Contains(t, overview, "- General: Dr. Anjali")
}
