package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"PlacementPortal/pkg/apperrors"
)

// memAggregates returns canned aggregation results. The zero value behaves
// like empty collections.
type memAggregates struct {
	roleStats      []RoleStats
	deptCounts     []CountBucket
	statusCounts   []CountBucket
	industryCounts []CountBucket
	verified       int64
	ctcs           []float64
	programCounts  map[string][]CountBucket
	rating         float64
	enrollments    []CountBucket
	daily          map[string][]TrendPoint
}

func (m *memAggregates) UserRoleStats(_ context.Context) ([]RoleStats, error) {
	return m.roleStats, nil
}

func (m *memAggregates) UserDepartmentCounts(_ context.Context) ([]CountBucket, error) {
	return m.deptCounts, nil
}

func (m *memAggregates) PlacementStatusCounts(_ context.Context, _, _ time.Time) ([]CountBucket, error) {
	return m.statusCounts, nil
}

func (m *memAggregates) PlacementIndustryCounts(_ context.Context, _, _ time.Time) ([]CountBucket, error) {
	return m.industryCounts, nil
}

func (m *memAggregates) PlacementVerifiedCount(_ context.Context, _, _ time.Time) (int64, error) {
	return m.verified, nil
}

func (m *memAggregates) PlacementCTCs(_ context.Context, _, _ time.Time) ([]float64, error) {
	return m.ctcs, nil
}

func (m *memAggregates) ProgramCountsBy(_ context.Context, field string) ([]CountBucket, error) {
	return m.programCounts[field], nil
}

func (m *memAggregates) AverageFeedbackRating(_ context.Context) (float64, error) {
	return m.rating, nil
}

func (m *memAggregates) EnrollmentStatusCounts(_ context.Context) ([]CountBucket, error) {
	return m.enrollments, nil
}

func (m *memAggregates) DailyCounts(_ context.Context, source string, _, _ time.Time) ([]TrendPoint, error) {
	return m.daily[source], nil
}

func TestPeriodWindow(t *testing.T) {
	now := time.Date(2026, time.June, 15, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		period Period
		start  time.Time
	}{
		{Period7Days, now.AddDate(0, 0, -7)},
		{Period30Days, now.AddDate(0, 0, -30)},
		{Period(""), now.AddDate(0, 0, -30)},
		{Period90Days, now.AddDate(0, 0, -90)},
		{Period1Year, now.AddDate(-1, 0, 0)},
	}
	for _, tc := range cases {
		start, end, err := tc.period.Window(now)
		require.NoErrorf(t, err, "period %q", tc.period)
		assert.Equal(t, tc.start, start)
		assert.Equal(t, now, end)
	}

	_, _, err := Period("14d").Window(now)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestPlacementsOverEmptyData(t *testing.T) {
	svc := newService(&memAggregates{}, zap.NewNop())

	got, err := svc.Placements(context.Background(), Period30Days)
	require.NoError(t, err)
	assert.Zero(t, got.TotalApplications)
	assert.Zero(t, got.Offers)
	assert.Zero(t, got.Accepted)
	assert.Zero(t, got.Verified)
	assert.Equal(t, PackageStats{}, got.Package)
	require.Len(t, got.Histogram, 4)
	for _, band := range got.Histogram {
		assert.Zero(t, band.Count)
	}
}

func TestPlacementsFunnelAndPackages(t *testing.T) {
	repo := &memAggregates{
		statusCounts: []CountBucket{
			{Label: "Applied", Count: 5},
			{Label: "Offer Received", Count: 2},
			{Label: "Offer Accepted", Count: 1},
			{Label: "Offer Declined", Count: 1},
			{Label: "Rejected", Count: 3},
		},
		verified: 4,
		ctcs:     []float64{400000, 800000, 2500000},
	}
	svc := newService(repo, zap.NewNop())

	got, err := svc.Placements(context.Background(), Period90Days)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.TotalApplications)
	assert.Equal(t, int64(4), got.Offers)
	assert.Equal(t, int64(1), got.Accepted)
	assert.Equal(t, int64(4), got.Verified)
	assert.InDelta(t, 1233333.33, got.Package.Average, 0.01)
	assert.Equal(t, float64(400000), got.Package.Min)
	assert.Equal(t, float64(2500000), got.Package.Max)
}

func TestPackageHistogramBands(t *testing.T) {
	got := packageHistogram([]float64{300000, 500000, 999999, 1500000, 2000000, 4000000})
	require.Len(t, got, 4)
	assert.Equal(t, CountBucket{Label: "0-5L", Count: 1}, got[0])
	assert.Equal(t, CountBucket{Label: "5-10L", Count: 2}, got[1])
	assert.Equal(t, CountBucket{Label: "10-20L", Count: 1}, got[2])
	assert.Equal(t, CountBucket{Label: "20L+", Count: 2}, got[3])
}

func TestUsersTotals(t *testing.T) {
	repo := &memAggregates{
		roleStats: []RoleStats{
			{Role: "student", Total: 120, Active: 110, Inactive: 10, Verified: 90},
			{Role: "faculty", Total: 15, Active: 15, Verified: 15},
			{Role: "admin", Total: 2, Active: 2, Verified: 2},
		},
		deptCounts: []CountBucket{{Label: "CSE", Count: 80}, {Label: "ECE", Count: 40}},
	}
	svc := newService(repo, zap.NewNop())

	got, err := svc.Users(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(137), got.Total)
	assert.Equal(t, int64(127), got.Active)
	assert.Equal(t, int64(10), got.Inactive)
	assert.Len(t, got.ByDepartment, 2)
}

func TestTrainingCompletionRate(t *testing.T) {
	repo := &memAggregates{
		programCounts: map[string][]CountBucket{
			"status":   {{Label: "Ongoing", Count: 3}, {Label: "Completed", Count: 2}},
			"category": {{Label: "Technical", Count: 4}},
			"level":    {{Label: "Beginner", Count: 5}},
		},
		rating: 4.2,
		enrollments: []CountBucket{
			{Label: "Enrolled", Count: 6},
			{Label: "Completed", Count: 2},
		},
	}
	svc := newService(repo, zap.NewNop())

	got, err := svc.Training(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.TotalPrograms)
	assert.Equal(t, int64(8), got.TotalEnrollments)
	assert.Equal(t, int64(2), got.Completed)
	assert.InDelta(t, 0.25, got.CompletionRate, 1e-9)
	assert.InDelta(t, 4.2, got.AverageRating, 1e-9)
}

func TestTrainingOverEmptyData(t *testing.T) {
	svc := newService(&memAggregates{}, zap.NewNop())

	got, err := svc.Training(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.TotalPrograms)
	assert.Zero(t, got.TotalEnrollments)
	assert.Zero(t, got.CompletionRate)
}

func TestTrendsDefaultsPeriod(t *testing.T) {
	repo := &memAggregates{
		daily: map[string][]TrendPoint{
			TrendRegistrations: {{Date: "2026-06-14", Count: 3}},
			TrendPlacements:    {{Date: "2026-06-14", Count: 1}},
		},
	}
	svc := newService(repo, zap.NewNop())

	got, err := svc.Trends(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Period30Days, got.Period)
	assert.Len(t, got.Registrations, 1)
	assert.Len(t, got.Placements, 1)
	assert.Empty(t, got.Enrollments)

	_, err = svc.Trends(context.Background(), Period("forever"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestDashboardComposes(t *testing.T) {
	svc := newService(&memAggregates{verified: 2}, zap.NewNop())

	got, err := svc.Dashboard(context.Background(), Period7Days)
	require.NoError(t, err)
	require.NotNil(t, got.Users)
	require.NotNil(t, got.Placements)
	require.NotNil(t, got.Training)
	assert.Equal(t, int64(2), got.Placements.Verified)
}
