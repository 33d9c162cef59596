package analytics

import (
	"context"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"PlacementPortal/pkg/apperrors"
)

type analyticsRepository interface {
	UserRoleStats(ctx context.Context) ([]RoleStats, error)
	UserDepartmentCounts(ctx context.Context) ([]CountBucket, error)
	PlacementStatusCounts(ctx context.Context, start, end time.Time) ([]CountBucket, error)
	PlacementIndustryCounts(ctx context.Context, start, end time.Time) ([]CountBucket, error)
	PlacementVerifiedCount(ctx context.Context, start, end time.Time) (int64, error)
	PlacementCTCs(ctx context.Context, start, end time.Time) ([]float64, error)
	ProgramCountsBy(ctx context.Context, field string) ([]CountBucket, error)
	AverageFeedbackRating(ctx context.Context) (float64, error)
	EnrollmentStatusCounts(ctx context.Context) ([]CountBucket, error)
	DailyCounts(ctx context.Context, source string, start, end time.Time) ([]TrendPoint, error)
}

// Service computes the derived analytics views. Everything is read-only and
// every aggregate degrades to zeroed results over empty collections.
type Service struct {
	repo   analyticsRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo *Repository, logger *zap.Logger) *Service {
	return newService(repo, logger)
}

func newService(repo analyticsRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Users summarises the account directory.
func (s *Service) Users(ctx context.Context) (*UserStats, error) {
	byRole, err := s.repo.UserRoleStats(ctx)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	byDept, err := s.repo.UserDepartmentCounts(ctx)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	result := &UserStats{
		ByRole:       byRole,
		ByDepartment: byDept,
	}
	for _, rs := range byRole {
		result.Total += rs.Total
		result.Active += rs.Active
		result.Inactive += rs.Inactive
	}
	return result, nil
}

// Placements computes the funnel, package aggregates and distributions for
// the given trailing period.
func (s *Service) Placements(ctx context.Context, period Period) (*PlacementStats, error) {
	start, end, err := period.Window(s.now())
	if err != nil {
		return nil, err
	}

	byStatus, err := s.repo.PlacementStatusCounts(ctx, start, end)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	byIndustry, err := s.repo.PlacementIndustryCounts(ctx, start, end)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	verified, err := s.repo.PlacementVerifiedCount(ctx, start, end)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	ctcs, err := s.repo.PlacementCTCs(ctx, start, end)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}

	result := &PlacementStats{
		Verified:   verified,
		ByStatus:   byStatus,
		ByIndustry: byIndustry,
		Package:    packageStats(ctcs),
		Histogram:  packageHistogram(ctcs),
	}
	for _, b := range byStatus {
		result.TotalApplications += b.Count
		switch b.Label {
		case "Offer Received", "Offer Accepted", "Offer Declined":
			result.Offers += b.Count
		}
		if b.Label == "Offer Accepted" {
			result.Accepted += b.Count
		}
	}
	return result, nil
}

// Training summarises the program catalog and enrollment outcomes.
func (s *Service) Training(ctx context.Context) (*TrainingStats, error) {
	byStatus, err := s.repo.ProgramCountsBy(ctx, "status")
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	byCategory, err := s.repo.ProgramCountsBy(ctx, "category")
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	byLevel, err := s.repo.ProgramCountsBy(ctx, "level")
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	rating, err := s.repo.AverageFeedbackRating(ctx)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	enrollments, err := s.repo.EnrollmentStatusCounts(ctx)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}

	result := &TrainingStats{
		ByStatus:      byStatus,
		ByCategory:    byCategory,
		ByLevel:       byLevel,
		AverageRating: rating,
	}
	for _, b := range byStatus {
		result.TotalPrograms += b.Count
	}
	for _, b := range enrollments {
		result.TotalEnrollments += b.Count
		if b.Label == "Completed" {
			result.Completed += b.Count
		}
	}
	if result.TotalEnrollments > 0 {
		result.CompletionRate = float64(result.Completed) / float64(result.TotalEnrollments)
	}
	return result, nil
}

// Trends buckets registrations, placements and enrollments per calendar day
// inside the period window.
func (s *Service) Trends(ctx context.Context, period Period) (*Trends, error) {
	start, end, err := period.Window(s.now())
	if err != nil {
		return nil, err
	}
	result := &Trends{Period: period, Start: start, End: end}
	if result.Period == "" {
		result.Period = Period30Days
	}

	if result.Registrations, err = s.repo.DailyCounts(ctx, TrendRegistrations, start, end); err != nil {
		return nil, apperrors.Dependency(err)
	}
	if result.Placements, err = s.repo.DailyCounts(ctx, TrendPlacements, start, end); err != nil {
		return nil, apperrors.Dependency(err)
	}
	if result.Enrollments, err = s.repo.DailyCounts(ctx, TrendEnrollments, start, end); err != nil {
		return nil, apperrors.Dependency(err)
	}
	return result, nil
}

// Dashboard composes the admin overview.
func (s *Service) Dashboard(ctx context.Context, period Period) (*Dashboard, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	placements, err := s.Placements(ctx, period)
	if err != nil {
		return nil, err
	}
	training, err := s.Training(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Users: users, Placements: placements, Training: training}, nil
}

// packageStats computes avg/min/max over the offer package values, zeroed
// when there is no data.
func packageStats(values []float64) PackageStats {
	if len(values) == 0 {
		return PackageStats{}
	}
	avg, _ := stats.Mean(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	return PackageStats{Average: avg, Min: min, Max: max}
}

// packageHistogram buckets package values into the fixed lakh bands. Every
// band is always present, zeroed when empty.
func packageHistogram(values []float64) []CountBucket {
	buckets := make([]CountBucket, len(histogramBands))
	for i, band := range histogramBands {
		buckets[i] = CountBucket{Label: band.Label}
	}
	for _, v := range values {
		placed := false
		for i, band := range histogramBands {
			if band.Upper > 0 && v < band.Upper {
				buckets[i].Count++
				placed = true
				break
			}
		}
		if !placed {
			// Last band is open-ended.
			buckets[len(buckets)-1].Count++
		}
	}
	return buckets
}
