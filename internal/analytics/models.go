package analytics

import (
	"time"

	"PlacementPortal/pkg/apperrors"
)

// Period selects a trailing time window for time-scoped aggregates.
type Period string

const (
	Period7Days  Period = "7d"
	Period30Days Period = "30d"
	Period90Days Period = "90d"
	Period1Year  Period = "1y"
)

// Window translates the period into an absolute [start, end) range anchored
// at now. An empty period defaults to 30 days.
func (p Period) Window(now time.Time) (time.Time, time.Time, error) {
	end := now
	switch p {
	case Period7Days:
		return end.AddDate(0, 0, -7), end, nil
	case "", Period30Days:
		return end.AddDate(0, 0, -30), end, nil
	case Period90Days:
		return end.AddDate(0, 0, -90), end, nil
	case Period1Year:
		return end.AddDate(-1, 0, 0), end, nil
	}
	return time.Time{}, time.Time{}, apperrors.Validation("period must be one of 7d, 30d, 90d, 1y")
}

// CountBucket is one labelled count in a distribution.
type CountBucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// RoleStats summarises accounts of one role.
type RoleStats struct {
	Role     string `json:"role"`
	Total    int64  `json:"total"`
	Active   int64  `json:"active"`
	Inactive int64  `json:"inactive"`
	Verified int64  `json:"verified"`
}

type UserStats struct {
	Total        int64         `json:"total"`
	Active       int64         `json:"active"`
	Inactive     int64         `json:"inactive"`
	ByRole       []RoleStats   `json:"byRole"`
	ByDepartment []CountBucket `json:"byDepartment"`
}

// PackageStats carries CTC aggregates in the record currency.
type PackageStats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

type PlacementStats struct {
	TotalApplications int64         `json:"totalApplications"`
	Offers            int64         `json:"offers"`
	Accepted          int64         `json:"accepted"`
	Verified          int64         `json:"verified"`
	Package           PackageStats  `json:"package"`
	Histogram         []CountBucket `json:"histogram"`
	ByIndustry        []CountBucket `json:"byIndustry"`
	ByStatus          []CountBucket `json:"byStatus"`
}

type TrainingStats struct {
	TotalPrograms    int64         `json:"totalPrograms"`
	ByStatus         []CountBucket `json:"byStatus"`
	ByCategory       []CountBucket `json:"byCategory"`
	ByLevel          []CountBucket `json:"byLevel"`
	AverageRating    float64       `json:"averageRating"`
	TotalEnrollments int64         `json:"totalEnrollments"`
	Completed        int64         `json:"completed"`
	CompletionRate   float64       `json:"completionRate"`
}

// TrendPoint is one calendar-day bucket.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type Trends struct {
	Period        Period       `json:"period"`
	Start         time.Time    `json:"start"`
	End           time.Time    `json:"end"`
	Registrations []TrendPoint `json:"registrations"`
	Placements    []TrendPoint `json:"placements"`
	Enrollments   []TrendPoint `json:"enrollments"`
}

type Dashboard struct {
	Users      *UserStats      `json:"users"`
	Placements *PlacementStats `json:"placements"`
	Training   *TrainingStats  `json:"training"`
}

// histogramBands are the fixed CTC bands in lakhs of the local currency.
var histogramBands = []struct {
	Label string
	Upper float64
}{
	{"0-5L", 500000},
	{"5-10L", 1000000},
	{"10-20L", 2000000},
	{"20L+", 0},
}
