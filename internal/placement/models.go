package placement

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Industry string

const (
	IndustryIT            Industry = "IT"
	IndustryFinance       Industry = "Finance"
	IndustryHealthcare    Industry = "Healthcare"
	IndustryManufacturing Industry = "Manufacturing"
	IndustryConsulting    Industry = "Consulting"
	IndustryEducation     Industry = "Education"
	IndustryOther         Industry = "Other"
)

func (i Industry) Valid() bool {
	switch i {
	case IndustryIT, IndustryFinance, IndustryHealthcare, IndustryManufacturing,
		IndustryConsulting, IndustryEducation, IndustryOther:
		return true
	}
	return false
}

type CompanySize string

const (
	SizeStartup    CompanySize = "Startup"
	SizeSmall      CompanySize = "Small"
	SizeMedium     CompanySize = "Medium"
	SizeLarge      CompanySize = "Large"
	SizeEnterprise CompanySize = "Enterprise"
)

func (s CompanySize) Valid() bool {
	switch s {
	case SizeStartup, SizeSmall, SizeMedium, SizeLarge, SizeEnterprise:
		return true
	}
	return false
}

type PositionType string

const (
	PositionFullTime   PositionType = "Full-time"
	PositionPartTime   PositionType = "Part-time"
	PositionInternship PositionType = "Internship"
	PositionContract   PositionType = "Contract"
)

func (p PositionType) Valid() bool {
	switch p {
	case PositionFullTime, PositionPartTime, PositionInternship, PositionContract:
		return true
	}
	return false
}

type RoundStatus string

const (
	RoundScheduled  RoundStatus = "Scheduled"
	RoundCompleted  RoundStatus = "Completed"
	RoundCleared    RoundStatus = "Cleared"
	RoundNotCleared RoundStatus = "Not Cleared"
)

func (r RoundStatus) Valid() bool {
	switch r {
	case RoundScheduled, RoundCompleted, RoundCleared, RoundNotCleared:
		return true
	}
	return false
}

// Status is the overall progression of a placement application.
type Status string

const (
	StatusApplied            Status = "Applied"
	StatusShortlisted        Status = "Shortlisted"
	StatusInterviewScheduled Status = "Interview Scheduled"
	StatusInterviewCompleted Status = "Interview Completed"
	StatusOfferReceived      Status = "Offer Received"
	StatusOfferAccepted      Status = "Offer Accepted"
	StatusOfferDeclined      Status = "Offer Declined"
	StatusRejected           Status = "Rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusShortlisted, StatusInterviewScheduled, StatusInterviewCompleted,
		StatusOfferReceived, StatusOfferAccepted, StatusOfferDeclined, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusOfferAccepted || s == StatusOfferDeclined || s == StatusRejected
}

// transitions is the forward progression. Rejected is reachable from every
// non-terminal state and is handled in CanTransition directly.
var transitions = map[Status][]Status{
	StatusApplied:            {StatusShortlisted},
	StatusShortlisted:        {StatusInterviewScheduled},
	StatusInterviewScheduled: {StatusInterviewCompleted},
	StatusInterviewCompleted: {StatusOfferReceived},
	StatusOfferReceived:      {StatusOfferAccepted, StatusOfferDeclined},
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == StatusRejected {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Company struct {
	Name     string      `bson:"name" json:"name" validate:"required,min=2,max=100"`
	Industry Industry    `bson:"industry" json:"industry" validate:"required"`
	Size     CompanySize `bson:"size" json:"size" validate:"required"`
}

type Position struct {
	Title string       `bson:"title" json:"title" validate:"required,min=2,max=100"`
	Type  PositionType `bson:"type" json:"type" validate:"required"`
	Level string       `bson:"level" json:"level" validate:"omitempty,max=50"`
}

type Package struct {
	CTC      float64  `bson:"ctc" json:"ctc" validate:"min=0"`
	Currency string   `bson:"currency" json:"currency"`
	Benefits []string `bson:"benefits,omitempty" json:"benefits,omitempty"`
}

type Location struct {
	City     string `bson:"city" json:"city" validate:"omitempty,max=100"`
	State    string `bson:"state" json:"state" validate:"omitempty,max=100"`
	Country  string `bson:"country" json:"country" validate:"omitempty,max=100"`
	WorkMode string `bson:"work_mode" json:"workMode" validate:"omitempty,oneof=On-site Remote Hybrid"`
}

type Timeline struct {
	AppliedDate    time.Time   `bson:"applied_date" json:"appliedDate"`
	InterviewDates []time.Time `bson:"interview_dates,omitempty" json:"interviewDates,omitempty"`
	OfferDate      *time.Time  `bson:"offer_date,omitempty" json:"offerDate,omitempty"`
	JoiningDate    *time.Time  `bson:"joining_date,omitempty" json:"joiningDate,omitempty"`
}

type Round struct {
	Type   string      `bson:"type" json:"type" validate:"required,max=50"`
	Date   time.Time   `bson:"date" json:"date"`
	Status RoundStatus `bson:"status" json:"status" validate:"required"`
	Notes  string      `bson:"notes,omitempty" json:"notes,omitempty" validate:"omitempty,max=500"`
}

// Process carries the interview rounds. TotalRounds is derived and recomputed
// on every save.
type Process struct {
	Rounds      []Round `bson:"rounds" json:"rounds"`
	TotalRounds int     `bson:"total_rounds" json:"totalRounds"`
}

type Verification struct {
	IsVerified bool                `bson:"is_verified" json:"isVerified"`
	VerifiedBy *primitive.ObjectID `bson:"verified_by,omitempty" json:"verifiedBy,omitempty"`
	VerifiedAt *time.Time          `bson:"verified_at,omitempty" json:"verifiedAt,omitempty"`
}

// Record is one placement application owned by a single student.
type Record struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Student      primitive.ObjectID `bson:"student" json:"student"`
	Company      Company            `bson:"company" json:"company"`
	Position     Position           `bson:"position" json:"position"`
	Package      Package            `bson:"package" json:"package"`
	Location     Location           `bson:"location" json:"location"`
	Timeline     Timeline           `bson:"timeline" json:"timeline"`
	Process      Process            `bson:"process" json:"process"`
	Status       Status             `bson:"status" json:"status"`
	Verification Verification       `bson:"verification" json:"verification"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

type CreateRequest struct {
	// Admins and placement officers may file on behalf of a student.
	Student  string   `json:"student" validate:"omitempty,len=24"`
	Company  Company  `json:"company" validate:"required"`
	Position Position `json:"position" validate:"required"`
	Package  Package  `json:"package"`
	Location Location `json:"location"`
	Timeline Timeline `json:"timeline"`
	Rounds   []Round  `json:"rounds" validate:"dive"`
	Status   Status   `json:"status"`
}

type UpdateRequest struct {
	Company  *Company  `json:"company"`
	Position *Position `json:"position"`
	Package  *Package  `json:"package"`
	Location *Location `json:"location"`
	Timeline *Timeline `json:"timeline"`
	Rounds   []Round   `json:"rounds" validate:"dive"`
	Status   Status    `json:"status"`
}

type ListFilter struct {
	Status   Status
	Industry Industry
	Verified *bool
	Student  string
	Page     int
	Limit    int
}
