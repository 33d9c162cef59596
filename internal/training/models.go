package training

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategoryTechnical  Category = "Technical"
	CategorySoftSkills Category = "Soft Skills"
	CategoryAptitude   Category = "Aptitude"
	CategoryDomain     Category = "Domain"
	CategoryLanguage   Category = "Language"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTechnical, CategorySoftSkills, CategoryAptitude, CategoryDomain, CategoryLanguage:
		return true
	}
	return false
}

type ProgramType string

const (
	TypeWorkshop ProgramType = "Workshop"
	TypeBootcamp ProgramType = "Bootcamp"
	TypeCourse   ProgramType = "Course"
	TypeSeminar  ProgramType = "Seminar"
)

func (t ProgramType) Valid() bool {
	switch t {
	case TypeWorkshop, TypeBootcamp, TypeCourse, TypeSeminar:
		return true
	}
	return false
}

type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type ProgramStatus string

const (
	ProgramUpcoming  ProgramStatus = "Upcoming"
	ProgramOngoing   ProgramStatus = "Ongoing"
	ProgramCompleted ProgramStatus = "Completed"
	ProgramCancelled ProgramStatus = "Cancelled"
)

func (s ProgramStatus) Valid() bool {
	switch s {
	case ProgramUpcoming, ProgramOngoing, ProgramCompleted, ProgramCancelled:
		return true
	}
	return false
}

type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "Enrolled"
	EnrollmentCompleted EnrollmentStatus = "Completed"
	EnrollmentDropped   EnrollmentStatus = "Dropped"
	EnrollmentOnHold    EnrollmentStatus = "On Hold"
)

func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentEnrolled, EnrollmentCompleted, EnrollmentDropped, EnrollmentOnHold:
		return true
	}
	return false
}

// Active reports whether the enrollment counts toward the seat counter.
// Dropped students free their seat.
func (s EnrollmentStatus) Active() bool {
	return s == EnrollmentEnrolled || s == EnrollmentCompleted || s == EnrollmentOnHold
}

type Instructor struct {
	Name  string `bson:"name" json:"name" validate:"required,min=2,max=100"`
	Email string `bson:"email" json:"email" validate:"omitempty,email"`
	Bio   string `bson:"bio,omitempty" json:"bio,omitempty" validate:"omitempty,max=1000"`
}

type Session struct {
	Topic           string    `bson:"topic" json:"topic" validate:"required,max=200"`
	Date            time.Time `bson:"date" json:"date"`
	DurationMinutes int       `bson:"duration_minutes" json:"durationMinutes" validate:"min=0"`
}

type Schedule struct {
	StartDate     time.Time `bson:"start_date" json:"startDate"`
	EndDate       time.Time `bson:"end_date" json:"endDate"`
	DurationHours int       `bson:"duration_hours" json:"durationHours" validate:"min=0"`
	Sessions      []Session `bson:"sessions,omitempty" json:"sessions,omitempty" validate:"dive"`
}

// Capacity tracks seats. CurrentEnrolled always equals the number of active
// enrollment entries; the two are only ever written together.
type Capacity struct {
	MaxStudents     int `bson:"max_students" json:"maxStudents" validate:"min=1"`
	CurrentEnrolled int `bson:"current_enrolled" json:"currentEnrolled"`
}

// EnrollmentWindow holds the sign-up bounds. IsOpen is derived from the
// current time on every save and read.
type EnrollmentWindow struct {
	Opens  time.Time `bson:"opens" json:"opens"`
	Closes time.Time `bson:"closes" json:"closes"`
	IsOpen bool      `bson:"is_open" json:"isOpen"`
}

// Refresh recomputes the derived open flag against now.
func (w *EnrollmentWindow) Refresh(now time.Time) {
	w.IsOpen = !now.Before(w.Opens) && now.Before(w.Closes)
}

type Certificate struct {
	Issued        bool       `bson:"issued" json:"issued"`
	IssuedDate    *time.Time `bson:"issued_date,omitempty" json:"issuedDate,omitempty"`
	CertificateID string     `bson:"certificate_id,omitempty" json:"certificateId,omitempty"`
}

type Enrollment struct {
	Student     primitive.ObjectID `bson:"student" json:"student"`
	EnrolledAt  time.Time          `bson:"enrolled_at" json:"enrolledAt"`
	Progress    int                `bson:"progress" json:"progress"`
	Status      EnrollmentStatus   `bson:"status" json:"status"`
	Certificate Certificate        `bson:"certificate" json:"certificate"`
}

type FeedbackEntry struct {
	Student   primitive.ObjectID `bson:"student" json:"student"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Program is one training program with embedded enrollments and feedback.
type Program struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    Category           `bson:"category" json:"category"`
	Type        ProgramType        `bson:"type" json:"type"`
	Level       Level              `bson:"level" json:"level"`
	Status      ProgramStatus      `bson:"status" json:"status"`
	Instructor  Instructor         `bson:"instructor" json:"instructor"`
	Schedule    Schedule           `bson:"schedule" json:"schedule"`
	Capacity    Capacity           `bson:"capacity" json:"capacity"`
	Window      EnrollmentWindow   `bson:"enrollment_window" json:"enrollmentWindow"`
	Students    []Enrollment       `bson:"students" json:"students"`
	Feedback    []FeedbackEntry    `bson:"feedback" json:"feedback"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"createdBy"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ActiveEnrollments counts entries holding a seat.
func (p *Program) ActiveEnrollments() int {
	n := 0
	for _, e := range p.Students {
		if e.Status.Active() {
			n++
		}
	}
	return n
}

// EnrollmentOf returns the enrollment entry for a student, or nil.
func (p *Program) EnrollmentOf(student primitive.ObjectID) *Enrollment {
	for i := range p.Students {
		if p.Students[i].Student == student {
			return &p.Students[i]
		}
	}
	return nil
}

// HasFeedbackFrom reports whether the student already submitted feedback.
func (p *Program) HasFeedbackFrom(student primitive.ObjectID) bool {
	for _, f := range p.Feedback {
		if f.Student == student {
			return true
		}
	}
	return false
}

type CreateRequest struct {
	Title        string        `json:"title" validate:"required,min=3,max=200"`
	Description  string        `json:"description" validate:"omitempty,max=2000"`
	Category     Category      `json:"category" validate:"required"`
	Type         ProgramType   `json:"type" validate:"required"`
	Level        Level         `json:"level" validate:"required"`
	Status       ProgramStatus `json:"status"`
	Instructor   Instructor    `json:"instructor" validate:"required"`
	Schedule     Schedule      `json:"schedule"`
	MaxStudents  int           `json:"maxStudents" validate:"required,min=1"`
	WindowOpens  time.Time     `json:"windowOpens"`
	WindowCloses time.Time     `json:"windowCloses"`
}

type UpdateRequest struct {
	Title        string        `json:"title" validate:"omitempty,min=3,max=200"`
	Description  string        `json:"description" validate:"omitempty,max=2000"`
	Category     Category      `json:"category"`
	Type         ProgramType   `json:"type"`
	Level        Level         `json:"level"`
	Status       ProgramStatus `json:"status"`
	Instructor   *Instructor   `json:"instructor"`
	Schedule     *Schedule     `json:"schedule"`
	MaxStudents  int           `json:"maxStudents" validate:"omitempty,min=1"`
	WindowOpens  *time.Time    `json:"windowOpens"`
	WindowCloses *time.Time    `json:"windowCloses"`
}

type ProgressRequest struct {
	// Faculty and admins may address another student's enrollment.
	StudentID string           `json:"studentId" validate:"omitempty,len=24"`
	Progress  int              `json:"progress" validate:"min=0,max=100"`
	Status    EnrollmentStatus `json:"status"`
}

type FeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

type ListFilter struct {
	Category Category
	Level    Level
	Status   ProgramStatus
	Open     *bool
	Page     int
	Limit    int
}
