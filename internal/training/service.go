package training

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"PlacementPortal/internal/identity"
	"PlacementPortal/pkg/apperrors"
)

type trainingRepository interface {
	Insert(ctx context.Context, p *Program) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Program, error)
	List(ctx context.Context, filter ListFilter) ([]Program, int64, error)
	Update(ctx context.Context, p *Program) error
	DeleteIfUnenrolled(ctx context.Context, id primitive.ObjectID) (bool, error)
	Enroll(ctx context.Context, id primitive.ObjectID, e Enrollment) (bool, error)
	UpdateEnrollment(ctx context.Context, id, student primitive.ObjectID, e Enrollment, prior EnrollmentStatus, counterDelta int) (bool, error)
	AddFeedback(ctx context.Context, id primitive.ObjectID, f FeedbackEntry) (bool, error)
}

// Service owns training program invariants: the enrollment window, seat
// accounting, progress transitions with certificate issuance and the
// once-only feedback rule.
type Service struct {
	repo   trainingRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo *Repository, logger *zap.Logger) *Service {
	return newService(repo, logger)
}

func newService(repo trainingRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func validateClassification(category Category, ptype ProgramType, level Level) error {
	var fields []apperrors.FieldError
	if !category.Valid() {
		fields = append(fields, apperrors.FieldError{Field: "category", Message: "unknown category"})
	}
	if !ptype.Valid() {
		fields = append(fields, apperrors.FieldError{Field: "type", Message: "unknown program type"})
	}
	if !level.Valid() {
		fields = append(fields, apperrors.FieldError{Field: "level", Message: "unknown level"})
	}
	if len(fields) > 0 {
		return apperrors.Validation("invalid program classification", fields...)
	}
	return nil
}

// Create builds a new program. Route policy restricts callers to faculty and
// admins.
func (s *Service) Create(ctx context.Context, actor *identity.User, req CreateRequest) (*Program, error) {
	if err := validateClassification(req.Category, req.Type, req.Level); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = ProgramUpcoming
	}
	if !status.Valid() {
		return nil, apperrors.Validation("unknown program status")
	}
	if !req.WindowCloses.After(req.WindowOpens) {
		return nil, apperrors.Validation("enrollment window must close after it opens")
	}

	now := s.now()
	window := EnrollmentWindow{Opens: req.WindowOpens, Closes: req.WindowCloses}
	window.Refresh(now)
	p := &Program{
		ID:          primitive.NewObjectID(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		Level:       req.Level,
		Status:      status,
		Instructor:  req.Instructor,
		Schedule:    req.Schedule,
		Capacity:    Capacity{MaxStudents: req.MaxStudents},
		Window:      window,
		Students:    []Enrollment{},
		Feedback:    []FeedbackEntry{},
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, apperrors.Dependency(err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Program, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Window.Refresh(s.now())
	return p, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Program, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	programs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Dependency(err)
	}
	now := s.now()
	for i := range programs {
		programs[i].Window.Refresh(now)
	}
	return programs, total, nil
}

// Update mutates program metadata. Only the creator or an admin may update.
func (s *Service) Update(ctx context.Context, actor *identity.User, id string, req UpdateRequest) (*Program, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CreatedBy != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.Authorization("not the creator of this program")
	}

	if req.Title != "" {
		p.Title = req.Title
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.Category != "" {
		p.Category = req.Category
	}
	if req.Type != "" {
		p.Type = req.Type
	}
	if req.Level != "" {
		p.Level = req.Level
	}
	if err := validateClassification(p.Category, p.Type, p.Level); err != nil {
		return nil, err
	}
	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, apperrors.Validation("unknown program status")
		}
		p.Status = req.Status
	}
	if req.Instructor != nil {
		p.Instructor = *req.Instructor
	}
	if req.Schedule != nil {
		p.Schedule = *req.Schedule
	}
	if req.MaxStudents > 0 {
		if req.MaxStudents < p.ActiveEnrollments() {
			return nil, apperrors.Validation("maxStudents cannot drop below current enrollment")
		}
		p.Capacity.MaxStudents = req.MaxStudents
	}
	if req.WindowOpens != nil {
		p.Window.Opens = *req.WindowOpens
	}
	if req.WindowCloses != nil {
		p.Window.Closes = *req.WindowCloses
	}
	if !p.Window.Closes.After(p.Window.Opens) {
		return nil, apperrors.Validation("enrollment window must close after it opens")
	}

	p.Window.Refresh(s.now())
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a program, refusing while any student holds a seat.
func (s *Service) Delete(ctx context.Context, actor *identity.User, id string) error {
	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if p.CreatedBy != actor.ID && !actor.IsAdmin() {
		return apperrors.Authorization("not the creator of this program")
	}
	deleted, err := s.repo.DeleteIfUnenrolled(ctx, p.ID)
	if err != nil {
		return apperrors.Dependency(err)
	}
	if !deleted {
		return apperrors.ResourceInUse("program has enrolled students")
	}
	return nil
}

// Enroll signs the calling student up. Window, duplicate and capacity checks
// fail fast on the loaded document; the storage update re-checks duplicate
// and capacity atomically, so concurrent attempts cannot overshoot.
func (s *Service) Enroll(ctx context.Context, actor *identity.User, id string) (*Program, error) {
	if actor.Role != identity.RoleStudent {
		return nil, apperrors.Authorization("only students can enroll")
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p.Window.Refresh(now)
	if !p.Window.IsOpen {
		return nil, apperrors.Conflict("enrollment window is closed")
	}
	if p.EnrollmentOf(actor.ID) != nil {
		return nil, apperrors.Conflict("already enrolled in this program")
	}
	if p.Capacity.CurrentEnrolled >= p.Capacity.MaxStudents {
		return nil, apperrors.Conflict("program has reached full capacity")
	}

	entry := Enrollment{
		Student:    actor.ID,
		EnrolledAt: now,
		Progress:   0,
		Status:     EnrollmentEnrolled,
	}
	ok, err := s.repo.Enroll(ctx, p.ID, entry)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	if !ok {
		// Lost a race: either the seat went or the student got in through
		// another request. Re-read to report the right conflict.
		fresh, ferr := s.repo.FindByID(ctx, p.ID)
		if ferr == nil && fresh != nil && fresh.EnrollmentOf(actor.ID) != nil {
			return nil, apperrors.Conflict("already enrolled in this program")
		}
		return nil, apperrors.Conflict("program has reached full capacity")
	}

	return s.Get(ctx, id)
}

// resolveEnrollment locates the target enrollment for progress and drop
// operations, applying the self-vs-staff addressing rules.
func (s *Service) resolveEnrollment(p *Program, actor *identity.User, studentID string) (*Enrollment, error) {
	target := actor.ID
	if studentID != "" && studentID != actor.ID.Hex() {
		if !actor.IsStaff() {
			return nil, apperrors.Authorization("cannot address another student's enrollment")
		}
		oid, err := primitive.ObjectIDFromHex(studentID)
		if err != nil {
			return nil, apperrors.Validation("invalid student id")
		}
		target = oid
	}
	entry := p.EnrollmentOf(target)
	if entry == nil {
		if target == actor.ID {
			return nil, apperrors.Authorization("not enrolled in this program")
		}
		return nil, apperrors.NotFound("enrollment not found")
	}
	return entry, nil
}

// Progress records a progress value and optional status change. Reaching 100
// while Enrolled completes the enrollment and issues the certificate in the
// same write; from Dropped or On Hold only the progress value moves.
func (s *Service) Progress(ctx context.Context, actor *identity.User, id string, req ProgressRequest) (*Program, error) {
	if req.Progress < 0 || req.Progress > 100 {
		return nil, apperrors.Validation("progress must be between 0 and 100")
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	entry, err := s.resolveEnrollment(p, actor, req.StudentID)
	if err != nil {
		return nil, err
	}

	prior := entry.Status
	updated := *entry
	updated.Progress = req.Progress
	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, apperrors.Validation("unknown enrollment status")
		}
		updated.Status = req.Status
	}

	autoComplete := updated.Progress == 100 && prior == EnrollmentEnrolled &&
		(updated.Status == EnrollmentEnrolled || updated.Status == EnrollmentCompleted)
	if autoComplete && !updated.Certificate.Issued {
		now := s.now()
		updated.Status = EnrollmentCompleted
		updated.Certificate = Certificate{
			Issued:        true,
			IssuedDate:    &now,
			CertificateID: uuid.NewString(),
		}
	}

	delta := 0
	if prior.Active() && !updated.Status.Active() {
		delta = -1
	} else if !prior.Active() && updated.Status.Active() {
		delta = 1
	}

	ok, err := s.repo.UpdateEnrollment(ctx, p.ID, updated.Student, updated, prior, delta)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	if !ok {
		return nil, apperrors.Conflict("enrollment changed concurrently, retry")
	}
	return s.Get(ctx, id)
}

// Drop releases the caller's seat.
func (s *Service) Drop(ctx context.Context, actor *identity.User, id string) (*Program, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	entry, err := s.resolveEnrollment(p, actor, "")
	if err != nil {
		return nil, err
	}
	if entry.Status == EnrollmentDropped {
		return nil, apperrors.Conflict("enrollment already dropped")
	}

	updated := *entry
	updated.Status = EnrollmentDropped
	delta := 0
	if entry.Status.Active() {
		delta = -1
	}
	ok, err := s.repo.UpdateEnrollment(ctx, p.ID, updated.Student, updated, entry.Status, delta)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	if !ok {
		return nil, apperrors.Conflict("enrollment changed concurrently, retry")
	}
	return s.Get(ctx, id)
}

// Feedback appends the caller's one allowed feedback entry.
func (s *Service) Feedback(ctx context.Context, actor *identity.User, id string, req FeedbackRequest) (*Program, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.EnrollmentOf(actor.ID) == nil {
		return nil, apperrors.Authorization("not enrolled in this program")
	}
	if p.HasFeedbackFrom(actor.ID) {
		return nil, apperrors.Conflict("feedback already submitted for this program")
	}

	entry := FeedbackEntry{
		Student:   actor.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: s.now(),
	}
	ok, err := s.repo.AddFeedback(ctx, p.ID, entry)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	if !ok {
		return nil, apperrors.Conflict("feedback already submitted for this program")
	}
	return s.Get(ctx, id)
}

func (s *Service) find(ctx context.Context, id string) (*Program, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("invalid program id")
	}
	p, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	if p == nil {
		return nil, apperrors.NotFound("training program not found")
	}
	return p, nil
}
