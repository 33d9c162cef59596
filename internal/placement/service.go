package placement

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"PlacementPortal/internal/config"
	"PlacementPortal/internal/identity"
	"PlacementPortal/pkg/apperrors"
)

type placementRepository interface {
	Insert(ctx context.Context, rec *Record) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Record, error)
	List(ctx context.Context, filter ListFilter) ([]Record, int64, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Verify(ctx context.Context, id, verifier primitive.ObjectID, at time.Time) error
}

type userReader interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*identity.User, error)
}

type mailer interface {
	Send(to, subject, html string) error
}

// Service owns placement record invariants: ownership, the status
// progression, the derived totalRounds count and verification.
type Service struct {
	repo   placementRepository
	users  userReader
	mail   mailer
	logger *zap.Logger
}

func NewService(repo *Repository, users *identity.Repository, mail *config.Mailer, logger *zap.Logger) *Service {
	return newService(repo, users, mail, logger)
}

func newService(repo placementRepository, users userReader, mail mailer, logger *zap.Logger) *Service {
	return &Service{repo: repo, users: users, mail: mail, logger: logger}
}

func validateEnums(company Company, position Position, pkg Package) error {
	var fields []apperrors.FieldError
	if !company.Industry.Valid() {
		fields = append(fields, apperrors.FieldError{Field: "company.industry", Message: "unknown industry"})
	}
	if !company.Size.Valid() {
		fields = append(fields, apperrors.FieldError{Field: "company.size", Message: "unknown company size"})
	}
	if !position.Type.Valid() {
		fields = append(fields, apperrors.FieldError{Field: "position.type", Message: "unknown position type"})
	}
	if pkg.CTC < 0 {
		fields = append(fields, apperrors.FieldError{Field: "package.ctc", Message: "must not be negative"})
	}
	if len(fields) > 0 {
		return apperrors.Validation("invalid placement fields", fields...)
	}
	return nil
}

func validateRounds(rounds []Round) error {
	for i, round := range rounds {
		if !round.Status.Valid() {
			return apperrors.Validation("invalid round status",
				apperrors.FieldError{Field: fmt.Sprintf("rounds[%d].status", i), Message: "unknown round status"})
		}
	}
	return nil
}

// Create files a placement record. The owner is the caller unless an admin or
// placement officer names another student.
func (s *Service) Create(ctx context.Context, actor *identity.User, req CreateRequest) (*Record, error) {
	if err := validateEnums(req.Company, req.Position, req.Package); err != nil {
		return nil, err
	}
	if err := validateRounds(req.Rounds); err != nil {
		return nil, err
	}

	owner := actor.ID
	if req.Student != "" && req.Student != actor.ID.Hex() {
		if actor.Role != identity.RoleAdmin && actor.Role != identity.RolePlacementOfficer {
			return nil, apperrors.Authorization("cannot file a placement for another student")
		}
		oid, err := primitive.ObjectIDFromHex(req.Student)
		if err != nil {
			return nil, apperrors.Validation("invalid student id")
		}
		student, err := s.users.FindByID(ctx, oid)
		if err != nil {
			return nil, apperrors.Dependency(err)
		}
		if student == nil || student.Role != identity.RoleStudent {
			return nil, apperrors.NotFound("student not found")
		}
		owner = oid
	}

	status := req.Status
	if status == "" {
		status = StatusApplied
	}
	if !status.Valid() {
		return nil, apperrors.Validation("unknown placement status")
	}
	pkg := req.Package
	if pkg.Currency == "" {
		pkg.Currency = "INR"
	}
	timeline := req.Timeline
	if timeline.AppliedDate.IsZero() {
		timeline.AppliedDate = time.Now().UTC()
	}

	now := time.Now().UTC()
	rec := &Record{
		ID:       primitive.NewObjectID(),
		Student:  owner,
		Company:  req.Company,
		Position: req.Position,
		Package:  pkg,
		Location: req.Location,
		Timeline: timeline,
		Process: Process{
			Rounds:      req.Rounds,
			TotalRounds: len(req.Rounds),
		},
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, apperrors.Dependency(err)
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	return s.find(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Record, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Dependency(err)
	}
	return records, total, nil
}

// Update mutates a record. Owner, admin and placement officers may update;
// totalRounds is recomputed; verification fields are not writable here.
func (s *Service) Update(ctx context.Context, actor *identity.User, id string, req UpdateRequest) (*Record, error) {
	rec, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Student != actor.ID && actor.Role != identity.RoleAdmin && actor.Role != identity.RolePlacementOfficer {
		return nil, apperrors.Authorization("not the owner of this placement record")
	}

	if req.Company != nil {
		rec.Company = *req.Company
	}
	if req.Position != nil {
		rec.Position = *req.Position
	}
	if req.Package != nil {
		rec.Package = *req.Package
	}
	if req.Location != nil {
		rec.Location = *req.Location
	}
	if req.Timeline != nil {
		rec.Timeline = *req.Timeline
	}
	if req.Rounds != nil {
		if err := validateRounds(req.Rounds); err != nil {
			return nil, err
		}
		rec.Process.Rounds = req.Rounds
	}
	if err := validateEnums(rec.Company, rec.Position, rec.Package); err != nil {
		return nil, err
	}
	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, apperrors.Validation("unknown placement status")
		}
		if !rec.Status.CanTransition(req.Status) {
			return nil, apperrors.Validation(
				fmt.Sprintf("cannot move placement from %q to %q", rec.Status, req.Status))
		}
		rec.Status = req.Status
	}

	// Derived: always matches the rounds list after a save.
	rec.Process.TotalRounds = len(rec.Process.Rounds)
	rec.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a record. Only the owner or an admin may delete.
func (s *Service) Delete(ctx context.Context, actor *identity.User, id string) error {
	rec, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if rec.Student != actor.ID && !actor.IsAdmin() {
		return apperrors.Authorization("not the owner of this placement record")
	}
	return s.repo.Delete(ctx, rec.ID)
}

// Verify marks a record verified. Verification is permanent; a later call by
// another qualified verifier only overwrites verifier and timestamp.
func (s *Service) Verify(ctx context.Context, actor *identity.User, id string) (*Record, error) {
	if actor.Role != identity.RolePlacementOfficer && !actor.IsAdmin() {
		return nil, apperrors.Authorization("requires placement_officer privilege")
	}
	rec, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.repo.Verify(ctx, rec.ID, actor.ID, now); err != nil {
		return nil, err
	}
	rec.Verification = Verification{IsVerified: true, VerifiedBy: &actor.ID, VerifiedAt: &now}
	rec.UpdatedAt = now

	go s.notifyOwner(rec)
	return rec, nil
}

func (s *Service) notifyOwner(rec *Record) {
	owner, err := s.users.FindByID(context.Background(), rec.Student)
	if err != nil || owner == nil {
		return
	}
	body := fmt.Sprintf("<p>Your placement record for %s has been verified.</p>", rec.Company.Name)
	if err := s.mail.Send(owner.Email, "Placement verified", body); err != nil {
		s.logger.Warn("verification email failed", zap.String("email", owner.Email), zap.Error(err))
	}
}

func (s *Service) find(ctx context.Context, id string) (*Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("invalid placement id")
	}
	rec, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	if rec == nil {
		return nil, apperrors.NotFound("placement record not found")
	}
	return rec, nil
}
