package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"PlacementPortal/internal/config"
	"PlacementPortal/pkg/apperrors"
)

type userRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByStudentID(ctx context.Context, studentID string) (*User, error)
	Insert(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter ListFilter) ([]User, int64, error)
	RoleCounts(ctx context.Context) (map[string]int64, error)
}

type mailer interface {
	Send(to, subject, html string) error
}

// Service owns registration, login and user directory operations, including
// the admin self-protection rules.
type Service struct {
	repo   userRepository
	tokens *TokenManager
	mail   mailer
	logger *zap.Logger
}

func NewService(repo *Repository, tokens *TokenManager, mail *config.Mailer, logger *zap.Logger) *Service {
	return newService(repo, tokens, mail, logger)
}

func newService(repo userRepository, tokens *TokenManager, mail mailer, logger *zap.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, mail: mail, logger: logger}
}

// buildProfiles enforces the role-conditional field requirements and returns
// the per-role profile sub-documents.
func buildProfiles(role Role, studentID, department string, year int) (*StudentProfile, *FacultyProfile, error) {
	switch role {
	case RoleStudent:
		var fields []apperrors.FieldError
		if studentID == "" {
			fields = append(fields, apperrors.FieldError{Field: "studentId", Message: "required for student accounts"})
		}
		if department == "" {
			fields = append(fields, apperrors.FieldError{Field: "department", Message: "required for student accounts"})
		}
		if year < 1 || year > 4 {
			fields = append(fields, apperrors.FieldError{Field: "year", Message: "must be between 1 and 4"})
		}
		if len(fields) > 0 {
			return nil, nil, apperrors.Validation("missing student fields", fields...)
		}
		return &StudentProfile{StudentID: studentID, Department: department, Year: year}, nil, nil
	case RoleFaculty:
		if department == "" {
			return nil, nil, apperrors.Validation("missing faculty fields",
				apperrors.FieldError{Field: "department", Message: "required for faculty accounts"})
		}
		return nil, &FacultyProfile{Department: department}, nil
	default:
		return nil, nil, nil
	}
}

// Register creates an account with role-conditional validation and returns a
// signed token alongside the profile.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if !req.Role.Valid() {
		return nil, apperrors.Validation("unknown role",
			apperrors.FieldError{Field: "role", Message: "must be student, faculty, admin or placement_officer"})
	}
	student, faculty, err := buildProfiles(req.Role, req.StudentID, req.Department, req.Year)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("email already registered")
	}
	if student != nil {
		dup, err := s.repo.FindByStudentID(ctx, student.StudentID)
		if err != nil {
			return nil, apperrors.Dependency(err)
		}
		if dup != nil {
			return nil, apperrors.Conflict("student id already registered")
		}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	now := time.Now().UTC()
	user := &User{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         req.Role,
		Student:      student,
		Faculty:      faculty,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}

	go func() {
		body := fmt.Sprintf("<p>Hi %s, your placement portal account is ready.</p>", user.Name)
		if err := s.mail.Send(user.Email, "Welcome to the Placement Portal", body); err != nil {
			s.logger.Warn("welcome email failed", zap.String("email", user.Email), zap.Error(err))
		}
	}()

	return &AuthResponse{Token: token, User: user}, nil
}

// Login authenticates by email and password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	if user == nil || !CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.Authentication("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperrors.Authorization("account is inactive")
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	return &AuthResponse{Token: token, User: user}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// List returns one directory page plus role distribution stats.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]User, int64, *DirectoryStats, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, nil, apperrors.Dependency(err)
	}
	counts, err := s.repo.RoleCounts(ctx)
	if err != nil {
		return nil, 0, nil, apperrors.Dependency(err)
	}
	return users, total, &DirectoryStats{ByRole: counts}, nil
}

// UpdateProfile changes the caller-editable fields. Role, flags and email are
// untouchable here.
func (s *Service) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Department != "" {
		switch {
		case user.Student != nil:
			user.Student.Department = req.Department
		case user.Faculty != nil:
			user.Faculty.Department = req.Department
		}
	}
	if req.Year > 0 && user.Student != nil {
		user.Student.Year = req.Year
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword re-hashes the credential. Self-service requires the current
// password; admins may reset without it.
func (s *Service) ChangePassword(ctx context.Context, actor *User, id string, req ChangePasswordRequest) error {
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if actor.ID == user.ID || !actor.IsAdmin() {
		if !CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
			return apperrors.Authentication("current password is incorrect")
		}
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.Dependency(err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}

// Delete removes an account. Admins may delete anyone except themselves.
func (s *Service) Delete(ctx context.Context, actor *User, id string) error {
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if actor.ID == user.ID {
		return apperrors.ForbiddenSelfAction("administrators cannot delete their own account")
	}
	return s.repo.Delete(ctx, user.ID)
}

// SetStatus toggles the activation and verification flags.
func (s *Service) SetStatus(ctx context.Context, id string, req SetStatusRequest) (*User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsVerified != nil {
		user.IsVerified = *req.IsVerified
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole changes an account's role. Admins may never change their own role,
// and moving into a profiled role requires the profile fields up front.
func (s *Service) SetRole(ctx context.Context, actor *User, id string, req SetRoleRequest) (*User, error) {
	if !req.Role.Valid() {
		return nil, apperrors.Validation("unknown role",
			apperrors.FieldError{Field: "role", Message: "must be student, faculty, admin or placement_officer"})
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID == user.ID {
		return nil, apperrors.ForbiddenSelfAction("administrators cannot change their own role")
	}

	// Carry over existing profile fields when the request leaves them out.
	studentID, department, year := req.StudentID, req.Department, req.Year
	if user.Student != nil {
		if studentID == "" {
			studentID = user.Student.StudentID
		}
		if department == "" {
			department = user.Student.Department
		}
		if year == 0 {
			year = user.Student.Year
		}
	}
	if user.Faculty != nil && department == "" {
		department = user.Faculty.Department
	}
	student, faculty, err := buildProfiles(req.Role, studentID, department, year)
	if err != nil {
		return nil, err
	}

	user.Role = req.Role
	user.Student = student
	user.Faculty = faculty
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) find(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("invalid user id")
	}
	user, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.Dependency(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}
	return user, nil
}
