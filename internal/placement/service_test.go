package placement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"PlacementPortal/internal/identity"
	"PlacementPortal/pkg/apperrors"
)

type memRecords struct {
	mu   sync.Mutex
	recs map[primitive.ObjectID]Record
}

func newMemRecords() *memRecords {
	return &memRecords{recs: map[primitive.ObjectID]Record{}}
}

func (r *memRecords) Insert(_ context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[rec.ID] = *rec
	return nil
}

func (r *memRecords) FindByID(_ context.Context, id primitive.ObjectID) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (r *memRecords) List(_ context.Context, _ ListFilter) ([]Record, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0, len(r.recs))
	for _, rec := range r.recs {
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (r *memRecords) Update(_ context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.recs[rec.ID]
	if !ok {
		return apperrors.NotFound("placement record not found")
	}
	next := *rec
	// Verification only moves through Verify.
	next.Verification = stored.Verification
	r.recs[rec.ID] = next
	return nil
}

func (r *memRecords) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.recs, id)
	return nil
}

func (r *memRecords) Verify(_ context.Context, id, verifier primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return apperrors.NotFound("placement record not found")
	}
	v := verifier
	ts := at
	rec.Verification = Verification{IsVerified: true, VerifiedBy: &v, VerifiedAt: &ts}
	rec.UpdatedAt = at
	r.recs[id] = rec
	return nil
}

type memUserDir struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*identity.User
}

func (d *memUserDir) FindByID(_ context.Context, id primitive.ObjectID) (*identity.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.users[id], nil
}

type noopMailer struct{}

func (noopMailer) Send(_, _, _ string) error { return nil }

func newTestService() (*Service, *memRecords, *memUserDir) {
	repo := newMemRecords()
	users := &memUserDir{users: map[primitive.ObjectID]*identity.User{}}
	return newService(repo, users, noopMailer{}, zap.NewNop()), repo, users
}

func student() *identity.User {
	return &identity.User{ID: primitive.NewObjectID(), Role: identity.RoleStudent, Email: "s@example.com"}
}

func officer() *identity.User {
	return &identity.User{ID: primitive.NewObjectID(), Role: identity.RolePlacementOfficer}
}

func admin() *identity.User {
	return &identity.User{ID: primitive.NewObjectID(), Role: identity.RoleAdmin}
}

func validCreate() CreateRequest {
	return CreateRequest{
		Company:  Company{Name: "Acme Corp", Industry: IndustryIT, Size: SizeLarge},
		Position: Position{Title: "Backend Engineer", Type: PositionFullTime},
		Package:  Package{CTC: 1200000},
		Rounds: []Round{
			{Type: "Online Assessment", Status: RoundCleared},
			{Type: "Technical Interview", Status: RoundScheduled},
		},
	}
}

func TestCreateDerivesDefaults(t *testing.T) {
	svc, _, _ := newTestService()
	owner := student()

	rec, err := svc.Create(context.Background(), owner, validCreate())
	require.NoError(t, err)
	assert.Equal(t, owner.ID, rec.Student)
	assert.Equal(t, StatusApplied, rec.Status)
	assert.Equal(t, "INR", rec.Package.Currency)
	assert.Equal(t, 2, rec.Process.TotalRounds)
	assert.False(t, rec.Timeline.AppliedDate.IsZero())
	assert.False(t, rec.Verification.IsVerified)
}

func TestCreateRejectsUnknownEnums(t *testing.T) {
	svc, _, _ := newTestService()
	req := validCreate()
	req.Company.Industry = Industry("Agritech")

	_, err := svc.Create(context.Background(), student(), req)
	require.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	req = validCreate()
	req.Rounds[0].Status = RoundStatus("Pending")
	_, err = svc.Create(context.Background(), student(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestCreateOnBehalfOfStudent(t *testing.T) {
	svc, _, users := newTestService()
	target := student()
	users.users[target.ID] = target

	req := validCreate()
	req.Student = target.ID.Hex()

	_, err := svc.Create(context.Background(), student(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))

	rec, err := svc.Create(context.Background(), officer(), req)
	require.NoError(t, err)
	assert.Equal(t, target.ID, rec.Student)

	req.Student = primitive.NewObjectID().Hex()
	_, err = svc.Create(context.Background(), admin(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestUpdateRecomputesTotalRounds(t *testing.T) {
	svc, _, _ := newTestService()
	owner := student()
	rec, err := svc.Create(context.Background(), owner, validCreate())
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), owner, rec.ID.Hex(), UpdateRequest{
		Rounds: []Round{
			{Type: "Online Assessment", Status: RoundCleared},
			{Type: "Technical Interview", Status: RoundCleared},
			{Type: "HR Round", Status: RoundScheduled},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Process.TotalRounds)
}

func TestUpdateStatusProgression(t *testing.T) {
	svc, _, _ := newTestService()
	owner := student()
	rec, err := svc.Create(context.Background(), owner, validCreate())
	require.NoError(t, err)
	id := rec.ID.Hex()

	// Skipping ahead in the funnel is refused.
	_, err = svc.Update(context.Background(), owner, id, UpdateRequest{Status: StatusOfferAccepted})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	for _, next := range []Status{
		StatusShortlisted, StatusInterviewScheduled, StatusInterviewCompleted,
		StatusOfferReceived, StatusOfferAccepted,
	} {
		got, err := svc.Update(context.Background(), owner, id, UpdateRequest{Status: next})
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
	}

	// Terminal states never move again.
	_, err = svc.Update(context.Background(), owner, id, UpdateRequest{Status: StatusRejected})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestUpdateByNonOwnerStudentDenied(t *testing.T) {
	svc, repo, _ := newTestService()
	owner := student()
	rec, err := svc.Create(context.Background(), owner, validCreate())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), student(), rec.ID.Hex(), UpdateRequest{Status: StatusShortlisted})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))

	stored, err := repo.FindByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, stored.Status)
}

func TestDeleteOwnerOrAdminOnly(t *testing.T) {
	svc, repo, _ := newTestService()
	owner := student()
	rec, err := svc.Create(context.Background(), owner, validCreate())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), officer(), rec.ID.Hex())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))

	require.NoError(t, svc.Delete(context.Background(), admin(), rec.ID.Hex()))
	gone, err := repo.FindByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestVerifyPermanentAndOverwritable(t *testing.T) {
	svc, repo, users := newTestService()
	owner := student()
	users.users[owner.ID] = owner
	rec, err := svc.Create(context.Background(), owner, validCreate())
	require.NoError(t, err)
	id := rec.ID.Hex()

	_, err = svc.Verify(context.Background(), owner, id)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthorization))

	first := officer()
	got, err := svc.Verify(context.Background(), first, id)
	require.NoError(t, err)
	assert.True(t, got.Verification.IsVerified)
	require.NotNil(t, got.Verification.VerifiedBy)
	assert.Equal(t, first.ID, *got.Verification.VerifiedBy)

	// A later verifier only replaces verifier and timestamp.
	second := admin()
	got, err = svc.Verify(context.Background(), second, id)
	require.NoError(t, err)
	assert.True(t, got.Verification.IsVerified)
	assert.Equal(t, second.ID, *got.Verification.VerifiedBy)

	stored, err := repo.FindByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, stored.Verification.IsVerified)
	assert.Equal(t, second.ID, *stored.Verification.VerifiedBy)
}

func TestStatusTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusApplied, StatusShortlisted, true},
		{StatusApplied, StatusApplied, true},
		{StatusApplied, StatusRejected, true},
		{StatusApplied, StatusOfferReceived, false},
		{StatusShortlisted, StatusInterviewScheduled, true},
		{StatusShortlisted, StatusApplied, false},
		{StatusInterviewScheduled, StatusInterviewCompleted, true},
		{StatusInterviewCompleted, StatusOfferReceived, true},
		{StatusOfferReceived, StatusOfferAccepted, true},
		{StatusOfferReceived, StatusOfferDeclined, true},
		{StatusOfferReceived, StatusRejected, true},
		{StatusOfferAccepted, StatusRejected, false},
		{StatusOfferDeclined, StatusApplied, false},
		{StatusRejected, StatusShortlisted, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
