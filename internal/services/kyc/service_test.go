package kyc

import (
	"context"
	"testing"

	"tradedesk/internal/models"
	"tradedesk/internal/testutil"
	"tradedesk/internal/utils/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	titles []string
}

func (r *recorder) Notify(_ context.Context, _ uint, _, title, _ string) {
	r.titles = append(r.titles, title)
}

func TestSubmitAndReview(t *testing.T) {
	db := testutil.NewDB(t)
	notes := &recorder{}
	svc := NewService(db, notes, nil)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "kyc@example.com", "08040000001")

	req := SubmitRequest{DocumentType: "nin", DocumentNumber: "12345678901"}
	first, err := svc.Submit(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.KYCPending, first.Status)

	_, err = svc.Submit(ctx, user.ID, req)
	assert.ErrorIs(t, err, ErrSubmissionPending)

	_, err = svc.Review(ctx, 1, first.ID, ReviewRequest{Status: models.KYCRejected})
	assert.ErrorIs(t, err, ErrReasonRequired)

	rejected, err := svc.Review(ctx, 1, first.ID, ReviewRequest{Status: models.KYCRejected, Reason: "blurry document"})
	require.NoError(t, err)
	assert.Equal(t, "blurry document", rejected.Reason)

	_, err = svc.Review(ctx, 1, first.ID, ReviewRequest{Status: models.KYCVerified})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	second, err := svc.Submit(ctx, user.ID, req)
	require.NoError(t, err)
	_, err = svc.Review(ctx, 1, second.ID, ReviewRequest{Status: models.KYCVerified})
	require.NoError(t, err)

	status, err := svc.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KYCVerified, status.Status)
	require.NotNil(t, status.Latest)
	assert.Equal(t, second.ID, status.Latest.ID)

	_, err = svc.Submit(ctx, user.ID, req)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
	assert.Equal(t, []string{"Verification rejected", "Verification approved"}, notes.titles)
}

func TestReviewUnknown(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, nil, nil)

	_, err := svc.Review(context.Background(), 1, 42, ReviewRequest{Status: models.KYCVerified})
	assert.ErrorIs(t, err, ErrVerificationNotFound)
	_, err = svc.Review(context.Background(), 1, 42, ReviewRequest{Status: models.KYCPending})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, nil, nil)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "a@example.com", "08040000002")
	b := testutil.CreateUser(t, db, "b@example.com", "08040000003")

	ka, err := svc.Submit(ctx, a.ID, SubmitRequest{DocumentType: "bvn", DocumentNumber: "22222222222"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, b.ID, SubmitRequest{DocumentType: "passport", DocumentNumber: "A1234567"})
	require.NoError(t, err)
	_, err = svc.Review(ctx, 1, ka.ID, ReviewRequest{Status: models.KYCVerified})
	require.NoError(t, err)

	items, total, err := svc.List(ctx, pagination.NewQuery(map[string]string{"status": models.KYCPending}))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, b.ID, items[0].UserID)
	require.NotNil(t, items[0].User)
}
