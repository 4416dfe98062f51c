package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/loan"
	"github.com/creditx/creditx-server/internal/domain/status"
)

func sampleApplication(id, org string, created time.Time) *loan.Application {
	return &loan.Application{
		ID:            id,
		UserID:        "user-1",
		OrgID:         org,
		ApplicantID:   "ABCDE1234F",
		FirstName:     "Asha",
		LastName:      "Rao",
		LoanType:      loan.TypeHome,
		BankSummary:   "Monthly Summary\n\n### January 2024\n* Total Credits: 50000",
		AISSummary:    "Summary of Annual Information Statement (AIS)\n\n1. Income Sources:\n   - Interest: ₹ 12000",
		CreditVerdict: "```json\n{\"Final Lending Decision\": \"Approve\"}\n```",
		Status:        status.StatusPending,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestInMemoryRoundTripIsByteIdentical(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	app := sampleApplication("req-1", "org-1", time.Now())

	require.NoError(t, repo.Create(ctx, app))
	got, err := repo.FindByID(ctx, "req-1")
	require.NoError(t, err)

	assert.Equal(t, app.BankSummary, got.BankSummary)
	assert.Equal(t, app.AISSummary, got.AISSummary)
	assert.Equal(t, app.CreditVerdict, got.CreditVerdict)
	assert.Equal(t, status.StatusPending, got.Status)
}

func TestInMemoryFindUnknown(t *testing.T) {
	_, err := NewInMemoryRepository().FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
}

func TestInMemoryListByOrgNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	base := time.Now()
	require.NoError(t, repo.Create(ctx, sampleApplication("old", "org-1", base.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, sampleApplication("new", "org-1", base)))
	require.NoError(t, repo.Create(ctx, sampleApplication("other", "org-2", base)))

	apps, err := repo.ListByOrg(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "new", apps[0].ID)
	assert.Equal(t, "old", apps[1].ID)
}

func TestInMemoryUpdateStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	require.NoError(t, repo.Create(ctx, sampleApplication("req-1", "org-1", time.Now())))

	updated, err := repo.UpdateStatus(ctx, "req-1", status.StatusPending, status.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, status.StatusApproved, updated.Status)

	_, err = repo.UpdateStatus(ctx, "req-1", status.StatusPending, status.StatusDeclined)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestInMemoryCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	app := sampleApplication("req-1", "org-1", time.Now())
	require.NoError(t, repo.Create(ctx, app))
	assert.ErrorIs(t, repo.Create(ctx, app), apperrors.ErrPersistenceFailed)
}

func TestEntityMappingPreservesText(t *testing.T) {
	app := sampleApplication("req-1", "org-1", time.Now().UTC())
	app.VerdictError = ""

	entity := mapToEntity(app)
	assert.JSONEq(t, `{"Final Lending Decision": "Approve"}`, string(entity.CreditVerdictJSON))
	assert.Nil(t, entity.VerdictError)

	back := mapFromEntity(entity)
	assert.Equal(t, app, back)
}

func TestEntityMappingUnparsedVerdict(t *testing.T) {
	app := sampleApplication("req-1", "org-1", time.Now().UTC())
	app.CreditVerdict = "The applicant should be approved."
	app.VerdictError = "verdict is not a JSON object"

	entity := mapToEntity(app)
	assert.Nil(t, entity.CreditVerdictJSON)
	require.NotNil(t, entity.VerdictError)

	back := mapFromEntity(entity)
	assert.Equal(t, app.CreditVerdict, back.CreditVerdict)
	assert.Equal(t, app.VerdictError, back.VerdictError)
}
