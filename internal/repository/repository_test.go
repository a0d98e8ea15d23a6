package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linskybing/fundraise-go/internal/domain/audit"
	"github.com/linskybing/fundraise-go/internal/domain/fundraise"
	"github.com/linskybing/fundraise-go/internal/domain/user"
	"github.com/linskybing/fundraise-go/internal/repository"
	"github.com/linskybing/fundraise-go/internal/testutils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepo_GetProfile(t *testing.T) {
	repos := repository.NewRepositories(testutils.NewSQLiteDB(t))
	ctx := context.Background()

	_, err := repos.User.GetProfile(ctx, "missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.NoError(t, repos.User.SaveProfile(ctx, &user.Profile{UID: "u1", KYCStatus: user.KYCStatusApproved}))

	p, err := repos.User.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, p.KYCApproved())
}

func TestFundRequestRepo_CreateAndList(t *testing.T) {
	repos := repository.NewRepositories(testutils.NewSQLiteDB(t))
	ctx := context.Background()

	older := &fundraise.FundingRequest{
		UserID:          "u1",
		Title:           "Rent",
		Description:     "Two months",
		AmountRequested: decimal.NewFromInt(800),
		AmountRaised:    decimal.Zero,
		Status:          fundraise.RequestStatusPending,
		CreatedAt:       time.Now().Add(-time.Hour),
		BlogImg:         "https://host/rent.jpg",
	}
	newer := &fundraise.FundingRequest{
		UserID:          "u1",
		Title:           "Medical Bills",
		Description:     "Need help",
		AmountRequested: decimal.RequireFromString("5000.50"),
		AmountRaised:    decimal.Zero,
		Status:          fundraise.RequestStatusPending,
		CreatedAt:       time.Now(),
		BlogImg:         "https://host/img.jpg",
	}
	other := &fundraise.FundingRequest{
		UserID:          "u2",
		Title:           "Other",
		Description:     "x",
		AmountRequested: decimal.NewFromInt(1),
		CreatedAt:       time.Now(),
		BlogImg:         "https://host/o.jpg",
	}

	for _, r := range []*fundraise.FundingRequest{older, newer, other} {
		require.NoError(t, repos.FundRequest.Create(ctx, r))
		assert.NotEmpty(t, r.ID)
	}

	list, err := repos.FundRequest.ListByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	got, err := repos.FundRequest.FindByID(ctx, newer.ID)
	require.NoError(t, err)
	assert.True(t, got.AmountRequested.Equal(decimal.RequireFromString("5000.5")))
	assert.True(t, got.AmountRaised.IsZero())
	assert.Equal(t, "https://host/img.jpg", got.BlogImg)

	_, err = repos.FundRequest.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, fundraise.ErrNotFound)
}

func TestAuditRepo_QueryAndRetention(t *testing.T) {
	repos := repository.NewRepositories(testutils.NewSQLiteDB(t))
	ctx := context.Background()

	stale := &audit.AuditLog{UserID: "u1", Action: audit.ActionSubmitFundRequest, Outcome: audit.OutcomeUploadFailed, CreatedAt: time.Now().AddDate(0, 0, -40)}
	fresh := &audit.AuditLog{UserID: "u1", Action: audit.ActionSubmitFundRequest, Outcome: audit.OutcomeSuccess, CreatedAt: time.Now()}
	require.NoError(t, repos.Audit.CreateAuditLog(ctx, stale))
	require.NoError(t, repos.Audit.CreateAuditLog(ctx, fresh))

	outcome := audit.OutcomeSuccess
	logs, err := repos.Audit.GetAuditLogs(ctx, repository.AuditQueryParams{Outcome: &outcome})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, fresh.ID, logs[0].ID)

	deleted, err := repos.Audit.DeleteOldAuditLogs(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	logs, err = repos.Audit.GetAuditLogs(ctx, repository.AuditQueryParams{})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestRepos_ExecTxRollsBack(t *testing.T) {
	repos := repository.NewRepositories(testutils.NewSQLiteDB(t))
	ctx := context.Background()

	boom := errors.New("boom")
	err := repos.ExecTx(func(tx *repository.Repos) error {
		if err := tx.User.SaveProfile(ctx, &user.Profile{UID: "u9"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repos.User.GetProfile(ctx, "u9")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
