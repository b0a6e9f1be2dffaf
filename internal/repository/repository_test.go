package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/kylewspence/FinSight/internal/models"
	"github.com/kylewspence/FinSight/internal/repository"
	"github.com/kylewspence/FinSight/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryDuplicateUserName(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{UserName: "alice", HashedPassword: "x"}))

	err := repo.Create(ctx, &models.User{UserName: "alice", HashedPassword: "y"})
	assert.ErrorIs(t, err, repository.ErrUserExists)

	_, err = repo.GetByUserName(ctx, "bob")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestHoldingUpsertOverwritesShares(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewHoldingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Holding{
		UserID: 1, AccountName: "IRA", Symbol: "VTI", Shares: 10, SharePrice: 200, Description: "Total Market",
	}))
	require.NoError(t, repo.Upsert(ctx, &models.Holding{
		UserID: 1, AccountName: "IRA", Symbol: "VTI", Shares: 12.5,
	}))
	require.NoError(t, repo.Upsert(ctx, &models.Holding{
		UserID: 1, AccountName: "Brokerage", Symbol: "VTI", Shares: 3,
	}))

	holdings, err := repo.GetHoldingsByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, holdings, 2, "same symbol in two accounts is two rows")

	ira := holdings[1]
	assert.Equal(t, "IRA", ira.AccountName)
	assert.Equal(t, 12.5, ira.Shares)
	assert.Equal(t, 200.0, ira.SharePrice, "missing price keeps stored value")
	assert.Equal(t, "Total Market", ira.Description)
}

func TestTransactionListOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTransactionRepository(db)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	for _, tx := range []models.Transaction{
		{UserID: 1, Date: day(1), Amount: -10, Category: "Food", Description: "a"},
		{UserID: 1, Date: day(5), Amount: -20, Category: "Food", Description: "b"},
		{UserID: 2, Date: day(9), Amount: -30, Category: "Food", Description: "other user"},
		{UserID: 1, Date: day(3), Amount: 40, Category: "Income", Description: "c"},
	} {
		tx := tx
		require.NoError(t, repo.Create(ctx, &tx))
	}

	txs, err := repo.GetByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{txs[0].Description, txs[1].Description, txs[2].Description})
}

func TestPropertyDeleteTwice(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewPropertyRepository(db)
	ctx := context.Background()

	p := &models.Property{UserID: 1, FormattedAddress: "1 Main St", PropertyType: "Condo"}
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), repository.ErrPropertyNotFound)
}

func TestInsightLatest(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewInsightRepository(db)
	ctx := context.Background()

	_, err := repo.GetLatestByUserID(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrInsightNotFound)

	for _, o := range []string{"first", "second"} {
		require.NoError(t, repo.Create(ctx, &models.Insight{
			UserID: 1, Overview: o, TimelineToPurchase: "t", MarketTrends: "m", PeerStrategies: "p",
		}))
	}

	latest, err := repo.GetLatestByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "second", latest.Overview)
}
