package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderbank/lendermatch/internal/common"
	"github.com/calderbank/lendermatch/internal/model"
)

func testApplication(id string) *model.Application {
	return &model.Application{
		ID:                   id,
		AmountRequested:      50000,
		ProductCategory:      "working_capital",
		MonthlyRevenue:       20000,
		TimeInBusinessMonths: 18,
		Industry:             "retail",
		CreditScore:          680,
	}
}

func TestSaveAndGetApplication(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	app := testApplication("app-1")
	require.NoError(t, store.SaveApplication(ctx, app))

	got, err := store.GetApplication(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)
	assert.Equal(t, app.AmountRequested, got.AmountRequested)
	assert.Equal(t, app.ProductCategory, got.ProductCategory)
	assert.Equal(t, app.MonthlyRevenue, got.MonthlyRevenue)
	assert.Equal(t, app.TimeInBusinessMonths, got.TimeInBusinessMonths)
	assert.Equal(t, app.Industry, got.Industry)
	assert.Equal(t, app.CreditScore, got.CreditScore)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSaveApplicationUpsert(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	app := testApplication("app-1")
	require.NoError(t, store.SaveApplication(ctx, app))

	app.CreditScore = 720
	app.AmountRequested = 75000
	require.NoError(t, store.SaveApplication(ctx, app))

	got, err := store.GetApplication(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, 720, got.CreditScore)
	assert.Equal(t, 75000.0, got.AmountRequested)

	apps, err := store.ListApplications(ctx)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestGetApplicationNotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.GetApplication(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListApplications(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	require.NoError(t, store.SaveApplication(ctx, testApplication("app-1")))
	require.NoError(t, store.SaveApplication(ctx, testApplication("app-2")))
	require.NoError(t, store.SaveApplication(ctx, testApplication("app-3")))

	apps, err := store.ListApplications(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 3)

	ids := make(map[string]bool, len(apps))
	for _, app := range apps {
		ids[app.ID] = true
	}
	assert.True(t, ids["app-1"] && ids["app-2"] && ids["app-3"])
}
