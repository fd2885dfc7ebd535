package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/dosimetria-portal/internal/database"
	"github.com/blockedby/dosimetria-portal/internal/logger"
	"github.com/blockedby/dosimetria-portal/internal/migrator"
	"github.com/blockedby/dosimetria-portal/internal/models"
	"github.com/blockedby/dosimetria-portal/migrations"
)

func strPtr(s string) *string { return &s }

func TestDispatchesRepository_CreateWithoutElevatedHandle(t *testing.T) {
	handles := database.NewHandles(&database.DB{}, nil, logger.Nop())
	repo := NewDispatchesRepository(handles, logger.Nop())

	err := repo.Create(context.Background(), &models.DispatchRequest{Cliente: strPtr("Acme")})
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrNoElevatedHandle)
}

func TestEncodeItems_NilIsEmptyArray(t *testing.T) {
	s, err := encodeItems(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)
}

func TestEncodeDecodeItems_PreservesOrderAndNulls(t *testing.T) {
	items := []models.DispatchItem{
		{Marca: strPtr("A"), Modelo: strPtr("X"), Serie: strPtr("1")},
		{Marca: strPtr("B"), Modelo: nil, Serie: strPtr("2")},
	}

	s, err := encodeItems(items)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"marca":"A","modelo":"X","serie":"1"},{"marca":"B","modelo":null,"serie":"2"}]`, s)

	back, err := decodeItems([]byte(s))
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "A", *back[0].Marca)
	assert.Nil(t, back[1].Modelo)
	assert.Equal(t, "2", *back[1].Serie)
}

func TestDecodeItems_Empty(t *testing.T) {
	items, err := decodeItems(nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = decodeItems([]byte("{not json"))
	assert.Error(t, err)
}

// Integration tests (require real database)
// Set INTEGRATION_TEST=1 DATABASE_URL=... DATABASE_SERVICE_URL=... to run these

func TestDispatchesRepository_Integration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "1" {
		t.Skip("Skipping integration test; set INTEGRATION_TEST=1 to run")
	}

	ctx := context.Background()
	serviceURL := os.Getenv("DATABASE_SERVICE_URL")
	normalURL := os.Getenv("DATABASE_URL")
	if serviceURL == "" || normalURL == "" {
		t.Skip("DATABASE_URL and DATABASE_SERVICE_URL must both be set")
	}

	m, err := migrator.NewWithFS(migrations.FS)
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx, serviceURL))

	handles, err := database.Open(ctx, normalURL, serviceURL, logger.Nop())
	require.NoError(t, err)
	defer handles.Close()

	repo := NewDispatchesRepository(handles, logger.Nop())

	d := &models.DispatchRequest{
		Cliente:         strPtr("Acme"),
		NIT:             strPtr("900123"),
		Email:           strPtr("a@acme.com"),
		FechaSolicitada: strPtr("2024-05-01"),
		Items: []models.DispatchItem{
			{Marca: strPtr("Fluke"), Modelo: strPtr("451P"), Serie: strPtr("SN1")},
		},
	}
	require.NoError(t, repo.Create(ctx, d))
	assert.NotEmpty(t, d.ID)
	assert.False(t, d.CreatedAt.IsZero())
	assert.Equal(t, models.DispatchStatusPending, d.Status)

	list, err := repo.List(ctx, DispatchFilter{Status: models.DispatchStatusPending, Limit: 10})
	require.NoError(t, err)

	var found *models.DispatchRequest
	for _, got := range list {
		if got.ID == d.ID {
			found = got
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 1, found.TotalItems())
	assert.Equal(t, "2024-05-01", *found.FechaSolicitada)

	n, err := repo.CountByStatus(ctx, models.DispatchStatusPending)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
}
