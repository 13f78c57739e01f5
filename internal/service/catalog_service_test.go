package service

import (
	"context"
	"testing"
	"time"

	"ticketing-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminID int64 = 900

func TestUpdateEventCapacityClampsAvailability(t *testing.T) {
	store := newMemStore()
	event := store.addEvent(models.Event{
		TenantID: tenantA, Name: "Gig", Price: dec("30.00"),
		EventDate: time.Now().Add(48 * time.Hour), MaxCapacity: 100, AvailableTickets: 80,
	})
	audit := &recordingAudit{}
	svc := NewCatalogService(store, audit)
	ctx := context.Background()

	// Shrinking below the live counter clamps it.
	updated, err := svc.UpdateEventCapacity(ctx, tenantA, adminID, event.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.MaxCapacity)
	assert.Equal(t, 50, updated.AvailableTickets)

	// Growing raises the ceiling but never refills sold seats.
	updated, err = svc.UpdateEventCapacity(ctx, tenantA, adminID, event.ID, 200)
	require.NoError(t, err)
	assert.Equal(t, 200, updated.MaxCapacity)
	assert.Equal(t, 50, updated.AvailableTickets)

	assert.Contains(t, audit.actions(), models.AuditActionCapacityEdited)
}

func TestUpdateEventCapacityErrors(t *testing.T) {
	store := newMemStore()
	event := store.addEvent(models.Event{
		TenantID: tenantA, Name: "Gig", Price: dec("30.00"),
		EventDate: time.Now().Add(48 * time.Hour), MaxCapacity: 100, AvailableTickets: 80,
	})
	svc := NewCatalogService(store, nil)
	ctx := context.Background()

	_, err := svc.UpdateEventCapacity(ctx, tenantA, adminID, event.ID, -1)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	var nfErr *NotFoundError
	_, err = svc.UpdateEventCapacity(ctx, tenantB, adminID, event.ID, 10)
	require.ErrorAs(t, err, &nfErr)
}
