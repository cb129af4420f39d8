package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcall/roadcall-api/models"
)

func TestBuildInvoice(t *testing.T) {
	total := 96.48
	request := &models.ServiceRequest{
		ID:    "req-1",
		Name:  "Dana Driver",
		Phone: "555-0101",
		Email: "dana@example.com",
		SelectedServices: []models.SelectedService{
			{ServiceID: "tire-change", ServiceName: "Tire Change", Price: 89.13},
		},
		TotalAmount: &total,
	}

	payload, err := BuildInvoice(request)
	require.NoError(t, err)
	assert.Equal(t, "req-1", payload.RequestID)
	assert.Equal(t, "Dana Driver", payload.CustomerName)
	assert.Equal(t, total, payload.TotalAmount)
	assert.Len(t, payload.LineItems, 1)
}

func TestBuildInvoiceRequiresPricedServices(t *testing.T) {
	_, err := BuildInvoice(&models.ServiceRequest{ID: "req-1"})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}
