package services

import (
	"fmt"

	"github.com/roadcall/roadcall-api/models"
)

// InvoicePayload is the data handed to the external invoicing
// collaborator: customer contact, the selected services, and the stored
// total. The collaborator charges externally and returns nothing the
// engine depends on.
type InvoicePayload struct {
	RequestID     string                   `json:"request_id"`
	CustomerName  string                   `json:"customer_name"`
	CustomerPhone string                   `json:"customer_phone"`
	CustomerEmail string                   `json:"customer_email"`
	LineItems     []models.SelectedService `json:"line_items"`
	TotalAmount   float64                  `json:"total_amount"`
}

// BuildInvoice assembles the invoice payload from a request. Requests
// without priced services cannot be invoiced.
func BuildInvoice(request *models.ServiceRequest) (*InvoicePayload, error) {
	if request.TotalAmount == nil || len(request.SelectedServices) == 0 {
		return nil, fmt.Errorf("request %s has no priced services: %w", request.ID, models.ErrBadRequest)
	}
	return &InvoicePayload{
		RequestID:     request.ID,
		CustomerName:  request.Name,
		CustomerPhone: request.Phone,
		CustomerEmail: request.Email,
		LineItems:     request.SelectedServices,
		TotalAmount:   *request.TotalAmount,
	}, nil
}
