package service

import (
	"fmt"

	"ticketing-service/internal/models"
	"ticketing-service/internal/util"

	"github.com/google/uuid"
)

// mintTickets builds qty Active tickets for one event line of a paid order.
// Each ticket gets an independently unique redemption code and a QR encoding
// of that code. The records are persisted by the confirming transaction, not
// here.
func mintTickets(orderID, eventID, userID int64, qty int) ([]models.Ticket, error) {
	tickets := make([]models.Ticket, 0, qty)
	for i := 0; i < qty; i++ {
		code := uuid.New().String()

		qr, err := util.QRCodeDataURI(code)
		if err != nil {
			return nil, fmt.Errorf("failed to mint ticket for event %d: %w", eventID, err)
		}

		tickets = append(tickets, models.Ticket{
			OrderID:   orderID,
			EventID:   eventID,
			UserID:    userID,
			Code:      code,
			QRCodeURL: qr,
			Status:    models.TicketStatusActive,
		})
	}
	return tickets, nil
}
