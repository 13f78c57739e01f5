package models

import "errors"

// ErrAmbiguousItemRef is returned when an item names both or neither of
// productId and eventId.
var ErrAmbiguousItemRef = errors.New("item must reference exactly one of productId or eventId")

// ItemRef identifies what a line item sells: either a product or an event,
// never both. The zero value is invalid; construct via ProductRef, EventRef
// or ItemRefFrom.
type ItemRef struct {
	productID int64
	eventID   int64
}

// ProductRef builds a reference to a product.
func ProductRef(id int64) ItemRef {
	return ItemRef{productID: id}
}

// EventRef builds a reference to an event.
func EventRef(id int64) ItemRef {
	return ItemRef{eventID: id}
}

// ItemRefFrom validates a nullable productId/eventId pair as it arrives on
// the wire and collapses it into the union.
func ItemRefFrom(productID, eventID *int64) (ItemRef, error) {
	if (productID != nil) == (eventID != nil) {
		return ItemRef{}, ErrAmbiguousItemRef
	}
	if productID != nil {
		return ProductRef(*productID), nil
	}
	return EventRef(*eventID), nil
}

// Product reports the product id, if this reference points at a product.
func (r ItemRef) Product() (int64, bool) {
	return r.productID, r.productID != 0
}

// Event reports the event id, if this reference points at an event.
func (r ItemRef) Event() (int64, bool) {
	return r.eventID, r.eventID != 0
}
