package models

import "strings"

// Status is the canonical order status code used across every endpoint.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusPreparing      Status = "PREPARING"
	StatusPrepared       Status = "PREPARED"
	StatusAwaitingPickup Status = "AWAITING_PICKUP"
	StatusInTransit      Status = "IN_TRANSIT"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusDeliveryFailed Status = "DELIVERY_FAILED"
	StatusOnHold         Status = "ON_HOLD"
	StatusReturned       Status = "RETURNED"
	StatusCancelled      Status = "CANCELLED"
	StatusUnknown        Status = ""
)

var knownStatuses = map[Status]bool{
	StatusPending:        true,
	StatusPreparing:      true,
	StatusPrepared:       true,
	StatusAwaitingPickup: true,
	StatusInTransit:      true,
	StatusOutForDelivery: true,
	StatusDelivered:      true,
	StatusDeliveryFailed: true,
	StatusOnHold:         true,
	StatusReturned:       true,
	StatusCancelled:      true,
}

// ParseStatus normalizes a raw status string from any endpoint. Unknown
// values are kept verbatim (uppercased) so they still render somewhere.
func ParseStatus(raw string) Status {
	return Status(strings.ToUpper(strings.TrimSpace(raw)))
}

func (s Status) Known() bool {
	return knownStatuses[s]
}

// Final reports whether no further transitions are expected for an order
// in this status.
func (s Status) Final() bool {
	switch s {
	case StatusDelivered, StatusReturned, StatusCancelled:
		return true
	}
	return false
}
