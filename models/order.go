package models

import (
	"strings"
	"time"
)

type OrderItem struct {
	Name     string
	Sku      string
	Quantity int
}

type OrderStep struct {
	Code      string
	Done      bool
	Current   bool
	Timestamp *time.Time
}

type SpecialEvent struct {
	Code      string
	Occurred  bool
	Timestamp *time.Time
}

// PackageInfo is the driver-facing package projection ("Package 1 / 2").
type PackageInfo struct {
	Number int
	Of     int
	Status Status
}

// Order is the canonical order shape every gateway endpoint is normalized
// into. Downstream code never branches on which raw field was populated.
type Order struct {
	OrderNo        string
	TrackingNumber string
	CurrentStatus  Status
	CustomerName   string
	City           string
	Country        string
	Address        string
	OrderDate      *time.Time
	Items          []OrderItem
	Steps          []OrderStep
	Special        []SpecialEvent
	NextAllowed    []Status
	LastUpdated    *time.Time

	// Driver workflow projection
	PkgKey          string
	DriverRefSearch string
	AssignedDriver  string
	Package         *PackageInfo
}

// PackageStatus resolves the status that governs driver actions: the
// package status when present, the order status otherwise.
func (o *Order) PackageStatus() Status {
	if o.Package != nil && o.Package.Status != StatusUnknown {
		return o.Package.Status
	}
	return o.CurrentStatus
}

// Claimable reports whether the order is still sitting unassigned in the
// pickup pool. Checked client-side before any claim call goes out.
func (o *Order) Claimable() bool {
	return o.CurrentStatus == StatusAwaitingPickup && o.AssignedDriver == ""
}

// OtpVerifiable reports whether the order is eligible for OTP delivery
// confirmation.
func (o *Order) OtpVerifiable() bool {
	return o.PackageStatus() == StatusInTransit
}

// MatchesQuery matches the driver search tokens: pkgKey, driverRefSearch,
// or the order number, case-insensitively.
func (o *Order) MatchesQuery(q string) bool {
	query := strings.ToUpper(strings.TrimSpace(q))
	if query == "" {
		return true
	}
	for _, candidate := range []string{o.PkgKey, o.DriverRefSearch, o.OrderNo} {
		if candidate != "" && strings.Contains(strings.ToUpper(candidate), query) {
			return true
		}
	}
	return false
}

// Page is one server page of orders plus the server-reported total.
type Page struct {
	Orders []Order
	Count  int
	Page   int
	Limit  int
}
