package gateway

import (
	"delivery-tracking-client/models"
	"time"
)

// Wire shapes as the backend sends them. Different endpoints populate
// different subsets of these fields; normalize maps them all into the one
// canonical models.Order.

type orderPayload struct {
	OrderNo        string  `json:"orderNo"`
	TrackingNumber string  `json:"trackingNumber"`
	CurrentStatus  string  `json:"currentStatus"`
	OrderStatus    string  `json:"orderStatus"`
	CustomerName   string  `json:"customerName"`
	City           string  `json:"city"`
	Country        string  `json:"country"`
	Address        string  `json:"address"`
	OrderDate      string  `json:"orderDate"`
	LastUpdated    string  `json:"lastUpdated"`
	AssignedDriver string  `json:"assignedDriver"`
	NextAllowed    []string `json:"nextAllowed"`

	Items   []itemPayload    `json:"items"`
	Steps   []stepPayload    `json:"steps"`
	Special []specialPayload `json:"special"`

	DriverView *driverViewPayload `json:"driverView"`
	Pkg        *pkgPayload        `json:"__pkg"`
}

type itemPayload struct {
	ProductName string `json:"productName"`
	Name        string `json:"name"`
	Sku         string `json:"sku"`
	Quantity    *int   `json:"quantity"`
	Qty         *int   `json:"qty"`
}

type stepPayload struct {
	Code      string `json:"code"`
	Done      bool   `json:"done"`
	Current   bool   `json:"current"`
	Timestamp string `json:"timestamp"`
}

type specialPayload struct {
	Code      string `json:"code"`
	Occurred  bool   `json:"occurred"`
	Timestamp string `json:"timestamp"`
}

type driverViewPayload struct {
	PkgKey          string          `json:"pkgKey"`
	DriverRefSearch string          `json:"driverRefSearch"`
	Package         *packagePayload `json:"package"`
	Items           []itemPayload   `json:"items"`
}

type packagePayload struct {
	Number int    `json:"number"`
	Of     int    `json:"of"`
	Status string `json:"status"`
}

type pkgPayload struct {
	PkgKey          string `json:"pkgKey"`
	DriverRefSearch string `json:"driverRefSearch"`
	PkgStatus       string `json:"pkgStatus"`
}

type listPayload struct {
	Status *int           `json:"status"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
	Count  int            `json:"count"`
	Orders []orderPayload `json:"orders"`
}

type loginPayload struct {
	Status      *int   `json:"status"`
	Token       string `json:"token"`
	Role        string `json:"role"`
	WarehouseID string `json:"warehouseId"`
}

type ackPayload struct {
	Status      *int   `json:"status"`
	Message     string `json:"message"`
	LastUpdated string `json:"lastUpdated"`
}

type verifyErrorPayload struct {
	Code              string `json:"code"`
	Message           string `json:"message"`
	ErrMsg            string `json:"error"`
	RemainingAttempts *int   `json:"remainingAttempts"`
}

// normalize resolves the duck-typed field pairs at the boundary so nothing
// downstream ever branches on which one happened to be populated.
func (p *orderPayload) normalize() models.Order {
	order := models.Order{
		OrderNo:        p.OrderNo,
		TrackingNumber: p.TrackingNumber,
		CurrentStatus:  firstStatus(p.CurrentStatus, p.OrderStatus),
		CustomerName:   p.CustomerName,
		City:           p.City,
		Country:        p.Country,
		Address:        p.Address,
		OrderDate:      parseTimestamp(p.OrderDate),
		LastUpdated:    parseTimestamp(p.LastUpdated),
		AssignedDriver: p.AssignedDriver,
	}

	for _, s := range p.NextAllowed {
		order.NextAllowed = append(order.NextAllowed, models.ParseStatus(s))
	}

	items := p.Items
	if len(items) == 0 && p.DriverView != nil {
		items = p.DriverView.Items
	}
	for _, it := range items {
		order.Items = append(order.Items, it.normalize())
	}

	for _, st := range p.Steps {
		order.Steps = append(order.Steps, models.OrderStep{
			Code:      st.Code,
			Done:      st.Done,
			Current:   st.Current,
			Timestamp: parseTimestamp(st.Timestamp),
		})
	}

	for _, sp := range p.Special {
		order.Special = append(order.Special, models.SpecialEvent{
			Code:      sp.Code,
			Occurred:  sp.Occurred,
			Timestamp: parseTimestamp(sp.Timestamp),
		})
	}

	if p.Pkg != nil {
		order.PkgKey = p.Pkg.PkgKey
		order.DriverRefSearch = p.Pkg.DriverRefSearch
	}
	if p.DriverView != nil {
		if order.PkgKey == "" {
			order.PkgKey = p.DriverView.PkgKey
		}
		if order.DriverRefSearch == "" {
			order.DriverRefSearch = p.DriverView.DriverRefSearch
		}
		if p.DriverView.Package != nil {
			order.Package = &models.PackageInfo{
				Number: p.DriverView.Package.Number,
				Of:     p.DriverView.Package.Of,
				Status: models.ParseStatus(p.DriverView.Package.Status),
			}
		}
	}
	if p.Pkg != nil && p.Pkg.PkgStatus != "" {
		if order.Package == nil {
			order.Package = &models.PackageInfo{}
		}
		order.Package.Status = models.ParseStatus(p.Pkg.PkgStatus)
	}

	return order
}

func (p *listPayload) normalize(page, limit int) models.Page {
	orders := make([]models.Order, 0, len(p.Orders))
	for i := range p.Orders {
		orders = append(orders, p.Orders[i].normalize())
	}

	result := models.Page{Orders: orders, Count: p.Count, Page: p.Page, Limit: p.Limit}
	if result.Page == 0 {
		result.Page = page
	}
	if result.Limit == 0 {
		result.Limit = limit
	}
	if result.Count == 0 {
		result.Count = len(orders)
	}
	return result
}

func (it *itemPayload) normalize() models.OrderItem {
	name := it.ProductName
	if name == "" {
		name = it.Name
	}
	qty := 1
	if it.Quantity != nil {
		qty = *it.Quantity
	} else if it.Qty != nil {
		qty = *it.Qty
	}
	return models.OrderItem{Name: name, Sku: it.Sku, Quantity: qty}
}

func firstStatus(candidates ...string) models.Status {
	for _, c := range candidates {
		if s := models.ParseStatus(c); s != models.StatusUnknown {
			return s
		}
	}
	return models.StatusUnknown
}

func parseTimestamp(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
