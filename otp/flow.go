package otp

import (
	"context"
	"delivery-tracking-client/models"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"sync"
	"unicode"
)

// Gateway is the slice of the remote API the flow needs.
type Gateway interface {
	SendOtp(ctx context.Context, orderNo string) error
	VerifyOtp(ctx context.Context, orderNo, code string) error
}

// State of the verification flow for one claimed order.
type State int

const (
	StateEligible State = iota
	StatePrompt
	StateSubmitting
	StateDelivered
)

func (s State) String() string {
	switch s {
	case StateEligible:
		return "eligible"
	case StatePrompt:
		return "prompt"
	case StateSubmitting:
		return "submitting"
	case StateDelivered:
		return "delivered"
	}
	return "unknown"
}

var (
	// ErrNotEligible means the order's package is not in transit.
	ErrNotEligible = errors.New("order is not eligible for otp verification")
	// ErrBusy means a submission is already in flight.
	ErrBusy = errors.New("otp submission already in progress")
	// ErrNotPrompting means Submit was called outside the prompt state.
	ErrNotPrompting = errors.New("otp prompt is not open")
)

// BadCodeError is a locally rejected code; nothing was sent to the server.
type BadCodeError struct {
	WantLength int
}

func (e *BadCodeError) Error() string {
	return fmt.Sprintf("code must be exactly %d digits", e.WantLength)
}

// Flow couples one in-transit order to OTP entry, submission, and the
// delivered transition. Failures keep the flow at the prompt (the order
// stays claimed); the human resubmits, there is no automatic retry.
type Flow struct {
	orderNo    string
	codeLength int
	gw         Gateway
	logger     *zap.Logger

	// onDelivered fires exactly once, on the successful transition.
	onDelivered func(orderNo string)

	mu      sync.Mutex
	state   State
	code    string
	lastErr error
}

// NewFlow builds a flow for an order, rejecting ineligible ones before any
// network traffic.
func NewFlow(order *models.Order, codeLength int, gw Gateway, onDelivered func(orderNo string), logger *zap.Logger) (*Flow, error) {
	if !order.OtpVerifiable() {
		return nil, ErrNotEligible
	}
	if codeLength <= 0 {
		codeLength = 4
	}
	return &Flow{
		orderNo:     order.OrderNo,
		codeLength:  codeLength,
		gw:          gw,
		logger:      logger,
		onDelivered: onDelivered,
		state:       StateEligible,
	}, nil
}

// Send asks the server to dispatch a fresh OTP to the customer.
func (f *Flow) Send(ctx context.Context) error {
	return f.gw.SendOtp(ctx, f.orderNo)
}

// Prompt opens OTP entry, discarding any previously entered code.
func (f *Flow) Prompt() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateEligible {
		return
	}
	f.state = StatePrompt
	f.code = ""
	f.lastErr = nil
}

// Cancel closes the prompt with no side effects; the entered code is
// discarded and the order remains eligible.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePrompt {
		return
	}
	f.state = StateEligible
	f.code = ""
	f.lastErr = nil
}

// Submit verifies the code. Codes of the wrong shape are rejected locally.
// Gateway failures return the flow to the prompt with the failure recorded
// for display; success is the terminal delivered state.
func (f *Flow) Submit(ctx context.Context, code string) error {
	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return ErrBusy
	case StatePrompt:
		// proceed
	default:
		f.mu.Unlock()
		return ErrNotPrompting
	}

	if !validCode(code, f.codeLength) {
		err := &BadCodeError{WantLength: f.codeLength}
		f.lastErr = err
		f.mu.Unlock()
		return err
	}

	f.state = StateSubmitting
	f.code = code
	f.mu.Unlock()

	err := f.gw.VerifyOtp(ctx, f.orderNo, code)

	f.mu.Lock()
	if err != nil {
		f.state = StatePrompt
		f.lastErr = err
		f.mu.Unlock()
		f.logger.Warn("OTP verification failed",
			zap.String("order_no", f.orderNo),
			zap.Error(err),
		)
		return err
	}

	f.state = StateDelivered
	f.lastErr = nil
	onDelivered := f.onDelivered
	f.onDelivered = nil
	f.mu.Unlock()

	f.logger.Info("Order delivered", zap.String("order_no", f.orderNo))
	if onDelivered != nil {
		onDelivered(f.orderNo)
	}
	return nil
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Code returns the last submitted code so a reopened prompt can show it
// alongside the failure; "" before any submission and after Prompt/Cancel.
func (f *Flow) Code() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.code
}

// Err returns the failure to surface at the prompt, nil when none.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func validCode(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
