package gateway

import (
	"fmt"
	"strings"
)

// RequestError is any non-success gateway response. It keeps the HTTP
// status, the best server message available, and the configured base URL
// for support diagnosis.
type RequestError struct {
	StatusCode    int
	StatusText    string
	ServerMessage string
	BaseURL       string
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP %d", e.StatusCode)
	if e.StatusText != "" {
		fmt.Fprintf(&b, " %s", e.StatusText)
	}
	if e.ServerMessage != "" {
		fmt.Fprintf(&b, " - %s", e.ServerMessage)
	}
	if e.BaseURL != "" {
		fmt.Fprintf(&b, " [BASE=%s]", e.BaseURL)
	}
	return b.String()
}

// AuthError is a rejected login.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return "login failed: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// OtpReason classifies an OTP verification failure so callers can show
// distinct messages.
type OtpReason string

const (
	OtpNoActive    OtpReason = "NO_ACTIVE_OTP"
	OtpExpired     OtpReason = "EXPIRED"
	OtpIncorrect   OtpReason = "INCORRECT"
	OtpRateLimited OtpReason = "RATE_LIMITED"
	OtpUnknown     OtpReason = "UNKNOWN"
)

type OtpError struct {
	Reason OtpReason
	// RemainingAttempts is only meaningful for OtpIncorrect; -1 when the
	// server gave no hint.
	RemainingAttempts int
	Err               *RequestError
}

func (e *OtpError) Error() string {
	msg := "otp verification failed: " + string(e.Reason)
	if e.Reason == OtpIncorrect && e.RemainingAttempts >= 0 {
		msg = fmt.Sprintf("%s (%d attempts left)", msg, e.RemainingAttempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OtpError) Unwrap() error {
	return e.Err
}

// classifyOtpError maps a verify-OTP failure onto the reason taxonomy.
// The backend reports a machine code when it can; older deployments only
// send a message, so the text is matched as a fallback.
func classifyOtpError(code, message string, remaining *int, reqErr *RequestError) *OtpError {
	attempts := -1
	if remaining != nil {
		attempts = *remaining
	}
	otpErr := &OtpError{Reason: OtpUnknown, RemainingAttempts: attempts, Err: reqErr}

	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "NO_ACTIVE_OTP", "OTP_NOT_FOUND":
		otpErr.Reason = OtpNoActive
		return otpErr
	case "OTP_EXPIRED", "EXPIRED":
		otpErr.Reason = OtpExpired
		return otpErr
	case "OTP_INCORRECT", "INCORRECT":
		otpErr.Reason = OtpIncorrect
		return otpErr
	case "OTP_RATE_LIMITED", "TOO_MANY_ATTEMPTS":
		otpErr.Reason = OtpRateLimited
		return otpErr
	}

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "no active"), strings.Contains(lower, "not been sent"):
		otpErr.Reason = OtpNoActive
	case strings.Contains(lower, "expired"):
		otpErr.Reason = OtpExpired
	case strings.Contains(lower, "too many"), strings.Contains(lower, "rate limit"):
		otpErr.Reason = OtpRateLimited
	case strings.Contains(lower, "incorrect"), strings.Contains(lower, "invalid code"), strings.Contains(lower, "wrong code"):
		otpErr.Reason = OtpIncorrect
	}
	return otpErr
}
