package scan

import (
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"sync"
)

// ErrPermissionDenied is reported when the host platform refuses camera
// access.
var ErrPermissionDenied = errors.New("camera permission denied")

// StartError is a capture session that failed before scanning began (no
// camera device, insecure context, decoder refused to attach).
type StartError struct {
	Reason string
	Err    error
}

func (e *StartError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scanner failed to start: %s: %v", e.Reason, e.Err)
	}
	return "scanner failed to start: " + e.Reason
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// Camera abstracts the host camera surface: runtime permission plus
// open/close of the device.
type Camera interface {
	RequestPermission(ctx context.Context) (bool, error)
	Open(ctx context.Context) error
	Close() error
}

// Decoder is the underlying QR decoder. Start attaches the emit callback
// and begins decoding continuously; Stop detaches it.
type Decoder interface {
	Start(emit func(payload string)) error
	Stop() error
}

type captureState int

const (
	stateIdle captureState = iota
	stateRequestingPermission
	stateStarting
	stateScanning
	stateDecoded
	stateErrored
	stateStopped
)

// CaptureSession manages one camera-based scan: begin, deliver at most one
// decoded payload, stop. A session is single-use; scan again by creating a
// new one. The caller is responsible for stopping any previous session
// before beginning another on the same screen.
type CaptureSession struct {
	camera   Camera
	decoder  Decoder
	onDecode func(payload string)
	onError  func(err error)
	logger   *zap.Logger

	mu        sync.Mutex
	state     captureState
	delivered bool
	stopped   bool
	cameraOn  bool
}

func NewCaptureSession(camera Camera, decoder Decoder, onDecode func(string), onError func(error), logger *zap.Logger) *CaptureSession {
	return &CaptureSession{
		camera:   camera,
		decoder:  decoder,
		onDecode: onDecode,
		onError:  onError,
		logger:   logger,
	}
}

// Begin requests camera permission, opens the device, and starts the
// decoder. Failures are delivered through the error callback, never as a
// return value, because they can surface long after the call.
func (s *CaptureSession) Begin(ctx context.Context) {
	s.mu.Lock()
	if s.stopped || s.state != stateIdle {
		s.mu.Unlock()
		return
	}
	s.state = stateRequestingPermission
	s.mu.Unlock()

	granted, err := s.camera.RequestPermission(ctx)
	if err != nil || !granted {
		s.fail(ErrPermissionDenied)
		return
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.state = stateStarting
	s.mu.Unlock()

	if err := s.camera.Open(ctx); err != nil {
		s.fail(&StartError{Reason: "camera unavailable", Err: err})
		return
	}

	// Stop may have raced the open; release the device rather than leak it.
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		_ = s.camera.Close()
		return
	}
	s.cameraOn = true
	s.mu.Unlock()

	if err := s.decoder.Start(s.handlePayload); err != nil {
		s.fail(&StartError{Reason: "decoder failed to attach", Err: err})
		s.Stop()
		return
	}

	// Stop may also have raced the decoder attach; its own decoder.Stop
	// ran before anything was attached, so detach here.
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		if err := s.decoder.Stop(); err != nil {
			s.logger.Warn("Decoder stop failed", zap.Error(err))
		}
		return
	}
	s.state = stateScanning
	s.mu.Unlock()
}

// handlePayload delivers the first decoded payload and swallows the rest.
func (s *CaptureSession) handlePayload(payload string) {
	s.mu.Lock()
	if s.delivered || s.stopped || s.state != stateScanning {
		s.mu.Unlock()
		return
	}
	s.delivered = true
	s.state = stateDecoded
	s.mu.Unlock()

	s.onDecode(payload)
	s.Stop()
}

// Stop tears down camera resources. Safe from any state, including while
// Begin is still in flight; double-stop is a no-op.
func (s *CaptureSession) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	releaseCamera := s.cameraOn
	s.cameraOn = false
	s.state = stateStopped
	s.mu.Unlock()

	if err := s.decoder.Stop(); err != nil {
		s.logger.Warn("Decoder stop failed", zap.Error(err))
	}
	if releaseCamera {
		if err := s.camera.Close(); err != nil {
			s.logger.Warn("Camera close failed", zap.Error(err))
		}
	}
}

// fail records the error state and reports it; the decode callback is
// never invoked afterwards.
func (s *CaptureSession) fail(err error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.state = stateErrored
	s.delivered = true // block any late decode delivery
	s.mu.Unlock()

	if s.onError != nil {
		s.onError(err)
	}
}
