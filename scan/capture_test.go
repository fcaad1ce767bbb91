package scan

import (
	"context"
	"errors"
	"go.uber.org/zap"
	"sync"
	"testing"
	"time"
)

type fakeCamera struct {
	mu        sync.Mutex
	granted   bool
	openErr   error
	openGate  chan struct{} // when non-nil, Open blocks until closed
	openEnter chan struct{} // when non-nil, closed once Open is reached
	opened    bool
	closed    int
}

func (c *fakeCamera) RequestPermission(context.Context) (bool, error) {
	return c.granted, nil
}

func (c *fakeCamera) Open(context.Context) error {
	if c.openEnter != nil {
		close(c.openEnter)
	}
	if c.openGate != nil {
		<-c.openGate
	}
	if c.openErr != nil {
		return c.openErr
	}
	c.mu.Lock()
	c.opened = true
	c.mu.Unlock()
	return nil
}

func (c *fakeCamera) Close() error {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
	return nil
}

func (c *fakeCamera) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeDecoder struct {
	mu         sync.Mutex
	startErr   error
	startEnter chan struct{} // when non-nil, closed once Start is reached
	startGate  chan struct{} // when non-nil, Start blocks until closed
	emit       func(string)
	running    bool
	stopped    int
}

func (d *fakeDecoder) Start(emit func(payload string)) error {
	if d.startEnter != nil {
		close(d.startEnter)
	}
	if d.startGate != nil {
		<-d.startGate
	}
	if d.startErr != nil {
		return d.startErr
	}
	d.mu.Lock()
	d.emit = emit
	d.running = true
	d.mu.Unlock()
	return nil
}

func (d *fakeDecoder) Stop() error {
	d.mu.Lock()
	d.stopped++
	d.running = false
	d.mu.Unlock()
	return nil
}

func (d *fakeDecoder) isRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *fakeDecoder) decode(payload string) {
	d.mu.Lock()
	emit := d.emit
	d.mu.Unlock()
	if emit != nil {
		emit(payload)
	}
}

func TestCaptureSessionDeliversAtMostOnce(t *testing.T) {
	camera := &fakeCamera{granted: true}
	decoder := &fakeDecoder{}

	var got []string
	s := NewCaptureSession(camera, decoder, func(p string) { got = append(got, p) }, nil, zap.NewNop())
	s.Begin(context.Background())

	decoder.decode("https://x.test/t?order=ORD-1")
	decoder.decode("https://x.test/t?order=ORD-2")

	if len(got) != 1 {
		t.Fatalf("decode callback fired %d times, want 1", len(got))
	}
	if got[0] != "https://x.test/t?order=ORD-1" {
		t.Errorf("delivered payload = %q, want first decode", got[0])
	}
	if camera.closeCount() != 1 {
		t.Errorf("camera closed %d times after decode, want 1", camera.closeCount())
	}
}

func TestCaptureSessionPermissionDenied(t *testing.T) {
	camera := &fakeCamera{granted: false}
	decoder := &fakeDecoder{}

	var gotErr error
	decoded := false
	s := NewCaptureSession(camera, decoder, func(string) { decoded = true }, func(err error) { gotErr = err }, zap.NewNop())
	s.Begin(context.Background())

	if !errors.Is(gotErr, ErrPermissionDenied) {
		t.Fatalf("error callback got %v, want ErrPermissionDenied", gotErr)
	}
	if decoded {
		t.Error("decode callback fired after permission denial")
	}
}

func TestCaptureSessionStartFailure(t *testing.T) {
	camera := &fakeCamera{granted: true, openErr: errors.New("no camera device")}
	decoder := &fakeDecoder{}

	var gotErr error
	decoded := false
	s := NewCaptureSession(camera, decoder, func(string) { decoded = true }, func(err error) { gotErr = err }, zap.NewNop())
	s.Begin(context.Background())

	var startErr *StartError
	if !errors.As(gotErr, &startErr) {
		t.Fatalf("error callback got %T, want *StartError", gotErr)
	}
	if decoded {
		t.Error("decode callback fired after start failure")
	}
}

func TestCaptureSessionStopDuringStartReleasesCamera(t *testing.T) {
	gate := make(chan struct{})
	entered := make(chan struct{})
	camera := &fakeCamera{granted: true, openGate: gate, openEnter: entered}
	decoder := &fakeDecoder{}

	s := NewCaptureSession(camera, decoder, func(string) {}, nil, zap.NewNop())

	done := make(chan struct{})
	go func() {
		s.Begin(context.Background())
		close(done)
	}()

	<-entered // make sure the open is actually in flight
	s.Stop()
	close(gate) // let the in-flight open finish

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Begin did not return after stop")
	}

	if camera.closeCount() != 1 {
		t.Errorf("camera closed %d times, want 1 (released after late open)", camera.closeCount())
	}
}

func TestCaptureSessionStopDuringDecoderAttachDetaches(t *testing.T) {
	gate := make(chan struct{})
	entered := make(chan struct{})
	camera := &fakeCamera{granted: true}
	decoder := &fakeDecoder{startEnter: entered, startGate: gate}

	s := NewCaptureSession(camera, decoder, func(string) {}, nil, zap.NewNop())

	done := make(chan struct{})
	go func() {
		s.Begin(context.Background())
		close(done)
	}()

	<-entered // the decoder attach is in flight
	s.Stop()
	close(gate) // let the attach finish

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Begin did not return after stop")
	}

	if decoder.isRunning() {
		t.Error("decoder left running after stop raced the attach")
	}
	if camera.closeCount() != 1 {
		t.Errorf("camera closed %d times, want 1", camera.closeCount())
	}
}

func TestCaptureSessionDoubleStop(t *testing.T) {
	camera := &fakeCamera{granted: true}
	decoder := &fakeDecoder{}

	s := NewCaptureSession(camera, decoder, func(string) {}, nil, zap.NewNop())
	s.Begin(context.Background())

	s.Stop()
	s.Stop()

	if camera.closeCount() != 1 {
		t.Errorf("camera closed %d times after double stop, want 1", camera.closeCount())
	}
}

func TestCaptureSessionStopBeforeBegin(t *testing.T) {
	camera := &fakeCamera{granted: true}
	decoder := &fakeDecoder{}

	decoded := false
	s := NewCaptureSession(camera, decoder, func(string) { decoded = true }, nil, zap.NewNop())
	s.Stop()
	s.Begin(context.Background())

	decoder.decode("ORD-1")
	if decoded {
		t.Error("decode callback fired on a stopped session")
	}
	if camera.closeCount() != 0 {
		t.Errorf("camera closed %d times, want 0 (never opened)", camera.closeCount())
	}
}
