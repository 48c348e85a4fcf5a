package location

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-now/internal/weather"
)

// eventBuffer is the number of undelivered events kept before the oldest is dropped.
const eventBuffer = 8

// Backend is the platform location service.
type Backend interface {
	// Authorize shows the permission prompt and returns the user's answer.
	Authorize(ctx context.Context) (weather.AuthorizationStatus, error)
	// Locate returns one or more fixes, oldest first.
	Locate(ctx context.Context) ([]weather.Coordinate, error)
}

// Options tune a Service.
type Options struct {
	// InitialStatus is the authorization state at start-up.
	InitialStatus weather.AuthorizationStatus
	// ForwardFailures emits failures on the event stream instead of only logging them.
	ForwardFailures bool
	// Timeout bounds each backend call.
	Timeout time.Duration
}

// Service wraps a Backend and exposes its results as an event stream.
type Service struct {
	backend Backend
	opts    Options
	logger  *zap.Logger

	mu     sync.RWMutex
	status weather.AuthorizationStatus

	// sendMu serializes emit so drop-oldest stays consistent.
	sendMu sync.Mutex
	events chan weather.LocationEvent
}

// NewService creates a Service over backend.
func NewService(backend Backend, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.InitialStatus == "" {
		opts.InitialStatus = weather.AuthorizationNotDetermined
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Service{
		backend: backend,
		opts:    opts,
		logger:  logger,
		status:  opts.InitialStatus,
		events:  make(chan weather.LocationEvent, eventBuffer),
	}
}

// AuthorizationStatus returns the current permission state.
func (s *Service) AuthorizationStatus() weather.AuthorizationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Events returns the location stream. It is never closed.
func (s *Service) Events() <-chan weather.LocationEvent {
	return s.events
}

// RequestPermissionPrompt asks the backend for permission. The answer is
// applied through SetAuthorization.
func (s *Service) RequestPermissionPrompt() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
		defer cancel()

		status, err := s.backend.Authorize(ctx)
		if err != nil {
			s.logger.Warn("location permission prompt failed", zap.Error(err))
			return
		}
		s.SetAuthorization(status)
	}()
}

// SetAuthorization is the authorization-changed callback. Becoming
// authorized triggers a single location request.
func (s *Service) SetAuthorization(status weather.AuthorizationStatus) {
	s.mu.Lock()
	prev := s.status
	s.status = status
	s.mu.Unlock()

	s.logger.Info("location authorization changed",
		zap.String("from", string(prev)),
		zap.String("to", string(status)))

	if status == weather.AuthorizationAuthorized {
		s.RequestOneLocation()
	}
}

// RequestOneLocation asks the backend for a fix and emits exactly one event:
// the most recent fix of the batch, or a failure.
func (s *Service) RequestOneLocation() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
		defer cancel()

		fixes, err := s.backend.Locate(ctx)
		if err == nil && len(fixes) == 0 {
			err = fmt.Errorf("%w: backend returned no fixes", weather.ErrLocation)
		}
		if err != nil {
			s.fail(err)
			return
		}
		s.emit(weather.LocationEvent{Coordinate: fixes[len(fixes)-1]})
	}()
}

// ReportCoordinate pushes an unsolicited fix from the platform.
func (s *Service) ReportCoordinate(coord weather.Coordinate) {
	s.emit(weather.LocationEvent{Coordinate: coord})
}

func (s *Service) fail(err error) {
	s.logger.Warn("location request failed", zap.Error(err))
	if s.opts.ForwardFailures {
		s.emit(weather.LocationEvent{Err: err})
	}
}

// emit never blocks: when the buffer is full the oldest pending event is dropped.
func (s *Service) emit(ev weather.LocationEvent) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	for {
		select {
		case s.events <- ev:
			return
		default:
		}
		select {
		case <-s.events:
			s.logger.Debug("dropping stale location event")
		default:
		}
	}
}

var _ weather.LocationProvider = (*Service)(nil)
