package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainDevice "neighbornet/internal/domain/device"
	domainSession "neighbornet/internal/domain/session"
	"neighbornet/internal/locks"
	"neighbornet/internal/logger"
	appErrors "neighbornet/pkg/errors"
	"neighbornet/pkg/utils"
)

// Notifier pushes session lifecycle events to the two paired identities. A
// nil notifier disables fanout.
type Notifier interface {
	SendEvent(userID string, eventType string, data interface{})
}

// Service coordinates the session state machine. A device may hold at most
// one active session in either role; violating starts fail with a conflict.
type Service struct {
	sessionRepo domainSession.Repository
	deviceRepo  domainDevice.Repository
	notifier    Notifier

	// deviceLocks serializes Start per device, sessionLocks serializes End
	// per session id.
	deviceLocks  *locks.KeyedMutex
	sessionLocks *locks.KeyedMutex

	defaultHistoryLimit int
}

// NewService creates a new session service.
func NewService(sessionRepo domainSession.Repository, deviceRepo domainDevice.Repository, notifier Notifier) *Service {
	return &Service{
		sessionRepo:         sessionRepo,
		deviceRepo:          deviceRepo,
		notifier:            notifier,
		deviceLocks:         locks.NewKeyedMutex(),
		sessionLocks:        locks.NewKeyedMutex(),
		defaultHistoryLimit: 50,
	}
}

// Start creates an active session between a matched provider and requester.
func (s *Service) Start(ctx context.Context, req *StartSessionRequest) (*SessionResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}
	if req.ProviderDeviceID == req.RequesterDeviceID {
		return nil, appErrors.InvalidInput("Provider and requester must be different devices", nil)
	}

	for _, deviceID := range []uuid.UUID{req.ProviderDeviceID, req.RequesterDeviceID} {
		if _, err := s.deviceRepo.GetByID(ctx, deviceID); err != nil {
			if errors.Is(err, domainDevice.ErrDeviceNotFound) {
				return nil, appErrors.NotFound("Device not found", err)
			}
			return nil, appErrors.Internal(err)
		}
	}

	// Lock both devices in a fixed order so concurrent starts sharing a
	// device cannot deadlock.
	first, second := req.ProviderDeviceID.String(), req.RequesterDeviceID.String()
	if second < first {
		first, second = second, first
	}
	s.deviceLocks.Lock(first)
	defer s.deviceLocks.Unlock(first)
	s.deviceLocks.Lock(second)
	defer s.deviceLocks.Unlock(second)

	for _, deviceID := range []uuid.UUID{req.ProviderDeviceID, req.RequesterDeviceID} {
		busy, err := s.sessionRepo.HasActiveForDevice(ctx, deviceID)
		if err != nil {
			return nil, appErrors.Internal(err)
		}
		if busy {
			return nil, appErrors.Conflict("Device already holds an active session", domainSession.ErrDeviceBusy)
		}
	}

	sess := &domainSession.Session{
		ID:                uuid.New(),
		ProviderDeviceID:  req.ProviderDeviceID,
		RequesterDeviceID: req.RequesterDeviceID,
		ProviderUserID:    req.ProviderUserID,
		RequesterUserID:   req.RequesterUserID,
		StartTime:         time.Now(),
		State:             domainSession.StateActive,
	}

	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, appErrors.Internal(err)
	}

	logger.Info("Session started",
		zap.String("session_id", sess.ID.String()),
		zap.String("provider_device_id", sess.ProviderDeviceID.String()),
		zap.String("requester_device_id", sess.RequesterDeviceID.String()),
		zap.String("event", "session_started"),
	)

	resp := ToSessionResponse(sess)
	s.notifyPair(sess, "session-started", resp)

	return resp, nil
}

// End transitions an active session to ended and records the final byte
// count. Ending an already-ended session is rejected, not silently ignored.
func (s *Service) End(ctx context.Context, sessionID uuid.UUID, req *EndSessionRequest) (*SessionResponse, error) {
	totalBytes := int64(0)
	if req != nil {
		totalBytes = req.TotalBytesShared
	}
	if totalBytes < 0 {
		return nil, appErrors.InvalidInput("Total bytes shared must be non-negative", domainSession.ErrInvalidBytes)
	}

	s.sessionLocks.Lock(sessionID.String())
	defer s.sessionLocks.Unlock(sessionID.String())

	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domainSession.ErrSessionNotFound) {
			return nil, appErrors.NotFound("Session not found", err)
		}
		return nil, appErrors.Internal(err)
	}

	if !sess.IsActive() {
		return nil, appErrors.InvalidState("Session already ended", domainSession.ErrSessionAlreadyEnded)
	}

	now := time.Now()
	sess.EndTime = &now
	sess.TotalBytesShared = totalBytes
	sess.State = domainSession.StateEnded

	if err := s.sessionRepo.End(ctx, sess); err != nil {
		return nil, appErrors.Internal(err)
	}

	logger.Info("Session ended",
		zap.String("session_id", sessionID.String()),
		zap.Int64("total_bytes_shared", totalBytes),
		zap.String("event", "session_ended"),
	)

	resp := ToSessionResponse(sess)
	s.notifyPair(sess, "session-ended", resp)

	return resp, nil
}

// Get returns one session by id.
func (s *Service) Get(ctx context.Context, sessionID uuid.UUID) (*SessionResponse, error) {
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domainSession.ErrSessionNotFound) {
			return nil, appErrors.NotFound("Session not found", err)
		}
		return nil, appErrors.Internal(err)
	}
	return ToSessionResponse(sess), nil
}

// HistoryForUser returns sessions where the user held either role, newest
// start time first.
func (s *Service) HistoryForUser(ctx context.Context, userID uuid.UUID, limit int) ([]SessionResponse, error) {
	if limit <= 0 {
		limit = s.defaultHistoryLimit
	}
	sessions, err := s.sessionRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Internal(err)
	}
	return ToSessionResponses(sessions), nil
}

// HistoryForDevice returns sessions where the device held either role.
func (s *Service) HistoryForDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]SessionResponse, error) {
	if limit <= 0 {
		limit = s.defaultHistoryLimit
	}
	sessions, err := s.sessionRepo.ListByDevice(ctx, deviceID, limit)
	if err != nil {
		return nil, appErrors.Internal(err)
	}
	return ToSessionResponses(sessions), nil
}

// ActiveForUser returns the user's sessions that have not ended.
func (s *Service) ActiveForUser(ctx context.Context, userID uuid.UUID) ([]SessionResponse, error) {
	sessions, err := s.sessionRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Internal(err)
	}
	return ToSessionResponses(sessions), nil
}

// TotalBytesForUser sums bytes shared across all sessions where the user
// held either role.
func (s *Service) TotalBytesForUser(ctx context.Context, userID uuid.UUID) (*UsageResponse, error) {
	total, err := s.sessionRepo.SumBytesByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Internal(err)
	}
	return &UsageResponse{UserID: userID, TotalBytes: total}, nil
}

func (s *Service) notifyPair(sess *domainSession.Session, eventType string, data interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.SendEvent(sess.ProviderUserID.String(), eventType, data)
	if sess.RequesterUserID != sess.ProviderUserID {
		s.notifier.SendEvent(sess.RequesterUserID.String(), eventType, data)
	}
}
