package session

import (
	"time"

	"github.com/google/uuid"

	domainSession "neighbornet/internal/domain/session"
)

type StartSessionRequest struct {
	ProviderDeviceID  uuid.UUID `json:"provider_device_id" validate:"required"`
	RequesterDeviceID uuid.UUID `json:"requester_device_id" validate:"required"`
	ProviderUserID    uuid.UUID `json:"provider_user_id" validate:"required"`
	RequesterUserID   uuid.UUID `json:"requester_user_id" validate:"required"`
}

type EndSessionRequest struct {
	TotalBytesShared int64 `json:"total_bytes_shared"`
}

type SessionResponse struct {
	ID                uuid.UUID           `json:"id"`
	ProviderDeviceID  uuid.UUID           `json:"provider_device_id"`
	RequesterDeviceID uuid.UUID           `json:"requester_device_id"`
	ProviderUserID    uuid.UUID           `json:"provider_user_id"`
	RequesterUserID   uuid.UUID           `json:"requester_user_id"`
	StartTime         time.Time           `json:"start_time"`
	EndTime           *time.Time          `json:"end_time,omitempty"`
	TotalBytesShared  int64               `json:"total_bytes_shared"`
	State             domainSession.State `json:"state"`
}

type UsageResponse struct {
	UserID     uuid.UUID `json:"user_id"`
	TotalBytes int64     `json:"total_bytes"`
}

func ToSessionResponse(s *domainSession.Session) *SessionResponse {
	if s == nil {
		return nil
	}
	return &SessionResponse{
		ID:                s.ID,
		ProviderDeviceID:  s.ProviderDeviceID,
		RequesterDeviceID: s.RequesterDeviceID,
		ProviderUserID:    s.ProviderUserID,
		RequesterUserID:   s.RequesterUserID,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		TotalBytesShared:  s.TotalBytesShared,
		State:             s.State,
	}
}

func ToSessionResponses(sessions []*domainSession.Session) []SessionResponse {
	responses := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		responses[i] = *ToSessionResponse(s)
	}
	return responses
}
