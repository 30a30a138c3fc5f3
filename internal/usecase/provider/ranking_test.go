package provider

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainDevice "neighbornet/internal/domain/device"
	domainProvider "neighbornet/internal/domain/provider"
	"neighbornet/internal/logger"
	appErrors "neighbornet/pkg/errors"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

var defaultWeights = Weights{Speed: 0.4, Battery: 0.3, Trust: 0.2, Proximity: 0.1}

type fakeAvailabilityRepo struct {
	mu         sync.Mutex
	records    map[uuid.UUID]*domainProvider.Availability
	candidates []*domainProvider.Candidate
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{records: make(map[uuid.UUID]*domainProvider.Availability)}
}

func (r *fakeAvailabilityRepo) Upsert(_ context.Context, a *domainProvider.Availability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *a
	r.records[a.DeviceID] = &stored
	return nil
}

func (r *fakeAvailabilityRepo) GetByDevice(_ context.Context, deviceID uuid.UUID) (*domainProvider.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, exists := r.records[deviceID]
	if !exists {
		return nil, domainProvider.ErrAvailabilityNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAvailabilityRepo) Disable(_ context.Context, deviceID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, exists := r.records[deviceID]
	if !exists {
		return domainProvider.ErrAvailabilityNotFound
	}
	a.IsAvailable = false
	a.HotspotEnabled = false
	return nil
}

func (r *fakeAvailabilityRepo) ListAvailable(_ context.Context) ([]*domainProvider.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domainProvider.Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

type stubDeviceRepo struct {
	devices map[uuid.UUID]*domainDevice.Device
}

func newStubDeviceRepo(devices ...*domainDevice.Device) *stubDeviceRepo {
	repo := &stubDeviceRepo{devices: make(map[uuid.UUID]*domainDevice.Device)}
	for _, d := range devices {
		repo.devices[d.ID] = d
	}
	return repo
}

func (r *stubDeviceRepo) Create(_ context.Context, d *domainDevice.Device) error {
	r.devices[d.ID] = d
	return nil
}

func (r *stubDeviceRepo) GetByID(_ context.Context, deviceID uuid.UUID) (*domainDevice.Device, error) {
	d, exists := r.devices[deviceID]
	if !exists {
		return nil, domainDevice.ErrDeviceNotFound
	}
	return d, nil
}

func (r *stubDeviceRepo) GetByUser(_ context.Context, _ uuid.UUID) ([]*domainDevice.Device, error) {
	return nil, nil
}

func (r *stubDeviceRepo) UpdatePosition(_ context.Context, _ uuid.UUID, _, _ float64) error {
	return nil
}

func (r *stubDeviceRepo) UpdateBattery(_ context.Context, _ uuid.UUID, _ int) error {
	return nil
}

func (r *stubDeviceRepo) UpdateBandwidthEstimate(_ context.Context, _ uuid.UUID, _ float64) error {
	return nil
}

func (r *stubDeviceRepo) UpdateLastSeen(_ context.Context, _ uuid.UUID) error {
	return nil
}

type stubTrustReader struct{}

func (stubTrustReader) Get(_ context.Context, _ uuid.UUID) (int, error) {
	return 50, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) BroadcastEvent(eventType string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

func newRankingService(repo *fakeAvailabilityRepo) *Service {
	return NewService(repo, newStubDeviceRepo(), stubTrustReader{}, nil, defaultWeights, 5)
}

func pos(lat, lon float64) (*float64, *float64) {
	return &lat, &lon
}

func TestHaversine_SamePointIsZero(t *testing.T) {
	assert.InDelta(t, 0, Haversine(40.7128, -74.0060, 40.7128, -74.0060), 1e-9)
}

func TestHaversine_IsSymmetric(t *testing.T) {
	forward := Haversine(40.7128, -74.0060, 34.0522, -118.2437)
	backward := Haversine(34.0522, -118.2437, 40.7128, -74.0060)
	assert.InDelta(t, forward, backward, 1e-9)
}

func TestHaversine_NewYorkToLosAngeles(t *testing.T) {
	distance := Haversine(40.7128, -74.0060, 34.0522, -118.2437)
	assert.InDelta(t, 3936, distance, 40)
}

func TestRankProviders_CompositeScoreWeighting(t *testing.T) {
	repo := newFakeAvailabilityRepo()
	lat, lon := pos(40.7128, -74.0060)
	repo.candidates = []*domainProvider.Candidate{
		{
			DeviceID:           uuid.New(),
			UserID:             uuid.New(),
			EstimatedSpeedMbps: 50,
			BatteryLevel:       80,
			TrustScore:         90,
			Latitude:           lat,
			Longitude:          lon,
		},
	}
	svc := newRankingService(repo)

	rankings, err := svc.RankProviders(context.Background(), 40.7128, -74.0060, 5)
	require.NoError(t, err)
	require.Len(t, rankings, 1)

	// 0.5*0.4 + 0.8*0.3 + 0.9*0.2 + 1.0*0.1
	assert.InDelta(t, 0.72, rankings[0].CompositeScore, 1e-9)
	assert.InDelta(t, 0, rankings[0].DistanceKm, 1e-9)
}

func TestRankProviders_ScoreStaysInUnitInterval(t *testing.T) {
	repo := newFakeAvailabilityRepo()
	lat, lon := pos(0, 0)
	repo.candidates = []*domainProvider.Candidate{
		{DeviceID: uuid.New(), EstimatedSpeedMbps: 10000, BatteryLevel: 100, TrustScore: 100, Latitude: lat, Longitude: lon},
	}
	svc := newRankingService(repo)

	rankings, err := svc.RankProviders(context.Background(), 0, 0, 5)
	require.NoError(t, err)
	require.Len(t, rankings, 1)

	// Speed well beyond the normalization cap still scores 1, not more.
	assert.InDelta(t, 1.0, rankings[0].CompositeScore, 1e-9)
}

func TestRankProviders_OrdersByScoreDescending(t *testing.T) {
	repo := newFakeAvailabilityRepo()
	latFast, lonFast := pos(0, 0)
	latSlow, lonSlow := pos(0, 0)
	fast := uuid.New()
	slow := uuid.New()
	repo.candidates = []*domainProvider.Candidate{
		{DeviceID: slow, EstimatedSpeedMbps: 10, BatteryLevel: 50, TrustScore: 50, Latitude: latSlow, Longitude: lonSlow},
		{DeviceID: fast, EstimatedSpeedMbps: 90, BatteryLevel: 50, TrustScore: 50, Latitude: latFast, Longitude: lonFast},
	}
	svc := newRankingService(repo)

	rankings, err := svc.RankProviders(context.Background(), 0, 0, 5)
	require.NoError(t, err)
	require.Len(t, rankings, 2)
	assert.Equal(t, fast, rankings[0].DeviceID)
	assert.Equal(t, slow, rankings[1].DeviceID)
	assert.Greater(t, rankings[0].CompositeScore, rankings[1].CompositeScore)
}

func TestRankProviders_TiesBreakByDeviceID(t *testing.T) {
	repo := newFakeAvailabilityRepo()
	first := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	second := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	latA, lonA := pos(0, 0)
	latB, lonB := pos(0, 0)
	repo.candidates = []*domainProvider.Candidate{
		{DeviceID: second, EstimatedSpeedMbps: 50, BatteryLevel: 50, TrustScore: 50, Latitude: latB, Longitude: lonB},
		{DeviceID: first, EstimatedSpeedMbps: 50, BatteryLevel: 50, TrustScore: 50, Latitude: latA, Longitude: lonA},
	}
	svc := newRankingService(repo)

	rankings, err := svc.RankProviders(context.Background(), 0, 0, 5)
	require.NoError(t, err)
	require.Len(t, rankings, 2)
	assert.Equal(t, first, rankings[0].DeviceID)
	assert.Equal(t, second, rankings[1].DeviceID)
}

func TestRankProviders_SkipsCandidatesWithoutPosition(t *testing.T) {
	repo := newFakeAvailabilityRepo()
	repo.candidates = []*domainProvider.Candidate{
		{DeviceID: uuid.New(), EstimatedSpeedMbps: 100, BatteryLevel: 100, TrustScore: 100},
	}
	svc := newRankingService(repo)

	rankings, err := svc.RankProviders(context.Background(), 0, 0, 5)
	require.NoError(t, err)
	assert.Empty(t, rankings)
}

func TestRankProviders_SkipsCandidatesOutsideRadius(t *testing.T) {
	repo := newFakeAvailabilityRepo()
	// Roughly 11 km north of the origin.
	latFar, lonFar := pos(0.1, 0)
	latNear, lonNear := pos(0.01, 0)
	near := uuid.New()
	repo.candidates = []*domainProvider.Candidate{
		{DeviceID: uuid.New(), EstimatedSpeedMbps: 100, BatteryLevel: 100, TrustScore: 100, Latitude: latFar, Longitude: lonFar},
		{DeviceID: near, EstimatedSpeedMbps: 50, BatteryLevel: 50, TrustScore: 50, Latitude: latNear, Longitude: lonNear},
	}
	svc := newRankingService(repo)

	rankings, err := svc.RankProviders(context.Background(), 0, 0, 5)
	require.NoError(t, err)
	require.Len(t, rankings, 1)
	assert.Equal(t, near, rankings[0].DeviceID)
}

func TestRankProviders_ZeroRadiusFallsBackToDefault(t *testing.T) {
	repo := newFakeAvailabilityRepo()
	lat, lon := pos(0.01, 0)
	repo.candidates = []*domainProvider.Candidate{
		{DeviceID: uuid.New(), EstimatedSpeedMbps: 50, BatteryLevel: 50, TrustScore: 50, Latitude: lat, Longitude: lon},
	}
	svc := newRankingService(repo)

	rankings, err := svc.RankProviders(context.Background(), 0, 0, 0)
	require.NoError(t, err)
	assert.Len(t, rankings, 1)
}

func TestBestProvider_ReturnsTopRanked(t *testing.T) {
	repo := newFakeAvailabilityRepo()
	latFast, lonFast := pos(0, 0)
	latSlow, lonSlow := pos(0, 0)
	fast := uuid.New()
	repo.candidates = []*domainProvider.Candidate{
		{DeviceID: uuid.New(), EstimatedSpeedMbps: 10, BatteryLevel: 50, TrustScore: 50, Latitude: latSlow, Longitude: lonSlow},
		{DeviceID: fast, EstimatedSpeedMbps: 90, BatteryLevel: 50, TrustScore: 50, Latitude: latFast, Longitude: lonFast},
	}
	svc := newRankingService(repo)

	best, err := svc.BestProvider(context.Background(), 0, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, fast, best.DeviceID)
}

func TestBestProvider_NoneInRadius(t *testing.T) {
	svc := newRankingService(newFakeAvailabilityRepo())

	_, err := svc.BestProvider(context.Background(), 0, 0, 5)
	require.Error(t, err)

	appErr, ok := appErrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, appErrors.CodeNotFound, appErr.Code)
}
