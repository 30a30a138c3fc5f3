package speedtest

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainDevice "neighbornet/internal/domain/device"
	domainSpeedtest "neighbornet/internal/domain/speedtest"
	"neighbornet/internal/logger"
	appErrors "neighbornet/pkg/errors"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

type fakeSampleRepo struct {
	mu      sync.Mutex
	samples []*domainSpeedtest.Sample
}

func (r *fakeSampleRepo) Create(_ context.Context, sample *domainSpeedtest.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, sample)
	return nil
}

func (r *fakeSampleRepo) RecentByDevice(_ context.Context, deviceID uuid.UUID, limit int) ([]*domainSpeedtest.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domainSpeedtest.Sample
	// Stored in append order; walk backwards for newest first.
	for i := len(r.samples) - 1; i >= 0 && len(matched) < limit; i-- {
		if r.samples[i].DeviceID == deviceID {
			matched = append(matched, r.samples[i])
		}
	}
	return matched, nil
}

func (r *fakeSampleRepo) Recent(_ context.Context, limit int) ([]*domainSpeedtest.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domainSpeedtest.Sample
	for i := len(r.samples) - 1; i >= 0 && len(matched) < limit; i-- {
		matched = append(matched, r.samples[i])
	}
	return matched, nil
}

func (r *fakeSampleRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

type fakeDeviceRepo struct {
	mu        sync.Mutex
	devices   map[uuid.UUID]*domainDevice.Device
	estimates map[uuid.UUID]float64
	lastSeen  map[uuid.UUID]int
}

func newFakeDeviceRepo(devices ...*domainDevice.Device) *fakeDeviceRepo {
	repo := &fakeDeviceRepo{
		devices:   make(map[uuid.UUID]*domainDevice.Device),
		estimates: make(map[uuid.UUID]float64),
		lastSeen:  make(map[uuid.UUID]int),
	}
	for _, d := range devices {
		repo.devices[d.ID] = d
	}
	return repo
}

func (r *fakeDeviceRepo) Create(_ context.Context, d *domainDevice.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[d.ID] = d
	return nil
}

func (r *fakeDeviceRepo) GetByID(_ context.Context, deviceID uuid.UUID) (*domainDevice.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, exists := r.devices[deviceID]
	if !exists {
		return nil, domainDevice.ErrDeviceNotFound
	}
	return d, nil
}

func (r *fakeDeviceRepo) GetByUser(_ context.Context, userID uuid.UUID) ([]*domainDevice.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domainDevice.Device
	for _, d := range r.devices {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDeviceRepo) UpdatePosition(_ context.Context, deviceID uuid.UUID, latitude, longitude float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, exists := r.devices[deviceID]
	if !exists {
		return domainDevice.ErrDeviceNotFound
	}
	d.Latitude, d.Longitude = &latitude, &longitude
	return nil
}

func (r *fakeDeviceRepo) UpdateBattery(_ context.Context, deviceID uuid.UUID, batteryLevel int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, exists := r.devices[deviceID]
	if !exists {
		return domainDevice.ErrDeviceNotFound
	}
	d.BatteryLevel = batteryLevel
	return nil
}

func (r *fakeDeviceRepo) UpdateBandwidthEstimate(_ context.Context, deviceID uuid.UUID, estimateMbps float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.devices[deviceID]; !exists {
		return domainDevice.ErrDeviceNotFound
	}
	r.estimates[deviceID] = estimateMbps
	return nil
}

func (r *fakeDeviceRepo) UpdateLastSeen(_ context.Context, deviceID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.devices[deviceID]; !exists {
		return domainDevice.ErrDeviceNotFound
	}
	r.lastSeen[deviceID]++
	return nil
}

func (r *fakeDeviceRepo) estimate(deviceID uuid.UUID) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.estimates[deviceID]
}

func newTestService(deviceRepo *fakeDeviceRepo) (*Service, *fakeSampleRepo) {
	sampleRepo := &fakeSampleRepo{}
	return NewService(sampleRepo, deviceRepo, 10, 1000), sampleRepo
}

func TestService_RecordSample_SingleSampleSetsEstimate(t *testing.T) {
	device := &domainDevice.Device{ID: uuid.New(), UserID: uuid.New()}
	deviceRepo := newFakeDeviceRepo(device)
	svc, _ := newTestService(deviceRepo)

	resp, err := svc.RecordSample(context.Background(), device.ID, &ReportSampleRequest{
		UploadMbps:   12,
		DownloadMbps: 48,
		LatencyMs:    20,
	})
	require.NoError(t, err)

	assert.Equal(t, 48.0, resp.MovingAverageMbps)
	assert.Equal(t, 48.0, deviceRepo.estimate(device.ID))
	assert.Equal(t, 1, deviceRepo.lastSeen[device.ID])
}

func TestService_RecordSample_WindowDropsOldestSamples(t *testing.T) {
	device := &domainDevice.Device{ID: uuid.New(), UserID: uuid.New()}
	deviceRepo := newFakeDeviceRepo(device)
	svc, _ := newTestService(deviceRepo)

	// Eleven samples with downloads 10, 20, ..., 110. The window holds the
	// newest ten, so the first sample falls out: mean(20..110) = 65.
	var resp *ReportSampleResponse
	var err error
	for i := 1; i <= 11; i++ {
		resp, err = svc.RecordSample(context.Background(), device.ID, &ReportSampleRequest{
			DownloadMbps: float64(i * 10),
		})
		require.NoError(t, err)
	}

	assert.InDelta(t, 65.0, resp.MovingAverageMbps, 1e-9)
	assert.InDelta(t, 65.0, deviceRepo.estimate(device.ID), 1e-9)
}

func TestService_RecordSample_RejectsNegativeValuesWithoutWriting(t *testing.T) {
	device := &domainDevice.Device{ID: uuid.New(), UserID: uuid.New()}
	deviceRepo := newFakeDeviceRepo(device)
	svc, sampleRepo := newTestService(deviceRepo)

	cases := []ReportSampleRequest{
		{UploadMbps: -1, DownloadMbps: 50, LatencyMs: 20},
		{UploadMbps: 10, DownloadMbps: -50, LatencyMs: 20},
		{UploadMbps: 10, DownloadMbps: 50, LatencyMs: -20},
	}
	for _, req := range cases {
		_, err := svc.RecordSample(context.Background(), device.ID, &req)
		require.Error(t, err)

		appErr, ok := appErrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.CodeInvalidInput, appErr.Code)
	}

	assert.Equal(t, 0, sampleRepo.count())
	assert.Equal(t, 0.0, deviceRepo.estimate(device.ID))
}

func TestService_RecordSample_UnknownDevice(t *testing.T) {
	svc, sampleRepo := newTestService(newFakeDeviceRepo())

	_, err := svc.RecordSample(context.Background(), uuid.New(), &ReportSampleRequest{DownloadMbps: 10})
	require.Error(t, err)

	appErr, ok := appErrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, appErrors.CodeNotFound, appErr.Code)
	assert.Equal(t, 0, sampleRepo.count())
}

func TestService_UpdateEstimate_NoSamples(t *testing.T) {
	device := &domainDevice.Device{ID: uuid.New(), UserID: uuid.New()}
	svc, _ := newTestService(newFakeDeviceRepo(device))

	_, err := svc.UpdateEstimate(context.Background(), device.ID)
	require.Error(t, err)

	appErr, ok := appErrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, appErrors.CodeNotFound, appErr.Code)
}

func TestService_DeviceSamples_NewestFirst(t *testing.T) {
	device := &domainDevice.Device{ID: uuid.New(), UserID: uuid.New()}
	svc, _ := newTestService(newFakeDeviceRepo(device))

	for i := 1; i <= 3; i++ {
		_, err := svc.RecordSample(context.Background(), device.ID, &ReportSampleRequest{
			DownloadMbps: float64(i * 10),
		})
		require.NoError(t, err)
	}

	samples, err := svc.DeviceSamples(context.Background(), device.ID, 2)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 30.0, samples[0].DownloadMbps)
	assert.Equal(t, 20.0, samples[1].DownloadMbps)
}

func TestService_DeviceStats_AggregatesRecentSamples(t *testing.T) {
	device := &domainDevice.Device{ID: uuid.New(), UserID: uuid.New()}
	svc, _ := newTestService(newFakeDeviceRepo(device))

	inputs := []ReportSampleRequest{
		{UploadMbps: 10, DownloadMbps: 40, LatencyMs: 30},
		{UploadMbps: 20, DownloadMbps: 60, LatencyMs: 10},
		{UploadMbps: 30, DownloadMbps: 80, LatencyMs: 20},
	}
	for i := range inputs {
		_, err := svc.RecordSample(context.Background(), device.ID, &inputs[i])
		require.NoError(t, err)
	}

	stats, err := svc.DeviceStats(context.Background(), device.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 20.0, stats.AvgUploadMbps, 1e-9)
	assert.InDelta(t, 60.0, stats.AvgDownloadMbps, 1e-9)
	assert.InDelta(t, 20.0, stats.AvgLatencyMs, 1e-9)
	assert.Equal(t, 80.0, stats.MaxDownloadMbps)
	assert.Equal(t, 10.0, stats.MinLatencyMs)
	require.NotNil(t, stats.LastSampleAt)
	assert.WithinDuration(t, time.Now(), *stats.LastSampleAt, time.Minute)
}

func TestService_DeviceStats_EmptyDevice(t *testing.T) {
	device := &domainDevice.Device{ID: uuid.New(), UserID: uuid.New()}
	svc, _ := newTestService(newFakeDeviceRepo(device))

	stats, err := svc.DeviceStats(context.Background(), device.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Count)
	assert.Nil(t, stats.LastSampleAt)
}

func TestService_GlobalStats_SpansDevices(t *testing.T) {
	first := &domainDevice.Device{ID: uuid.New(), UserID: uuid.New()}
	second := &domainDevice.Device{ID: uuid.New(), UserID: uuid.New()}
	svc, _ := newTestService(newFakeDeviceRepo(first, second))

	_, err := svc.RecordSample(context.Background(), first.ID, &ReportSampleRequest{DownloadMbps: 40})
	require.NoError(t, err)
	_, err = svc.RecordSample(context.Background(), second.ID, &ReportSampleRequest{DownloadMbps: 80})
	require.NoError(t, err)

	stats, err := svc.GlobalStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Count)
	assert.InDelta(t, 60.0, stats.AvgDownloadMbps, 1e-9)
}

func TestService_RecordSample_ConcurrentSamplesAllStored(t *testing.T) {
	device := &domainDevice.Device{ID: uuid.New(), UserID: uuid.New()}
	deviceRepo := newFakeDeviceRepo(device)
	svc, sampleRepo := newTestService(deviceRepo)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordSample(context.Background(), device.ID, &ReportSampleRequest{DownloadMbps: 50})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, sampleRepo.count())
	assert.InDelta(t, 50.0, deviceRepo.estimate(device.ID), 1e-9)
}
