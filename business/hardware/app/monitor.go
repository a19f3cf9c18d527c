// Package app implements hardware discovery and telemetry queries.
package app

import (
	"context"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mmrrnn/universe/business/hardware/domain"
	"github.com/mmrrnn/universe/internal/logger"
)

const meterName = "github.com/mmrrnn/universe/business/hardware/app"

type device struct {
	vendor      domain.Vendor
	name        string
	status      domain.DeviceStatus
	reader      Reader
	lastReading atomic.Pointer[domain.DeviceParameters]
}

func (d *device) publicProperties(ctx context.Context) (domain.PublicDeviceProperties, error) {
	props := domain.PublicDeviceProperties{
		Vendor: d.vendor,
		Name:   d.name,
		Status: d.status,
	}
	params, err := d.reader.Read(ctx, d.lastReading.Load())
	if err != nil {
		return props, err
	}
	d.lastReading.Store(&params)
	props.Parameters = &params
	return props, nil
}

type monitorMetrics struct {
	devices      metric.Int64Gauge
	readFailures metric.Int64Counter
}

// Monitor holds the discovered GPU and CPU devices together with the reader
// attached to each.
type Monitor struct {
	gpuProbe   Probe
	cpuProbe   Probe
	gpuReaders *Registry
	cpuReaders *Registry
	logger     logger.LoggerInterface

	gpuMu sync.RWMutex
	gpus  []*device

	cpuMu sync.RWMutex
	cpus  []*device

	metrics *monitorMetrics
}

// NewMonitor creates an empty monitor. Call Initialize to discover devices.
func NewMonitor(gpuProbe, cpuProbe Probe, gpuReaders, cpuReaders *Registry, log logger.LoggerInterface) *Monitor {
	m := &Monitor{
		gpuProbe:   gpuProbe,
		cpuProbe:   cpuProbe,
		gpuReaders: gpuReaders,
		cpuReaders: cpuReaders,
		logger:     log,
	}
	m.initMetrics()
	return m
}

func (m *Monitor) initMetrics() {
	meter := otel.Meter(meterName)
	m.metrics = &monitorMetrics{}

	var err error
	if m.metrics.devices, err = meter.Int64Gauge(
		"hardware_devices",
		metric.WithDescription("Discovered devices by kind"),
		metric.WithUnit("{device}"),
	); err != nil {
		m.logger.Warn(context.Background(), "metric init failed", "metric", "hardware_devices", "error", err)
	}
	if m.metrics.readFailures, err = meter.Int64Counter(
		"hardware_read_failures_total",
		metric.WithDescription("Failed telemetry reads by vendor"),
		metric.WithUnit("{read}"),
	); err != nil {
		m.logger.Warn(context.Background(), "metric init failed", "metric", "hardware_read_failures_total", "error", err)
	}
}

// Initialize discovers devices and replaces both device lists. A probe
// error aborts without touching the current lists.
func (m *Monitor) Initialize(ctx context.Context) error {
	gpuInfos, err := m.gpuProbe.Devices(ctx)
	if err != nil {
		return err
	}
	cpuInfos, err := m.cpuProbe.Devices(ctx)
	if err != nil {
		return err
	}

	gpus := m.buildDevices(ctx, gpuInfos, m.gpuReaders, domain.DeviceKindGPU)
	cpus := m.buildDevices(ctx, cpuInfos, m.cpuReaders, domain.DeviceKindCPU)

	m.gpuMu.Lock()
	m.gpus = gpus
	m.gpuMu.Unlock()

	m.cpuMu.Lock()
	m.cpus = cpus
	m.cpuMu.Unlock()

	m.logger.Info(ctx, "hardware initialized", "gpus", len(gpus), "cpus", len(cpus))
	return nil
}

func (m *Monitor) buildDevices(ctx context.Context, infos []domain.DeviceInfo, readers *Registry, kind domain.DeviceKind) []*device {
	devices := make([]*device, 0, len(infos))
	perVendor := make(map[domain.Vendor]int)
	for _, info := range infos {
		hint := info.VendorHint
		if hint == "" {
			hint = info.Name
		}
		vendor := domain.VendorFromString(hint)
		info.VendorIndex = perVendor[vendor]
		perVendor[vendor]++

		if !readers.Has(vendor) {
			m.logger.Warn(ctx, "unsupported hardware vendor", "kind", kind, "name", info.Name, "vendor", vendor)
		}

		reader := readers.Select(vendor, info)
		devices = append(devices, &device{
			vendor: vendor,
			name:   info.Name,
			status: domain.DeviceStatus{
				IsAvailable:         info.IsAvailable,
				IsReaderImplemented: reader.IsImplemented(),
			},
			reader: reader,
		})
	}

	if m.metrics.devices != nil {
		m.metrics.devices.Record(ctx, int64(len(devices)),
			metric.WithAttributes(attribute.String("kind", string(kind))))
	}
	return devices
}

// GetGpuPublicProperties reads every GPU afresh. A failed read leaves that
// device's Parameters nil.
func (m *Monitor) GetGpuPublicProperties(ctx context.Context) []domain.PublicDeviceProperties {
	m.gpuMu.RLock()
	defer m.gpuMu.RUnlock()
	return m.publicProperties(ctx, m.gpus)
}

// GetCpuPublicProperties reads every CPU afresh. A failed read leaves that
// device's Parameters nil.
func (m *Monitor) GetCpuPublicProperties(ctx context.Context) []domain.PublicDeviceProperties {
	m.cpuMu.RLock()
	defer m.cpuMu.RUnlock()
	return m.publicProperties(ctx, m.cpus)
}

func (m *Monitor) publicProperties(ctx context.Context, devices []*device) []domain.PublicDeviceProperties {
	out := make([]domain.PublicDeviceProperties, 0, len(devices))
	for _, d := range devices {
		props, err := d.publicProperties(ctx)
		if err != nil && d.status.IsReaderImplemented {
			m.logger.Debug(ctx, "device read failed", "name", d.name, "error", err)
			if m.metrics.readFailures != nil {
				m.metrics.readFailures.Add(ctx, 1,
					metric.WithAttributes(attribute.String("vendor", string(d.vendor))))
			}
		}
		out = append(out, props)
	}
	return out
}
