package app

import (
	"github.com/mmrrnn/universe/business/hardware/domain"
)

// Registry maps a vendor to the reader used for its devices.
type Registry struct {
	factories map[domain.Vendor]ReaderFactory
	fallback  ReaderFactory
}

// NewRegistry creates a registry that uses fallback for vendors without a
// registered factory.
func NewRegistry(fallback ReaderFactory) *Registry {
	return &Registry{
		factories: make(map[domain.Vendor]ReaderFactory),
		fallback:  fallback,
	}
}

// Register sets the factory for vendor, replacing any previous one.
func (r *Registry) Register(vendor domain.Vendor, factory ReaderFactory) *Registry {
	r.factories[vendor] = factory
	return r
}

// Select returns a reader for device.
func (r *Registry) Select(vendor domain.Vendor, device domain.DeviceInfo) Reader {
	if f, ok := r.factories[vendor]; ok {
		return f(device)
	}
	return r.fallback(device)
}

// Has reports whether vendor has its own factory.
func (r *Registry) Has(vendor domain.Vendor) bool {
	_, ok := r.factories[vendor]
	return ok
}
