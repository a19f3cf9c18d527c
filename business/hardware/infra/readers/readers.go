// Package readers implements per-vendor device telemetry readers.
package readers

import (
	"context"

	"github.com/mmrrnn/universe/business/hardware/app"
	"github.com/mmrrnn/universe/business/hardware/domain"
	"github.com/mmrrnn/universe/internal/apperror"
)

// Unimplemented is the reader for vendors without telemetry support.
type Unimplemented struct {
	Vendor domain.Vendor
}

var _ app.Reader = Unimplemented{}

func (Unimplemented) IsImplemented() bool { return false }

func (u Unimplemented) Read(context.Context, *domain.DeviceParameters) (domain.DeviceParameters, error) {
	return domain.DeviceParameters{}, apperror.New(apperror.CodeReaderNotImplemented,
		apperror.WithContext(string(u.Vendor)))
}

// UnimplementedFactory returns a factory producing Unimplemented readers for
// vendor.
func UnimplementedFactory(vendor domain.Vendor) app.ReaderFactory {
	return func(domain.DeviceInfo) app.Reader { return Unimplemented{Vendor: vendor} }
}

// maxTemperature keeps the highest temperature seen across readings.
func maxTemperature(previous *domain.DeviceParameters, current float32) float32 {
	if previous != nil && previous.MaxTemperature > current {
		return previous.MaxTemperature
	}
	return current
}
