// Package domain contains the core types shared by every supervised worker.
package domain

// HealthStatus is the verdict of a single health check. It is produced fresh
// on each check and never stored.
type HealthStatus int

const (
	Healthy HealthStatus = iota
	Warning
	Unhealthy
)

func (s HealthStatus) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Warning:
		return "warning"
	default:
		return "unhealthy"
	}
}

// MarshalText lets the status serialize as its name.
func (s HealthStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
