package system

import "time"

type SystemState string

const (
	StateInitializing SystemState = "initializing"
	StateRunning      SystemState = "running"
	StateShuttingDown SystemState = "shutting_down"
	StateError        SystemState = "error"
)

// SystemStatus is a snapshot of the service for the status surface.
type SystemStatus struct {
	State            SystemState `json:"state"`
	ConnectedClients int         `json:"connected_clients"`
	StartedAt        time.Time   `json:"started_at"`
}
