// pkg/registry/activity.go
package registry

import "time"

// Implementation states an activity moves through. The worker manager only
// starts completed or verified activities.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusVerified   = "verified"
)

// ActivityRegistry is the catalogue of BPMN service tasks planmytrip
// implements, stored in configs/activity-registry.json.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one job worker: the task type it subscribes to, the
// variables it reads and writes, and the BPMN error codes it may throw.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description,omitempty"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema,omitempty"`
	OutputSchema         map[string]interface{} `json:"outputSchema,omitempty"`
	ErrorCodes           []string               `json:"errorCodes,omitempty"`
	Timeout              string                 `json:"timeout,omitempty"`
	Retries              int                    `json:"retries,omitempty"`
	Workflows            []string               `json:"workflows,omitempty"`
	Tags                 []string               `json:"tags,omitempty"`
}

// Ready reports whether the activity may be started by the worker manager.
func (a *Activity) Ready() bool {
	return a.ImplementationStatus == StatusCompleted || a.ImplementationStatus == StatusVerified
}

// TimeoutDuration parses Timeout, returning 0 when unset or invalid.
func (a *Activity) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// InWorkflow reports whether the activity is used by the given process id.
func (a *Activity) InWorkflow(processID string) bool {
	for _, w := range a.Workflows {
		if w == processID {
			return true
		}
	}
	return false
}
