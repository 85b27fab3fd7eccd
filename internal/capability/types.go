package capability

// Category represents capability categories.
type Category string

const (
	CategoryStorage      Category = "storage"
	CategoryNotification Category = "notification"
	CategorySystem       Category = "system"
)

// Service describes a registered capability.
type Service struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     Category `json:"category"`
	Capabilities []string `json:"capabilities"`
	Tools        []Tool   `json:"tools"`
}

// Tool represents an operation exposed by a capability.
type Tool struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
}

// Parameter represents a tool parameter.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Context provides invocation context for capability calls.
type Context struct {
	AppID    string  `json:"app_id"`
	WindowID *string `json:"window_id,omitempty"`
}

// Result represents a capability invocation result.
type Result struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *string                `json:"error,omitempty"`
}

// Success builds a successful result.
func Success(data map[string]interface{}) (*Result, error) {
	return &Result{Success: true, Data: data}, nil
}

// Failure builds a failed result. The error return stays nil so callers can
// distinguish tool-level failures from transport errors.
func Failure(message string) (*Result, error) {
	return &Result{Success: false, Error: &message}, nil
}
