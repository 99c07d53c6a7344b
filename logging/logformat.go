package logging

type protectedVarsAccessLogEntry struct {
	Timestamp     string   `json:"timestamp"`
	OperationName string   `json:"operationName"`
	Category      string   `json:"category"`
	Viewer        string   `json:"viewer"`
	Variables     []string `json:"variables"`
}

const (
	accessOperationName = "ViewProtectedVariables"
	accessCategory      = "AbuseFilterProtectedVarsAccessLog"
)
