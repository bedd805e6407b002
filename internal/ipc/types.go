package ipc

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon/agent status information.
type StatusResponse struct {
	Running      bool   `json:"running"`
	Blocked      bool   `json:"blocked"`
	LastTickAt   string `json:"last_tick_at"`
	Ticks        uint64 `json:"ticks"`
	LastError    string `json:"last_error"`
	DatabasePath string `json:"database_path"`
	LockPath     string `json:"lock_path"`
	PID          int    `json:"pid"`
}

// StopRequest stops the polling agent.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// HistoryRequest fetches recently processed orders.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryRecord is one processed-order entry.
type HistoryRecord struct {
	OrderID   string `json:"order_id"`
	PrintedAt string `json:"printed_at"`
}

// HistoryResponse contains processed-order entries, newest first.
type HistoryResponse struct {
	Orders []HistoryRecord `json:"orders"`
}

// QueueRequest fetches the deferred labels.
type QueueRequest struct{}

// QueueRecord is one deferred label waiting for quiet hours to end.
type QueueRecord struct {
	ID        int64  `json:"id"`
	OrderID   string `json:"order_id"`
	Customer  string `json:"customer"`
	Platform  string `json:"platform"`
	Courier   string `json:"courier"`
	Ext       string `json:"ext"`
	CreatedAt string `json:"created_at"`
}

// QueueResponse contains deferred labels, oldest first.
type QueueResponse struct {
	Labels []QueueRecord `json:"labels"`
}

// TestNotificationRequest re-sends the last order notification.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test status.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

// DatabaseHealthRequest retrieves state database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse carries detailed database diagnostics.
type DatabaseHealthResponse struct {
	DBPath           string   `json:"db_path"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	TablesPresent    []string `json:"tables_present"`
	MissingTables    []string `json:"missing_tables"`
	IntegrityCheck   bool     `json:"integrity_check"`
	ProcessedRecords int      `json:"processed_records"`
	DeferredLabels   int      `json:"deferred_labels"`
	Error            string   `json:"error"`
}
