package dto

import "time"

// @Description Process and database health
type SystemStatusResponse struct {
	Status            string    `json:"status"`
	HealthScore       int       `json:"healthScore"`
	APIResponseTime   float64   `json:"apiResponseTime"`
	ErrorRate         float64   `json:"errorRate"`
	Uptime            float64   `json:"uptime"`
	UptimeSeconds     int64     `json:"uptimeSeconds"`
	RequestsLastHour  int       `json:"requestsPerHour"`
	ActiveConnections int64     `json:"activeConnections"`
	DatabaseUsage     float64   `json:"databaseUsage"`
	DatabaseSizeMB    float64   `json:"databaseSizeMB"`
	TotalDocs         int64     `json:"totalDocs"`
	Timestamp         time.Time `json:"timestamp"`
}

type RuntimeStats struct {
	GoVersion   string  `json:"goVersion"`
	NumCPU      int     `json:"numCpu"`
	Goroutines  int     `json:"goroutines"`
	HeapAllocMB float64 `json:"heapAllocMB"`
	SysMB       float64 `json:"sysMB"`
	NumGC       uint32  `json:"numGC"`
}

// @Description System status plus Go runtime statistics
type SystemMetricsResponse struct {
	SystemStatusResponse
	Runtime      RuntimeStats `json:"runtime"`
	TrackedTotal int          `json:"trackedRequests"`
}

// HealthResponse is returned by the plain liveness endpoints.
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}
