package api

import "github.com/clipbot/clipbot/internal/history"

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	BuildTime string `json:"build_time,omitempty"`
	UptimeS   int64  `json:"uptime_s"`
}

type StatusResponse struct {
	InFlight        int64          `json:"in_flight"`
	PendingSessions int            `json:"pending_sessions"`
	ClipsByState    map[string]int `json:"clips_by_state"`
	Version         string         `json:"version"`
	GitCommit       string         `json:"git_commit,omitempty"`
}

type ClipsResponse struct {
	Clips []*history.Clip `json:"clips"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
