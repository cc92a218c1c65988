package protocol

import "gridbound.ai/internal/estimator"

// ESTIMATE (client -> server): one estimation request. Config carries the
// raw environment document (same nested shape as env.yaml); Map is the
// row-major tile grid.
type EstimateMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	RunTag          string         `json:"run_tag,omitempty"`
	Config          map[string]any `json:"config"`
	Map             [][]string     `json:"map"`
}

// REPORT (server -> client): the bound plus the per-region breakdown.
type ReportMsg struct {
	Type            string           `json:"type"`
	ProtocolVersion string           `json:"protocol_version"`
	RunID           string           `json:"run_id"`
	RunTag          string           `json:"run_tag,omitempty"`
	Total           float64          `json:"total"`
	Report          estimator.Report `json:"report"`
}

// ERROR (server -> client).
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
