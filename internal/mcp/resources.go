// ABOUTME: MCP resource implementations for training data.
// ABOUTME: Provides trainload://zones and trainload://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/trainload/internal/query"
	"github.com/harperreed/trainload/internal/zones"
)

func (s *Server) registerResources() {
	// trainload://zones - zone labels and bin edges
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "trainload://zones",
		Name:        "Training Zones",
		Description: "Heart-rate and speed zone boundaries with zTRIMP weights",
		MIMEType:    "application/json",
	}, s.handleZonesResource)

	// trainload://summary - this week's headline figures
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "trainload://summary",
		Name:        "This Week",
		Description: "Distance, sessions, effort minutes and stress for the current week",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

type zoneInfo struct {
	Zone      string  `json:"zone"`
	Weight    float64 `json:"weight"`
	HRLowBPM  float64 `json:"hr_low_bpm_exclusive"`
	HRHighBPM float64 `json:"hr_high_bpm"`
	SpeedLow  float64 `json:"speed_low_kmh"`
	SpeedHigh float64 `json:"speed_high_kmh_exclusive"`
}

func zoneTable() []zoneInfo {
	out := make([]zoneInfo, 0, zones.Count)
	for _, z := range zones.All() {
		i := z.Index()
		out = append(out, zoneInfo{
			Zone:      z.Label(),
			Weight:    z.Weight(),
			HRLowBPM:  zones.HeartRateBins[i],
			HRHighBPM: zones.HeartRateBins[i+1],
			SpeedLow:  zones.SpeedBins[i],
			SpeedHigh: zones.SpeedBins[i+1],
		})
	}
	return out
}

// Resource handlers

func (s *Server) handleZonesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResource("trainload://zones", zoneTable())
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	from, to, err := query.PeriodRange(query.PeriodThisWeek, s.now())
	if err != nil {
		return nil, err
	}
	sum, err := s.queries.Summary(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize week: %w", err)
	}
	return jsonResource("trainload://summary", sum)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
