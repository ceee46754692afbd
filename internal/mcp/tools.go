// ABOUTME: MCP tool implementations for training queries.
// ABOUTME: Activities, daily stress, weekly speed zones, sleep and range summary.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/trainload/internal/models"
	"github.com/harperreed/trainload/internal/query"
	"github.com/harperreed/trainload/internal/stress"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_activities",
		Description: "List activities started within a date range",
	}, s.handleListActivities)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "daily_stress",
		Description: "Daily training stress (zTRIMP x perception multiplier) for a date range",
	}, s.handleDailyStress)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "weekly_speed_zones",
		Description: "Running distance per speed zone for the last 10 weeks",
	}, s.handleWeeklySpeedZones)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_sleep",
		Description: "List nightly sleep summaries within a date range",
	}, s.handleListSleep)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "range_summary",
		Description: "Total distance, sessions, effort minutes and stress for a date range",
	}, s.handleRangeSummary)
}

// Tool input/output types

type rangeInput struct {
	Period string `json:"period,omitempty" jsonschema:"Named period: this-week, last-week, this-month, last-month or year (default this-week)"`
	From   string `json:"from,omitempty" jsonschema:"Start date YYYY-MM-DD, overrides period when set with to"`
	To     string `json:"to,omitempty" jsonschema:"End date YYYY-MM-DD, inclusive"`
}

type activityRow struct {
	ID           int64    `json:"activity_id"`
	Sport        string   `json:"sport"`
	Start        string   `json:"start_time"`
	DistanceKm   *float64 `json:"distance_km,omitempty"`
	DurationMin  *float64 `json:"duration_min,omitempty"`
	AvgHR        *float64 `json:"avg_hr,omitempty"`
	RPE          *float64 `json:"rpe,omitempty"`
	Feel         *float64 `json:"feel,omitempty"`
	LapCount     *int     `json:"laps,omitempty"`
	CaloriesKcal *float64 `json:"calories,omitempty"`
}

type activitiesOutput struct {
	From       string        `json:"from"`
	To         string        `json:"to"`
	Activities []activityRow `json:"activities"`
}

type dailyStressOutput struct {
	From string              `json:"from"`
	To   string              `json:"to"`
	Days []stress.DailyScore `json:"days"`
}

type weeklySpeedZonesInput struct{}

type weeklySpeedZonesOutput struct {
	Weeks []query.WeekVolume `json:"weeks"`
}

type sleepOutput struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Nights []*models.Sleep `json:"nights"`
}

func (s *Server) resolve(in rangeInput) (time.Time, time.Time, error) {
	return query.ResolveRange(in.Period, in.From, in.To, s.now())
}

func scaled(v *float64, div float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v / div
	return &out
}

func toRow(a *models.Activity) activityRow {
	return activityRow{
		ID:           a.ID,
		Sport:        a.SportName(),
		Start:        models.FormatTimestamp(a.StartTime),
		DistanceKm:   scaled(a.DistanceM, 1000),
		DurationMin:  scaled(a.TotalTimerTimeS, 60),
		AvgHR:        a.AvgHR,
		RPE:          a.RPE,
		Feel:         a.Feel,
		LapCount:     a.NumLaps,
		CaloriesKcal: a.Calories,
	}
}

// Tool handlers

func (s *Server) handleListActivities(ctx context.Context, req *mcp.CallToolRequest, input rangeInput) (*mcp.CallToolResult, activitiesOutput, error) {
	from, to, err := s.resolve(input)
	if err != nil {
		return nil, activitiesOutput{}, err
	}
	activities, err := s.queries.Activities(ctx, from, to)
	if err != nil {
		return nil, activitiesOutput{}, fmt.Errorf("failed to list activities: %w", err)
	}

	out := activitiesOutput{
		From:       from.Format(models.DateLayout),
		To:         to.Format(models.DateLayout),
		Activities: make([]activityRow, 0, len(activities)),
	}
	for _, a := range activities {
		out.Activities = append(out.Activities, toRow(a))
	}
	return nil, out, nil
}

func (s *Server) handleDailyStress(ctx context.Context, req *mcp.CallToolRequest, input rangeInput) (*mcp.CallToolResult, dailyStressOutput, error) {
	from, to, err := s.resolve(input)
	if err != nil {
		return nil, dailyStressOutput{}, err
	}
	days, err := s.queries.DailyStress(ctx, from, to)
	if err != nil {
		return nil, dailyStressOutput{}, fmt.Errorf("failed to compute daily stress: %w", err)
	}
	if days == nil {
		days = []stress.DailyScore{}
	}
	return nil, dailyStressOutput{
		From: from.Format(models.DateLayout),
		To:   to.Format(models.DateLayout),
		Days: days,
	}, nil
}

func (s *Server) handleWeeklySpeedZones(ctx context.Context, req *mcp.CallToolRequest, input weeklySpeedZonesInput) (*mcp.CallToolResult, weeklySpeedZonesOutput, error) {
	weeks, err := s.queries.WeeklySpeedZones(ctx)
	if err != nil {
		return nil, weeklySpeedZonesOutput{}, fmt.Errorf("failed to compute speed zones: %w", err)
	}
	return nil, weeklySpeedZonesOutput{Weeks: weeks}, nil
}

func (s *Server) handleListSleep(ctx context.Context, req *mcp.CallToolRequest, input rangeInput) (*mcp.CallToolResult, sleepOutput, error) {
	from, to, err := s.resolve(input)
	if err != nil {
		return nil, sleepOutput{}, err
	}
	nights, err := s.queries.Sleep(ctx, from, to)
	if err != nil {
		return nil, sleepOutput{}, fmt.Errorf("failed to list sleep: %w", err)
	}
	if nights == nil {
		nights = []*models.Sleep{}
	}
	return nil, sleepOutput{
		From:   from.Format(models.DateLayout),
		To:     to.Format(models.DateLayout),
		Nights: nights,
	}, nil
}

func (s *Server) handleRangeSummary(ctx context.Context, req *mcp.CallToolRequest, input rangeInput) (*mcp.CallToolResult, query.Summary, error) {
	from, to, err := s.resolve(input)
	if err != nil {
		return nil, query.Summary{}, err
	}
	sum, err := s.queries.Summary(ctx, from, to)
	if err != nil {
		return nil, query.Summary{}, fmt.Errorf("failed to summarize range: %w", err)
	}
	return nil, sum, nil
}
