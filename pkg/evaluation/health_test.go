package evaluation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorHealth_AllHealthy(t *testing.T) {
	report := MonitorHealth(map[string]float64{
		"research_agent": 0.9,
		"coding_agent":   0.85,
	}, 0.7)

	assert.Equal(t, ComponentStatusHealthy, report.SystemStatus)
	assert.Empty(t, report.Alerts)
	assert.InDelta(t, 0.875, report.OverallScore, 1e-9)
	assert.Equal(t, ComponentStatusHealthy, report.Components["research_agent"].Status)
}

func TestMonitorHealth_LowScoreRaisesWarning(t *testing.T) {
	report := MonitorHealth(map[string]float64{
		"research_agent": 0.9,
		"workflow_agent": 0.5,
	}, 0.7)

	assert.Equal(t, ComponentStatusDegraded, report.SystemStatus)
	require.Len(t, report.Alerts, 1)

	alert := report.Alerts[0]
	assert.Equal(t, "workflow_agent", alert.Component)
	assert.Equal(t, "performance_degradation", alert.Type)
	assert.Equal(t, "warning", alert.Severity)
	assert.Contains(t, alert.Message, "workflow_agent")

	assert.Equal(t, ComponentStatusDegraded, report.Components["workflow_agent"].Status)
	assert.Equal(t, ComponentStatusHealthy, report.Components["research_agent"].Status)
}

func TestMonitorHealth_AlertsOrderedByComponentName(t *testing.T) {
	report := MonitorHealth(map[string]float64{
		"zeta":  0.1,
		"alpha": 0.2,
		"mid":   0.3,
	}, 0.7)

	require.Len(t, report.Alerts, 3)
	assert.Equal(t, "alpha", report.Alerts[0].Component)
	assert.Equal(t, "mid", report.Alerts[1].Component)
	assert.Equal(t, "zeta", report.Alerts[2].Component)
}

func TestMonitorHealth_NoComponents(t *testing.T) {
	report := MonitorHealth(nil, 0.7)

	assert.Equal(t, ComponentStatusHealthy, report.SystemStatus)
	assert.Zero(t, report.OverallScore)
	assert.Empty(t, report.Components)
}

func trendSeries(values ...float64) []TrendPoint {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	points := make([]TrendPoint, 0, len(values))
	for i, v := range values {
		points = append(points, TrendPoint{Date: base.AddDate(0, 0, i), Value: v})
	}
	return points
}

func TestTrends_Improving(t *testing.T) {
	report := Trends(trendSeries(0.5, 0.5, 0.8, 0.9), 7)

	assert.Equal(t, TrendImproving, report.Direction)
	assert.Greater(t, report.ChangePercent, 0.0)
	assert.InDelta(t, 0.5, report.FirstHalfMean, 1e-9)
	assert.InDelta(t, 0.85, report.SecondHalfMean, 1e-9)
}

func TestTrends_Declining(t *testing.T) {
	report := Trends(trendSeries(0.9, 0.85, 0.5, 0.4), 7)

	assert.Equal(t, TrendDeclining, report.Direction)
	assert.Less(t, report.ChangePercent, 0.0)
}

func TestTrends_SmallChangeIsFlat(t *testing.T) {
	report := Trends(trendSeries(0.80, 0.80, 0.81, 0.80), 7)

	assert.Equal(t, TrendFlat, report.Direction)
}

func TestTrends_InsufficientData(t *testing.T) {
	report := Trends(trendSeries(0.9), 7)

	assert.Equal(t, TrendFlat, report.Direction)
	require.NotEmpty(t, report.Insights)
	assert.Contains(t, report.Insights[0], "Not enough data points")
}

func TestTrends_BestValueInsight(t *testing.T) {
	report := Trends(trendSeries(0.5, 0.95, 0.7, 0.8), 7)

	require.NotEmpty(t, report.Insights)
	last := report.Insights[len(report.Insights)-1]
	assert.Contains(t, last, "0.950")
	assert.Contains(t, last, "2026-03-02")
}

func TestTrends_ZeroBaselineStaysFinite(t *testing.T) {
	report := Trends(trendSeries(0.0, 0.0, 0.6, 0.8), 7)

	assert.Equal(t, TrendImproving, report.Direction)
	assert.InDelta(t, 100.0, report.ChangePercent, 1e-9)
}

func TestTrends_DefaultWindow(t *testing.T) {
	report := Trends(trendSeries(0.5, 0.6), 0)

	assert.Equal(t, 7, report.WindowDays)
}
