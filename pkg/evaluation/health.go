package evaluation

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Component status constants
const (
	ComponentStatusHealthy  = "healthy"
	ComponentStatusDegraded = "degraded"
)

// trendEpsilon is the relative change below which a series counts as flat
const trendEpsilon = 0.02

// ComponentHealth is one component's health snapshot
type ComponentHealth struct {
	Status string  `json:"status"`
	Score  float64 `json:"performance_score"`
}

// HealthAlert flags a component scoring below the alert threshold. Severity
// is always "warning": this design has no escalation tiers.
type HealthAlert struct {
	Component string `json:"component"`
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
}

// HealthReport aggregates per-component health scores
type HealthReport struct {
	Timestamp    time.Time                  `json:"monitoring_timestamp"`
	OverallScore float64                    `json:"overall_health_score"`
	SystemStatus string                     `json:"system_status"`
	Components   map[string]ComponentHealth `json:"components"`
	Alerts       []HealthAlert              `json:"alerts"`
}

// MonitorHealth aggregates component scores into a system health report,
// emitting one warning alert per component below the alert threshold. It is
// read-only: pure aggregation over the scores it is given.
func MonitorHealth(componentScores map[string]float64, alertThreshold float64) HealthReport {
	report := HealthReport{
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]ComponentHealth, len(componentScores)),
		Alerts:     make([]HealthAlert, 0),
	}

	names := make([]string, 0, len(componentScores))
	for name := range componentScores {
		names = append(names, name)
	}
	sort.Strings(names)

	var sum float64
	for _, name := range names {
		score := componentScores[name]
		sum += score

		status := ComponentStatusHealthy
		if score < alertThreshold {
			status = ComponentStatusDegraded
			report.Alerts = append(report.Alerts, HealthAlert{
				Component: name,
				Type:      "performance_degradation",
				Severity:  "warning",
				Message:   fmt.Sprintf("%s performance below threshold", name),
			})
		}
		report.Components[name] = ComponentHealth{Status: status, Score: score}
	}

	if len(names) > 0 {
		report.OverallScore = sum / float64(len(names))
	}
	report.SystemStatus = ComponentStatusHealthy
	if len(report.Alerts) > 0 {
		report.SystemStatus = ComponentStatusDegraded
	}

	return report
}

// TrendDirection classifies a metric series
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendFlat      TrendDirection = "flat"
)

// TrendPoint is one dated value in a metric series
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TrendReport summarizes how a metric series moved over a window
type TrendReport struct {
	WindowDays     int            `json:"analysis_period_days"`
	Direction      TrendDirection `json:"trend_direction"`
	ChangePercent  float64        `json:"change_percent"`
	FirstHalfMean  float64        `json:"first_half_mean"`
	SecondHalfMean float64        `json:"second_half_mean"`
	Points         []TrendPoint   `json:"data_points"`
	Insights       []string       `json:"insights"`
}

// Trends reports the direction of a metric series over the trailing window.
// Direction compares the mean of the first half of the window against the
// second half; a relative change within trendEpsilon counts as flat.
func Trends(series []TrendPoint, windowDays int) TrendReport {
	if windowDays <= 0 {
		windowDays = 7
	}

	report := TrendReport{
		WindowDays: windowDays,
		Direction:  TrendFlat,
		Points:     series,
	}

	if len(series) < 2 {
		report.Insights = append(report.Insights, "Not enough data points for trend analysis")
		return report
	}

	mid := len(series) / 2
	report.FirstHalfMean = mean(series[:mid])
	report.SecondHalfMean = mean(series[mid:])

	var change float64
	if report.FirstHalfMean != 0 {
		change = (report.SecondHalfMean - report.FirstHalfMean) / math.Abs(report.FirstHalfMean)
	} else if report.SecondHalfMean != 0 {
		// From zero, any movement is a full swing. Keep finite for JSON.
		change = 1
		if report.SecondHalfMean < 0 {
			change = -1
		}
	}
	report.ChangePercent = change * 100

	switch {
	case change > trendEpsilon:
		report.Direction = TrendImproving
		report.Insights = append(report.Insights,
			fmt.Sprintf("Metric improved by %.1f%% over the period", report.ChangePercent))
	case change < -trendEpsilon:
		report.Direction = TrendDeclining
		report.Insights = append(report.Insights,
			fmt.Sprintf("Metric declined by %.1f%% over the period", -report.ChangePercent))
	default:
		report.Insights = append(report.Insights, "Metric held steady over the period")
	}

	best := series[0]
	for _, p := range series[1:] {
		if p.Value > best.Value {
			best = p
		}
	}
	report.Insights = append(report.Insights,
		fmt.Sprintf("Best value %.3f recorded on %s", best.Value, best.Date.Format("2006-01-02")))

	return report
}

func mean(points []TrendPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Value
	}
	return sum / float64(len(points))
}
