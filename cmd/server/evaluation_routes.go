package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"deep-agent/pkg/database"
	"deep-agent/pkg/evaluation"
)

// EvaluationRoutes sets up the interaction logging and evaluation API routes
func EvaluationRoutes(router *mux.Router, db database.Database, evaluator *evaluation.Evaluator, trigger *evaluation.Trigger) {
	apiRouter := router.PathPrefix("/api").Subrouter()

	apiRouter.HandleFunc("/interactions", recordInteractionHandler(db)).Methods("POST")
	apiRouter.HandleFunc("/agents/{agent_name}/evaluate", evaluateAgentHandler(evaluator)).Methods("POST")
	apiRouter.HandleFunc("/agents/{agent_name}/refinement-check", refinementCheckHandler(trigger)).Methods("GET")
	apiRouter.HandleFunc("/agents/{agent_name}/trends", trendsHandler(db)).Methods("GET")
	apiRouter.HandleFunc("/system/health", systemHealthHandler(evaluator)).Methods("GET")
}

// recordInteractionHandler logs one agent interaction for later evaluation.
// Requests without a session ID get a generated one.
func recordInteractionHandler(db database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req database.RecordInteractionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.AgentName == "" {
			http.Error(w, "agent_name is required", http.StatusBadRequest)
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.New().String()
		}

		record, err := db.RecordInteraction(r.Context(), &req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, record)
	}
}

// evaluateRequest carries the optional evaluation parameters
type evaluateRequest struct {
	EvaluationCriteria []string `json:"evaluation_criteria,omitempty"`
	TimeWindowHours    float64  `json:"time_window_hours,omitempty"`
}

// evaluateAgentHandler scores an agent's recent performance
func evaluateAgentHandler(evaluator *evaluation.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentName := mux.Vars(r)["agent_name"]

		var req evaluateRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		criteria := make([]evaluation.Criterion, 0, len(req.EvaluationCriteria))
		for _, c := range req.EvaluationCriteria {
			criteria = append(criteria, evaluation.Criterion(c))
		}

		result, err := evaluator.Evaluate(r.Context(), agentName, criteria, req.TimeWindowHours)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// refinementCheckHandler reports whether prompt refinement should run now
func refinementCheckHandler(trigger *evaluation.Trigger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentName := mux.Vars(r)["agent_name"]

		threshold := queryFloat(r, "threshold", 0.8)
		minHours := queryFloat(r, "min_hours", 24)

		decision, err := trigger.ShouldTrigger(r.Context(), agentName, threshold, minHours)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, decision)
	}
}

// trendsHandler reports a metric's direction over the trailing window
func trendsHandler(db database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentName := mux.Vars(r)["agent_name"]

		metric := r.URL.Query().Get("metric")
		if metric == "" {
			metric = "success_rate"
		}
		days := int(queryFloat(r, "days", 7))

		series, err := db.MetricSeries(r.Context(), agentName, metric, days)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		points := make([]evaluation.TrendPoint, 0, len(series))
		for _, p := range series {
			points = append(points, evaluation.TrendPoint{Date: p.Date, Value: p.Value})
		}

		writeJSON(w, http.StatusOK, evaluation.Trends(points, days))
	}
}

// systemHealthHandler scores the known agents and aggregates system health
func systemHealthHandler(evaluator *evaluation.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		alertThreshold := queryFloat(r, "alert_threshold", 0.7)

		components := r.URL.Query()["component"]
		if len(components) == 0 {
			components = []string{"research_agent", "database_agent", "coding_agent", "workflow_agent"}
		}

		scores := make(map[string]float64, len(components))
		for _, component := range components {
			result, err := evaluator.Evaluate(r.Context(), component, nil, 24)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			scores[component] = result.OverallScore
		}

		writeJSON(w, http.StatusOK, evaluation.MonitorHealth(scores, alertThreshold))
	}
}

// queryFloat parses a float query parameter with a fallback
func queryFloat(r *http.Request, name string, fallback float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}
