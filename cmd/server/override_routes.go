package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"deep-agent/pkg/database"
	"deep-agent/pkg/overrides"
)

// OverrideRoutes sets up the prompt override API routes
func OverrideRoutes(router *mux.Router, service *overrides.Service) {
	apiRouter := router.PathPrefix("/api/overrides").Subrouter()

	apiRouter.HandleFunc("", saveOverrideHandler(service)).Methods("POST")
	apiRouter.HandleFunc("", listOverridesHandler(service)).Methods("GET")
	apiRouter.HandleFunc("/{agent_name}", getOverrideHandler(service)).Methods("GET")
	apiRouter.HandleFunc("/{agent_name}", removeOverrideHandler(service)).Methods("DELETE")
}

// saveOverrideHandler validates and persists a new prompt override
func saveOverrideHandler(service *overrides.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req database.SaveOverrideRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		override, err := service.Save(r.Context(), &req)
		if err != nil {
			var validationErr *overrides.ValidationError
			if errors.As(err, &validationErr) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, override)
	}
}

// listOverridesHandler returns the full override history, newest first
func listOverridesHandler(service *overrides.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overrideList, err := service.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"count":     len(overrideList),
			"overrides": overrideList,
		})
	}
}

// getOverrideHandler returns the agent's active override
func getOverrideHandler(service *overrides.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentName := mux.Vars(r)["agent_name"]

		override, err := service.Active(r.Context(), agentName)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if override == nil {
			http.Error(w, "no active override for "+agentName, http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, override)
	}
}

// removeOverrideHandler reverts an agent to its default prompt
func removeOverrideHandler(service *overrides.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentName := mux.Vars(r)["agent_name"]

		removed, err := service.Remove(r.Context(), agentName)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !removed {
			http.Error(w, "no active override for "+agentName, http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"removed":    true,
			"agent_name": agentName,
		})
	}
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
