package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/nasdaq/internal/records"
)

// GetSchemas returns every record's rule table
// GET /api/v1/schemas
func GetSchemas(w http.ResponseWriter, r *http.Request) {
	respondData(w, records.Schemas())
}

// GetSchema returns one record's rule table
// GET /api/v1/schemas/{record}
func GetSchema(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["record"]

	rules, ok := records.Schemas()[name]
	if !ok {
		respondError(w, http.StatusNotFound, "unknown record "+name)
		return
	}

	respondData(w, rules)
}
