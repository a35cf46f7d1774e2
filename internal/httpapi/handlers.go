package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"tripwallet/internal/core"
	"tripwallet/internal/log"
	"tripwallet/internal/rates"
	"tripwallet/internal/services"
	"tripwallet/internal/storage"
)

type handlers struct {
	svc    *services.Service
	logger *slog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the engine's error kinds onto status codes: validation
// errors are the caller's fault, an exhausted rate chain is a bad upstream,
// storage trouble is ours.
func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var unavailable *rates.UnavailableError
	var storageErr *storage.StorageError
	switch {
	case errors.Is(err, core.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrNoHomeCountry):
		status = http.StatusConflict
	case errors.As(err, &unavailable):
		status = http.StatusBadGateway
	case errors.As(err, &storageErr):
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldPath, r.URL.Path)
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseFilter reads the sparse expense filter from query parameters.
func parseFilter(r *http.Request) (core.ExpenseFilter, error) {
	var f core.ExpenseFilter
	q := r.URL.Query()

	for param, target := range map[string]**int64{
		"country_id": &f.CountryID,
		"trip_id":    &f.TripID,
		"date_start": &f.DateStart,
		"date_end":   &f.DateEnd,
	} {
		if v := q.Get(param); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return f, fmt.Errorf("%w: bad %s", core.ErrValidation, param)
			}
			*target = &n
		}
	}
	f.Category = q.Get("category")
	f.MonthYear = q.Get("month_year")
	return f, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id", core.ErrValidation)
	}
	return id, nil
}

func (h *handlers) listExpenses(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rows, err := h.svc.ListExpenses(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []core.ExpandedExpense{}
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *handlers) createExpense(w http.ResponseWriter, r *http.Request) {
	var draft services.ExpenseDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	id, err := h.svc.CreateExpense(r.Context(), draft)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *handlers) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteExpense(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) sumHomeCurrency(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sum, err := h.svc.SumHomeCurrency(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"sum": sum})
}

func (h *handlers) groupedStatistics(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	groups, err := h.svc.GroupedStatistics(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, groups)
}

func (h *handlers) listTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.svc.ListTrips(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if trips == nil {
		trips = []core.Trip{}
	}
	h.writeJSON(w, http.StatusOK, trips)
}

func (h *handlers) createTrip(w http.ResponseWriter, r *http.Request) {
	var trip core.Trip
	if err := json.NewDecoder(r.Body).Decode(&trip); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	id, err := h.svc.AddTrip(r.Context(), trip)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *handlers) activeTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := h.svc.ActiveTrip(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if trip == nil {
		// No active trip is a normal state, not an error.
		h.writeJSON(w, http.StatusOK, nil)
		return
	}
	h.writeJSON(w, http.StatusOK, trip)
}

func (h *handlers) activateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.SetActiveTrip(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) deleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteTrip(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.svc.ListCountries(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, countries)
}

func (h *handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, categories)
}

func (h *handlers) createCategory(w http.ResponseWriter, r *http.Request) {
	var c core.CustomCategory
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	id, err := h.svc.AddCustomCategory(r.Context(), c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *handlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCustomCategory(r.Context(), chi.URLParam(r, "key")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) resolveRate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, date := q.Get("from"), q.Get("to"), q.Get("date")
	if from == "" || to == "" || date == "" {
		h.writeError(w, r, fmt.Errorf("%w: from, to and date are required", core.ErrValidation))
		return
	}
	factor, err := h.svc.ResolveRate(r.Context(), from, to, date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]float64{"factor": factor})
}

func (h *handlers) dump(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.svc.Dump(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="tripwallet-backup.json"`)
	_, _ = io.WriteString(w, snapshot)
}

func (h *handlers) restore(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 64<<20))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	if err := h.svc.Restore(r.Context(), string(body)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type countryRef struct {
	CountryID int64 `json:"country_id"`
}

func (h *handlers) homeCountry(w http.ResponseWriter, r *http.Request) {
	country, err := h.svc.HomeCountry(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, country)
}

func (h *handlers) setHomeCountry(w http.ResponseWriter, r *http.Request) {
	var ref countryRef
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	if err := h.svc.SetHomeCountry(r.Context(), ref.CountryID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) currentCountry(w http.ResponseWriter, r *http.Request) {
	country, err := h.svc.CurrentCountry(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, country)
}

func (h *handlers) setCurrentCountry(w http.ResponseWriter, r *http.Request) {
	var ref countryRef
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	if err := h.svc.SetCurrentCountry(r.Context(), ref.CountryID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) subscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.Subscription(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sub)
}

func (h *handlers) setSubscription(w http.ResponseWriter, r *http.Request) {
	var sub struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	if err := h.svc.SetSubscription(r.Context(), sub.Active); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
