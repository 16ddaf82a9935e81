package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/weightstats/internal/telemetry/tracing"
	"github.com/2beens/weightstats/internal/weight"
	"github.com/2beens/weightstats/internal/weight/service"
	"github.com/2beens/weightstats/internal/weight/store"
	"github.com/2beens/weightstats/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=handler_test

type weightService interface {
	DefaultTarget() *float64
	List(ctx context.Context) ([]service.Entry, error)
	Add(ctx context.Context, obs weight.Observation) error
	Update(ctx context.Context, index int, obs weight.Observation) error
	Remove(ctx context.Context, index int) error
	Chart(ctx context.Context, params service.ChartParams) (*service.ChartView, error)
	Projection(ctx context.Context, target float64) (*service.Projection, error)
}

// NoTarget is the query value that explicitly unsets the goal weight.
const NoTarget = "none"

// EntryRequest is the body of add and update calls. Date is either
// RFC 3339 or a plain yyyy-mm-dd day.
type EntryRequest struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

type Handler struct {
	service weightService
}

func NewHandler(service weightService) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/weight/entries", h.HandleList).Methods("GET", "OPTIONS").Name("list-entries")
	r.HandleFunc("/weight/entries", h.HandleAdd).Methods("POST", "OPTIONS").Name("new-entry")
	r.HandleFunc("/weight/entries/{index}", h.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-entry")
	r.HandleFunc("/weight/entries/{index}", h.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-entry")
	r.HandleFunc("/weight/chart", h.HandleChart).Methods("GET", "OPTIONS").Name("chart")
	r.HandleFunc("/weight/projection", h.HandleProjection).Methods("GET", "OPTIONS").Name("projection")
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.list")
	defer span.End()

	entries, err := h.service.List(ctx)
	if err != nil {
		log.Errorf("list weight entries: %s", err)
		http.Error(w, "list entries failed", http.StatusInternalServerError)
		return
	}
	span.SetAttributes(attribute.Int("entries", len(entries)))

	pkg.WriteJSON(w, entries, http.StatusOK)
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.add")
	defer span.End()

	obs, err := decodeEntry(r)
	if err != nil {
		log.Debugf("new weight entry: %s", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Add(ctx, obs); err != nil {
		writeServiceError(w, "add entry", err)
		return
	}

	pkg.WriteJSON(w, obs, http.StatusCreated)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.update")
	defer span.End()

	index, err := indexFromPath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("index", index))

	obs, err := decodeEntry(r)
	if err != nil {
		log.Debugf("update weight entry %d: %s", index, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Update(ctx, index, obs); err != nil {
		writeServiceError(w, "update entry", err)
		return
	}

	pkg.WriteJSON(w, service.Entry{Index: index, Date: obs.Date, Weight: obs.Weight}, http.StatusOK)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.delete")
	defer span.End()

	index, err := indexFromPath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("index", index))

	if err := h.service.Remove(ctx, index); err != nil {
		writeServiceError(w, "remove entry", err)
		return
	}

	pkg.WriteTextResponseOK(w, "removed")
}

func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.chart")
	defer span.End()

	granularity, err := weight.ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	target, err := h.targetFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	chart, err := h.service.Chart(ctx, service.ChartParams{
		Granularity: granularity,
		Target:      target,
	})
	if err != nil {
		writeServiceError(w, "chart", err)
		return
	}

	pkg.WriteJSON(w, chart, http.StatusOK)
}

func (h *Handler) HandleProjection(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.projection")
	defer span.End()

	target, err := h.targetFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if target == nil {
		http.Error(w, "target weight not set", http.StatusBadRequest)
		return
	}

	projection, err := h.service.Projection(ctx, *target)
	if err != nil {
		writeServiceError(w, "projection", err)
		return
	}

	pkg.WriteJSON(w, projection, http.StatusOK)
}

// targetFromQuery resolves the target query param: absent falls back to the
// service default, "none" unsets it.
func (h *Handler) targetFromQuery(r *http.Request) (*float64, error) {
	query := r.URL.Query()
	if !query.Has("target") {
		return h.service.DefaultTarget(), nil
	}
	raw := strings.TrimSpace(query.Get("target"))
	if raw == "" || strings.EqualFold(raw, NoTarget) {
		return nil, nil
	}
	target, err := strconv.ParseFloat(raw, 64)
	if err != nil || !weight.ValidWeight(target) {
		return nil, fmt.Errorf("invalid target: %s", raw)
	}
	return &target, nil
}

func indexFromPath(r *http.Request) (int, error) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid index: %s", vars["index"])
	}
	return index, nil
}

func decodeEntry(r *http.Request) (weight.Observation, error) {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return weight.Observation{}, errors.New("invalid content type")
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return weight.Observation{}, fmt.Errorf("unmarshal entry: %w", err)
	}

	date, err := ParseDate(req.Date)
	if err != nil {
		return weight.Observation{}, err
	}

	obs := weight.Observation{Date: date, Weight: req.Weight}
	if err := obs.Validate(); err != nil {
		return weight.Observation{}, err
	}
	return obs, nil
}

// ParseDate accepts RFC 3339 timestamps and yyyy-mm-dd days (UTC midnight).
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: date missing", weight.ErrInvalidObservation)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", weight.ErrInvalidObservation, raw)
	}
	return t, nil
}

func writeServiceError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, weight.ErrInvalidObservation), errors.Is(err, weight.ErrInvalidTarget):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrEntryNotFound):
		http.Error(w, "entry not found", http.StatusNotFound)
	default:
		log.Errorf("%s: %s", action, err)
		http.Error(w, action+" failed", http.StatusInternalServerError)
	}
}
