package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/weightstats/internal/weight"
	"github.com/2beens/weightstats/internal/weight/handler"
	"github.com/2beens/weightstats/internal/weight/service"
	"github.com/2beens/weightstats/internal/weight/store"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"golang.org/x/text/language"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func floatPtr(f float64) *float64 {
	return &f
}

func newRouter(t *testing.T) (*mux.Router, *MockweightService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockService := NewMockweightService(ctrl)
	r := mux.NewRouter()
	handler.NewHandler(mockService).SetupRoutes(r)
	return r, mockService
}

func serve(r http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHandler_HandleList(t *testing.T) {
	r, mockService := newRouter(t)

	entries := []service.Entry{
		{Index: 0, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Weight: 100},
		{Index: 1, Date: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), Weight: 98},
	}
	mockService.EXPECT().List(gomock.Any()).Return(entries, nil)

	rr := serve(r, http.MethodGet, "/weight/entries", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got []service.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, entries, got)
}

func TestHandler_HandleList_Error(t *testing.T) {
	r, mockService := newRouter(t)
	mockService.EXPECT().List(gomock.Any()).Return(nil, errors.New("disk on fire"))

	rr := serve(r, http.MethodGet, "/weight/entries", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "disk on fire")
}

func TestHandler_HandleAdd(t *testing.T) {
	r, mockService := newRouter(t)

	expected := weight.Observation{Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Weight: 80.5}
	mockService.EXPECT().Add(gomock.Any(), expected).Return(nil)

	rr := serve(r, http.MethodPost, "/weight/entries", []byte(`{"date":"2024-01-15","weight":80.5}`))
	require.Equal(t, http.StatusCreated, rr.Code)

	var got weight.Observation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.True(t, expected.Date.Equal(got.Date))
	assert.Equal(t, 80.5, got.Weight)
}

func TestHandler_HandleAdd_RFC3339(t *testing.T) {
	r, mockService := newRouter(t)

	mockService.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, obs weight.Observation) error {
			assert.True(t, obs.Date.Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)))
			return nil
		})

	rr := serve(r, http.MethodPost, "/weight/entries", []byte(`{"date":"2024-01-15T07:30:00-03:00","weight":80}`))
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestHandler_HandleAdd_BadRequests(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"date":`},
		{name: "missing date", body: `{"weight":80}`},
		{name: "bad date", body: `{"date":"15/01/2024","weight":80}`},
		{name: "zero weight", body: `{"date":"2024-01-15","weight":0}`},
		{name: "negative weight", body: `{"date":"2024-01-15","weight":-2}`},
		{name: "overflowing weight", body: `{"date":"2024-01-15","weight":1e400}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// no service call expected
			r, _ := newRouter(t)
			rr := serve(r, http.MethodPost, "/weight/entries", []byte(tc.body))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandler_HandleAdd_InvalidContentType(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/weight/entries", bytes.NewBufferString(`{"date":"2024-01-15","weight":80}`))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_HandleUpdate(t *testing.T) {
	r, mockService := newRouter(t)

	expected := weight.Observation{Date: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), Weight: 97}
	mockService.EXPECT().Update(gomock.Any(), 1, expected).Return(nil)

	rr := serve(r, http.MethodPut, "/weight/entries/1", []byte(`{"date":"2024-01-08","weight":97}`))
	require.Equal(t, http.StatusOK, rr.Code)

	var got service.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Index)
	assert.Equal(t, 97.0, got.Weight)
}

func TestHandler_HandleUpdate_NotFound(t *testing.T) {
	r, mockService := newRouter(t)

	mockService.EXPECT().
		Update(gomock.Any(), 7, gomock.Any()).
		Return(store.ErrEntryNotFound)

	rr := serve(r, http.MethodPut, "/weight/entries/7", []byte(`{"date":"2024-01-08","weight":97}`))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_HandleUpdate_InvalidIndex(t *testing.T) {
	r, _ := newRouter(t)

	rr := serve(r, http.MethodPut, "/weight/entries/abc", []byte(`{"date":"2024-01-08","weight":97}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(r, http.MethodPut, "/weight/entries/-1", []byte(`{"date":"2024-01-08","weight":97}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_HandleDelete(t *testing.T) {
	r, mockService := newRouter(t)

	gomock.InOrder(
		mockService.EXPECT().Remove(gomock.Any(), 0).Return(nil),
		mockService.EXPECT().Remove(gomock.Any(), 3).Return(store.ErrEntryNotFound),
		mockService.EXPECT().Remove(gomock.Any(), 4).Return(errors.New("boom")),
	)

	rr := serve(r, http.MethodDelete, "/weight/entries/0", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "removed", rr.Body.String())

	rr = serve(r, http.MethodDelete, "/weight/entries/3", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(r, http.MethodDelete, "/weight/entries/4", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandler_HandleChart_TargetResolution(t *testing.T) {
	testCases := []struct {
		name        string
		query       string
		granularity weight.Granularity
		target      *float64
	}{
		{name: "defaults", query: "", granularity: weight.GranularityAll, target: floatPtr(90)},
		{name: "explicit target", query: "?granularity=weekly&target=85.5", granularity: weight.GranularityWeekly, target: floatPtr(85.5)},
		{name: "target unset", query: "?granularity=monthly&target=none", granularity: weight.GranularityMonthly, target: nil},
		{name: "empty target unsets", query: "?target=", granularity: weight.GranularityAll, target: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, mockService := newRouter(t)
			mockService.EXPECT().DefaultTarget().Return(floatPtr(90)).AnyTimes()
			mockService.EXPECT().
				Chart(gomock.Any(), service.ChartParams{Granularity: tc.granularity, Target: tc.target}).
				Return(&service.ChartView{
					Granularity: tc.granularity,
					Target:      tc.target,
					Chart: weight.Chart{
						Historical: []weight.Point{},
						Projected:  []weight.Point{},
					},
				}, nil)

			rr := serve(r, http.MethodGet, "/weight/chart"+tc.query, nil)
			require.Equal(t, http.StatusOK, rr.Code)

			var got service.ChartView
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, tc.granularity, got.Granularity)
			assert.Equal(t, tc.target, got.Target)
		})
	}
}

func TestHandler_HandleChart_BadRequests(t *testing.T) {
	r, mockService := newRouter(t)
	mockService.EXPECT().DefaultTarget().Return(nil).AnyTimes()

	for _, query := range []string{
		"?granularity=yearly", "?target=heavy", "?target=-4", "?target=0",
		"?target=NaN", "?target=Inf", "?target=%2BInf", "?target=-Inf", "?target=1e400",
	} {
		rr := serve(r, http.MethodGet, "/weight/chart"+query, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, query)
	}
}

func TestHandler_HandleProjection_NonFiniteTarget(t *testing.T) {
	r, mockService := newRouter(t)
	mockService.EXPECT().DefaultTarget().Return(nil).AnyTimes()

	for _, query := range []string{"?target=NaN", "?target=Inf", "?target=-Inf"} {
		rr := serve(r, http.MethodGet, "/weight/projection"+query, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, query)
	}
}

func TestHandler_InvalidTargetFromServiceIsBadRequest(t *testing.T) {
	r, mockService := newRouter(t)
	mockService.EXPECT().
		Projection(gomock.Any(), 90.0).
		Return(nil, fmt.Errorf("%w: 90", weight.ErrInvalidTarget))

	rr := serve(r, http.MethodGet, "/weight/projection?target=90", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_HandleProjection(t *testing.T) {
	r, mockService := newRouter(t)

	date := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	slope := -0.2857
	mockService.EXPECT().
		Projection(gomock.Any(), 90.0).
		Return(&service.Projection{Target: 90, Date: &date, Text: "projected completion: 05/02/2024", SlopePerDay: &slope, Points: 3}, nil)

	rr := serve(r, http.MethodGet, "/weight/projection?target=90", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got service.Projection
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.NotNil(t, got.Date)
	assert.True(t, date.Equal(*got.Date))
	assert.Equal(t, 3, got.Points)
}

func TestHandler_HandleProjection_NoTarget(t *testing.T) {
	r, mockService := newRouter(t)
	mockService.EXPECT().DefaultTarget().Return(nil)

	rr := serve(r, http.MethodGet, "/weight/projection", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(r, http.MethodGet, "/weight/projection?target=none", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_RealService(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	builder := weight.NewBuilder(
		weight.NewEstimator(weight.DefaultTrendWindow, func() time.Time { return now }),
		weight.BuilderOptions{Language: language.AmericanEnglish},
	)
	svc := service.New(service.Params{
		Store:         store.NewMemory(),
		Builder:       builder,
		DefaultTarget: floatPtr(90),
	})
	r := mux.NewRouter()
	handler.NewHandler(svc).SetupRoutes(r)

	for _, body := range []string{
		`{"date":"2024-01-01","weight":100}`,
		`{"date":"2024-01-08","weight":98}`,
		`{"date":"2024-01-15","weight":96}`,
	} {
		rr := serve(r, http.MethodPost, "/weight/entries", []byte(body))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr := serve(r, http.MethodGet, "/weight/chart", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var chart service.ChartView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &chart))
	assert.Len(t, chart.Historical, 3)
	require.Len(t, chart.Projected, 2)
	assert.Equal(t, 90.0, chart.Projected[1].Weight)
	assert.Equal(t, "projected completion: 02/05/2024", chart.Completion.Text)

	rr = serve(r, http.MethodDelete, "/weight/entries/5", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(r, http.MethodDelete, "/weight/entries/2", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(r, http.MethodGet, "/weight/entries", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var entries []service.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)
}

func TestParseDate(t *testing.T) {
	got, err := handler.ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = handler.ParseDate(" ")
	assert.ErrorIs(t, err, weight.ErrInvalidObservation)

	_, err = handler.ParseDate("yesterday")
	assert.ErrorIs(t, err, weight.ErrInvalidObservation)
}
