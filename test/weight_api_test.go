package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/2beens/weightstats/internal/middleware"
	"github.com/2beens/weightstats/internal/weight/service"
)

func (s *IntegrationTestSuite) newRequest(method, path string, body any) *http.Request {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, serverEndpoint+path, reader)
	s.Require().NoError(err)
	req.Header.Set("User-Agent", "weightctl/integration")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func (s *IntegrationTestSuite) do(req *http.Request) (int, []byte) {
	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, respBody
}

func (s *IntegrationTestSuite) authorized(req *http.Request) *http.Request {
	req.Header.Set(middleware.TokenHeader, testToken)
	return req
}

func (s *IntegrationTestSuite) countRows() int {
	var count int
	s.Require().NoError(s.DB.QueryRow("SELECT COUNT(*) FROM weight_entry").Scan(&count))
	return count
}

func (s *IntegrationTestSuite) TestWeightEntries_Unauthorized() {
	status, _ := s.do(s.newRequest(http.MethodPost, "/weight/entries", map[string]any{
		"date":   "2024-01-01",
		"weight": 100,
	}))
	s.Equal(http.StatusUnauthorized, status)
	s.Equal(0, s.countRows())
}

func (s *IntegrationTestSuite) TestWeightEntries_AddUpdateRemove() {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i, w := range []float64{100, 98, 96} {
		date := today.AddDate(0, 0, -7*(2-i)).Format(time.DateOnly)
		status, body := s.do(s.authorized(s.newRequest(http.MethodPost, "/weight/entries", map[string]any{
			"date":   date,
			"weight": w,
		})))
		s.Require().Equal(http.StatusCreated, status, string(body))
	}
	s.Equal(3, s.countRows())

	var stored float64
	s.Require().NoError(s.DB.QueryRow(
		"SELECT weight FROM weight_entry ORDER BY measured_at DESC LIMIT 1",
	).Scan(&stored))
	s.Equal(96.0, stored)

	status, body := s.do(s.newRequest(http.MethodGet, "/weight/entries", nil))
	s.Require().Equal(http.StatusOK, status)
	var entries []service.Entry
	s.Require().NoError(json.Unmarshal(body, &entries))
	s.Require().Len(entries, 3)
	s.Equal(100.0, entries[0].Weight)

	status, body = s.do(s.authorized(s.newRequest(http.MethodPut, "/weight/entries/1", map[string]any{
		"date":   today.AddDate(0, 0, -7).Format(time.DateOnly),
		"weight": 97.5,
	})))
	s.Require().Equal(http.StatusOK, status, string(body))
	var updated int
	s.Require().NoError(s.DB.QueryRow(
		"SELECT COUNT(*) FROM weight_entry WHERE weight = 97.5",
	).Scan(&updated))
	s.Equal(1, updated)

	status, body = s.do(s.newRequest(http.MethodGet, "/weight/chart?granularity=weekly&target=90", nil))
	s.Require().Equal(http.StatusOK, status, string(body))
	var chart service.ChartView
	s.Require().NoError(json.Unmarshal(body, &chart))
	s.Len(chart.Historical, 3)
	s.NotEmpty(chart.Projected)
	s.Len(chart.GoalLines, 2)
	s.NotNil(chart.Completion.Date)

	status, body = s.do(s.newRequest(http.MethodGet, "/weight/projection?target=90", nil))
	s.Require().Equal(http.StatusOK, status, string(body))
	var projection service.Projection
	s.Require().NoError(json.Unmarshal(body, &projection))
	s.Equal(3, projection.Points)
	s.NotNil(projection.Date)

	status, _ = s.do(s.authorized(s.newRequest(http.MethodDelete, "/weight/entries/0", nil)))
	s.Equal(http.StatusOK, status)
	s.Equal(2, s.countRows())

	status, _ = s.do(s.authorized(s.newRequest(http.MethodDelete, "/weight/entries/7", nil)))
	s.Equal(http.StatusNotFound, status)
	s.Equal(2, s.countRows())
}

func (s *IntegrationTestSuite) TestWeightEntries_RejectsInvalid() {
	for _, body := range []map[string]any{
		{"date": "2024-01-01", "weight": 0},
		{"date": "2024-01-01", "weight": -3},
		{"date": "yesterday", "weight": 80},
	} {
		status, _ := s.do(s.authorized(s.newRequest(http.MethodPost, "/weight/entries", body)))
		s.Equal(http.StatusBadRequest, status, fmt.Sprintf("%v", body))
	}
	s.Equal(0, s.countRows())
}
