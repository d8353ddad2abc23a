package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/2beens/trendweight/internal/weightstats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) doRequest(
	ctx context.Context,
	method, path string,
	body []byte,
	withToken bool,
) (*http.Response, []byte) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reader)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if withToken {
		req.Header.Set("X-TW-TOKEN", testAPIToken)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	return resp, respBytes
}

func (s *IntegrationTestSuite) TestMisc() {
	ctx := context.Background()

	resp, body := s.doRequest(ctx, "GET", "/ping", nil, false)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), `{"ping":"pong"}`, string(body))

	resp, body = s.doRequest(ctx, "GET", "/version", nil, false)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), "test-version-info", string(body))
}

func (s *IntegrationTestSuite) TestIngestAuth() {
	ctx := context.Background()

	rawJson, err := json.Marshal(weightstats.RawInput{
		Weights: map[string]float64{"2024-03-01": 80.0},
	})
	require.NoError(s.T(), err)

	// the write surface needs the API token
	resp, _ := s.doRequest(ctx, "POST", "/weightstats/data", rawJson, false)
	require.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)

	// the read surface does not
	resp, _ = s.doRequest(ctx, "GET", "/weightstats/records", nil, false)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestIngestAndQuery() {
	ctx := context.Background()

	raw := weightstats.RawInput{
		Weights:       make(map[string]float64),
		CalorieIntake: make(map[string]float64),
		Expenditure:   make(map[string]float64),
	}
	for i := 0; i < 30; i++ {
		key := fmt.Sprintf("2024-03-%02d", i+1)
		raw.Weights[key] = 85.0 - 0.1*float64(i)
		raw.CalorieIntake[key] = 2000
		raw.Expenditure[key] = 2770
	}
	rawJson, err := json.Marshal(raw)
	require.NoError(s.T(), err)

	resp, body := s.doRequest(ctx, "POST", "/weightstats/data?sync=true", rawJson, true)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), `{"records":30}`, string(body))

	resp, body = s.doRequest(ctx, "GET", "/weightstats/records", nil, false)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var records []weightstats.DailyRecord
	require.NoError(s.T(), json.Unmarshal(body, &records))
	require.Len(s.T(), records, 30)
	require.NotNil(s.T(), records[29].SMA)
	require.NotNil(s.T(), records[29].SmoothedRate)
	assert.InDelta(s.T(), -0.7, *records[29].SmoothedRate, 0.01)

	resp, body = s.doRequest(
		ctx,
		"GET", "/weightstats/stats?from=2024-03-01&to=2024-03-30&goal_weight=80",
		nil, false,
	)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var stats weightstats.DisplayStats
	require.NoError(s.T(), json.Unmarshal(body, &stats))
	require.NotNil(s.T(), stats.Regression)
	assert.InDelta(s.T(), -0.1, stats.Regression.Slope, 0.01)
	require.NotNil(s.T(), stats.Goal)
	assert.Equal(s.T(), 80.0, stats.Goal.TargetWeight)
	require.NotNil(s.T(), stats.Range.AvgNetBalance)
	assert.InDelta(s.T(), -770.0, *stats.Range.AvgNetBalance, 1e-6)

	resp, body = s.doRequest(ctx, "GET", "/weightstats/weekly", nil, false)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var weekly []weightstats.WeeklyAggregate
	require.NoError(s.T(), json.Unmarshal(body, &weekly))
	assert.NotEmpty(s.T(), weekly)

	resp, body = s.doRequest(ctx, "GET", "/weightstats/correlations", nil, false)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var matrix weightstats.CorrelationMatrix
	require.NoError(s.T(), json.Unmarshal(body, &matrix))
	assert.Equal(s.T(), weightstats.CorrelationVariables, matrix.Variables)

	resp, body = s.doRequest(ctx, "GET", "/weightstats/phases", nil, false)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var phases []weightstats.Phase
	require.NoError(s.T(), json.Unmarshal(body, &phases))
	require.NotEmpty(s.T(), phases)
	assert.Equal(s.T(), weightstats.PhaseCut, phases[0].Type)
}

func (s *IntegrationTestSuite) TestAsyncIngest() {
	ctx := context.Background()

	rawJson, err := json.Marshal(weightstats.RawInput{
		Weights: map[string]float64{"2023-01-01": 90.0},
	})
	require.NoError(s.T(), err)

	resp, body := s.doRequest(ctx, "POST", "/weightstats/data", rawJson, true)
	require.Equal(s.T(), http.StatusAccepted, resp.StatusCode)
	assert.Equal(s.T(), `{"queued":true}`, string(body))

	// drained by the recompute loop shortly after
	require.Eventually(s.T(), func() bool {
		resp, body := s.doRequest(ctx, "GET", "/weightstats/records", nil, false)
		if resp.StatusCode != http.StatusOK {
			return false
		}
		var records []weightstats.DailyRecord
		if err := json.Unmarshal(body, &records); err != nil {
			return false
		}
		return len(records) == 1
	}, 5*time.Second, 50*time.Millisecond)
}
