package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/signal-backtester/src/backtester/metrics"
	"github.com/jiaming2012/signal-backtester/src/backtester/models"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := mux.NewRouter()
	SetupHandler(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return server
}

func writeFixtures(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()

	quotes := "QUOTE_DATE,STRIKE,EXPIRE_DATE,C_MID,UNDERLYING_LAST,DTE\n"
	for day := 1; day <= 20; day++ {
		quotes += fmt.Sprintf("2023-03-%02d,400,2023-03-20,10.0,405,%d\n", day, 20-day)
	}

	signals := `QUOTE_DATE,STRIKE,EXPIRE_DATE,signal,price,confidence
2023-03-01,400,2023-03-20,Buy,10.0,
2023-03-10,400,2023-03-20,Sell,12.0,
`

	quotesPath := filepath.Join(dir, "quotes.csv")
	signalsPath := filepath.Join(dir, "signals.csv")
	require.NoError(t, os.WriteFile(quotesPath, []byte(quotes), 0644))
	require.NoError(t, os.WriteFile(signalsPath, []byte(signals), 0644))

	return quotesPath, signalsPath
}

func createBacktest(t *testing.T, server *httptest.Server) CreateBacktestResponse {
	t.Helper()

	quotesPath, signalsPath := writeFixtures(t)

	body, err := json.Marshal(CreateBacktestRequest{
		QuotesFile:  quotesPath,
		SignalsFile: signalsPath,
	})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/backtests", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created CreateBacktestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	return created
}

func postBacktest(t *testing.T, server *httptest.Server, req CreateBacktestRequest) (*http.Response, CreateBacktestResponse) {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/backtests", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var created CreateBacktestResponse
	if resp.StatusCode == http.StatusCreated {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	}

	return resp, created
}

func TestCreateBacktest(t *testing.T) {
	server := setupTestServer(t)

	t.Run("runs a backtest and returns a summary", func(t *testing.T) {
		created := createBacktest(t, server)

		assert.Equal(t, 1, created.Summary.TradeCount)
		assert.InDelta(t, 95.0, created.Summary.TotalPnl, 1e-9)
	})

	t.Run("missing files are rejected", func(t *testing.T) {
		body := []byte(`{"quotes_file": "", "signals_file": ""}`)
		resp, err := http.Post(server.URL+"/backtests", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("partial config keeps defaults for omitted fields", func(t *testing.T) {
		quotesPath, signalsPath := writeFixtures(t)

		resp, created := postBacktest(t, server, CreateBacktestRequest{
			QuotesFile:  quotesPath,
			SignalsFile: signalsPath,
			Config:      json.RawMessage(`{"max_positions": 5}`),
		})

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, 1, created.Summary.TradeCount)
		assert.InDelta(t, 95.0, created.Summary.TotalPnl, 1e-9)
	})

	t.Run("config overrides are applied over defaults", func(t *testing.T) {
		quotesPath, signalsPath := writeFixtures(t)

		// zero transaction cost sizes 100 contracts instead of 95
		resp, created := postBacktest(t, server, CreateBacktestRequest{
			QuotesFile:  quotesPath,
			SignalsFile: signalsPath,
			Config:      json.RawMessage(`{"transaction_cost": 0}`),
		})

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.InDelta(t, 200.0, created.Summary.TotalPnl, 1e-9)
	})

	t.Run("malformed config is rejected", func(t *testing.T) {
		quotesPath, signalsPath := writeFixtures(t)

		resp, _ := postBacktest(t, server, CreateBacktestRequest{
			QuotesFile:  quotesPath,
			SignalsFile: signalsPath,
			Config:      json.RawMessage(`{"max_positions": "five"}`),
		})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetBacktest(t *testing.T) {
	server := setupTestServer(t)
	created := createBacktest(t, server)

	t.Run("summary by id", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/backtests/%s", server.URL, created.ID))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("trades supports limit and offset", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/backtests/%s/trades?limit=1&offset=0", server.URL, created.ID))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var trades []*models.Trade
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&trades))
		assert.Len(t, trades, 1)

		resp, err = http.Get(fmt.Sprintf("%s/backtests/%s/trades?offset=10", server.URL, created.ID))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.NoError(t, json.NewDecoder(resp.Body).Decode(&trades))
		assert.Empty(t, trades)
	})

	t.Run("equity curve by id", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/backtests/%s/equity", server.URL, created.ID))
		require.NoError(t, err)
		defer resp.Body.Close()

		var points []*models.EquityPoint
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&points))
		assert.Len(t, points, 20)
	})

	t.Run("summary uses the risk-free rate the run was created with", func(t *testing.T) {
		quotesPath, signalsPath := writeFixtures(t)

		resp, posted := postBacktest(t, server, CreateBacktestRequest{
			QuotesFile:   quotesPath,
			SignalsFile:  signalsPath,
			RiskFreeRate: 0.05,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		getResp, err := http.Get(fmt.Sprintf("%s/backtests/%s", server.URL, posted.ID))
		require.NoError(t, err)
		defer getResp.Body.Close()

		require.Equal(t, http.StatusOK, getResp.StatusCode)

		var fetched metrics.Summary
		require.NoError(t, json.NewDecoder(getResp.Body).Decode(&fetched))
		assert.Equal(t, posted.Summary.SharpeRatio, fetched.SharpeRatio)
		assert.Equal(t, posted.Summary.SortinoRatio, fetched.SortinoRatio)
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/backtests/00000000-0000-0000-0000-000000000000")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
