package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/signal-backtester/src/backtester/metrics"
	"github.com/jiaming2012/signal-backtester/src/backtester/models"
	"github.com/jiaming2012/signal-backtester/src/eventservices"
)

type backtestRun struct {
	result       *models.BacktestResult
	riskFreeRate float64
}

// todo: move state to database
var (
	mu      sync.RWMutex
	results = map[uuid.UUID]*backtestRun{}
)

var queryDecoder = schema.NewDecoder()

type errorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

func NewErrorResponse(errType string, message string) *errorResponse {
	return &errorResponse{
		Type: errType,
		Msg:  message,
	}
}

func setResponse(response interface{}, statusCode int, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		return fmt.Errorf("setResponse: encode: %w", err)
	}

	return nil
}

func setErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := NewErrorResponse(errType, err.Error())
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		return encodeErr
	}

	return nil
}

func getRun(r *http.Request) (*backtestRun, error) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		return nil, fmt.Errorf("invalid backtest id: %w", err)
	}

	mu.RLock()
	defer mu.RUnlock()

	run, found := results[id]
	if !found {
		return nil, fmt.Errorf("backtest %s not found", id)
	}

	return run, nil
}

type CreateBacktestRequest struct {
	QuotesFile   string          `json:"quotes_file"`
	SignalsFile  string          `json:"signals_file"`
	Config       json.RawMessage `json:"config,omitempty"`
	RiskFreeRate float64         `json:"risk_free_rate"`
}

type CreateBacktestResponse struct {
	ID      uuid.UUID        `json:"id"`
	Summary *metrics.Summary `json:"summary"`
}

func handleCreateBacktest(w http.ResponseWriter, r *http.Request) {
	var req CreateBacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		setErrorResponse("bad_request", http.StatusBadRequest, err, w)
		return
	}

	if req.QuotesFile == "" || req.SignalsFile == "" {
		setErrorResponse("bad_request", http.StatusBadRequest, fmt.Errorf("quotes_file and signals_file are required"), w)
		return
	}

	// config carries overrides: unmarshal over the defaults so omitted
	// fields keep their default values
	cfg := models.NewBacktestConfig()
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			setErrorResponse("bad_request", http.StatusBadRequest, fmt.Errorf("invalid config: %w", err), w)
			return
		}
	}

	quotes, err := eventservices.LoadOptionQuotes(req.QuotesFile)
	if err != nil {
		setErrorResponse("load_quotes", http.StatusUnprocessableEntity, err, w)
		return
	}

	signals, err := eventservices.LoadSignalEvents(req.SignalsFile)
	if err != nil {
		setErrorResponse("load_signals", http.StatusUnprocessableEntity, err, w)
		return
	}

	result, err := models.RunBacktest(quotes, signals, cfg)
	if err != nil {
		setErrorResponse("run_backtest", http.StatusUnprocessableEntity, err, w)
		return
	}

	mu.Lock()
	results[result.ID] = &backtestRun{result: result, riskFreeRate: req.RiskFreeRate}
	mu.Unlock()

	log.Infof("created backtest %s: %d trades over %d dates", result.ID, len(result.Trades), len(result.Dates))

	resp := CreateBacktestResponse{
		ID:      result.ID,
		Summary: metrics.NewSummary(result, req.RiskFreeRate),
	}

	if err := setResponse(resp, http.StatusCreated, w); err != nil {
		log.Errorf("handleCreateBacktest: %v", err)
	}
}

func handleBacktest(w http.ResponseWriter, r *http.Request) {
	run, err := getRun(r)
	if err != nil {
		setErrorResponse("not_found", http.StatusNotFound, err, w)
		return
	}

	if err := setResponse(metrics.NewSummary(run.result, run.riskFreeRate), http.StatusOK, w); err != nil {
		log.Errorf("handleBacktest: %v", err)
	}
}

type ListTradesRequest struct {
	Limit  int `schema:"limit"`
	Offset int `schema:"offset"`
}

func handleTrades(w http.ResponseWriter, r *http.Request) {
	run, err := getRun(r)
	if err != nil {
		setErrorResponse("not_found", http.StatusNotFound, err, w)
		return
	}

	var req ListTradesRequest
	if err := queryDecoder.Decode(&req, r.URL.Query()); err != nil {
		setErrorResponse("bad_request", http.StatusBadRequest, err, w)
		return
	}

	trades := run.result.Trades
	if req.Offset > 0 {
		if req.Offset >= len(trades) {
			trades = []*models.Trade{}
		} else {
			trades = trades[req.Offset:]
		}
	}

	if req.Limit > 0 && req.Limit < len(trades) {
		trades = trades[:req.Limit]
	}

	if err := setResponse(trades, http.StatusOK, w); err != nil {
		log.Errorf("handleTrades: %v", err)
	}
}

func handleEquity(w http.ResponseWriter, r *http.Request) {
	run, err := getRun(r)
	if err != nil {
		setErrorResponse("not_found", http.StatusNotFound, err, w)
		return
	}

	if err := setResponse(run.result.EquityPoints, http.StatusOK, w); err != nil {
		log.Errorf("handleEquity: %v", err)
	}
}

func handleDrawdown(w http.ResponseWriter, r *http.Request) {
	run, err := getRun(r)
	if err != nil {
		setErrorResponse("not_found", http.StatusNotFound, err, w)
		return
	}

	if err := setResponse(metrics.DrawdownSeries(run.result.EquityCurve), http.StatusOK, w); err != nil {
		log.Errorf("handleDrawdown: %v", err)
	}
}

func SetupHandler(router *mux.Router) {
	queryDecoder.IgnoreUnknownKeys(true)

	// tag each handler with its pattern so http.route lands on the span
	handle := func(pattern string, f func(http.ResponseWriter, *http.Request)) *mux.Route {
		return router.Handle(pattern, otelhttp.WithRouteTag(pattern, http.HandlerFunc(f)))
	}

	handle("/backtests", handleCreateBacktest).Methods("POST")
	handle("/backtests/{id}", handleBacktest).Methods("GET")
	handle("/backtests/{id}/trades", handleTrades).Methods("GET")
	handle("/backtests/{id}/equity", handleEquity).Methods("GET")
	handle("/backtests/{id}/drawdown", handleDrawdown).Methods("GET")
}
