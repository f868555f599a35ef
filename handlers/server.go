package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"binance-trade-bot/domain"
)

type engineService interface {
	Start(ctx context.Context) error
	Stop()
	SelectInstrument(symbol string) error
	SubmitTradeIntent(symbol string, amount, entryPrice, exitPrice float64) (domain.TradeIntent, error)
	CancelTradeIntent(id uint64) error
	Withdraw(percentage float64) (float64, error)
	Stats() domain.Statistics
	Trades() []domain.TradeIntent
}

type credentialsService interface {
	SetAPIKeys(apiKey string, apiSecret string)
}

type eventLogService interface {
	Recent() []domain.LogEvent
}

type serverLogger interface {
	Panic(args ...interface{})
}

// Server is the HTTP surface for the UI collaborator: it feeds credentials
// and trade intents into the engine and exposes its statistics and log.
type Server struct {
	ctx         context.Context
	engine      engineService
	credentials credentialsService
	eventLog    eventLogService
	logger      serverLogger
}

func NewServer(ctx context.Context, engineService engineService, credentialsService credentialsService, eventLogService eventLogService, serverLogger serverLogger) *Server {
	return &Server{
		ctx:         ctx,
		engine:      engineService,
		credentials: credentialsService,
		eventLog:    eventLogService,
		logger:      serverLogger,
	}
}

// Serve starts listening in the background.
func (server *Server) Serve(address string) {
	go func() {
		server.logger.Panic(http.ListenAndServe(address, server.Routes()))
	}()
}

func (server *Server) Routes() chi.Router {
	root := chi.NewRouter()

	root.Use(middleware.Logger)

	root.Put("/credentials", server.credentialsUpdate)
	root.Put("/instrument", server.instrumentUpdate)
	root.Post("/trades", server.tradeSubmit)
	root.Get("/trades", server.tradesList)
	root.Delete("/trades/{id}", server.tradeCancel)
	root.Post("/start", server.start)
	root.Post("/stop", server.stop)
	root.Post("/withdraw", server.withdraw)
	root.Get("/stats", server.stats)
	root.Get("/log", server.log)

	return root
}

type credentialsRequest struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

func (server *Server) credentialsUpdate(w http.ResponseWriter, r *http.Request) {
	var request credentialsRequest
	if !decodeBody(w, r, &request) {
		return
	}
	if request.APIKey == "" || request.APISecret == "" {
		writeError(w, http.StatusBadRequest, "both api_key and api_secret are required")
		return
	}

	server.credentials.SetAPIKeys(request.APIKey, request.APISecret)
	w.WriteHeader(http.StatusOK)
}

type instrumentRequest struct {
	Symbol string `json:"symbol"`
}

func (server *Server) instrumentUpdate(w http.ResponseWriter, r *http.Request) {
	var request instrumentRequest
	if !decodeBody(w, r, &request) {
		return
	}

	if err := server.engine.SelectInstrument(request.Symbol); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type tradeRequest struct {
	Symbol     string  `json:"symbol"`
	Amount     float64 `json:"amount"`
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`
}

func (server *Server) tradeSubmit(w http.ResponseWriter, r *http.Request) {
	var request tradeRequest
	if !decodeBody(w, r, &request) {
		return
	}

	intent, err := server.engine.SubmitTradeIntent(request.Symbol, request.Amount, request.EntryPrice, request.ExitPrice)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, intent)
}

func (server *Server) tradesList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, server.engine.Trades())
}

func (server *Server) tradeCancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "trade id must be a number")
		return
	}

	if err := server.engine.CancelTradeIntent(id); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) start(w http.ResponseWriter, r *http.Request) {
	// The engine outlives the request, so it runs on the server context.
	if err := server.engine.Start(server.ctx); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) stop(w http.ResponseWriter, r *http.Request) {
	server.engine.Stop()
	w.WriteHeader(http.StatusOK)
}

type withdrawRequest struct {
	Percentage float64 `json:"percentage"`
}

type withdrawResponse struct {
	Withdrawn float64 `json:"withdrawn"`
}

func (server *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	var request withdrawRequest
	if !decodeBody(w, r, &request) {
		return
	}

	withdrawn, err := server.engine.Withdraw(request.Percentage)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, withdrawResponse{Withdrawn: withdrawn})
}

func (server *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, server.engine.Stats())
}

func (server *Server) log(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, server.eventLog.Recent())
}

func decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeEngineError(w http.ResponseWriter, err error) {
	var validationError *domain.ValidationError
	if errors.As(err, &validationError) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, domain.ErrMissingCredentials) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
