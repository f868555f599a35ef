package storage

import (
	"os"
	"sync"
)

// Credentials holds the exchange endpoints and API keys. Endpoints are fixed
// at startup (environment overrides supported); API keys are supplied by the
// UI collaborator at runtime via the credentials endpoint and are never
// persisted here. BINANCE_API_KEY/BINANCE_API_SECRET may pre-seed them.
type Credentials struct {
	mu        sync.RWMutex
	apiKey    string
	apiSecret string

	websocketURL        string
	restURL             string
	telegramBotAPIToken string
	databaseDSN         string
	serverAddress       string
}

func NewCredentialsStorage() *Credentials {
	credentials := Credentials{}

	credentials.apiKey = os.Getenv("BINANCE_API_KEY")
	credentials.apiSecret = os.Getenv("BINANCE_API_SECRET")
	credentials.telegramBotAPIToken = os.Getenv("TELEGRAM_BOT_API_TOKEN")
	credentials.databaseDSN = os.Getenv("DATABASE_DSN")

	credentials.websocketURL = envOrDefault("BINANCE_WS_URL", "wss://stream.binance.com:9443/ws")
	credentials.restURL = envOrDefault("BINANCE_REST_URL", "https://api.binance.com")
	credentials.serverAddress = envOrDefault("SERVER_ADDRESS", ":5000")

	return &credentials
}

// SetAPIKeys replaces the API key pair (initial supply or rotation).
func (credentials *Credentials) SetAPIKeys(apiKey string, apiSecret string) {
	credentials.mu.Lock()
	defer credentials.mu.Unlock()
	credentials.apiKey = apiKey
	credentials.apiSecret = apiSecret
}

func (credentials *Credentials) HasAPIKeys() bool {
	credentials.mu.RLock()
	defer credentials.mu.RUnlock()
	return credentials.apiKey != "" && credentials.apiSecret != ""
}

func (credentials *Credentials) GetAPIKey() string {
	credentials.mu.RLock()
	defer credentials.mu.RUnlock()
	return credentials.apiKey
}

func (credentials *Credentials) GetAPISecret() string {
	credentials.mu.RLock()
	defer credentials.mu.RUnlock()
	return credentials.apiSecret
}

func (credentials *Credentials) GetWebsocketURL() string {
	return credentials.websocketURL
}

func (credentials *Credentials) GetRESTURL() string {
	return credentials.restURL
}

func (credentials *Credentials) GetTelegramBotAPIToken() string {
	return credentials.telegramBotAPIToken
}

func (credentials *Credentials) GetDatabaseDSN() string {
	return credentials.databaseDSN
}

func (credentials *Credentials) GetServerAddress() string {
	return credentials.serverAddress
}

func envOrDefault(keyName string, fallback string) string {
	if value := os.Getenv(keyName); value != "" {
		return value
	}
	return fallback
}
