package constants

// viper keys
const (
	ViperListenAddr      = "listen_addr"
	ViperDatabaseDSN     = "database_dsn"
	ViperInsightsBaseURL = "insights.base_url"
	ViperRistaBaseURL    = "rista.base_url"
	ViperRistaAPIKey     = "rista.api_key"
	ViperRistaSecretKey  = "rista.secret_key"
	ViperFetchTimeout    = "report.fetch_timeout"
	ViperAllowedOrigins  = "cors.allowed_origins"
)

// header and context keys
const (
	HeaderUserKey   = "X-User-Key"
	CtxKeyUserKey   = "user_key"
	CtxKeyRequestID = "request_id"
)
