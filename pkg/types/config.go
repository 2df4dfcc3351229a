package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"3000"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"30"`

	// Review drafts live in memory when unset
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	DraftMaxAgeHours uint   `envconfig:"DRAFT_MAX_AGE_HOURS" default:"24"`

	// KYC backend
	BackendBaseURL    string `envconfig:"BACKEND_BASE_URL" default:"http://localhost:8080"`
	BackendTimeoutSec uint   `envconfig:"BACKEND_TIMEOUT_SEC" default:"15"`

	// Cognito Auth
	CognitoClientID  string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL string `envconfig:"COGNITO_ISSUER_URL"`

	// Origins allowed to hand extracted data to /api/review-drafts
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// Lifetime of presigned URLs for s3:// link records
	LinkPresignTTLSec uint `envconfig:"LINK_PRESIGN_TTL_SEC" default:"900"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
