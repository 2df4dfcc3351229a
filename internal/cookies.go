package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "kycreview_access_token"
	COOKIE_REDIRECT_NAME     = "kycreview_redirect"
)
