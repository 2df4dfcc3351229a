package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"kycreview/internal/backend"
	"kycreview/internal/customer"
	"kycreview/internal/metrics"
	"kycreview/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

// DraftStore persists confirm-details page state between requests.
type DraftStore interface {
	Draft(ctx context.Context, id string) (*types.ReviewDraft, error)
	CreateDraft(ctx context.Context, draft *types.ReviewDraft) error
	UpdateDraft(ctx context.Context, draft *types.ReviewDraft) error
	DeleteDraft(ctx context.Context, id string) error
}

// DetailsSaver submits edited documents to the backend.
type DetailsSaver interface {
	SaveDetails(ctx context.Context, req backend.SaveRequest) (*backend.SaveResponse, error)
}

// CustomerLoader runs the user details fetch pipeline.
type CustomerLoader interface {
	Load(ctx context.Context, custID, userID string) (*customer.Profile, error)
}

// CognitoAuthenticator is the part of the Cognito client used by login.
type CognitoAuthenticator interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template
	metrics   *metrics.Metrics

	cognitoClient CognitoAuthenticator
	verifier      TokenVerifier
	cookie        *securecookie.SecureCookie

	drafts    DraftStore
	saver     DetailsSaver
	customers CustomerLoader

	handler http.Handler
	server  *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognitoClient CognitoAuthenticator,
	verifier TokenVerifier,
	drafts DraftStore,
	saver DetailsSaver,
	customers CustomerLoader,
	metrics *metrics.Metrics,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie block key: %w", err)
	}
	if len(hashKey) == 0 {
		return nil, fmt.Errorf("set COOKIE_HASH_KEY")
	}

	s := &Service{
		logger:  logger,
		config:  config,
		metrics: metrics,

		cognitoClient: cognitoClient,
		verifier:      verifier,
		cookie:        securecookie.New(hashKey, blockKey),

		drafts:    drafts,
		saver:     saver,
		customers: customers,

		handler: mux,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	if err := s.buildRouter(mux); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler without a listener.
func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) buildRouter(r *flow.Mux) error {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler(), http.MethodGet)

	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handlePostLogout, http.MethodPost)

	// Upload pages on other origins hand extracted data over here. CORS has
	// to answer the preflight before authentication runs.
	handoffCORS := cors.New(cors.Options{
		AllowedOrigins:   s.config.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodPost},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	r.Handle(
		"/api/review-drafts",
		handoffCORS.Handler(s.RequireAPIAuth(http.HandlerFunc(s.handlePostReviewDraftAPI))),
		http.MethodPost, http.MethodOptions,
	)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/", s.handleHome, http.MethodGet)

		r.HandleFunc("/confirm-details", s.handleGetConfirmDetailsEmpty, http.MethodGet)
		r.HandleFunc("/confirm-details", s.handlePostConfirmDetailsHandoff, http.MethodPost)
		r.HandleFunc("/confirm-details/:draftID", s.handleGetConfirmDetails, http.MethodGet)
		r.HandleFunc("/confirm-details/:draftID/documents/:doc/fields/open", s.handlePostOpenAddField, http.MethodPost)
		r.HandleFunc("/confirm-details/:draftID/documents/:doc/fields", s.handlePostAddField, http.MethodPost)
		r.HandleFunc("/confirm-details/:draftID/documents/:doc/fields/:field/delete", s.handlePostDeleteField, http.MethodPost)
		r.HandleFunc("/confirm-details/:draftID/confirm", s.handlePostConfirm, http.MethodPost)
		r.HandleFunc("/confirm-details/:draftID/save", s.handlePostSaveAnyway, http.MethodPost)
		r.HandleFunc("/confirm-details/:draftID/result", s.handlePostDismissResult, http.MethodPost)

		r.HandleFunc("/customers", s.handleGetCustomerLookup, http.MethodGet)
		r.HandleFunc("/customers/:custID", s.handleGetUserDetails, http.MethodGet)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		return fmt.Errorf("failed to mount static assets: %w", err)
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)

	return nil
}

// fieldLabel renders an extracted key the way the pages label it.
func fieldLabel(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

func loadTemplates() (*template.Template, error) {
	t := template.New("")
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextKeyUserID).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user id not found in context")
	}
	return userID, nil
}
