package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kycreview/internal/backend"
	"kycreview/internal/customer"
	"kycreview/internal/db"
	"kycreview/internal/metrics"
	"kycreview/internal/server"
	"kycreview/internal/storage"
	"kycreview/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

// draftBackend is a draft store that can also drop stale drafts.
type draftBackend interface {
	server.DraftStore
	PurgeDraftsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger, err := newLogger(config)
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)
	s3Client := s3.NewFromConfig(awsConfig)

	var drafts draftBackend
	if config.DatabaseURL != "" {
		pool, err := db.Connect(ctx, config)
		if err != nil {
			return err
		}
		defer pool.Close()

		drafts = store.NewDraftRepository(pool)
		logger.Info("review drafts stored in postgres")
	} else {
		drafts = store.NewMemoryDraftStore()
		logger.Warn("DATABASE_URL not set, review drafts are kept in memory")
	}

	m := metrics.New()

	client := backend.New(config.BackendBaseURL, time.Duration(config.BackendTimeoutSec)*time.Second)
	presigner := storage.NewLinkPresigner(s3Client, time.Duration(config.LinkPresignTTLSec)*time.Second, logger)
	pipeline := customer.NewPipeline(client, presigner, m, logger)

	jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.CognitoIssuerURL)

	err = jwkCache.Register(ctx, jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register cognito jwk with cache: %w", err)
	}

	srv, err := server.New(
		config,
		logger,
		cognitoClient,
		server.NewJWKSVerifier(jwkCache, jwksURL),
		drafts,
		client,
		pipeline,
		m,
	)
	if err != nil {
		return err
	}

	go purgeStaleDrafts(ctx, logger, drafts, time.Duration(config.DraftMaxAgeHours)*time.Hour)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

// purgeStaleDrafts drops abandoned drafts once an hour until ctx ends.
func purgeStaleDrafts(ctx context.Context, logger *logrus.Logger, drafts draftBackend, maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := drafts.PurgeDraftsBefore(ctx, time.Now().Add(-maxAge))
			if err != nil {
				logger.WithError(err).Error("failed to purge stale drafts")
				continue
			}
			if purged > 0 {
				logger.WithField("purged", purged).Info("purged stale drafts")
			}
		}
	}
}
