// Package customer loads a stored customer for the user details page.
//
// Loading is a two step pipeline: FetchDetails resolves the customer's
// documents, and only a resolved Details with a document type feeds
// FetchLinks.
package customer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"kycreview/pkg/types"
)

// Fetcher is the backend surface the pipeline needs.
type Fetcher interface {
	CustomerDetails(ctx context.Context, custID, userID string) (types.Documents, error)
	CustomerLinks(ctx context.Context, custID, documentType string) ([]types.Link, error)
}

// LinkResolver rewrites link URLs before they are rendered, e.g. presigning.
type LinkResolver interface {
	ResolveLinks(ctx context.Context, links []types.Link) []types.Link
}

// FailureRecorder counts failed stages.
type FailureRecorder interface {
	CustomerFetchFailed(stage string)
}

const (
	StageDetails = "details"
	StageLinks   = "links"
)

// Details is the resolved first stage.
type Details struct {
	CustID    string
	Documents types.Documents
}

// DocumentType keys the links lookup; empty means no links stage.
func (d *Details) DocumentType() string {
	if d == nil {
		return ""
	}
	return d.Documents.FirstDocumentType()
}

type Profile struct {
	Details
	Links []types.Link
}

type Pipeline struct {
	fetcher  Fetcher
	resolver LinkResolver
	recorder FailureRecorder
	logger   *logrus.Logger
}

// NewPipeline builds a pipeline; resolver and recorder may be nil.
func NewPipeline(fetcher Fetcher, resolver LinkResolver, recorder FailureRecorder, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		resolver: resolver,
		recorder: recorder,
		logger:   logger,
	}
}

func (p *Pipeline) failed(stage string) {
	if p.recorder != nil {
		p.recorder.CustomerFetchFailed(stage)
	}
}

func (p *Pipeline) FetchDetails(ctx context.Context, custID, userID string) (*Details, error) {
	docs, err := p.fetcher.CustomerDetails(ctx, custID, userID)
	if err != nil {
		p.failed(StageDetails)
		return nil, fmt.Errorf("fetch customer details: %w", err)
	}

	return &Details{CustID: custID, Documents: docs}, nil
}

func (p *Pipeline) FetchLinks(ctx context.Context, details *Details) ([]types.Link, error) {
	documentType := details.DocumentType()
	if documentType == "" {
		return nil, nil
	}

	links, err := p.fetcher.CustomerLinks(ctx, details.CustID, documentType)
	if err != nil {
		p.failed(StageLinks)
		return nil, fmt.Errorf("fetch customer links: %w", err)
	}

	if p.resolver != nil {
		links = p.resolver.ResolveLinks(ctx, links)
	}

	return links, nil
}

// Load runs both stages. A first stage failure is returned; a links failure
// is logged and yields a profile without links.
func (p *Pipeline) Load(ctx context.Context, custID, userID string) (*Profile, error) {
	details, err := p.FetchDetails(ctx, custID, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{Details: *details}

	links, err := p.FetchLinks(ctx, details)
	if err != nil {
		p.logger.WithError(err).
			WithField("cust_id", custID).
			WithField("document_type", details.DocumentType()).
			Warn("failed to fetch customer links")
		return profile, nil
	}
	profile.Links = links

	return profile, nil
}
