package storage

import (
	"context"
	"net/url"
	"strings"
	"time"

	"kycreview/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// ObjectPresigner is the subset of s3.PresignClient used here.
type ObjectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// LinkPresigner turns s3://bucket/key link records into time limited HTTPS
// URLs. Other URLs pass through untouched.
type LinkPresigner struct {
	presigner ObjectPresigner
	ttl       time.Duration
	logger    *logrus.Logger
}

func NewLinkPresigner(client *s3.Client, ttl time.Duration, logger *logrus.Logger) *LinkPresigner {
	return &LinkPresigner{
		presigner: s3.NewPresignClient(client),
		ttl:       ttl,
		logger:    logger,
	}
}

// ResolveLinks presigns s3 links. A link that cannot be presigned is dropped
// rather than rendered with an unusable s3:// URL.
func (p *LinkPresigner) ResolveLinks(ctx context.Context, links []types.Link) []types.Link {
	out := make([]types.Link, 0, len(links))
	for _, link := range links {
		bucket, key, ok := ParseS3URL(link.URL)
		if !ok {
			out = append(out, link)
			continue
		}

		req, err := p.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(p.ttl))
		if err != nil {
			p.logger.WithError(err).
				WithField("bucket", bucket).
				WithField("key", key).
				Error("failed to presign link")
			continue
		}

		label := link.Label
		if label == link.URL {
			label = key
		}
		out = append(out, types.Link{Label: label, URL: req.URL})
	}
	return out
}

// ParseS3URL splits s3://bucket/key. It reports false for any other scheme
// or when bucket or key is missing.
func ParseS3URL(raw string) (bucket, key string, ok bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "s3" {
		return "", "", false
	}

	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", false
	}

	return u.Host, key, true
}
