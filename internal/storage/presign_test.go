package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"kycreview/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type fakePresigner struct {
	fail map[string]bool
}

func (f fakePresigner) PresignGetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	key := aws.ToString(params.Key)
	if f.fail[key] {
		return nil, errors.New("no credentials")
	}
	return &v4.PresignedHTTPRequest{
		URL: "https://" + aws.ToString(params.Bucket) + ".s3.amazonaws.com/" + key + "?X-Amz-Signature=abc",
	}, nil
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		raw    string
		bucket string
		key    string
		ok     bool
	}{
		{raw: "s3://kyc-docs/cust/1/pan.png", bucket: "kyc-docs", key: "cust/1/pan.png", ok: true},
		{raw: "https://example.com/a.png"},
		{raw: "s3://kyc-docs/"},
		{raw: "s3:///key"},
		{raw: "::not a url"},
	}

	for _, tt := range tests {
		bucket, key, ok := ParseS3URL(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.bucket, bucket, tt.raw)
		assert.Equal(t, tt.key, key, tt.raw)
	}
}

func TestResolveLinks(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	p := &LinkPresigner{
		presigner: fakePresigner{fail: map[string]bool{"broken.png": true}},
		ttl:       time.Minute,
		logger:    logger,
	}

	out := p.ResolveLinks(context.Background(), []types.Link{
		{Label: "site", URL: "https://example.com/a.png"},
		{Label: "PAN front", URL: "s3://kyc-docs/pan.png"},
		{Label: "s3://kyc-docs/aadhaar.png", URL: "s3://kyc-docs/aadhaar.png"},
		{Label: "broken", URL: "s3://kyc-docs/broken.png"},
	})

	assert.Equal(t, []types.Link{
		{Label: "site", URL: "https://example.com/a.png"},
		{Label: "PAN front", URL: "https://kyc-docs.s3.amazonaws.com/pan.png?X-Amz-Signature=abc"},
		{Label: "aadhaar.png", URL: "https://kyc-docs.s3.amazonaws.com/aadhaar.png?X-Amz-Signature=abc"},
	}, out)
}
