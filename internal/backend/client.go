// Package backend talks to the KYC backend that stores customer documents.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"kycreview/pkg/types"
)

const (
	PathSaveDetails         = "/api/saveDetails"
	PathSaveDetailsExisting = "/api/saveDetailsExisting"
	PathCustomerDetails     = "/api/customerDetailsCustID"
	PathCustomerLinks       = "/api/customerDetailsLinks"
)

// maxErrorBody caps how much of a failed response is kept on StatusError.
const maxErrorBody = 4 << 10

// StatusError is returned for any response other than 200 OK.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client calls the backend endpoints
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SaveRequest carries the edited documents and the acting user.
// CustID selects between creating a customer and updating an existing one.
type SaveRequest struct {
	UserID   string
	CustID   string
	Entities types.Documents
}

type SaveResponse struct {
	Status  string `json:"status"`
	CustID  string `json:"cust_id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// SaveEndpoint picks the save path for a customer identifier.
func SaveEndpoint(custID string) string {
	if custID != "" {
		return PathSaveDetailsExisting
	}
	return PathSaveDetails
}

// SaveDetails posts the documents as a multipart form. Only 200 OK counts as
// success; the response body is decoded when it is JSON and ignored otherwise.
func (c *Client) SaveDetails(ctx context.Context, req SaveRequest) (*SaveResponse, error) {
	entities := req.Entities
	if entities == nil {
		entities = types.Documents{}
	}
	entitiesJSON, err := json.Marshal(entities)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entities: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("entities", string(entitiesJSON)); err != nil {
		return nil, fmt.Errorf("failed to write entities part: %w", err)
	}
	if err := mw.WriteField("user_id", req.UserID); err != nil {
		return nil, fmt.Errorf("failed to write user_id part: %w", err)
	}
	if req.CustID != "" {
		if err := mw.WriteField("cust_id", req.CustID); err != nil {
			return nil, fmt.Errorf("failed to write cust_id part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	endpoint := SaveEndpoint(req.CustID)
	respBody, err := c.do(ctx, endpoint, mw.FormDataContentType(), &body)
	if err != nil {
		return nil, err
	}

	var out SaveResponse
	if len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, &out); err != nil {
			out = SaveResponse{Status: "success", Message: string(respBody)}
		}
	}

	return &out, nil
}

// CustomerDetails fetches the stored documents of a customer.
func (c *Client) CustomerDetails(ctx context.Context, custID, userID string) (types.Documents, error) {
	payload := map[string]string{
		"cust_id": custID,
		"user_id": userID,
	}

	respBody, err := c.postJSON(ctx, PathCustomerDetails, payload)
	if err != nil {
		return nil, err
	}

	var docs types.Documents
	if err := json.Unmarshal(respBody, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode customer details: %w", err)
	}

	return docs, nil
}

// CustomerLinks fetches the link records for a customer's document type.
func (c *Client) CustomerLinks(ctx context.Context, custID, documentType string) ([]types.Link, error) {
	payload := map[string]string{
		"cust_id":       custID,
		"document_type": documentType,
	}

	respBody, err := c.postJSON(ctx, PathCustomerLinks, payload)
	if err != nil {
		return nil, err
	}

	links, err := DecodeLinks(respBody)
	if err != nil {
		return nil, fmt.Errorf("failed to decode customer links: %w", err)
	}

	return links, nil
}

// DecodeLinks accepts a JSON array whose items are either URL strings or
// objects; object items without a URL are dropped. null decodes to no links.
func DecodeLinks(data []byte) ([]types.Link, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	links := make([]types.Link, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}

		switch item[0] {
		case '"':
			var u string
			if err := json.Unmarshal(item, &u); err != nil {
				return nil, err
			}
			if u = strings.TrimSpace(u); u != "" {
				links = append(links, types.Link{Label: u, URL: u})
			}
		case '{':
			var record types.Document
			if err := json.Unmarshal(item, &record); err != nil {
				return nil, err
			}
			if link, ok := types.LinkFromRecord(record); ok {
				links = append(links, link)
			}
		}
	}

	return links, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, endpoint, "application/json", bytes.NewReader(data))
}

func (c *Client) do(ctx context.Context, endpoint, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		if len(respBody) > maxErrorBody {
			respBody = respBody[:maxErrorBody]
		}
		return nil, &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	return respBody, nil
}
