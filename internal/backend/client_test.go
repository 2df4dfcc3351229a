package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycreview/internal/utils"
	"kycreview/pkg/types"
)

type capturedSave struct {
	Path   string
	Fields map[string][]string
}

func saveServer(t *testing.T, status int, body string) (*httptest.Server, *[]capturedSave) {
	t.Helper()

	var calls []capturedSave
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		calls = append(calls, capturedSave{Path: r.URL.Path, Fields: r.MultipartForm.Value})
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func entities() types.Documents {
	return types.Documents{
		{
			{Key: "name", Value: utils.StringPtr("John Doe")},
			{Key: "document_type", Value: utils.StringPtr("PAN")},
			{Key: "middle_name", Value: nil},
		},
	}
}

func TestSaveDetails(t *testing.T) {
	t.Run("new customer targets saveDetails without cust_id", func(t *testing.T) {
		srv, calls := saveServer(t, http.StatusOK, `{"status":"success","cust_id":"c-1","name":"John Doe"}`)
		client := New(srv.URL, 5*time.Second)

		resp, err := client.SaveDetails(context.Background(), SaveRequest{UserID: "u-1", Entities: entities()})
		require.NoError(t, err)
		assert.Equal(t, "c-1", resp.CustID)

		require.Len(t, *calls, 1)
		call := (*calls)[0]
		assert.Equal(t, PathSaveDetails, call.Path)
		assert.Equal(t, []string{"u-1"}, call.Fields["user_id"])
		assert.NotContains(t, call.Fields, "cust_id")
		assert.JSONEq(t, `[{"name":"John Doe","document_type":"PAN","middle_name":null}]`, call.Fields["entities"][0])
	})

	t.Run("existing customer targets saveDetailsExisting with cust_id", func(t *testing.T) {
		srv, calls := saveServer(t, http.StatusOK, `{"status":"success","message":"Details updated successfully"}`)
		client := New(srv.URL+"/", 5*time.Second)

		_, err := client.SaveDetails(context.Background(), SaveRequest{UserID: "u-1", CustID: "c-9", Entities: entities()})
		require.NoError(t, err)

		require.Len(t, *calls, 1)
		call := (*calls)[0]
		assert.Equal(t, PathSaveDetailsExisting, call.Path)
		assert.Equal(t, []string{"c-9"}, call.Fields["cust_id"])
		assert.Equal(t, []string{"u-1"}, call.Fields["user_id"])
	})

	t.Run("non-200 is a StatusError", func(t *testing.T) {
		srv, _ := saveServer(t, http.StatusNotFound, `{"status":"error","message":"No matching document found"}`)
		client := New(srv.URL, 5*time.Second)

		_, err := client.SaveDetails(context.Background(), SaveRequest{UserID: "u-1", CustID: "c-9", Entities: entities()})
		require.Error(t, err)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Equal(t, PathSaveDetailsExisting, statusErr.Endpoint)
	})

	t.Run("201 is not success", func(t *testing.T) {
		srv, _ := saveServer(t, http.StatusCreated, `{}`)
		client := New(srv.URL, 5*time.Second)

		_, err := client.SaveDetails(context.Background(), SaveRequest{UserID: "u-1", Entities: entities()})
		assert.Error(t, err)
	})

	t.Run("network failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client := New(url, time.Second)
		_, err := client.SaveDetails(context.Background(), SaveRequest{UserID: "u-1", Entities: entities()})
		assert.Error(t, err)
	})
}

func TestCustomerDetails(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathCustomerDetails, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `[{"document_type":"Aadhaar","name":"John Doe","dob":null,"age":34}]`)
	}))
	defer srv.Close()

	docs, err := New(srv.URL, time.Second).CustomerDetails(context.Background(), "c-1", "u-1")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"cust_id": "c-1", "user_id": "u-1"}, got)
	require.Len(t, docs, 1)
	assert.Equal(t, []string{"document_type", "name", "dob", "age"}, docs[0].Keys())
	assert.Equal(t, "34", docs[0].StringValue("age"))
	dob, ok := docs[0].Value("dob")
	assert.True(t, ok)
	assert.Nil(t, dob)
}

func TestCustomerLinks(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathCustomerLinks, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `["https://files.example.com/a.png",{"name":"PAN front","url":"s3://kyc/pan.png"},{"name":"no url"}]`)
	}))
	defer srv.Close()

	links, err := New(srv.URL, time.Second).CustomerLinks(context.Background(), "c-1", "PAN")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"cust_id": "c-1", "document_type": "PAN"}, got)
	assert.Equal(t, []types.Link{
		{Label: "https://files.example.com/a.png", URL: "https://files.example.com/a.png"},
		{Label: "PAN front", URL: "s3://kyc/pan.png"},
	}, links)
}

func TestDecodeLinks(t *testing.T) {
	links, err := DecodeLinks([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, links)

	_, err = DecodeLinks([]byte(`{"url":"x"}`))
	assert.Error(t, err)
}
