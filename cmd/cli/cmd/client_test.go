package cmd

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"layerplane/pkg/api"
)

func TestLayerClient_SendsBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok || user != "admin" || password != "s3cret" {
			t.Errorf("unexpected basic auth %q/%q (%v)", user, password, ok)
		}
		w.Write([]byte(`{"layer":{"name":"roads"}}`))
	}))
	defer server.Close()

	resp, err := NewLayerClient(server.URL+"/", "admin", "s3cret").GetPublishStatus("roads")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Layer.Name != "roads" {
		t.Errorf("got name %q, want roads", resp.Layer.Name)
	}
}

func TestLayerClient_NoAuthWithoutUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("expected no Authorization header")
		}
		w.Write([]byte(`{"status":true}`))
	}))
	defer server.Close()

	if _, err := NewLayerClient(server.URL, "", "").PublishMetadata(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLayerClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "Unauthorized", Code: "401"})
	}))
	defer server.Close()

	_, err := NewLayerClient(server.URL, "admin", "wrong").CreateJobs([]string{"roads"}, "")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Unauthorized" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}
