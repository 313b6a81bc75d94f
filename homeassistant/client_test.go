package homeassistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const testToken = "test-token"

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(baseURL, testToken,
		WithLogger(zap.NewNop()),
		WithRateLimit(rate.NewLimiter(rate.Inf, 0)),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", testToken); err == nil {
		t.Error("expected error for empty base URL")
	}
	if _, err := NewClient("http://hub.local:8123", ""); err == nil {
		t.Error("expected error for empty token")
	}
	if _, err := NewClient("http://hub.local:8123", testToken, WithTimeout(0)); err == nil {
		t.Error("expected error for zero timeout")
	}
}

func TestGetState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
			t.Errorf("Authorization header = %q", got)
		}
		if r.URL.Path != "/api/states/sensor.home_temp" {
			t.Errorf("request path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"entity_id":"sensor.home_temp","state":"22.5","attributes":{"temperature":22.5,"humidity":48}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	st, err := c.GetState(context.Background(), "sensor.home_temp")
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if st.EntityID != "sensor.home_temp" {
		t.Errorf("EntityID = %q", st.EntityID)
	}
	if st.State != "22.5" {
		t.Errorf("State = %q", st.State)
	}
	if !strings.Contains(string(st.Attributes), `"humidity":48`) {
		t.Errorf("Attributes = %s", st.Attributes)
	}
}

func TestGetStateTrailingSlashBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/states/sensor.home_temp" {
			t.Errorf("request path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"state":"ok","attributes":{}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/")
	if _, err := c.GetState(context.Background(), "sensor.home_temp"); err != nil {
		t.Fatalf("GetState: %v", err)
	}
}

func TestGetStateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.GetState(context.Background(), "sensor.home_temp")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Error(), "401") {
		t.Errorf("error message %q does not mention status code", apiErr.Error())
	}
	if !strings.Contains(apiErr.Error(), "sensor.home_temp") {
		t.Errorf("error message %q does not name the sensor", apiErr.Error())
	}
}

func TestGetStateNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	c := newTestClient(t, srv.URL)
	if _, err := c.GetState(context.Background(), "sensor.home_temp"); err == nil {
		t.Fatal("expected error for unreachable hub")
	}
}

func TestGetStateInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	if _, err := c.GetState(context.Background(), "sensor.home_temp"); err == nil {
		t.Fatal("expected error for invalid JSON body")
	}
}

func TestGetStateEmptyEntityID(t *testing.T) {
	c := newTestClient(t, "http://hub.local:8123")
	if _, err := c.GetState(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty entity id")
	}
}
