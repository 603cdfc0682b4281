package gumroad

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newVendor(t *testing.T, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.URL.Path != "/v2/licenses/verify" {
			t.Errorf("Expected path /v2/licenses/verify, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Errorf("Expected form-encoded request, got %s", got)
		}
		if got := r.PostFormValue("product_id"); got != "prod-1" {
			t.Errorf("Expected product_id prod-1, got %q", got)
		}
		if got := r.PostFormValue("license_key"); got == "" {
			t.Error("Expected license_key in form body")
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(response)); err != nil {
			t.Errorf("write vendor response: %v", err)
		}
	}))
}

func TestVerifyValidKey(t *testing.T) {
	vendor := newVendor(t, `{"success":true,"purchase":{"email":"mom@example.com","sale_timestamp":"2025-01-02T10:00:00Z"}}`)
	defer vendor.Close()

	c := New(vendor.URL, "prod-1")
	v, err := c.Verify(context.Background(), "KEY-1")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !v.Valid {
		t.Error("Expected valid license")
	}
	if v.Purchase == nil || v.Purchase.Email != "mom@example.com" {
		t.Errorf("Expected purchase metadata, got %+v", v.Purchase)
	}
}

func TestVerifyInvalidKey(t *testing.T) {
	vendor := newVendor(t, `{"success":false}`)
	defer vendor.Close()

	c := New(vendor.URL, "prod-1")
	v, err := c.Verify(context.Background(), "BAD")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if v.Valid || v.Refunded {
		t.Errorf("Expected plain invalid, got %+v", v)
	}
}

func TestVerifyRefundedKeyIsInvalid(t *testing.T) {
	// The vendor reports success, but a refunded or chargebacked purchase
	// must be normalized to invalid.
	for name, response := range map[string]string{
		"refunded":     `{"success":true,"purchase":{"email":"a@b.c","sale_timestamp":"t","refunded":true}}`,
		"chargebacked": `{"success":true,"purchase":{"email":"a@b.c","sale_timestamp":"t","chargebacked":true}}`,
	} {
		t.Run(name, func(t *testing.T) {
			vendor := newVendor(t, response)
			defer vendor.Close()

			c := New(vendor.URL, "prod-1")
			v, err := c.Verify(context.Background(), "KEY-1")
			if err != nil {
				t.Fatalf("Verify failed: %v", err)
			}
			if v.Valid {
				t.Error("Expected refunded purchase to be invalid")
			}
			if !v.Refunded {
				t.Error("Expected refunded flag")
			}
		})
	}
}

func TestVerifyTransportFailure(t *testing.T) {
	vendor := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	vendor.Close() // connection refused

	c := New(vendor.URL, "prod-1")
	if _, err := c.Verify(context.Background(), "KEY-1"); err == nil {
		t.Fatal("Expected transport error")
	}
}
