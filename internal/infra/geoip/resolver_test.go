package geoip

import (
	"errors"
	"net/netip"
	"testing"
)

func TestNewResolverEmptyPath(t *testing.T) {
	r, err := NewResolver("  ")
	if err != nil {
		t.Fatalf("NewResolver error: %v", err)
	}
	if r != nil {
		t.Fatalf("expected nil resolver, got %T", r)
	}
	if LookupFunc(r) != nil {
		t.Fatal("expected nil lookup func")
	}
}

func TestNewResolverMissingFile(t *testing.T) {
	if _, err := NewResolver("/nonexistent/GeoLite2-Country.mmdb"); err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestCountryCodeUninitialized(t *testing.T) {
	var r *Resolver
	if _, err := r.CountryCode("8.8.8.8"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close on nil resolver: %v", err)
	}
}

func TestRoutable(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"8.8.8.8", true},
		{"2001:4860:4860::8888", true},
		{"10.1.2.3", false},
		{"192.168.0.10", false},
		{"127.0.0.1", false},
		{"::1", false},
		{"fe80::1", false},
		{"::ffff:10.0.0.1", false},
		{"0.0.0.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := Routable(netip.MustParseAddr(tt.ip)); got != tt.want {
				t.Fatalf("Routable(%s) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}
}
