package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		lat, lon float64
	}{
		{"Tokyo", "Tokyo", 35.68, 139.76},
		{"Naha", "Naha", 26.21, 127.68},
		{"", "Kanazawa", 36.59, 136.60},
		{"Atlantis", "Kanazawa", 36.59, 136.60},
		{"tokyo", "Kanazawa", 36.59, 136.60},
	}
	for _, tt := range tests {
		got := Resolve(tt.in)
		if got.Name != tt.wantName || got.Lat != tt.lat || got.Lon != tt.lon {
			t.Errorf("Resolve(%q) = %+v, want %s %v/%v", tt.in, got, tt.wantName, tt.lat, tt.lon)
		}
	}
}

func TestForecastURL(t *testing.T) {
	c := NewClient("https://api.open-meteo.com/", time.Second)
	got := c.ForecastURL(Resolve("Tokyo"))
	want := "https://api.open-meteo.com/v1/forecast?current_weather=true&latitude=35.68&longitude=139.76"
	if got != want {
		t.Errorf("ForecastURL = %q, want %q", got, want)
	}
}

func TestCurrent(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"latitude":43.06,"current_weather":{"temperature":-3.5,"windspeed":12.1,"weathercode":71,"time":"2024-01-01T00:00"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	w, err := c.Current(context.Background(), Resolve("Sapporo"))
	if err != nil {
		t.Fatal(err)
	}
	if w.City != "Sapporo" || w.Temperature != -3.5 || w.Windspeed != 12.1 || w.Weathercode != 71 {
		t.Errorf("unexpected weather %+v", w)
	}
	if gotQuery != "current_weather=true&latitude=43.06&longitude=141.35" {
		t.Errorf("unexpected query %q", gotQuery)
	}
}

func TestCurrentUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"current_weather":`))
		}},
		{"missing current_weather", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":true,"reason":"bad coordinates"}`))
		}},
		{"missing field", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"current_weather":{"temperature":1.0,"windspeed":2.0}}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Current(context.Background(), Resolve(""))
			if !errors.Is(err, ErrUpstream) {
				t.Errorf("expected ErrUpstream, got %v", err)
			}
		})
	}
}

func TestCurrentNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Current(context.Background(), Resolve(""))
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	for i := 0; i < 5; i++ {
		c.Current(context.Background(), Resolve(""))
	}
	_, err := c.Current(context.Background(), Resolve(""))
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream from open breaker, got %v", err)
	}
	if n := hits.Load(); n != 5 {
		t.Errorf("expected upstream to see 5 requests, got %d", n)
	}
}

func TestCanceledRequestsDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"current_weather":{"temperature":1,"windspeed":2,"weathercode":0}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	gone, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 10; i++ {
		_, err := c.Current(gone, Resolve("Tokyo"))
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("call %d: expected context.Canceled, got %v", i, err)
		}
	}

	w, err := c.Current(context.Background(), Resolve("Tokyo"))
	if err != nil {
		t.Fatalf("breaker opened on canceled requests: %v", err)
	}
	if w.City != "Tokyo" {
		t.Errorf("unexpected city %q", w.City)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("expected one upstream request, got %d", n)
	}
}
