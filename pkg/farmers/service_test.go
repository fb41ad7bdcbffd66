package farmers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/knbiosciences/agriaqua-go/pkg/api"
)

func TestWaterQualityAdvice(t *testing.T) {
	tests := []struct {
		name    string
		metrics WaterMetrics
		want    []string
	}{
		{
			name:    "optimal",
			metrics: WaterMetrics{PH: 7.2, DissolvedOxygen: 6.0, Ammonia: 0.05},
			want:    []string{"Water quality parameters are within optimal range."},
		},
		{
			name:    "low ph",
			metrics: WaterMetrics{PH: 6.0, DissolvedOxygen: 6.0, Ammonia: 0.05},
			want:    []string{"pH is critically low. Add lime to increase alkalinity."},
		},
		{
			name:    "high ph",
			metrics: WaterMetrics{PH: 9.0, DissolvedOxygen: 6.0, Ammonia: 0.05},
			want:    []string{"pH is high. Check for algae blooms and monitor ammonia toxicity."},
		},
		{
			name:    "low oxygen and ammonia",
			metrics: WaterMetrics{PH: 7.0, DissolvedOxygen: 3.0, Ammonia: 0.5},
			want: []string{
				"Dissolved Oxygen is low. Increase aeration immediately.",
				"Ammonia levels are rising. Reduce feeding and check for organic buildup.",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := WaterQualityAdvice(tc.metrics)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("WaterQualityAdvice() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/farmers/profile/f1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"farmerId":"f1","farmName":"Green Acres","region":"South","size":12.5,"type":"both",
			"ponds":[{"id":"pond1","name":"Main","size":400,"depth":1.5,"waterSource":"borewell"}]}`))
	}))
	defer server.Close()

	svc := NewService(api.NewClient(api.ClientConfig{BaseURL: server.URL}), Config{
		ProfileEndpoint: "/farmers/profile",
	})

	profile, err := svc.Profile(context.Background(), "f1")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.FarmName != "Green Acres" || len(profile.Ponds) != 1 {
		t.Errorf("profile = %+v", profile)
	}
}

func TestUsageAnalytics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("farmerId") != "f1" || q.Get("period") != "quarterly" {
			t.Errorf("query = %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"productId":"p1","period":"2026-Q1","quantity":120,"spend":4400}]`))
	}))
	defer server.Close()

	svc := NewService(api.NewClient(api.ClientConfig{BaseURL: server.URL}), Config{
		AnalyticsEndpoint: "/farmers/analytics",
	})

	usage, err := svc.UsageAnalytics(context.Background(), "f1", "quarterly")
	if err != nil {
		t.Fatalf("UsageAnalytics: %v", err)
	}
	if len(usage) != 1 || usage[0].Spend != 4400 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestSubmitTestData(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	svc := NewService(api.NewClient(api.ClientConfig{BaseURL: server.URL}), Config{
		ProfileEndpoint: "/farmers/profile",
	})

	err := svc.SubmitTestData(context.Background(), "farm1", "pond1", map[string]float64{
		"ph": 7.1, "dissolvedOxygen": 5.5,
	})
	if err != nil {
		t.Fatalf("SubmitTestData: %v", err)
	}
	if gotPath != "/farmers/profile/farm1/resources/pond1/tests" {
		t.Errorf("path = %s", gotPath)
	}
}
