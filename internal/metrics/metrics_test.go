package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) []*dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func labels(m *dto.Metric) map[string]string {
	out := map[string]string{}
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func TestRecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("GET", "/post/:id", 200, 20*time.Millisecond)
	c.RecordRequest("GET", "/post/:id", 200, 30*time.Millisecond)
	c.RecordRequest("GET", "/post/:id", 404, time.Millisecond)

	requests := gather(t, reg, "inkwell_http_requests_total")
	if len(requests) != 2 {
		t.Fatalf("expected 2 label sets, got %d", len(requests))
	}
	for _, m := range requests {
		l := labels(m)
		want := map[string]float64{"200": 2, "404": 1}[l["status_code"]]
		if m.GetCounter().GetValue() != want || l["route"] != "/post/:id" {
			t.Errorf("metric %v = %v, want %v", l, m.GetCounter().GetValue(), want)
		}
	}

	latency := gather(t, reg, "inkwell_http_request_duration_seconds")
	if got := latency[0].GetHistogram().GetSampleCount(); got != 3 {
		t.Errorf("latency sample count = %d, want 3", got)
	}
}

func TestRecordLoginAndRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(true)
	c.RecordLogin(false)
	c.RecordLogin(false)
	c.RecordRegistration(true)

	for _, m := range gather(t, reg, "inkwell_logins_total") {
		want := map[string]float64{"success": 1, "failure": 2}[labels(m)["result"]]
		if m.GetCounter().GetValue() != want {
			t.Errorf("logins %v = %v, want %v", labels(m), m.GetCounter().GetValue(), want)
		}
	}
	regs := gather(t, reg, "inkwell_registrations_total")
	if len(regs) != 1 || regs[0].GetCounter().GetValue() != 1 {
		t.Errorf("registrations = %v", regs)
	}
}

func TestRecordPostWriteAndRateLimited(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordPostWrite("create")
	c.RecordPostWrite("create")
	c.RecordPostWrite("delete")
	c.RecordRateLimited("/admin")

	for _, m := range gather(t, reg, "inkwell_post_writes_total") {
		want := map[string]float64{"create": 2, "delete": 1}[labels(m)["op"]]
		if m.GetCounter().GetValue() != want {
			t.Errorf("post writes %v = %v, want %v", labels(m), m.GetCounter().GetValue(), want)
		}
	}
	limited := gather(t, reg, "inkwell_rate_limited_total")
	if labels(limited[0])["route"] != "/admin" {
		t.Errorf("rate limited labels = %v", labels(limited[0]))
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogin(true)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `inkwell_logins_total{result="success"} 1`) {
		t.Errorf("scrape output missing login counter:\n%s", body)
	}
}
