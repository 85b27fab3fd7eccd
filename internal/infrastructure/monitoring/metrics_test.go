package monitoring

import (
	"bufio"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

func scrapeUptime(t *testing.T, m *Metrics) float64 {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("Scrape returned %d", rec.Code)
	}

	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "shell_uptime_seconds ") {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimPrefix(line, "shell_uptime_seconds "), 64)
		if err != nil {
			t.Fatalf("Unparseable uptime sample %q: %v", line, err)
		}
		return v
	}
	t.Fatal("shell_uptime_seconds missing from scrape")
	return 0
}

func TestNewMetricsIndependentRegistries(t *testing.T) {
	// Each instance owns its registry, so repeated construction must not
	// panic on duplicate registration.
	first := NewMetrics()
	second := NewMetrics()
	first.WindowsOpened.Inc()
	second.WindowsOpened.Inc()
}

func TestUptimeAdvancesPerScrape(t *testing.T) {
	m := NewMetrics()

	before := scrapeUptime(t, m)
	time.Sleep(20 * time.Millisecond)
	after := scrapeUptime(t, m)

	if after <= before {
		t.Errorf("Uptime frozen across scrapes: %f then %f", before, after)
	}
}

func TestRecordCapabilityCall(t *testing.T) {
	m := NewMetrics()
	m.RecordCapabilityCall("storage", "set", "success", 3*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `shell_capability_calls_total{capability="storage",status="success",tool="set"} 1`) {
		t.Error("Capability call not recorded in scrape")
	}
}
