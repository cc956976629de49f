package tsdb

import (
	"strings"
	"testing"
)

func TestSummaryFlux_WithServer(t *testing.T) {
	q := summaryFlux("aix", MeasurementErrpt, "severity", "aixprod01", "1h")

	for _, want := range []string{
		`from(bucket: "aix")`,
		`range(start: -1h)`,
		`r["_measurement"] == "errpt"`,
		`r["_field"] == "count"`,
		`r["server_name"] == "aixprod01"`,
		`group(columns: ["server_name", "severity"])`,
		`sum()`,
	} {
		if !strings.Contains(q, want) {
			t.Errorf("query missing %q:\n%s", want, q)
		}
	}
}

func TestSummaryFlux_AllServers(t *testing.T) {
	q := summaryFlux("aix", MeasurementSyslog, "facility", "", "1d")
	if strings.Contains(q, "server_name\"] ==") {
		t.Fatalf("server filter should be absent:\n%s", q)
	}
	if !strings.Contains(q, `group(columns: ["server_name", "facility"])`) {
		t.Fatalf("facility grouping missing:\n%s", q)
	}
}
