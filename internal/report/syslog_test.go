package report

import (
	"reflect"
	"testing"
)

func TestParseSyslogEntry_AuthFailure(t *testing.T) {
	entry := LogEntry{
		Source:    "/var/log/authlog",
		Message:   "Jan sshd[4521]: authentication failure for user root",
		Timestamp: "2024-06-15T14:23:05Z",
	}
	rec := ParseSyslogEntry(entry)

	// 来源路径命中优先于消息内容。
	if rec.Facility != "AUTH" {
		t.Errorf("facility = %q, want AUTH", rec.Facility)
	}
	if rec.ProcessID != "4521" {
		t.Errorf("process_id = %q, want 4521", rec.ProcessID)
	}
	if rec.Priority != "ERR" {
		t.Errorf("priority = %q, want ERR", rec.Priority)
	}
	if rec.LogLevel != "ERROR" {
		t.Errorf("log_level = %q, want ERROR", rec.LogLevel)
	}
	// 消息里没有内嵌时间戳时保留采集时间。
	if rec.Timestamp != entry.Timestamp {
		t.Errorf("timestamp = %q", rec.Timestamp)
	}
	if rec.Message != entry.Message || rec.RawMessage != entry.Message {
		t.Error("message and raw_message must both carry the original text")
	}
}

func TestParseSyslogEntry_EmbeddedTimestamp(t *testing.T) {
	entry := LogEntry{
		Source:    "/var/adm/ras/conslog",
		Message:   "noise before [06/15/2024-14:23:05:123] console message",
		Timestamp: "collection-time",
	}
	rec := ParseSyslogEntry(entry)
	if rec.Timestamp != "06/15/2024-14:23:05:123" {
		t.Fatalf("timestamp = %q", rec.Timestamp)
	}
	if rec.Facility != "CONSOLE" {
		t.Fatalf("facility = %q", rec.Facility)
	}
}

func TestParseSyslogEntry_Defaults(t *testing.T) {
	rec := ParseSyslogEntry(LogEntry{
		Source:    "/opt/custom/trace.out",
		Message:   "plain line without anything recognizable",
		Timestamp: "ts",
	})
	if rec.Facility != FacilityUnknown {
		t.Errorf("facility = %q", rec.Facility)
	}
	if rec.Priority != PriorityUnknown {
		t.Errorf("priority = %q", rec.Priority)
	}
	// UNKNOWN 优先级映射到 INFO。
	if rec.LogLevel != "INFO" {
		t.Errorf("log_level = %q", rec.LogLevel)
	}
	if rec.Component != ComponentDefault {
		t.Errorf("component = %q", rec.Component)
	}
	if rec.ErrorType != ErrorTypeGeneral {
		t.Errorf("error_type = %q", rec.ErrorType)
	}
	if rec.ProcessID != "" {
		t.Errorf("process_id = %q", rec.ProcessID)
	}
}

func TestParseSyslogEntries_OneToOne(t *testing.T) {
	entries := []LogEntry{
		{Source: "/var/adm/messages", Message: "first", Timestamp: "t1"},
		{Source: "/var/adm/messages", Message: "second", Timestamp: "t2"},
		{Source: "/var/adm/messages", Message: "third", Timestamp: "t3"},
	}
	records := ParseSyslogEntries(entries)
	if len(records) != len(entries) {
		t.Fatalf("expected %d records, got %d", len(entries), len(records))
	}
	for i := range records {
		if records[i].Message != entries[i].Message {
			t.Errorf("record %d out of order: %q", i, records[i].Message)
		}
	}
}

func TestParseSyslogEntries_Deterministic(t *testing.T) {
	entries := []LogEntry{
		{Source: "/var/log/authlog", Message: "sshd[1]: login failed", Timestamp: "t"},
		{Source: "/var/adm/ras/errlog", Message: "[01/02/2024-03:04:05:006] disk full", Timestamp: "t"},
	}
	a := ParseSyslogEntries(entries)
	b := ParseSyslogEntries(entries)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("repeated parses of identical input differ")
	}
}
