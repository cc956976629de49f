package report

import "testing"

func TestClassifySeverity_LetterBeforeKeyword(t *testing.T) {
	cases := []struct {
		errorID string
		want    string
	}{
		{"", SeverityUnknown},
		{"HARDWARE_FAULT", SeverityHigh},  // 字母 H 直接命中
		{"DISK_FAULT", SeveritySerious},   // DISK 里的 S 命中
		{"MEMORY_1", SeverityMedium},      // 不含 H/S，M 在 → M
		{"ABC123", SeverityLow},           // 无 H/S/M/L、无关键字，兜底 L
		{"ERROR_42", SeveritySerious},     // ERROR 不含 H/S/M/L，走关键字表
		{"PANIC_AT_BOOT", SeverityHigh},   // PANIC 不含 H/S/M/L，关键字 → H
		{"WARN_CODE", SeverityMedium},     // WARN 不含 H/S/M/L，关键字 → M
		{"FATAL_12", SeverityLow},         // FATAL 含 L，字母检查先于关键字 → L 而非 H
		{"disk_fault", SeveritySerious},   // 大小写不敏感
		{"UNSUPPORTED", SeveritySerious},  // 任意位置的 S 即可命中（已知弱点）
	}
	for _, tc := range cases {
		if got := ClassifySeverity(tc.errorID); got != tc.want {
			t.Errorf("ClassifySeverity(%q) = %q, want %q", tc.errorID, got, tc.want)
		}
	}
}

func TestClassifySeverity_AnyLetterAnywhere(t *testing.T) {
	// 这不是 bug 修复对象：error id 里任何一个不相干的 S 都会把记录
	// 判成 S。这里固定住该行为，防止被“顺手修正”。
	if got := ClassifySeverity("BUS_RESET"); got != SeveritySerious {
		t.Fatalf("expected letter heuristic to win, got %q", got)
	}
}

func TestClassifyFacility_SourceWinsOverMessage(t *testing.T) {
	// 来源路径命中 authlog 时，即使消息里满是 kernel 字样也判 AUTH。
	got := ClassifyFacility("/var/log/authlog", "kernel driver module panic")
	if got != "AUTH" {
		t.Fatalf("facility = %q, want AUTH", got)
	}
}

func TestClassifyFacility_Tables(t *testing.T) {
	cases := []struct {
		source  string
		message string
		want    string
	}{
		{"/var/adm/ras/errlog", "anything", "SYSTEM"},
		{"/var/adm/ras/conslog", "anything", "CONSOLE"},
		{"/var/adm/messages", "anything", "SYSLOG"},
		{"/var/log/maillog", "anything", "MAIL"},
		{"/tmp/app.log", "kernel module loaded", "KERNEL"},
		{"/tmp/app.log", "login attempt by admin", "AUTH"},
		{"/tmp/app.log", "smtp relay rejected", "MAIL"},
		{"/tmp/app.log", "inetd respawn", "DAEMON"},
		{"/tmp/app.log", "plain text", "UNKNOWN"},
	}
	for _, tc := range cases {
		if got := ClassifyFacility(tc.source, tc.message); got != tc.want {
			t.Errorf("ClassifyFacility(%q, %q) = %q, want %q", tc.source, tc.message, got, tc.want)
		}
	}
}

func TestClassifyPriority_FirstMatchWins(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"kernel panic: out of memory", "EMERG"},
		{"critical temperature reached", "ALERT"},
		{"authentication failure for user root", "ERR"},
		{"warning: disk almost full", "WARNING"},
		{"notice: config reloaded", "NOTICE"},
		{"informational message", "INFO"},
		{"trace: enter handler", "DEBUG"},
		{"nothing special here", "UNKNOWN"},
		// panic 与 error 同时出现时取表序靠前的 EMERG。
		{"error before panic", "EMERG"},
	}
	for _, tc := range cases {
		if got := ClassifyPriority(tc.message); got != tc.want {
			t.Errorf("ClassifyPriority(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}

func TestLogLevelFromPriority(t *testing.T) {
	cases := map[string]string{
		"EMERG":   "CRITICAL",
		"ALERT":   "CRITICAL",
		"ERR":     "ERROR",
		"WARNING": "WARNING",
		"NOTICE":  "INFO",
		"INFO":    "INFO",
		"DEBUG":   "DEBUG",
		"UNKNOWN": "INFO",
		"":        "INFO",
	}
	for priority, want := range cases {
		if got := LogLevelFromPriority(priority); got != want {
			t.Errorf("LogLevelFromPriority(%q) = %q, want %q", priority, got, want)
		}
	}
}

func TestClassifyComponent(t *testing.T) {
	cases := []struct {
		message string
		process string
		want    string
	}{
		{"hacmp cluster event", "", "HACMP"},
		{"vios partition busy", "", "VIOS"},
		{"unrelated text", "diskmond", "DISK"},
		{"unrelated text", "sshd", ComponentDefault},
		{"unrelated text", "", ComponentDefault},
		// 消息命中优先于进程名。
		{"network link down", "diskmond", "NETWORK"},
	}
	for _, tc := range cases {
		if got := ClassifyComponent(tc.message, tc.process); got != tc.want {
			t.Errorf("ClassifyComponent(%q, %q) = %q, want %q", tc.message, tc.process, got, tc.want)
		}
	}
}

func TestClassifyErrorType(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"operation timed out after 30s", "TIMEOUT"},
		{"connection refused by peer", "CONNECTION_ERROR"},
		{"permission denied: /etc/shadow", "PERMISSION_ERROR"},
		{"no such file or directory", "FILE_ERROR"},
		{"out of memory killing pid 42", "MEMORY_ERROR"},
		{"no space left on device", "DISK_ERROR"},
		{"host unreachable", "NETWORK_ERROR"},
		{"service down for maintenance", "SERVICE_ERROR"},
		{"everything is fine", ErrorTypeGeneral},
	}
	for _, tc := range cases {
		if got := ClassifyErrorType(tc.message); got != tc.want {
			t.Errorf("ClassifyErrorType(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}
