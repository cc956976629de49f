package report

import "strings"

// 所有分类表都是“有序”的：多个关键字可能同时命中，取第一个。
// 换成 map 会悄悄改变行为，这里保持显式切片。

var severityLetters = []string{SeverityHigh, SeveritySerious, SeverityMedium, SeverityLow}

var severityKeywords = []struct {
	keywords []string
	severity string
}{
	{[]string{"CRITICAL", "FATAL", "PANIC"}, SeverityHigh},
	{[]string{"ERROR", "FAIL"}, SeveritySerious},
	{[]string{"WARN", "WARNING"}, SeverityMedium},
}

// ClassifySeverity 从 error id 推断严重级别。
//
// 先按 H/S/M/L 的字面字符出现判断（继承自 AIX error id 的编码习惯），
// 再退回到关键字。注意：id 中任意位置出现字母 S 都会被判为 S——
// 这是已知的启发式弱点，为了与既有数据口径一致而保留。
func ClassifySeverity(errorID string) string {
	if errorID == "" {
		return SeverityUnknown
	}
	upper := strings.ToUpper(errorID)
	for _, sev := range severityLetters {
		if strings.Contains(upper, sev) {
			return sev
		}
	}
	for _, entry := range severityKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(upper, kw) {
				return entry.severity
			}
		}
	}
	return SeverityLow
}

var facilityBySource = []struct {
	keyword  string
	facility string
}{
	{"errlog", "SYSTEM"},
	{"conslog", "CONSOLE"},
	{"messages", "SYSLOG"},
	{"authlog", "AUTH"},
	{"mail", "MAIL"},
	{"cron", "CRON"},
	{"daemon", "DAEMON"},
	{"kern", "KERNEL"},
	{"user", "USER"},
	{"local", "LOCAL"},
}

var facilityByMessage = []struct {
	keywords []string
	facility string
}{
	{[]string{"kernel", "driver", "module"}, "KERNEL"},
	{[]string{"auth", "login", "password", "su"}, "AUTH"},
	{[]string{"mail", "smtp", "pop", "imap"}, "MAIL"},
	{[]string{"cron", "at", "batch"}, "CRON"},
	{[]string{"daemon", "service", "inetd"}, "DAEMON"},
}

// ClassifyFacility 根据日志来源路径判断 facility，来源判断不出再看消息内容。
func ClassifyFacility(source, message string) string {
	sourceLower := strings.ToLower(source)
	for _, entry := range facilityBySource {
		if strings.Contains(sourceLower, entry.keyword) {
			return entry.facility
		}
	}

	messageLower := strings.ToLower(message)
	for _, entry := range facilityByMessage {
		for _, kw := range entry.keywords {
			if strings.Contains(messageLower, kw) {
				return entry.facility
			}
		}
	}
	return FacilityUnknown
}

var priorityKeywords = []struct {
	keywords []string
	priority string
}{
	{[]string{"panic", "fatal", "emerg", "emergency"}, "EMERG"},
	{[]string{"alert", "critical", "crit"}, "ALERT"},
	{[]string{"error", "err", "fail", "failure"}, "ERR"},
	{[]string{"warn", "warning"}, "WARNING"},
	{[]string{"notice", "note"}, "NOTICE"},
	{[]string{"info", "information"}, "INFO"},
	{[]string{"debug", "trace"}, "DEBUG"},
}

// ClassifyPriority 按关键字表判断日志优先级。
func ClassifyPriority(message string) string {
	messageLower := strings.ToLower(message)
	for _, entry := range priorityKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(messageLower, kw) {
				return entry.priority
			}
		}
	}
	return PriorityUnknown
}

var priorityToLogLevel = map[string]string{
	"EMERG":   "CRITICAL",
	"ALERT":   "CRITICAL",
	"ERR":     "ERROR",
	"WARNING": "WARNING",
	"NOTICE":  "INFO",
	"INFO":    "INFO",
	"DEBUG":   "DEBUG",
}

// LogLevelFromPriority 由优先级映射日志级别；未命中（含 UNKNOWN）默认 INFO。
func LogLevelFromPriority(priority string) string {
	if level, ok := priorityToLogLevel[priority]; ok {
		return level
	}
	return "INFO"
}

// aixComponents 为常见 AIX 子系统名，顺序即匹配优先级。
var aixComponents = []string{
	"hacmp", "vios", "lpar", "aix", "power", "ibm",
	"network", "disk", "memory", "cpu", "filesystem",
	"security", "user", "group", "process", "service",
}

// ClassifyComponent 先在消息里找子系统名，找不到再看进程名，兜底 SYSTEM。
func ClassifyComponent(message, processName string) string {
	messageLower := strings.ToLower(message)
	for _, component := range aixComponents {
		if strings.Contains(messageLower, component) {
			return strings.ToUpper(component)
		}
	}

	if processName != "" {
		processLower := strings.ToLower(processName)
		for _, component := range aixComponents {
			if strings.Contains(processLower, component) {
				return strings.ToUpper(component)
			}
		}
	}
	return ComponentDefault
}

var errorTypeKeywords = []struct {
	keywords  []string
	errorType string
}{
	{[]string{"timeout", "timed out"}, "TIMEOUT"},
	{[]string{"connection refused", "connection failed"}, "CONNECTION_ERROR"},
	{[]string{"permission denied", "access denied"}, "PERMISSION_ERROR"},
	{[]string{"file not found", "no such file"}, "FILE_ERROR"},
	{[]string{"out of memory", "memory full"}, "MEMORY_ERROR"},
	{[]string{"disk full", "no space"}, "DISK_ERROR"},
	{[]string{"network unreachable", "host unreachable"}, "NETWORK_ERROR"},
	{[]string{"service not available", "service down"}, "SERVICE_ERROR"},
}

// ClassifyErrorType 按关键字表判断错误类型，未命中返回 GENERAL。
func ClassifyErrorType(message string) string {
	messageLower := strings.ToLower(message)
	for _, entry := range errorTypeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(messageLower, kw) {
				return entry.errorType
			}
		}
	}
	return ErrorTypeGeneral
}
