package report

import "regexp"

var (
	// [06/15/2024-14:23:05:123] 形式的 AIX 时间戳，出现在消息任意位置。
	aixTimestampRe = regexp.MustCompile(`\[(\d{2}/\d{2}/\d{4}-\d{2}:\d{2}:\d{2}:\d{3})\]`)
	// sshd[4521] 形式的进程名与 PID。
	processRe = regexp.MustCompile(`(\w+)\[(\d+)\]`)
)

// ParseSyslogEntry 把一条原始日志解析为结构化记录，1:1 映射。
//
// 所有提取步骤都是 best-effort：提取不到就用默认值，绝不因为单条
// 日志的形状意外而丢弃它。
func ParseSyslogEntry(entry LogEntry) SyslogRecord {
	rec := SyslogRecord{
		Source:     entry.Source,
		Message:    entry.Message,
		RawMessage: entry.Message,
		Timestamp:  entry.Timestamp,
	}

	if m := aixTimestampRe.FindStringSubmatch(entry.Message); m != nil {
		rec.Timestamp = m[1]
	}

	processName := ""
	if m := processRe.FindStringSubmatch(entry.Message); m != nil {
		processName = m[1]
		rec.ProcessID = m[2]
	}

	rec.Facility = ClassifyFacility(entry.Source, entry.Message)
	rec.Priority = ClassifyPriority(entry.Message)
	rec.LogLevel = LogLevelFromPriority(rec.Priority)
	rec.Component = ClassifyComponent(entry.Message, processName)
	rec.ErrorType = ClassifyErrorType(entry.Message)

	return rec
}

// ParseSyslogEntries 逐条解析，保持输入顺序。
func ParseSyslogEntries(entries []LogEntry) []SyslogRecord {
	records := make([]SyslogRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, ParseSyslogEntry(entry))
	}
	return records
}
