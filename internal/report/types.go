package report

// Severity 为 errpt 记录的单字母严重级别（H 最高，L 最低）。
const (
	SeverityHigh    = "H"
	SeveritySerious = "S"
	SeverityMedium  = "M"
	SeverityLow     = "L"
	SeverityUnknown = "UNKNOWN"
)

const (
	FacilityUnknown = "UNKNOWN"
	PriorityUnknown = "UNKNOWN"

	ComponentDefault = "SYSTEM"
	ErrorTypeGeneral = "GENERAL"
)

// ErrptRecord 表示一条从 errpt -a 输出解析出的错误报告。
// 字段均为原始文本的裁剪值；零值表示该字段在源输出中未出现。
type ErrptRecord struct {
	ErrorID  string
	Severity string

	ResourceName      string
	ResourceClass     string
	ResourceType      string
	ResourceID        string
	LogicalResourceID string

	// SequenceNumber 解析失败时保持为 0。
	SequenceNumber int

	MachineID    string
	NodeID       string
	Class        string
	Type         string
	LocationCode string
	VPD          string

	Description        string
	ProbableCauses     string
	UserCauses         string
	InstallCauses      string
	FailureCauses      string
	RecommendedActions string
	DetailData         string

	// Timestamp 为源端上报的时间字符串，原样透传，不做结构化解析。
	Timestamp string
}

// LogEntry 为系统日志采集的原始输入：一行日志与它的来源文件。
type LogEntry struct {
	Source    string
	Message   string
	Timestamp string
}

// SyslogRecord 表示一条解析后的系统日志。
type SyslogRecord struct {
	Source string
	// Message 与 RawMessage 内容相同；两个键都会写入存储，
	// 既有看板依赖 raw_message 字段，不能合并。
	Message    string
	RawMessage string

	// Timestamp 优先取消息内嵌的 AIX 时间戳，否则为采集时间。
	Timestamp string

	Facility  string
	Priority  string
	LogLevel  string
	ProcessID string
	Component string
	ErrorType string
}
