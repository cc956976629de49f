package report

import (
	"strconv"
	"strings"
)

// errptMarkers 为 errpt -a 输出的字段前缀表。
//
// 顺序即匹配顺序，逐行取第一个“包含”命中的前缀。注意 Class:/Type:
// 排在 Resource Class:/Resource Type: 之前，所以后两者实际会被前者
// 截获（"Resource Class: U" 会落到 class 字段）——这是既有数据口径，
// 调整顺序会让新旧数据对不上。
var errptMarkers = []struct {
	label  string
	assign func(rec *ErrptRecord, value string)
}{
	{"IDENTIFIER:", func(rec *ErrptRecord, v string) { rec.ErrorID = v }},
	{"Timestamp:", func(rec *ErrptRecord, v string) { rec.Timestamp = v }},
	{"Sequence Number:", func(rec *ErrptRecord, v string) { rec.SequenceNumber = parseSequence(v) }},
	{"Machine Id:", func(rec *ErrptRecord, v string) { rec.MachineID = v }},
	{"Node Id:", func(rec *ErrptRecord, v string) { rec.NodeID = v }},
	{"Class:", func(rec *ErrptRecord, v string) { rec.Class = v }},
	{"Type:", func(rec *ErrptRecord, v string) { rec.Type = v }},
	{"Resource Name:", func(rec *ErrptRecord, v string) { rec.ResourceName = v }},
	{"Resource Class:", func(rec *ErrptRecord, v string) { rec.ResourceClass = v }},
	{"Resource Type:", func(rec *ErrptRecord, v string) { rec.ResourceType = v }},
	{"Location:", func(rec *ErrptRecord, v string) { rec.LocationCode = v }},
	{"VPD:", func(rec *ErrptRecord, v string) { rec.VPD = v }},
	{"Description:", func(rec *ErrptRecord, v string) { rec.Description = v }},
	{"Probable Causes:", func(rec *ErrptRecord, v string) { rec.ProbableCauses = v }},
	{"User Causes:", func(rec *ErrptRecord, v string) { rec.UserCauses = v }},
	{"Install Causes:", func(rec *ErrptRecord, v string) { rec.InstallCauses = v }},
	{"Failure Causes:", func(rec *ErrptRecord, v string) { rec.FailureCauses = v }},
	{"Recommended Actions:", func(rec *ErrptRecord, v string) { rec.RecommendedActions = v }},
	{"Detail Data:", func(rec *ErrptRecord, v string) { rec.DetailData = v }},
}

// ParseErrptReport 把 errpt -a 的原始多行输出拆成结构化记录。
//
// 状态机只有一个“累积中”状态：空行提交当前记录，文件结束提交最后
// 一条；连续空行是 no-op。没有任何前缀命中的输入得到 0 条记录，这
// 属于正常情况（机器上没有新错误），不是失败。
//
// 不认识的行会被直接丢弃，包括自由文本字段折行后的续行
// （比如跨多行的 Description）。这与既有采集口径一致；要补全续行
// 需要先改下游看板的字段语义。
func ParseErrptReport(raw string) []ErrptRecord {
	var records []ErrptRecord

	var current ErrptRecord
	fields := 0

	flush := func() {
		if fields == 0 {
			return
		}
		current.Severity = ClassifySeverity(current.ErrorID)
		records = append(records, current)
		current = ErrptRecord{}
		fields = 0
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}

		for _, marker := range errptMarkers {
			if !strings.Contains(line, marker.label) {
				continue
			}
			// 前缀出现多于一次的行视为畸形，命中但不取值。
			parts := strings.Split(line, marker.label)
			if len(parts) == 2 {
				marker.assign(&current, strings.TrimSpace(parts[1]))
				fields++
			}
			break
		}
	}
	flush()

	return records
}

func parseSequence(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
