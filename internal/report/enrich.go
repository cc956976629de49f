package report

// Record 为最终入库的记录形态：字段名到值的映射，空值已被剔除。
type Record = map[string]any

// EnrichErrpt 合并服务器身份并剔除空字段。
//
// 空字段是“删除键”而不是“置空串”：下游存储按此约定省空间，
// 看板也依赖键不存在来区分“无值”与“空值”。
func EnrichErrpt(rec ErrptRecord, serverName, hostname string) Record {
	out := Record{
		"severity":            rec.Severity,
		"error_id":            rec.ErrorID,
		"resource_name":       rec.ResourceName,
		"description":         rec.Description,
		"resource_type":       rec.ResourceType,
		"resource_class":      rec.ResourceClass,
		"sequence_number":     rec.SequenceNumber,
		"machine_id":          rec.MachineID,
		"node_id":             rec.NodeID,
		"class":               rec.Class,
		"type":                rec.Type,
		"resource_id":         rec.ResourceID,
		"logical_resource_id": rec.LogicalResourceID,
		"location_code":       rec.LocationCode,
		"vpd":                 rec.VPD,
		"timestamp":           rec.Timestamp,
		"probable_causes":     rec.ProbableCauses,
		"user_causes":         rec.UserCauses,
		"install_causes":      rec.InstallCauses,
		"failure_causes":      rec.FailureCauses,
		"recommended_actions": rec.RecommendedActions,
		"detail_data":         rec.DetailData,
		"server_name":         serverName,
		"hostname":            hostname,
	}
	dropEmpty(out)
	return out
}

// EnrichSyslog 合并服务器身份并剔除空字段。
func EnrichSyslog(rec SyslogRecord, serverName, hostname string) Record {
	out := Record{
		"source":      rec.Source,
		"message":     rec.Message,
		"timestamp":   rec.Timestamp,
		"facility":    rec.Facility,
		"priority":    rec.Priority,
		"process_id":  rec.ProcessID,
		"hostname":    hostname,
		"server_name": serverName,
		"log_level":   rec.LogLevel,
		"component":   rec.Component,
		"error_type":  rec.ErrorType,
		"raw_message": rec.RawMessage,
	}
	dropEmpty(out)
	return out
}

// dropEmpty 删除空值键。空值集合：空串、数值 0、nil。
// 两类记录的字段里没有布尔值，false 不在此列。
func dropEmpty(rec Record) {
	for k, v := range rec {
		switch val := v.(type) {
		case nil:
			delete(rec, k)
		case string:
			if val == "" {
				delete(rec, k)
			}
		case int:
			if val == 0 {
				delete(rec, k)
			}
		case int64:
			if val == 0 {
				delete(rec, k)
			}
		case float64:
			if val == 0 {
				delete(rec, k)
			}
		}
	}
}
