package storage

import "time"

// CollectionRun 记录一次“对某台服务器、某种采集类型”的执行结果，
// 用于审计、追溯与排障（InfluxDB 里的 collection_stats 是指标口径，
// 这里保留错误文本等明细）。
type CollectionRun struct {
	// ID 为自增主键（内部使用）。
	ID uint64 `gorm:"primaryKey"`
	// RunID 串联同一轮采集里各服务器/各类型的结果，便于按轮聚合。
	RunID string `gorm:"size:64;index"`
	// ServerName 为配置里的逻辑名；与 CreatedAt 组成联合索引。
	ServerName string `gorm:"size:255;not null;index:idx_collection_runs_server_time,priority:1"`
	Hostname   string `gorm:"size:255"`
	// Kind 为采集类型：errpt / syslog / connection_test。
	Kind string `gorm:"size:32;not null;index"`
	// Success 表示该次采集是否整体成功（写库失败也算失败）。
	Success bool `gorm:"not null"`
	// RecordsCollected 为实际提交入库的记录数；失败时恒为 0。
	RecordsCollected int `gorm:"not null"`
	// ErrorMessage 存放失败原因（可选）。
	ErrorMessage string `gorm:"type:text"`
	// StartedAt/FinishedAt 为采集起止时间，耗时 = FinishedAt-StartedAt。
	StartedAt  time.Time `gorm:"index"`
	FinishedAt time.Time
	// CreatedAt 为写入本地库的时间，默认自动填充。
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_collection_runs_server_time,priority:2"`
}
