package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	defaultLimit = 200
	maxLimit     = 5000
)

// RunQuery 为采集历史的查询条件；零值字段不参与过滤。
type RunQuery struct {
	RunID      string
	ServerName string
	Kind       string
	// Success 为 nil 时不过滤成败。
	Success *bool
	// From/To 过滤 CreatedAt 区间：[From, To]（两端包含）。
	From *time.Time
	To   *time.Time
	// Limit 限制返回条数；<=0 使用默认值。
	Limit int
	// Desc 按 CreatedAt 倒序返回（优先返回最新记录）。
	Desc bool
}

func (s *Storage) InsertCollectionRun(ctx context.Context, run *CollectionRun) error {
	if s == nil || s.db == nil {
		return errors.New("storage not initialized")
	}
	if run == nil {
		return errors.New("collection run is nil")
	}
	now := time.Now().UTC()
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = now
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("insert collection run: %w", err)
	}
	return nil
}

func (s *Storage) InsertCollectionRuns(ctx context.Context, runs []CollectionRun) error {
	if s == nil || s.db == nil {
		return errors.New("storage not initialized")
	}
	if len(runs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range runs {
		if runs[i].StartedAt.IsZero() {
			runs[i].StartedAt = now
		}
		if runs[i].FinishedAt.IsZero() {
			runs[i].FinishedAt = now
		}
		if runs[i].CreatedAt.IsZero() {
			runs[i].CreatedAt = now
		}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(runs, 200).Error; err != nil {
		return fmt.Errorf("insert collection runs: %w", err)
	}
	return nil
}

func (s *Storage) QueryCollectionRuns(ctx context.Context, q RunQuery) ([]CollectionRun, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("storage not initialized")
	}

	limit := normalizeLimit(q.Limit)
	db := s.db.WithContext(ctx).Model(&CollectionRun{})
	if q.RunID != "" {
		db = db.Where("run_id = ?", q.RunID)
	}
	if q.ServerName != "" {
		db = db.Where("server_name = ?", q.ServerName)
	}
	if q.Kind != "" {
		db = db.Where("kind = ?", q.Kind)
	}
	if q.Success != nil {
		db = db.Where("success = ?", *q.Success)
	}
	if q.From != nil {
		db = db.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("created_at <= ?", *q.To)
	}
	if q.Desc {
		db = db.Order("created_at DESC")
	} else {
		db = db.Order("created_at ASC")
	}
	db = db.Limit(limit)

	var out []CollectionRun
	if err := db.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query collection runs: %w", err)
	}
	return out, nil
}

func (s *Storage) CountCollectionRuns(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("storage not initialized")
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&CollectionRun{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count collection runs: %w", err)
	}
	return count, nil
}

func (s *Storage) DeleteCollectionRunsBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("storage not initialized")
	}
	res := s.db.WithContext(ctx).Where("created_at < ?", before).Delete(&CollectionRun{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete collection runs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteCollectionRunsKeepLatest 只保留最近 keep 条记录。
func (s *Storage) DeleteCollectionRunsKeepLatest(ctx context.Context, keep int) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("storage not initialized")
	}
	if keep <= 0 {
		return 0, errors.New("keep must be positive")
	}

	var ids []uint64
	if err := s.db.WithContext(ctx).Model(&CollectionRun{}).
		Select("id").
		Order("created_at DESC").
		Limit(keep).
		Find(&ids).Error; err != nil {
		return 0, fmt.Errorf("select latest collection runs: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).Where("id NOT IN ?", ids).Delete(&CollectionRun{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete collection runs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func normalizeLimit(v int) int {
	if v <= 0 {
		return defaultLimit
	}
	if v > maxLimit {
		return maxLimit
	}
	return v
}
