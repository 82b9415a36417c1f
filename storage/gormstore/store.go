package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dummyllm/dummyllm-go/dummyllm"
	"github.com/dummyllm/dummyllm-go/mode"
)

// model 任务记录的数据库映射。Result/Error 以 JSON 列存放。
type model struct {
	ID              uint      `gorm:"primaryKey"`
	JobID           string    `gorm:"uniqueIndex;size:32"`
	State           string    `gorm:"index;size:16"`
	Mode            string    `gorm:"size:16"`
	Op              string    `gorm:"size:64"`
	Args            []byte    `gorm:"type:blob"`
	TimeoutMS       int       `gorm:"default:0"`
	TraceID         string    `gorm:"size:64"`
	CancelRequested bool      `gorm:"default:false"`
	ResultJSON      []byte    `gorm:"type:blob"`
	ErrorJSON       []byte    `gorm:"type:blob"`
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

// Store 基于 GORM 的 Storage 实现，用于需要跨查看进程留痕的宿主。
// 注意：模拟器本身不承诺跨重启一致性；终态原子性靠数据库事务保证。
type Store struct{ db *gorm.DB }

var _ dummyllm.Store = (*Store)(nil)

// New 创建 Store，调用方应自行在外部执行 AutoMigrate(&Model{})。
func New(db *gorm.DB) *Store { return &Store{db: db} }

// Model 返回迁移用的表模型。
func Model() any { return &model{} }

// Create 实现 Store.Create。
func (s *Store) Create(ctx context.Context, rec *dummyllm.JobRecord) error {
	var cnt int64
	if err := s.db.WithContext(ctx).Model(&model{}).Where("job_id = ?", rec.ID).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		return dummyllm.ErrDuplicateID
	}
	m := toModel(rec)
	return s.db.WithContext(ctx).Create(&m).Error
}

// Get 实现 Store.Get。
func (s *Store) Get(ctx context.Context, id string) (*dummyllm.JobRecord, error) {
	var m model
	if err := s.db.WithContext(ctx).Where("job_id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dummyllm.ErrNotFound
		}
		return nil, err
	}
	return fromModel(m), nil
}

// Transition 实现 Store.Transition：事务内读取、终态校验、提交。
func (s *Store) Transition(ctx context.Context, id string, mutate func(*dummyllm.JobRecord)) (*dummyllm.JobRecord, error) {
	var out *dummyllm.JobRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model
		if err := tx.Where("job_id = ?", id).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dummyllm.ErrNotFound
			}
			return err
		}
		rec := fromModel(m)
		if rec.State.Terminal() {
			return dummyllm.ErrAlreadyTerminal
		}
		mutate(rec)
		rec.UpdatedAt = time.Now()
		nm := toModel(rec)
		nm.ID = m.ID
		if err := tx.Save(&nm).Error; err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RequestCancel 实现 Store.RequestCancel。
func (s *Store) RequestCancel(ctx context.Context, id string) (*dummyllm.JobRecord, error) {
	var out *dummyllm.JobRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model
		if err := tx.Where("job_id = ?", id).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dummyllm.ErrNotFound
			}
			return err
		}
		rec := fromModel(m)
		if rec.State.Terminal() {
			return dummyllm.ErrAlreadyTerminal
		}
		if err := tx.Model(&model{}).Where("id = ?", m.ID).Update("cancel_requested", true).Error; err != nil {
			return err
		}
		rec.CancelRequested = true
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Counts 实现 Store.Counts。
func (s *Store) Counts(ctx context.Context) (map[dummyllm.State]int, error) {
	var rows []struct {
		State string
		N     int
	}
	if err := s.db.WithContext(ctx).Model(&model{}).
		Select("state, count(*) as n").Group("state").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := map[dummyllm.State]int{}
	for _, r := range rows {
		out[dummyllm.State(r.State)] = r.N
	}
	return out, nil
}

func toModel(r *dummyllm.JobRecord) model {
	m := model{
		JobID:           r.ID,
		State:           string(r.State),
		Mode:            string(r.Mode),
		Op:              r.Op,
		Args:            r.Args,
		TimeoutMS:       r.TimeoutMS,
		TraceID:         r.TraceID,
		CancelRequested: r.CancelRequested,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.Result != nil {
		m.ResultJSON, _ = json.Marshal(r.Result)
	}
	if r.Error != nil {
		m.ErrorJSON, _ = json.Marshal(r.Error)
	}
	return m
}

func fromModel(m model) *dummyllm.JobRecord {
	r := &dummyllm.JobRecord{
		ID:              m.JobID,
		State:           dummyllm.State(m.State),
		Mode:            mode.Mode(m.Mode),
		Op:              m.Op,
		Args:            m.Args,
		TimeoutMS:       m.TimeoutMS,
		TraceID:         m.TraceID,
		CancelRequested: m.CancelRequested,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if len(m.ResultJSON) > 0 {
		var res dummyllm.JobResult
		if json.Unmarshal(m.ResultJSON, &res) == nil {
			r.Result = &res
		}
	}
	if len(m.ErrorJSON) > 0 {
		var e dummyllm.JobError
		if json.Unmarshal(m.ErrorJSON, &e) == nil {
			r.Error = &e
		}
	}
	return r
}
