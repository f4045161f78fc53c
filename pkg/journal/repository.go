// pkg/journal/repository.go
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"zdsctl/pkg/types"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrRunNotFound = errors.New("run not found in journal")

// Repository 封装所有对留痕数据库的操作
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// RecordRun 写入一条收敛记录
func (r *Repository) RecordRun(ctx context.Context, run *Run) error {
	if err := r.db.GetConn().WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Recent 按时间倒序返回最近的记录
func (r *Repository) Recent(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	err := r.db.GetConn().WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

// ForName 返回指定数据集的全部历史记录 (倒序)
func (r *Repository) ForName(ctx context.Context, name types.DsName, limit int) ([]Run, error) {
	var runs []Run
	err := r.db.GetConn().WithContext(ctx).
		Where("name = ?", name.Upper().String()).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

// Recorder 给一次收敛操作收集动作痕迹。
// 它实现引擎的 Observer 接口；操作结束后 Finish 生成可入库的 Run。
type Recorder struct {
	name    types.DsName
	state   string
	started time.Time
	actions []string
}

func NewRecorder(name types.DsName, state string) *Recorder {
	return &Recorder{name: name.Upper(), state: state, started: time.Now()}
}

// Step 记录引擎的一步动作
func (rec *Recorder) Step(op string, target types.DsName, detail string, err error) {
	var b strings.Builder
	b.WriteString(op)
	if detail != "" {
		b.WriteString(" ")
		b.WriteString(detail)
	}
	if err != nil {
		b.WriteString(" !")
		b.WriteString(err.Error())
	}
	rec.actions = append(rec.actions, b.String())
}

// Finish 定格结果。attrs 是请求的属性快照，可以为 nil。
func (rec *Recorder) Finish(changed, present bool, opErr error, attrs any) *Run {
	run := &Run{
		Name:       rec.name.String(),
		State:      rec.state,
		Changed:    changed,
		Present:    present,
		DurationMs: time.Since(rec.started).Milliseconds(),
	}
	if opErr != nil {
		run.Error = opErr.Error()
	}
	if attrs != nil {
		if raw, err := json.Marshal(attrs); err == nil {
			run.Attrs = datatypes.JSON(raw)
		}
	}
	if raw, err := json.Marshal(rec.actions); err == nil {
		run.Actions = datatypes.JSON(raw)
	}
	return run
}

// IsNotFound 区分 "查不到" 和真错误
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrRunNotFound)
}
