// pkg/app/converge.go
package app

import (
	"context"
	"fmt"
	"strings"

	"zdsctl/pkg/dataset"
	"zdsctl/pkg/journal"
	"zdsctl/pkg/reconcile"
	"zdsctl/pkg/types"
)

// Request 是一条收敛请求：目标数据集加期望状态。
// yaml 标签服务于 batch 计划文件。
type Request struct {
	Name  string `yaml:"name"`
	State string `yaml:"state"` // present / absent / cataloged / uncataloged

	Type           string   `yaml:"type"`
	SpacePrimary   int      `yaml:"space_primary"`
	SpaceSecondary int      `yaml:"space_secondary"`
	SpaceType      string   `yaml:"space_type"`
	RecordFormat   string   `yaml:"record_format"`
	RecordLength   *int     `yaml:"record_length"` // nil = 按格式取默认
	BlockSize      int      `yaml:"block_size"`
	DirBlocks      int      `yaml:"directory_blocks"`
	KeyLength      *int     `yaml:"key_length"`
	KeyOffset      int      `yaml:"key_offset"`
	StorageClass   string   `yaml:"sms_storage_class"`
	DataClass      string   `yaml:"sms_data_class"`
	MgmtClass      string   `yaml:"sms_management_class"`
	Volumes        []string `yaml:"volumes"`
	Replace        bool     `yaml:"replace"`
	Force          bool     `yaml:"force"`
}

// Result 是一次收敛的结果汇总
type Result struct {
	Name    types.DsName
	State   string
	Changed bool
	Present bool
}

// Attributes 把请求翻成原语层的属性记录
func (r Request) Attributes() dataset.Attributes {
	a := dataset.Attributes{
		Name:            types.DsName(r.Name),
		Type:            types.DsType(strings.ToUpper(r.Type)),
		SpacePrimary:    r.SpacePrimary,
		SpaceSecondary:  r.SpaceSecondary,
		SpaceType:       r.SpaceType,
		RecordFormat:    r.RecordFormat,
		RecordLength:    dataset.RecordLengthUnset,
		BlockSize:       r.BlockSize,
		DirBlocks:       r.DirBlocks,
		StorageClass:    r.StorageClass,
		DataClass:       r.DataClass,
		ManagementClass: r.MgmtClass,
		Volumes:         r.Volumes,
		Replace:         r.Replace,
		Force:           r.Force,
	}
	if r.RecordLength != nil {
		a.RecordLength = *r.RecordLength
	}
	if r.KeyLength != nil {
		a = a.WithKey(*r.KeyLength, r.KeyOffset)
	}
	return a
}

// Converge 执行一条收敛请求并留痕。
// 每次调用组装自己的引擎和记录器, 互不共享可变状态,
// batch 并发跑多个目标时每个目标内部仍然严格串行。
func (a *App) Converge(ctx context.Context, req Request) (Result, error) {
	name := types.DsName(req.Name).Upper()
	res := Result{Name: name, State: req.State}

	rec := journal.NewRecorder(name, req.State)
	engine := reconcile.NewEngine(a.Catalog, a.Ops).WithObserver(rec)

	var err error
	switch req.State {
	case "present":
		if name.HasMember() {
			res.Changed, err = engine.EnsureMemberPresent(ctx, name, req.Replace)
		} else {
			res.Changed, err = engine.EnsurePresent(ctx, req.Attributes(), req.Replace)
		}
		res.Present = err == nil
	case "absent":
		if name.HasMember() {
			res.Changed, err = engine.EnsureMemberAbsent(ctx, name, req.Force)
		} else {
			res.Changed, res.Present, err = engine.EnsureAbsent(ctx, name, req.Volumes)
		}
	case "cataloged":
		res.Changed, err = engine.EnsureCataloged(ctx, name, req.Volumes)
		res.Present = err == nil
	case "uncataloged":
		res.Changed, err = engine.EnsureUncataloged(ctx, name)
		res.Present = err == nil
	default:
		return res, fmt.Errorf("unsupported state %q, valid states are present, absent, cataloged, uncataloged", req.State)
	}

	// 留痕失败不吞掉收敛本身的结果
	run := rec.Finish(res.Changed, res.Present, err, req)
	if recErr := a.Journal.RecordRun(ctx, run); recErr != nil && err == nil {
		return res, fmt.Errorf("converge succeeded but journaling failed: %w", recErr)
	}
	return res, err
}
