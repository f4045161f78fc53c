// pkg/reconcile/divergence.go
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"zdsctl/pkg/dataset"
	"zdsctl/pkg/types"
)

// 分歧协议：目录里有同名项，但编目的卷和调用方要求的卷对不上。
// 调用方的意图是删掉指定卷上的那份数据；目录里已有的无关项
// 要尽量恢复原状。协议写成显式状态机，每条回滚路径都是一条
// 命名的转移边，而不是层层嵌套的错误分支。
//
// 转移图:
//
//	CatalogedAtOriginal --uncatalog--> Uncataloged
//	                     (失败: 终止, 原项纹丝没动)
//	Uncataloged --catalog target--> CatalogedAtTarget
//	             (失败: 重编目原卷 --> RolledBack)
//	CatalogedAtTarget --verify+delete--> Deleted
//	                   (验证不过: 终止)
//	                   (删除失败: 解编目+重编目原卷 --> RolledBack)
//	Deleted --restore original--> 终止 (changed=true, present=false)
//
// 最后一步恢复原编目项是尽力而为：目标数据已经删掉，主要结果
// 已成既成事实，恢复失败只记录、不改变汇报结果。

type removalState int

const (
	stateCatalogedAtOriginal removalState = iota
	stateUncataloged
	stateCatalogedAtTarget
	stateDeleted
	stateRolledBack
	stateDone
)

func (s removalState) String() string {
	switch s {
	case stateCatalogedAtOriginal:
		return "CatalogedAtOriginal"
	case stateUncataloged:
		return "Uncataloged"
	case stateCatalogedAtTarget:
		return "CatalogedAtTarget"
	case stateDeleted:
		return "Deleted"
	case stateRolledBack:
		return "RolledBack"
	default:
		return "Done"
	}
}

// removal 是分歧协议的一次执行实例
type removal struct {
	engine *Engine
	name   types.DsName
	target []types.Volume

	// 进入 Uncataloged 前记下的原编目卷，回滚和恢复都要用
	original []types.Volume

	changed bool
	present bool
	err     error
}

// run 沿转移表从 CatalogedAtOriginal 走到终态
func (r *removal) run(ctx context.Context) (bool, bool, error) {
	transitions := map[removalState]func(context.Context) removalState{
		stateCatalogedAtOriginal: r.uncatalogOriginal,
		stateUncataloged:         r.catalogAtTarget,
		stateCatalogedAtTarget:   r.deleteTarget,
		stateDeleted:             r.restoreOriginal,
		stateRolledBack:          r.settle,
	}

	state := stateCatalogedAtOriginal
	for state != stateDone {
		next := transitions[state](ctx)
		r.engine.step("divergence", r.name,
			fmt.Sprintf("%s -> %s", state, next), r.err)
		state = next
	}
	return r.changed, r.present, r.err
}

// uncatalogOriginal 记下原编目卷后把目录项摘掉。
// 摘不掉就原地终止：什么都没动，原项还在。
func (r *removal) uncatalogOriginal(ctx context.Context) removalState {
	vols, err := r.engine.facts.CatalogedVolumes(ctx, r.name)
	if err != nil {
		r.err = err
		return stateDone
	}
	r.original = vols

	if err := r.engine.ops.Uncatalog(ctx, r.name); err != nil {
		var ue *dataset.UncatalogError
		if !errors.As(err, &ue) {
			r.err = err
		}
		return stateDone
	}
	return stateUncataloged
}

// catalogAtTarget 把名字编目到请求的卷上并就地验证。
// 编目不上就回滚到原卷；验证不过说明卷上根本没有这份数据，终止。
func (r *removal) catalogAtTarget(ctx context.Context) removalState {
	if err := r.engine.ops.Catalog(ctx, r.name, r.target); err != nil {
		var ce *dataset.CatalogError
		if !errors.As(err, &ce) {
			r.err = err
			return stateDone
		}
		r.recatalogOriginal(ctx)
		return stateRolledBack
	}

	present, err := r.engine.facts.IsCataloged(ctx, r.name, r.target)
	if err != nil {
		r.err = err
		return stateDone
	}
	if !present {
		return stateDone
	}
	r.present = true
	return stateCatalogedAtTarget
}

// deleteTarget 删除现在编目在目标卷上的数据。
// 删除失败时摘掉目标编目、重编目原卷，两步都尽力而为。
func (r *removal) deleteTarget(ctx context.Context) removalState {
	if err := r.engine.ops.Delete(ctx, r.name); err != nil {
		var de *dataset.DeleteError
		if !errors.As(err, &de) {
			r.err = err
			return stateDone
		}
		_ = r.engine.ops.Uncatalog(ctx, r.name)
		r.recatalogOriginal(ctx)
		return stateRolledBack
	}
	return stateDeleted
}

// restoreOriginal 恢复一开始就在目录里的那个无关同名项。
// 目标数据已经删了，这一步成败都汇报 changed=true, present=false。
func (r *removal) restoreOriginal(ctx context.Context) removalState {
	r.recatalogOriginal(ctx)
	r.changed = true
	r.present = false
	return stateDone
}

// settle 回滚完成后的终止边。changed/present 在进入回滚前已定格。
func (r *removal) settle(ctx context.Context) removalState {
	return stateDone
}

// recatalogOriginal 尽力把原编目项放回去，二次失败只留痕不上抛：
// 回滚自己再失败，不能反过来掩盖主错误。
func (r *removal) recatalogOriginal(ctx context.Context) {
	if len(r.original) == 0 {
		return
	}
	err := r.engine.ops.Catalog(ctx, r.name, r.original)
	r.engine.step("recatalog-original", r.name, strings.Join(r.original, ","), err)
}
