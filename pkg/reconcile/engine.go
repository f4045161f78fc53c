// pkg/reconcile/engine.go
package reconcile

import (
	"context"
	"errors"
	"strings"

	"zdsctl/pkg/dataset"
	"zdsctl/pkg/types"
)

// Facts 是引擎需要的目录知识 (catalog.Source 的子集)
type Facts interface {
	IsCataloged(ctx context.Context, name types.DsName, volumes []types.Volume) (bool, error)
	CatalogedVolumes(ctx context.Context, name types.DsName) ([]types.Volume, error)
}

// Operators 是引擎驱动的变更原语 (dataset.Operator 天然满足)
type Operators interface {
	Create(ctx context.Context, a dataset.Attributes) error
	Replace(ctx context.Context, a dataset.Attributes) error
	Delete(ctx context.Context, name types.DsName) error
	Catalog(ctx context.Context, name types.DsName, volumes []types.Volume) error
	Uncatalog(ctx context.Context, name types.DsName) error
	Format(ctx context.Context, name types.DsName) error
	MemberExists(ctx context.Context, name types.DsName) (bool, error)
	CreateMember(ctx context.Context, name types.DsName) error
	DeleteMember(ctx context.Context, name types.DsName, force bool) error
}

// Observer 接收引擎每一步动作的通知，用来留操作痕迹。
// err 为 nil 表示该步成功。实现方不得阻塞。
type Observer interface {
	Step(op string, target types.DsName, detail string, err error)
}

// Engine 是状态收敛的核心：对比期望状态和目录/卷上的实际状态，
// 只做必要的变更，并汇报是否真的改了什么。
// 每个 Ensure 方法内部严格串行；检查和动作之间可能被外部进程插队，
// 所以破坏性动作之前都就地重新验证，不依赖最初的快照。
type Engine struct {
	facts Facts
	ops   Operators
	obs   Observer
}

func NewEngine(facts Facts, ops Operators) *Engine {
	return &Engine{facts: facts, ops: ops}
}

// WithObserver 挂上动作观察者
func (e *Engine) WithObserver(obs Observer) *Engine {
	e.obs = obs
	return e
}

func (e *Engine) step(op string, target types.DsName, detail string, err error) {
	if e.obs != nil {
		e.obs.Step(op, target, detail, err)
	}
}

// EnsurePresent 保证数据集按给定属性存在。
// 数据集已存在且 replace=false 时不动；replace=true 时删掉重建 (数据丢失是语义的一部分)。
// 创建撞上 "卷上已存在" 的签名时走编目恢复：卷上既然有，编目回来就算到位。
// ZFS 类型在分配之后还要补一步格式化。
func (e *Engine) EnsurePresent(ctx context.Context, a dataset.Attributes, replace bool) (bool, error) {
	a.Name = a.Name.Upper()

	present, err := e.facts.IsCataloged(ctx, a.Name, nil)
	if err != nil {
		return false, err
	}

	changed := false
	if !present {
		createErr := e.ops.Create(ctx, a)
		e.step("create", a.Name, string(a.Type), createErr)
		if createErr != nil {
			var ce *dataset.CreateError
			if errors.As(createErr, &ce) && ce.ExistsOnVolume() {
				present, changed, err = e.attemptCatalog(ctx, a.Name, a.Volumes)
				if err != nil {
					return false, err
				}
				if present && changed {
					e.step("recover-catalog", a.Name, "", nil)
				}
			}
			if !(present && changed) {
				return false, createErr
			}
		}
	}

	if present {
		if !replace {
			return changed, nil
		}
		if err := e.ops.Replace(ctx, a); err != nil {
			e.step("replace", a.Name, "", err)
			return false, err
		}
		e.step("replace", a.Name, "", nil)
	}

	if strings.EqualFold(string(a.Type), string(types.TypeZFS)) {
		if err := e.ops.Format(ctx, a.Name); err != nil {
			e.step("format", a.Name, "", err)
			return false, err
		}
		e.step("format", a.Name, "", nil)
	}
	return true, nil
}

// attemptCatalog 在数据集没编目时尝试从给定的卷编目回来。
// 编目失败不是错误，只是 "还是不存在"；其余错误上抛。
func (e *Engine) attemptCatalog(ctx context.Context, name types.DsName, volumes []types.Volume) (present, changed bool, err error) {
	present, err = e.facts.IsCataloged(ctx, name, nil)
	if err != nil || present {
		return present, false, err
	}
	if len(volumes) == 0 {
		return false, false, nil
	}
	if cerr := e.ops.Catalog(ctx, name, volumes); cerr != nil {
		var ce *dataset.CatalogError
		if errors.As(cerr, &ce) {
			return false, false, nil
		}
		return false, false, cerr
	}
	return true, true, nil
}

// EnsureAbsent 保证数据集不存在。
// 最棘手的输入是 "目录里有，但不在调用方指定的卷上"：
// 同一个名字可以同时编目在一处、物理存在于另一处，调用方要删的是
// 指定卷上的那份数据，目录里无关的同名项要尽量保全。这条路交给
// 分歧协议的状态机 (divergence.go)。
// 返回 changed 和 present：present 指 "在请求的驻留位置是否仍然存在"。
func (e *Engine) EnsureAbsent(ctx context.Context, name types.DsName, volumes []types.Volume) (changed, present bool, err error) {
	name = name.Upper()

	if len(volumes) == 0 {
		present, err = e.facts.IsCataloged(ctx, name, nil)
		if err != nil || !present {
			return false, false, err
		}
		delErr := e.ops.Delete(ctx, name)
		e.step("delete", name, "", delErr)
		if delErr != nil {
			return false, true, delErr
		}
		return true, false, nil
	}

	cataloged, err := e.facts.IsCataloged(ctx, name, nil)
	if err != nil {
		return false, false, err
	}

	if !cataloged {
		// 没编目但给了卷：先试着编目；编目不上，就当它真的不存在
		if cerr := e.ops.Catalog(ctx, name, volumes); cerr != nil {
			var ce *dataset.CatalogError
			if errors.As(cerr, &ce) {
				return false, false, nil
			}
			return false, false, cerr
		}
		e.step("catalog", name, "", nil)
		present, err = e.facts.IsCataloged(ctx, name, volumes)
		if err != nil || !present {
			return false, false, err
		}
		if derr := e.ops.Delete(ctx, name); derr != nil {
			e.step("delete", name, "", derr)
			return false, true, derr
		}
		e.step("delete", name, "", nil)
		return true, false, nil
	}

	onVolumes, err := e.facts.IsCataloged(ctx, name, volumes)
	if err != nil {
		return false, false, err
	}
	if onVolumes {
		// 编目项就在请求的卷上，目录和意图一致，直接删
		if derr := e.ops.Delete(ctx, name); derr != nil {
			e.step("delete", name, "", derr)
			return false, true, derr
		}
		e.step("delete", name, "", nil)
		return true, false, nil
	}

	// 目录里的项和请求的卷对不上：走分歧协议
	r := &removal{engine: e, name: name, target: volumes}
	return r.run(ctx)
}

// EnsureCataloged 保证数据集已编目。编目失败被改写成
// "找不到数据集、无法编目" 的明确失败，免得调用方去猜 RC。
func (e *Engine) EnsureCataloged(ctx context.Context, name types.DsName, volumes []types.Volume) (bool, error) {
	name = name.Upper()
	cataloged, err := e.facts.IsCataloged(ctx, name, nil)
	if err != nil || cataloged {
		return false, err
	}
	if cerr := e.ops.Catalog(ctx, name, volumes); cerr != nil {
		e.step("catalog", name, "", cerr)
		var ce *dataset.CatalogError
		if errors.As(cerr, &ce) {
			return false, &dataset.CatalogError{
				Name: name, Volumes: volumes, RC: -1,
				Msg: "Data set was not found. Unable to catalog.",
			}
		}
		return false, cerr
	}
	e.step("catalog", name, "", nil)
	return true, nil
}

// EnsureUncataloged 保证数据集不在目录里 (卷上的数据不动)
func (e *Engine) EnsureUncataloged(ctx context.Context, name types.DsName) (bool, error) {
	name = name.Upper()
	cataloged, err := e.facts.IsCataloged(ctx, name, nil)
	if err != nil || !cataloged {
		return false, err
	}
	uErr := e.ops.Uncatalog(ctx, name)
	e.step("uncatalog", name, "", uErr)
	if uErr != nil {
		return false, uErr
	}
	return true, nil
}

// EnsureMemberPresent 保证分区数据集成员存在 (内容为空)。
// 成员已存在且 replace=false 时不动；replace=true 时删掉重建。
func (e *Engine) EnsureMemberPresent(ctx context.Context, name types.DsName, replace bool) (bool, error) {
	name = name.Upper()
	exists, err := e.ops.MemberExists(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		if !replace {
			return false, nil
		}
		if derr := e.ops.DeleteMember(ctx, name, false); derr != nil {
			e.step("delete-member", name, "", derr)
			return false, derr
		}
		e.step("delete-member", name, "", nil)
	}
	if cerr := e.ops.CreateMember(ctx, name); cerr != nil {
		e.step("create-member", name, "", cerr)
		return false, cerr
	}
	e.step("create-member", name, "", nil)
	return true, nil
}

// EnsureMemberAbsent 保证成员不存在。force 走共享访问处置，
// 父数据集被其它进程读写时由设施仲裁。
func (e *Engine) EnsureMemberAbsent(ctx context.Context, name types.DsName, force bool) (bool, error) {
	name = name.Upper()
	exists, err := e.ops.MemberExists(ctx, name)
	if err != nil || !exists {
		return false, err
	}
	dErr := e.ops.DeleteMember(ctx, name, force)
	e.step("delete-member", name, "", dErr)
	if dErr != nil {
		return false, dErr
	}
	return true, nil
}
