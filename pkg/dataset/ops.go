// pkg/dataset/ops.go
package dataset

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"zdsctl/pkg/types"
	"zdsctl/pkg/vtoc"
	"zdsctl/pkg/zoscmd"
)

// CatalogFacts 是原语操作需要的最小目录知识：
// 编目/解编目要按 VSAM 与否分派，建成员前要确认父数据集在目录里。
// 完整的目录巡检器天然满足这个接口。
type CatalogFacts interface {
	IsCataloged(ctx context.Context, name types.DsName, volumes []types.Volume) (bool, error)
	IsVSAM(ctx context.Context, name types.DsName, volumes []types.Volume) (bool, error)
}

// Invalidator 在变更原语成功后清掉受影响的目录缓存键
type Invalidator interface {
	Invalidate(ctx context.Context, name types.DsName) error
}

// Operator 聚合全部变更原语：创建/删除/编目/解编目/格式化/成员操作。
// 每个原语都是一次同步阻塞的外部命令调用，非零结果一律抛对应类别的错误。
type Operator struct {
	ex     zoscmd.Executor
	vtoc   vtoc.Inspector
	facts  CatalogFacts
	tmpHLQ string
	cache  Invalidator // 可选
}

func NewOperator(ex zoscmd.Executor, vt vtoc.Inspector, facts CatalogFacts, tmpHLQ string) *Operator {
	return &Operator{ex: ex, vtoc: vt, facts: facts, tmpHLQ: tmpHLQ}
}

// WithCache 挂上目录缓存的失效回调
func (o *Operator) WithCache(inv Invalidator) *Operator {
	o.cache = inv
	return o
}

func (o *Operator) invalidate(ctx context.Context, name types.DsName) {
	if o.cache != nil {
		// 缓存失效是尽力而为，不影响原语本身的结果
		_ = o.cache.Invalidate(ctx, name.Base())
	}
}

// Create 把属性记录翻成分配请求并执行
func (o *Operator) Create(ctx context.Context, a Attributes) error {
	a, err := a.Normalize()
	if err != nil {
		return err
	}
	resp, err := o.ex.Run(ctx, buildCreateCommand(a), "")
	if err != nil {
		return fmt.Errorf("failed to run allocation for %q: %w", a.Name, err)
	}
	if resp.RC > 0 {
		return &CreateError{Name: a.Name, RC: resp.RC, Msg: resp.Stdout + resp.Stderr}
	}
	o.invalidate(ctx, a.Name)
	return nil
}

// Replace 删掉重建。数据丢失是有意的：replace=true 就是这个语义。
func (o *Operator) Replace(ctx context.Context, a Attributes) error {
	if err := o.Delete(ctx, a.Name); err != nil {
		return err
	}
	return o.Create(ctx, a)
}

// Delete 同时移除目录项和卷上的数据
func (o *Operator) Delete(ctx context.Context, name types.DsName) error {
	name = name.Upper()
	resp, err := o.ex.Run(ctx, fmt.Sprintf("drm %q", name.String()), "")
	if err != nil {
		return fmt.Errorf("failed to run deletion for %q: %w", name, err)
	}
	if resp.RC > 0 {
		return &DeleteError{Name: name, RC: resp.RC}
	}
	o.invalidate(ctx, name)
	return nil
}

// Catalog 为一个未编目的数据集建目录项。按 VSAM 与否分派到两条完全不同的路。
func (o *Operator) Catalog(ctx context.Context, name types.DsName, volumes []types.Volume) error {
	isVsam, err := o.facts.IsVSAM(ctx, name, volumes)
	if err != nil {
		return err
	}
	if isVsam {
		err = o.catalogVsam(ctx, name, volumes)
	} else {
		err = o.catalogNonVsam(ctx, name, volumes)
	}
	if err != nil {
		return err
	}
	o.invalidate(ctx, name)
	return nil
}

func (o *Operator) catalogNonVsam(ctx context.Context, name types.DsName, volumes []types.Volume) error {
	sysin := buildNonVsamCatalogCommand(name, volumes)
	resp, err := zoscmd.Iehprogm(ctx, o.ex, sysin)
	if err != nil {
		return fmt.Errorf("failed to run catalog for %q: %w", name, err)
	}
	// IEHPROGM 有时 rc=0 但任务其实没做完，必须双重确认成功标记
	if resp.RC != 0 || !strings.Contains(resp.Stdout, "NORMAL END OF TASK RETURNED") {
		return &CatalogError{Name: name, Volumes: volumes, RC: resp.RC}
	}
	return nil
}

// catalogVsam 重新编目一个 VSAM 簇。
// 没编目的簇查不了 LISTCAT，只能靠 VTOC 条目推断它是不是带索引：
// DATA 和 INDEX 组件都在卷上 → INDEXED，否则先按 NONINDEXED 试。
// 每次尝试失败就换下一种簇类，最后一搏是 LINEAR；三种都不行才报错。
func (o *Operator) catalogVsam(ctx context.Context, name types.DsName, volumes []types.Volume) error {
	entries, err := o.vtoc.Entries(ctx, volumes[0])
	if err != nil {
		return err
	}

	kinds := []string{"NONINDEXED", "INDEXED", "LINEAR"}
	if vtoc.Find(entries, name.Data()) != nil && vtoc.Find(entries, name.Index()) != nil {
		kinds = []string{"INDEXED", "NONINDEXED", "LINEAR"}
	}

	lastRC := 0
	for _, kind := range kinds {
		resp, err := zoscmd.Idcams(ctx, o.ex, buildVsamCatalogCommand(name, volumes, kind))
		if err != nil {
			return fmt.Errorf("failed to run vsam catalog for %q: %w", name, err)
		}
		if resp.RC == 0 {
			return nil
		}
		lastRC = resp.RC
	}
	return &CatalogError{
		Name: name, Volumes: volumes, RC: lastRC,
		Msg: "attempt to catalog VSAM data set failed",
	}
}

// Uncatalog 移除目录项但不动卷上的数据
func (o *Operator) Uncatalog(ctx context.Context, name types.DsName) error {
	isVsam, err := o.facts.IsVSAM(ctx, name, nil)
	if err != nil {
		return err
	}
	if isVsam {
		err = o.uncatalogVsam(ctx, name)
	} else {
		err = o.uncatalogNonVsam(ctx, name)
	}
	if err != nil {
		return err
	}
	o.invalidate(ctx, name)
	return nil
}

func (o *Operator) uncatalogVsam(ctx context.Context, name types.DsName) error {
	resp, err := zoscmd.Idcams(ctx, o.ex, fmt.Sprintf(vsamUncatalogCommand, name.Upper()))
	if err != nil {
		return fmt.Errorf("failed to run vsam uncatalog for %q: %w", name, err)
	}
	if resp.RC != 0 {
		return &UncatalogError{Name: name, RC: resp.RC}
	}
	return nil
}

// uncatalogNonVsam 的控制语句必须先落进一个临时数据集再喂给 IEHPROGM。
// 临时数据集无论成败都要清掉。
func (o *Operator) uncatalogNonVsam(ctx context.Context, name types.DsName) error {
	hlq := strings.SplitN(name.Upper().String(), ".", 2)[0]
	tempName, err := o.CreateTemp(ctx, hlq)
	if err != nil {
		return err
	}
	defer func() {
		// 保证清理路径：删失败也只能由下次临时名错开
		_ = o.Delete(ctx, tempName)
	}()

	if err := o.Write(ctx, tempName, fmt.Sprintf(nonVsamUncatalogCommand, name.Upper())); err != nil {
		return err
	}

	resp, err := zoscmd.IehprogmFromDataSet(ctx, o.ex, tempName.String())
	if err != nil {
		return fmt.Errorf("failed to run uncatalog for %q: %w", name, err)
	}
	if resp.RC != 0 || !strings.Contains(resp.Stdout, "NORMAL END OF TASK RETURNED") {
		return &UncatalogError{Name: name, RC: resp.RC}
	}
	return nil
}

// Format 把已分配好的线性簇格式化成可挂载的 ZFS 文件系统
func (o *Operator) Format(ctx context.Context, name types.DsName) error {
	resp, err := o.ex.Run(ctx, fmt.Sprintf("zfsadm format -aggregate %s", name.Upper()), "")
	if err != nil {
		return fmt.Errorf("failed to run zfs format for %q: %w", name, err)
	}
	if resp.RC != 0 {
		return &FormatError{Name: name, RC: resp.RC, Msg: resp.Stdout + " " + resp.Stderr}
	}
	return nil
}

// MemberExists 靠读成员探测存在性。EDC5067I 是 "找不到成员" 的设施消息。
func (o *Operator) MemberExists(ctx context.Context, name types.DsName) (bool, error) {
	resp, err := o.ex.Run(ctx, fmt.Sprintf("head \"//'%s'\"", name.Upper()), "")
	if err != nil {
		return false, fmt.Errorf("failed to probe member %q: %w", name, err)
	}
	if resp.RC != 0 || strings.Contains(resp.Stderr, "EDC5067I") {
		return false, nil
	}
	return true, nil
}

// CreateMember 在分区数据集里建一个空成员。
// 做法是拷一个空的本地文件进成员；本地临时文件保证清理。
func (o *Operator) CreateMember(ctx context.Context, name types.DsName) error {
	base := name.Base()
	if base == "" {
		return &NotFoundError{Name: name}
	}
	cataloged, err := o.facts.IsCataloged(ctx, base, nil)
	if err != nil {
		return err
	}
	if !cataloged {
		return &NotFoundError{Name: name}
	}

	tmp, err := os.CreateTemp("", "zds-member-*")
	if err != nil {
		return fmt.Errorf("failed to create local temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	tmp.Close()

	resp, err := o.ex.Run(ctx, fmt.Sprintf("cp %s \"//'%s'\"", tmp.Name(), name.Upper()), "")
	if err != nil {
		return fmt.Errorf("failed to run member create for %q: %w", name, err)
	}
	if resp.RC != 0 {
		return &MemberCreateError{Name: name, RC: resp.RC}
	}
	return nil
}

// DeleteMember 删一个成员。force 走共享访问处置，
// 父数据集被别的作业读写时由设施自己仲裁并发。
func (o *Operator) DeleteMember(ctx context.Context, name types.DsName, force bool) error {
	cmd := fmt.Sprintf("mrm %q", name.Upper().String())
	if force {
		cmd = fmt.Sprintf("mrm -f %q", name.Upper().String())
	}
	resp, err := o.ex.Run(ctx, cmd, "")
	if err != nil {
		return fmt.Errorf("failed to run member delete for %q: %w", name, err)
	}
	if resp.RC > 0 {
		return &MemberDeleteError{Name: name, RC: resp.RC}
	}
	return nil
}

// Write 把一段文本写进数据集 (经由本地临时文件)
func (o *Operator) Write(ctx context.Context, name types.DsName, contents string) error {
	tmp, err := os.CreateTemp("", "zds-write-*")
	if err != nil {
		return fmt.Errorf("failed to create local temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(contents); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to stage contents: %w", err)
	}
	tmp.Close()

	resp, err := o.ex.Run(ctx, fmt.Sprintf("cp -O u %s \"//'%s'\"", tmp.Name(), name.Upper()), "")
	if err != nil {
		return fmt.Errorf("failed to run write for %q: %w", name, err)
	}
	if resp.RC != 0 {
		return &WriteError{Name: name, RC: resp.RC}
	}
	return nil
}

const tempQualChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TempName 生成临时数据集名。hlq 为空时用配置的 tmp_hlq，再不行用 ZDS。
func (o *Operator) TempName(hlq string) types.DsName {
	if hlq == "" {
		hlq = o.tmpHLQ
	}
	if hlq == "" {
		hlq = "ZDS"
	}
	qual := make([]byte, 7)
	for i := range qual {
		qual[i] = tempQualChars[rand.Intn(len(tempQualChars))]
	}
	return types.DsName(fmt.Sprintf("%s.ZTMP.T%s", strings.ToUpper(hlq), qual))
}

// CreateTemp 建一个顺序临时数据集 (FB 80, 5M/5M)，调用方负责删除
func (o *Operator) CreateTemp(ctx context.Context, hlq string) (types.DsName, error) {
	name := o.TempName(hlq)
	attrs := Attributes{
		Name:           name,
		Type:           types.TypeSEQ,
		RecordFormat:   "FB",
		RecordLength:   80,
		SpacePrimary:   5,
		SpaceSecondary: 5,
		SpaceType:      "M",
	}
	if err := o.Create(ctx, attrs); err != nil {
		return "", err
	}
	return name, nil
}
