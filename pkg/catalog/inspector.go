// pkg/catalog/inspector.go
package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"zdsctl/pkg/dataset"
	"zdsctl/pkg/types"
	"zdsctl/pkg/vtoc"
	"zdsctl/pkg/zoscmd"
)

// Source 是目录事实的提供方。
// 协调引擎和原语操作都只认这个接口，缓存装饰器也实现它。
type Source interface {
	// IsCataloged 判断数据集是否在目录里。
	// 给了卷列表时按 "请求卷 ∩ 编目卷" 判定，而不是笼统的存在性：
	// 同名数据集完全可能编目在别的卷上。
	IsCataloged(ctx context.Context, name types.DsName, volumes []types.Volume) (bool, error)
	// CatalogedVolumes 返回编目项里记录的全部驻留卷
	CatalogedVolumes(ctx context.Context, name types.DsName) ([]types.Volume, error)
	// IsVSAM 判断是否 VSAM。给了卷就走 VTOC (不要求已编目)，否则走 LISTCAT。
	IsVSAM(ctx context.Context, name types.DsName, volumes []types.Volume) (bool, error)
	// DataSetType 返回组织类型；查无此数据集或分类不出来时返回 TypeUnknown，不算错误
	DataSetType(ctx context.Context, name types.DsName, volume types.Volume) (types.DsType, error)
	// VolumeOf 返回数据集驻留的卷
	VolumeOf(ctx context.Context, name types.DsName) (types.Volume, error)
}

// 所有 LISTCAT / LISTDS 输出的样式匹配集中在本包。
// 报表格式是外部定义的，必须逐字匹配；格式漂移时只改这里。
var (
	inCatPatternTemplate = `-\s%s\s*\n\s+IN-CAT`
	clusterTemplate      = `(?m)^0CLUSTER[ ]+-+[ ]+%s[ ]*$`
	notFoundPattern      = regexp.MustCompile(`NOT FOUND|NOT LISTED`)
	notInCatalogPattern  = regexp.MustCompile(`NOT IN CATALOG`)
	alreadyInUsePattern  = regexp.MustCompile(`ALREADY IN USE`)
	volserPattern        = regexp.MustCompile(`VOLSER-*[A-Z0-9]+`)
	attributesPattern    = regexp.MustCompile(`(?s)ATTRIBUTES.*STATISTICS`)
	dsorgLinePattern     = regexp.MustCompile(`(?m)(-|--)DSORG(-\s*|\s*)\n(.*)`)

	indexedPattern    = regexp.MustCompile(`\bINDEXED\b`)
	nonindexedPattern = regexp.MustCompile(`\bNONINDEXED\b`)
	linearPattern     = regexp.MustCompile(`\bLINEAR\b`)
	numberedPattern   = regexp.MustCompile(`\bNUMBERED\b`)
)

const volserDelimiter = "VOLSER------------"

// Inspector 通过 IDCAMS/IKJEFT01 的文本报表回答目录问题
type Inspector struct {
	ex   zoscmd.Executor
	vtoc vtoc.Inspector
}

func NewInspector(ex zoscmd.Executor, vt vtoc.Inspector) *Inspector {
	return &Inspector{ex: ex, vtoc: vt}
}

// listcat 跑一条 LISTCAT 并统一处理 "查无此项即否定" 的约定：
// 非零 RC 只有在输出不带 NOT FOUND/NOT LISTED 时才是执行错误。
func (i *Inspector) listcat(ctx context.Context, sysin string) (zoscmd.Response, bool, error) {
	resp, err := zoscmd.Idcams(ctx, i.ex, sysin)
	if err != nil {
		return resp, false, err
	}
	if resp.RC != 0 {
		if notFoundPattern.MatchString(resp.Stdout) {
			return resp, false, nil
		}
		return resp, false, &dataset.ExecError{RC: resp.RC, Stdout: resp.Stdout, Stderr: resp.Stderr}
	}
	return resp, true, nil
}

func (i *Inspector) IsCataloged(ctx context.Context, name types.DsName, volumes []types.Volume) (bool, error) {
	name = name.Upper()

	if len(volumes) > 0 {
		// 卷判定：交集非空才算编目在请求的卷上
		cataloged, err := i.CatalogedVolumes(ctx, name)
		if err != nil {
			return false, err
		}
		want := map[string]bool{}
		for _, v := range types.UpperVolumes(volumes) {
			want[v] = true
		}
		for _, v := range cataloged {
			if want[v] {
				return true, nil
			}
		}
		return false, nil
	}

	resp, found, err := i.listcat(ctx, fmt.Sprintf(" LISTCAT ENTRIES('%s')", name))
	if err != nil || !found {
		return false, err
	}
	pattern := regexp.MustCompile(fmt.Sprintf(inCatPatternTemplate, regexp.QuoteMeta(name.String())))
	return pattern.MatchString(resp.Stdout), nil
}

func (i *Inspector) CatalogedVolumes(ctx context.Context, name types.DsName) ([]types.Volume, error) {
	name = name.Upper()
	resp, found, err := i.listcat(ctx, fmt.Sprintf(" LISTCAT ENTRIES('%s') ALL", name))
	if err != nil || !found {
		return nil, err
	}

	// 报表里每个卷序列号跟在 VOLSER--- 定界符后面；长度不固定，截到第一个空白
	chunks := strings.Split(resp.Stdout, volserDelimiter)
	seen := map[string]bool{}
	var vols []types.Volume
	for _, chunk := range chunks[1:] {
		end := strings.IndexAny(chunk, " \n")
		if end < 0 {
			end = len(chunk)
		}
		v := chunk[:end]
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		vols = append(vols, v)
	}
	return vols, nil
}

// exists 目录命中算存在；没编目但给了卷，就去 VTOC 找物理驻留
func (i *Inspector) exists(ctx context.Context, name types.DsName, volume types.Volume) (bool, error) {
	cataloged, err := i.IsCataloged(ctx, name, nil)
	if err != nil {
		return false, err
	}
	if cataloged {
		return true, nil
	}
	if volume == "" {
		return false, nil
	}
	entries, err := i.vtoc.Entries(ctx, volume)
	if err != nil {
		return false, err
	}
	return vtoc.Contains(entries, name), nil
}

func (i *Inspector) IsVSAM(ctx context.Context, name types.DsName, volumes []types.Volume) (bool, error) {
	if len(volumes) == 0 {
		return i.isVsamFromListcat(ctx, name)
	}
	return i.isVsamFromVtoc(ctx, name, volumes[0])
}

func (i *Inspector) isVsamFromListcat(ctx context.Context, name types.DsName) (bool, error) {
	name = name.Upper()
	resp, found, err := i.listcat(ctx, fmt.Sprintf(" LISTCAT ENTRIES('%s')", name))
	if err != nil || !found {
		return false, err
	}
	pattern := regexp.MustCompile(fmt.Sprintf(clusterTemplate, regexp.QuoteMeta(name.String())))
	return pattern.MatchString(resp.Stdout), nil
}

// isVsamFromVtoc 不要求数据集已编目：先找 .DATA 组件，退而求其次找本名
func (i *Inspector) isVsamFromVtoc(ctx context.Context, name types.DsName, volume types.Volume) (bool, error) {
	entries, err := i.vtoc.Entries(ctx, volume)
	if err != nil {
		return false, err
	}
	entry := vtoc.Find(entries, name.Data())
	if entry == nil {
		entry = vtoc.Find(entries, name)
	}
	return entry != nil && entry.DSOrg == "VS", nil
}

// DataSetType 先看 LISTDS 的 DSORG；拿到 VSAM 再去细分簇类
func (i *Inspector) DataSetType(ctx context.Context, name types.DsName, volume types.Volume) (types.DsType, error) {
	exists, err := i.exists(ctx, name, volume)
	if err != nil {
		return types.TypeUnknown, err
	}
	if !exists {
		return types.TypeUnknown, nil
	}

	dsorg, err := i.listdsOrg(ctx, name)
	if err != nil {
		return types.TypeUnknown, err
	}
	switch dsorg {
	case "PS":
		return types.TypeSEQ, nil
	case "PO":
		return types.TypePDS, nil
	case "VSAM", "":
		return i.vsamKind(ctx, name)
	default:
		return types.DsType(dsorg), nil
	}
}

// listdsOrg 从 LISTDS 报表里抠 DSORG 字段；查无此项时返回空串
func (i *Inspector) listdsOrg(ctx context.Context, name types.DsName) (string, error) {
	name = name.Upper()
	resp, err := zoscmd.Ikjeft01(ctx, i.ex, fmt.Sprintf("  LISTDS '%s'", name), true)
	if err != nil {
		return "", err
	}
	if resp.RC != 0 {
		if alreadyInUsePattern.MatchString(resp.Stdout) {
			return "", &dataset.BusyError{Name: name}
		}
		if notInCatalogPattern.MatchString(resp.Stdout) {
			return "", nil
		}
		return "", &dataset.ExecError{RC: resp.RC, Stdout: resp.Stdout, Stderr: resp.Stderr}
	}
	m := dsorgLinePattern.FindStringSubmatch(resp.Stdout)
	if m == nil {
		return "", nil
	}
	fields := strings.Fields(m[3])
	if len(fields) == 0 {
		return "", nil
	}
	// DSORG 是属性行的最后一个字段
	return fields[len(fields)-1], nil
}

// vsamKind 解析 LISTCAT 详细报表的 ATTRIBUTES..STATISTICS 块，
// 四个互斥标记对应四种簇类；一个都没有就是 Unknown，不是错误。
func (i *Inspector) vsamKind(ctx context.Context, name types.DsName) (types.DsType, error) {
	output, err := i.listcatData(ctx, name)
	if err != nil {
		return types.TypeUnknown, err
	}
	block := attributesPattern.FindString(output)
	if block == "" {
		return types.TypeUnknown, nil
	}
	switch {
	case indexedPattern.MatchString(block):
		return types.TypeKSDS, nil
	case nonindexedPattern.MatchString(block):
		return types.TypeESDS, nil
	case linearPattern.MatchString(block):
		return types.TypeLDS, nil
	case numberedPattern.MatchString(block):
		return types.TypeRRDS, nil
	default:
		return types.TypeUnknown, nil
	}
}

// listcatData 拉一份带 DATA 组件的详细目录报表。
// 这里非零 RC 直接算执行错误：调用方已经确认过数据集存在。
func (i *Inspector) listcatData(ctx context.Context, name types.DsName) (string, error) {
	name = name.Upper()
	resp, err := zoscmd.Idcams(ctx, i.ex, fmt.Sprintf(" LISTCAT ENT('%s') DATA ALL", name))
	if err != nil {
		return "", err
	}
	if resp.RC != 0 {
		return "", &dataset.ExecError{RC: resp.RC, Stdout: resp.Stdout, Stderr: resp.Stderr}
	}
	return resp.Stdout, nil
}

// VolumeOf 从目录报表里解析驻留卷。
// 查无此项是 NotFound；项在但 VOLSER 解析不出来是 VolumeError，两者要区分。
func (i *Inspector) VolumeOf(ctx context.Context, name types.DsName) (types.Volume, error) {
	name = name.Upper()
	resp, err := zoscmd.Idcams(ctx, i.ex, fmt.Sprintf(" LISTCAT ENT('%s') ALL", name))
	if err != nil {
		return "", err
	}
	if notFoundPattern.MatchString(resp.Stdout) {
		return "", &dataset.NotFoundError{Name: name}
	}
	if resp.RC != 0 {
		return "", &dataset.ExecError{RC: resp.RC, Stdout: resp.Stdout, Stderr: resp.Stderr}
	}
	m := volserPattern.FindString(resp.Stdout)
	if m == "" {
		return "", &dataset.VolumeError{Name: name}
	}
	return strings.TrimLeft(strings.TrimPrefix(m, "VOLSER"), "-"), nil
}
