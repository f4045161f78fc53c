// pkg/vtoc/vtoc.go
package vtoc

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"zdsctl/pkg/types"
	"zdsctl/pkg/zoscmd"
)

// Entry 是卷目录 (VTOC) 里的一行：物理驻留在该卷上的一个数据集
// DSOrg 是组织标志，VSAM 组件给出的是 "VS"。
type Entry struct {
	Name  types.DsName
	DSOrg string
}

// Inspector 提供按卷读取 VTOC 的能力。
// 这是核心逻辑消费的外部协作者：实现可以换，搜索逻辑不变。
type Inspector interface {
	Entries(ctx context.Context, volume types.Volume) ([]Entry, error)
}

// Find 在一组 VTOC 条目里按名字查找 (目录里全是大写)
func Find(entries []Entry, name types.DsName) *Entry {
	upper := name.Upper()
	for i := range entries {
		if entries[i].Name.Upper() == upper {
			return &entries[i]
		}
	}
	return nil
}

// Contains 判断数据集是否物理驻留在给定条目集合里。
// VSAM 簇本身不进 VTOC，进的是它的 DATA 组件，所以要带 ".DATA" 再查一次。
func Contains(entries []Entry, name types.DsName) bool {
	if Find(entries, name) != nil {
		return true
	}
	return Find(entries, name.Data()) != nil
}

// IehlistInspector 通过 IEHLIST 的 LISTVTOC 报表读取卷目录
type IehlistInspector struct {
	ex zoscmd.Executor
}

func NewIehlistInspector(ex zoscmd.Executor) *IehlistInspector {
	return &IehlistInspector{ex: ex}
}

// 报表行：数据集名在行首，DSORG 是其后第一个字段。
// 格式由 IEHLIST 固定，这里的样式匹配必须逐字对齐。
var vtocLinePattern = regexp.MustCompile(`^([A-Z$#@][A-Z0-9$#@.-]{0,43})\s+(\S+)`)

func (i *IehlistInspector) Entries(ctx context.Context, volume types.Volume) ([]Entry, error) {
	vol := strings.ToUpper(volume)
	sysin := fmt.Sprintf("  LISTVTOC FORMAT,VOL=3390=%s", vol)
	resp, err := i.ex.Run(ctx,
		fmt.Sprintf("mvscmdauth --pgm=iehlist --sysprint=* --sysin=stdin --dd1=%s,vol", vol),
		sysin)
	if err != nil {
		return nil, fmt.Errorf("failed to list vtoc for volume %s: %w", vol, err)
	}
	if resp.RC != 0 {
		return nil, fmt.Errorf("iehlist returned rc=%d for volume %s: %s", resp.RC, vol, resp.Stdout)
	}
	return parseListvtoc(resp.Stdout), nil
}

// parseListvtoc 从报表里抽出 (名字, DSORG) 对。
// 报表头、统计行都不长得像数据集名，直接被正则滤掉。
func parseListvtoc(report string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(report, "\n") {
		m := vtocLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := types.DsName(m[1])
		if !name.Valid() {
			continue
		}
		entries = append(entries, Entry{Name: name, DSOrg: m[2]})
	}
	return entries
}
