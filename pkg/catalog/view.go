// pkg/catalog/view.go
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"zdsctl/pkg/dataset"
	"zdsctl/pkg/types"
	"zdsctl/pkg/zoscmd"
)

// View 是一个数据集的快照：LISTDS + LISTCAT 两份报表拼出来的事实。
// 输入数据集默认已编目；没编目时 Exists 为 false，其余字段为零值。
type View struct {
	Name    types.DsName
	Exists  bool
	DSOrg   string
	RecFm   string
	Lrecl   int
	BlkSize int
	Volser  types.Volume
}

// GatherView 收集单个数据集的属性快照。
// "ALREADY IN USE" 单独升级成 BusyError：数据集被别的作业占着，
// 和一般执行失败要区分开。
func (i *Inspector) GatherView(ctx context.Context, name types.DsName) (*View, error) {
	v := &View{Name: name.Upper()}

	resp, err := zoscmd.Ikjeft01(ctx, i.ex, fmt.Sprintf("  LISTDS '%s'", v.Name), true)
	if err != nil {
		return nil, err
	}
	if resp.RC == 0 {
		v.applyListds(resp.Stdout)
	} else {
		switch {
		case alreadyInUsePattern.MatchString(resp.Stdout):
			return nil, &dataset.BusyError{Name: v.Name}
		case notInCatalogPattern.MatchString(resp.Stdout):
			v.Exists = false
		default:
			return nil, &dataset.ExecError{RC: resp.RC, Stdout: resp.Stdout, Stderr: resp.Stderr}
		}
	}

	resp, err = zoscmd.Idcams(ctx, i.ex, fmt.Sprintf(" LISTCAT ENT(%s) ALL", v.Name))
	if err != nil {
		return nil, err
	}
	if resp.RC == 0 {
		v.applyListcat(resp.Stdout)
	} else if !notFoundPattern.MatchString(resp.Stdout) {
		return nil, &dataset.ExecError{RC: resp.RC, Stdout: resp.Stdout, Stderr: resp.Stderr}
	}

	return v, nil
}

// applyListds 解析 LISTDS 的属性行：RECFM LRECL BLKSIZE ... DSORG
func (v *View) applyListds(output string) {
	if notInCatalogPattern.MatchString(output) {
		v.Exists = false
		return
	}
	v.Exists = true

	m := dsorgLinePattern.FindStringSubmatch(output)
	if m == nil {
		return
	}
	fields := strings.Fields(m[3])
	if len(fields) == 0 {
		return
	}
	v.DSOrg = fields[len(fields)-1]
	if v.DSOrg == "VSAM" {
		// VSAM 没有这几个属性
		return
	}
	v.RecFm = fields[0]
	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[1]); err == nil {
			v.Lrecl = n
		}
	}
	if len(fields) > 2 {
		if n, err := strconv.Atoi(fields[2]); err == nil {
			v.BlkSize = n
		}
	}
}

func (v *View) applyListcat(output string) {
	if notFoundPattern.MatchString(output) {
		return
	}
	if m := volserPattern.FindString(output); m != "" {
		v.Volser = strings.TrimLeft(strings.TrimPrefix(m, "VOLSER"), "-")
	}
}
