// pkg/zoscmd/mvs.go
package zoscmd

import (
	"context"
	"fmt"
	"strings"
)

// 本文件集中构造 mvscmdauth 这一层的命令行。
// 各个访问方法工具 (IDCAMS/IEHPROGM/IKJEFT01) 的调用形式是固定的，
// 变的只有 sysin 的来源和额外的 DD 绑定。

// Idcams 跑一段 IDCAMS 控制语句 (LISTCAT / DEFINE / DELETE ...)
func Idcams(ctx context.Context, ex Executor, sysin string) (Response, error) {
	return ex.Run(ctx, "mvscmdauth --pgm=idcams --sysprint=* --sysin=stdin", sysin)
}

// IdcamsWithDD 额外绑定 DD 名到数据集，比如 PRINT INFILE(MYDSET) 需要 --mydset=
func IdcamsWithDD(ctx context.Context, ex Executor, sysin string, dd map[string]string) (Response, error) {
	var b strings.Builder
	b.WriteString("mvscmdauth --pgm=idcams --sysprint=* --sysin=stdin")
	for name, target := range dd {
		fmt.Fprintf(&b, " --%s=%s", strings.ToLower(name), target)
	}
	return ex.Run(ctx, b.String(), sysin)
}

// Iehprogm 跑 IEHPROGM (CATLG/UNCATLG)，sysin 走标准输入
func Iehprogm(ctx context.Context, ex Executor, sysin string) (Response, error) {
	return ex.Run(ctx, "mvscmdauth --pgm=iehprogm --sysprint=* --sysin=stdin", sysin)
}

// IehprogmFromDataSet 同上，但控制语句已经写进了一个数据集。
// UNCATLG 必须走这条路：解编目自己时 stdin 分配会失败。
func IehprogmFromDataSet(ctx context.Context, ex Executor, sysinDS string) (Response, error) {
	return ex.Run(ctx, fmt.Sprintf("mvscmdauth --pgm=iehprogm --sysprint=* --sysin=%s", sysinDS), "")
}

// Ikjeft01 在 TSO 环境下跑一条命令 (LISTDS / ALLOC)
func Ikjeft01(ctx context.Context, ex Executor, command string, authorized bool) (Response, error) {
	pgm := "mvscmd"
	if authorized {
		pgm = "mvscmdauth"
	}
	return ex.Run(ctx,
		fmt.Sprintf("%s --pgm=ikjeft01 --systsprt=* --systsin=stdin", pgm),
		command)
}
