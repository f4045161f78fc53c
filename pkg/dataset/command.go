// pkg/dataset/command.go
package dataset

import (
	"fmt"
	"strings"

	"zdsctl/pkg/types"
)

// 本文件是全部命令文本的生成点。
// IDCAMS 接受自由一些的续行；IEHPROGM 走的是作业控制卡的规矩：
// 每行第 72 列放续行标记，位置一格都不能差。

const (
	vsamCatalogNotIndexed = ` DEFINE CLUSTER -
    (NAME('%[1]s') -
    VOLUMES(%[2]s) -
    RECATALOG %[3]s) -
    DATA(NAME('%[1]s.DATA'))
`
	vsamCatalogIndexed = ` DEFINE CLUSTER -
    (NAME('%[1]s') -
    VOLUMES(%[2]s) -
    RECATALOG %[3]s) -
    DATA(NAME('%[1]s.DATA')) -
    INDEX(NAME('%[1]s.INDEX'))
`
	nonVsamUncatalogCommand = " UNCATLG DSNAME=%s"

	vsamUncatalogCommand = " DELETE '%s' NOSCRATCH"
)

// formatControlLine 把一行控制语句填充到 71 列并在 72 列放续行字符
func formatControlLine(line string, eol byte, newline bool) string {
	formatted := fmt.Sprintf("%-71s", line) + string(eol)
	if newline {
		formatted += "\n"
	}
	return formatted
}

// buildVolumeClauseIdcams 拼 IDCAMS VOLUMES(...) 里的卷列表
func buildVolumeClauseIdcams(volumes []types.Volume) string {
	return strings.Join(volumes, " -\n    ")
}

// buildVolumeClauseIehprogm 拼 IEHPROGM 的 VOL=3390=(...) 部分，
// 多卷时每行一个卷、续行到第 72 列。
func buildVolumeClauseIehprogm(volumes []types.Volume) string {
	var b strings.Builder
	for i, vol := range volumes {
		var line string
		if i == 0 {
			line = fmt.Sprintf("               VOL=3390=(%s", strings.ToUpper(vol))
		} else {
			line = fmt.Sprintf("               %s", strings.ToUpper(vol))
		}
		if i+1 != len(volumes) {
			b.WriteString(formatControlLine(line+",", 'X', true))
		} else {
			b.WriteString(line + ")\n")
		}
	}
	return b.String()
}

// buildNonVsamCatalogCommand 生成 IEHPROGM CATLG 控制语句
func buildNonVsamCatalogCommand(name types.DsName, volumes []types.Volume) string {
	head := formatControlLine(fmt.Sprintf("    CATLG DSNAME=%s,", name.Upper()), 'X', true)
	return head + buildVolumeClauseIehprogm(volumes)
}

// buildVsamCatalogCommand 生成 DEFINE CLUSTER RECATALOG 控制语句。
// recatalogKind 是 INDEXED / NONINDEXED / LINEAR 之一。
func buildVsamCatalogCommand(name types.DsName, volumes []types.Volume, recatalogKind string) string {
	template := vsamCatalogNotIndexed
	if recatalogKind == "INDEXED" {
		template = vsamCatalogIndexed
	}
	return fmt.Sprintf(template, name.Upper(), buildVolumeClauseIdcams(volumes), recatalogKind)
}

// buildCreateCommand 把属性记录翻成 dtouch 的命令行参数
func buildCreateCommand(a Attributes) string {
	args := []string{"dtouch"}

	add := func(flag, val string) {
		if val != "" {
			args = append(args, flag+val)
		}
	}

	dsType := a.Type
	if dsType == types.TypeZFS {
		// ZFS 先按线性簇分配，挂载格式化是后面单独一步
		dsType = types.TypeLDS
	}
	add("-t", string(dsType))
	add("-r", a.RecordFormat)
	if a.RecordLength != RecordLengthUnset {
		add("-l", fmt.Sprintf("%d", a.RecordLength))
	}
	if a.BlockSize > 0 {
		add("-b", fmt.Sprintf("%d", a.BlockSize))
	}
	if a.SpacePrimary > 0 {
		add("-s", fmt.Sprintf("%d%s", a.SpacePrimary, a.SpaceType))
	}
	if a.SpaceSecondary > 0 {
		add("-e", fmt.Sprintf("%d%s", a.SpaceSecondary, a.SpaceType))
	}
	if a.DirBlocks > 0 {
		add("-d", fmt.Sprintf("%d", a.DirBlocks))
	}
	if a.hasKey {
		add("-k", fmt.Sprintf("%d:%d", a.KeyLength, a.KeyOffset))
	}
	add("-c", a.StorageClass)
	add("-D", a.DataClass)
	add("-m", a.ManagementClass)
	if len(a.Volumes) > 0 {
		add("-V", strings.Join(a.Volumes, ","))
	}

	args = append(args, fmt.Sprintf("%q", a.Name.Upper().String()))
	return strings.Join(args, " ")
}
