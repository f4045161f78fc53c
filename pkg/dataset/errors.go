// pkg/dataset/errors.go
package dataset

import (
	"fmt"
	"strings"

	"zdsctl/pkg/types"
)

// 错误分类是协调引擎的分支依据：引擎用 errors.As 精确捕获
// 特定类别 (比如创建时的 "exists on volume"、回滚协议里的编目失败)，
// 其余错误一律原样上抛。

// NotFoundError 操作要求数据集存在，但目录和 VTOC 都找不到
type NotFoundError struct {
	Name types.DsName
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("the data set %q could not be located", e.Name)
}

// CreateError 分配设施非零返回；Msg 里带着设施的原始输出
type CreateError struct {
	Name types.DsName
	RC   int
	Msg  string
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("an error occurred during creation of data set %q, rc=%d: %s", e.Name, e.RC, e.Msg)
}

// ExistsOnVolume 判断创建失败是否因为同名数据集已经在卷上。
// 0x4704 是分配设施定义的错误签名，逐字匹配。
func (e *CreateError) ExistsOnVolume() bool {
	return strings.Contains(e.Msg, "Error Code: 0x4704")
}

type DeleteError struct {
	Name types.DsName
	RC   int
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("an error occurred during deletion of data set %q, rc=%d", e.Name, e.RC)
}

// CatalogError 编目失败：带上目标名、尝试过的卷和设施返回码
type CatalogError struct {
	Name    types.DsName
	Volumes []types.Volume
	RC      int
	Msg     string
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("an error occurred during cataloging of data set %q on volume(s) %s, rc=%d. %s",
		e.Name, strings.Join(e.Volumes, ", "), e.RC, e.Msg)
}

type UncatalogError struct {
	Name types.DsName
	RC   int
}

func (e *UncatalogError) Error() string {
	return fmt.Sprintf("an error occurred during uncatalog of data set %q, rc=%d", e.Name, e.RC)
}

type MemberCreateError struct {
	Name types.DsName
	RC   int
}

func (e *MemberCreateError) Error() string {
	return fmt.Sprintf("an error occurred during creation of data set member %q, rc=%d", e.Name, e.RC)
}

type MemberDeleteError struct {
	Name types.DsName
	RC   int
}

func (e *MemberDeleteError) Error() string {
	return fmt.Sprintf("an error occurred during deletion of data set member %q, rc=%d", e.Name, e.RC)
}

// VolumeError 数据集存在，但从设施输出里解析不出驻留卷
type VolumeError struct {
	Name types.DsName
}

func (e *VolumeError) Error() string {
	return fmt.Sprintf("the data set %q could not be found on a volume in the system", e.Name)
}

type WriteError struct {
	Name types.DsName
	RC   int
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("an error occurred during write of data set %q, rc=%d", e.Name, e.RC)
}

type FormatError struct {
	Name types.DsName
	RC   int
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("an error occurred during format of data set %q, rc=%d: %s", e.Name, e.RC, e.Msg)
}

// BusyError 数据集被别的进程打开 (设施消息 "ALREADY IN USE")，
// 和一般执行失败区分开来，调用方可以提示用户稍后重试。
type BusyError struct {
	Name types.DsName
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("data set %q may already be open by another user, close the data set and try again", e.Name)
}

// ExecError 设施非零返回且输出不匹配任何已知消息样式
type ExecError struct {
	RC     int
	Stdout string
	Stderr string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("failure during execution of mvs command, rc=%d, stdout: %s, stderr: %s",
		e.RC, e.Stdout, e.Stderr)
}
