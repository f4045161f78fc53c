// pkg/types/name.go
package types

import (
	"math/rand"
	"regexp"
	"strings"
)

// DsName 代表一个数据集的全限定名 (最多 44 字符, 点分限定符)
// 这是一个“值对象”，应当是不可变的。
// 允许带成员后缀，例如 "USER.SRC.PDS(MEMBER1)"。
type DsName string

func (n DsName) String() string { return string(n) }

// Upper 返回大写形式。主机目录只认大写，所有出口统一走这里。
func (n DsName) Upper() DsName { return DsName(strings.ToUpper(string(n))) }

// HasMember 判断名字是否带成员后缀
func (n DsName) HasMember() bool { return strings.Contains(string(n), "(") }

// Base 去掉成员后缀，只留数据集本名
// Example: "A.B(C)" -> "A.B"
func (n DsName) Base() DsName {
	if i := strings.IndexByte(string(n), '('); i >= 0 {
		return n[:i]
	}
	return n
}

// Member 提取成员名；没有成员后缀时返回空串
func (n DsName) Member() string {
	s := string(n)
	start := strings.IndexByte(s, '(')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start:], ')')
	if end < 0 {
		return s[start+1:]
	}
	return s[start+1 : start+end]
}

// Data / Index 返回 VSAM 簇的两个下属组件名
// 簇永远作为一个整体编目/解编目，但 VTOC 里出现的是组件名。
func (n DsName) Data() DsName  { return n.Base() + ".DATA" }
func (n DsName) Index() DsName { return n.Base() + ".INDEX" }

// 限定符语法：首字符 [A-Z$#@]，后续最多 7 个 [A-Z0-9$#@-]
// 1~22 个限定符；成员名首字符同限定符，后续不允许连字符。
// 这两个正则是外部约定 (目录的命名规则)，必须逐字匹配。
var (
	dsNamePattern = regexp.MustCompile(
		`^(?i)(?:(?:[A-Z$#@][A-Z0-9$#@-]{0,7})(?:[.])){0,21}[A-Z$#@][A-Z0-9$#@-]{0,7}$`)
	dsMemberPattern = regexp.MustCompile(
		`^(?i)(?:(?:[A-Z$#@][A-Z0-9$#@-]{0,7})(?:[.])){0,21}[A-Z$#@][A-Z0-9$#@-]{0,7}` +
			`\([A-Z$#@][A-Z0-9$#@]{0,7}\)$`)
)

// IsDataSetName 判断输入是否为合法的数据集名 (不带成员)
func IsDataSetName(s string) bool {
	return dsNamePattern.MatchString(s)
}

// IsMemberName 判断输入是否为 "数据集(成员)" 形式
func IsMemberName(s string) bool {
	return dsMemberPattern.MatchString(s)
}

// Valid 同时接受两种形式
func (n DsName) Valid() bool {
	return IsDataSetName(string(n)) || IsMemberName(string(n))
}

// Volume 是卷序列号 (VOLSER)，1~6 位字母数字
type Volume = string

var volumePattern = regexp.MustCompile(`^(?i)[A-Z0-9]{1,6}$`)

// IsVolume 校验卷序列号
func IsVolume(s string) bool { return volumePattern.MatchString(s) }

// UpperVolumes 规范化整组卷名 (全大写)，不修改入参
func UpperVolumes(volumes []string) []string {
	out := make([]string, len(volumes))
	for i, v := range volumes {
		out[i] = strings.ToUpper(v)
	}
	return out
}

const (
	memberFirstChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ#@$"
	memberRestChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789#@$"
)

// TempMemberName 生成一个随机的 8 位临时成员名
func TempMemberName() string {
	var b strings.Builder
	b.WriteByte(memberFirstChars[rand.Intn(len(memberFirstChars))])
	for i := 0; i < 7; i++ {
		b.WriteByte(memberRestChars[rand.Intn(len(memberRestChars))])
	}
	return b.String()
}
