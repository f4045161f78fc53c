// pkg/dataset/attrs.go
package dataset

import (
	"fmt"
	"regexp"
	"strings"

	"zdsctl/pkg/types"
)

// RecordLengthUnset 表示调用方没给记录长度，Normalize 时按格式补默认值。
// 0 是合法取值 (U 格式)，所以不能拿 0 当哨兵。
const RecordLengthUnset = -1

// 各记录格式的默认记录长度，外部约定
var defaultRecordLengths = map[string]int{
	"FB":  80,
	"FBA": 80,
	"VB":  137,
	"VBA": 137,
	"U":   0,
}

var (
	spaceTypePattern    = regexp.MustCompile(`^(?i)(M|G|K|TRK|CYL)$`)
	recordFormatPattern = regexp.MustCompile(`^(?i)(FB|VB|FBA|VBA|U|F)$`)
)

// Attributes 是一次分配请求的完整属性记录。
// 零值 + Name/Type 就是一个可用的请求，其余字段按需填。
type Attributes struct {
	Name types.DsName
	Type types.DsType

	SpacePrimary   int
	SpaceSecondary int
	SpaceType      string // K / M / G / TRK / CYL

	RecordFormat string
	RecordLength int // RecordLengthUnset 表示未指定
	BlockSize    int
	DirBlocks    int

	// 仅 KSDS
	KeyLength int
	KeyOffset int
	hasKey    bool

	// SMS 三件套
	StorageClass    string
	DataClass       string
	ManagementClass string

	// 驻留卷，第一个是首选分配目标
	Volumes []types.Volume

	// 生成临时数据集名用的高层限定符
	TmpHLQ string

	// 成员操作的共享访问处置
	Force bool

	// 已有同名数据集时是否删掉重建
	Replace bool
}

// WithKey 显式声明 KSDS 的键。必须走这里而不是直接赋字段，
// 否则 Normalize 分不清 "没给" 和 "给了 0"。
func (a Attributes) WithKey(length, offset int) Attributes {
	a.KeyLength = length
	a.KeyOffset = offset
	a.hasKey = true
	return a
}

func (a Attributes) HasKey() bool { return a.hasKey }

// Normalize 补默认值并做交叉校验，返回规范化后的副本。
// 规则全部来自分配设施的接口约定。
func (a Attributes) Normalize() (Attributes, error) {
	a.Name = a.Name.Upper()
	if !a.Name.Valid() {
		return a, fmt.Errorf("value %q is invalid for data set name", a.Name)
	}

	if a.Type == types.TypeUnknown {
		a.Type = types.TypePDS
	}
	a.Type = types.DsType(strings.ToUpper(string(a.Type)))
	if !validType(a.Type) {
		return a, fmt.Errorf("value %q is invalid for type argument", a.Type)
	}

	if a.SpaceType != "" {
		if !spaceTypePattern.MatchString(a.SpaceType) {
			return a, fmt.Errorf(
				"value %q is invalid for space_type argument, valid space types are K, M, G, TRK or CYL", a.SpaceType)
		}
		a.SpaceType = strings.ToUpper(a.SpaceType)
	}

	if a.RecordFormat != "" {
		if !recordFormatPattern.MatchString(a.RecordFormat) {
			return a, fmt.Errorf("value %q is invalid for record_format argument", a.RecordFormat)
		}
		a.RecordFormat = strings.ToUpper(a.RecordFormat)
	}

	// 记录长度：未指定时按格式补默认；给了就检查范围
	if a.RecordLength == RecordLengthUnset {
		if def, ok := defaultRecordLengths[a.RecordFormat]; ok {
			a.RecordLength = def
		}
	} else if a.RecordLength < 0 || a.RecordLength > 32768 {
		return a, fmt.Errorf(
			"value %d is invalid for record_length argument, record_length must be between 0 and 32768 bytes", a.RecordLength)
	}

	for _, class := range []string{a.StorageClass, a.DataClass, a.ManagementClass} {
		if class != "" && len(class) > 8 {
			return a, fmt.Errorf("value %q is invalid for an SMS class argument, "+
				"SMS class must be at least 1 and at most 8 characters", class)
		}
	}

	for _, vol := range a.Volumes {
		if !types.IsVolume(vol) {
			return a, fmt.Errorf("invalid volume name %q", vol)
		}
	}
	// 不要原地改调用方的切片
	a.Volumes = types.UpperVolumes(a.Volumes)

	// 键只对 KSDS 有意义
	if a.Type == types.TypeKSDS && !a.hasKey {
		return a, fmt.Errorf("key_length and key_offset are required when requesting KSDS data set")
	}
	if a.Type != types.TypeKSDS && a.hasKey {
		return a, fmt.Errorf("key_length and key_offset are only valid when type=KSDS")
	}
	if a.hasKey && (a.KeyLength <= 0 || a.KeyOffset < 0) {
		return a, fmt.Errorf("invalid key specification length=%d offset=%d", a.KeyLength, a.KeyOffset)
	}

	return a, nil
}

func validType(t types.DsType) bool {
	for _, k := range types.AllTypes {
		if t == k {
			return true
		}
	}
	return false
}
