// pkg/types/dstype.go
package types

// DsType 是数据集的组织类型（分配时指定的那个枚举）
type DsType string

const (
	TypeSEQ     DsType = "SEQ"
	TypeBasic   DsType = "BASIC"
	TypeLarge   DsType = "LARGE"
	TypePDS     DsType = "PDS"
	TypePDSE    DsType = "PDSE"
	TypeLibrary DsType = "LIBRARY"
	TypeKSDS    DsType = "KSDS"
	TypeESDS    DsType = "ESDS"
	TypeRRDS    DsType = "RRDS"
	TypeLDS     DsType = "LDS"
	TypeZFS     DsType = "ZFS"
	TypeMember  DsType = "MEMBER"

	// TypeUnknown 表示分类器没找到任何标记。这不是错误。
	TypeUnknown DsType = ""
)

// 三个组织族。判断走集合，不要到处写 switch。
var (
	partitionedTypes = map[DsType]bool{
		TypePDS: true, TypePDSE: true, TypeLibrary: true, "PE": true, "PO": true,
	}
	sequentialTypes = map[DsType]bool{
		TypeSEQ: true, TypeBasic: true, TypeLarge: true, "PS": true,
	}
	vsamTypes = map[DsType]bool{
		TypeKSDS: true, TypeESDS: true, TypeRRDS: true, TypeLDS: true,
		TypeZFS: true, "VSAM": true,
	}
)

func (t DsType) IsPartitioned() bool { return partitionedTypes[t] }
func (t DsType) IsSequential() bool  { return sequentialTypes[t] }

// IsVSAM 注意 ZFS 也算：它分配出来就是一个线性簇 (LDS)
func (t DsType) IsVSAM() bool { return vsamTypes[t] }

// AllTypes 列出 Attributes 校验时接受的全部类型
var AllTypes = []DsType{
	TypeKSDS, TypeESDS, TypeRRDS, TypeLDS, TypeSEQ, TypePDS, TypePDSE,
	TypeBasic, TypeLarge, TypeLibrary, TypeZFS, TypeMember,
}
