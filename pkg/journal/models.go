// pkg/journal/models.go
package journal

import (
	"time"

	"gorm.io/datatypes"
)

// Run 是一次收敛操作的留痕记录：谁、要什么状态、改没改、
// 中途做了哪些动作。排障时 "引擎到底碰没碰这个数据集" 全靠它回答。
type Run struct {
	ID uint `gorm:"primaryKey"`

	// 目标数据集名 (B-Tree 索引，按名字查历史是最常见的查询)
	Name string `gorm:"index;type:varchar(60)"`

	// 请求的目标状态: present / absent / cataloged / uncataloged
	State string `gorm:"type:varchar(16)"`

	Changed bool
	Present bool

	// 失败时的错误文本；成功为空
	Error string `gorm:"type:text"`

	DurationMs int64

	// Attrs: 请求的属性快照 (type, space, recfm, volumes, ...)
	// 非结构化,  用 JSON 存, 避免每加一个属性就改一次表
	Attrs datatypes.JSON

	// Actions: 引擎按序执行的动作痕迹, ["uncatalog", "catalog BBBBBB", ...]
	Actions datatypes.JSON

	CreatedAt time.Time `gorm:"index"`
}

// TableName 强制指定表名
func (Run) TableName() string {
	return "runs"
}
