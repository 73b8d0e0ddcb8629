package dictionary

import (
	"fmt"
	"strings"
)

// Labels holds every fixed string written into a dictionary document.
type Labels struct {
	SummaryHeading string
	DetailHeading  string
	// BlockNumber formats the paragraph preceding each detail block.
	BlockNumber string

	TableName     string
	TableComment  string
	PrimaryKey    string
	OtherSortKeys string
	IndexFields   string

	Seq      string
	Column   string
	DataType string
	Nullable string
	Unique   string
	Remark   string

	Yes string
	No  string

	// FilePrefix names default output files.
	FilePrefix string
	// Font is applied to every run when set.
	Font string
}

var zh = Labels{
	SummaryHeading: "1.1. 表汇总",
	DetailHeading:  "1.2. 表",
	BlockNumber:    "（%d）",
	TableName:      "表名",
	TableComment:   "功能说明",
	PrimaryKey:     "主键",
	OtherSortKeys:  "其他排序字段",
	IndexFields:    "索引字段",
	Seq:            "序号",
	Column:         "字段名称",
	DataType:       "数据类型（精度范围）",
	Nullable:       "允许为空Y/N",
	Unique:         "唯一Y/N",
	Remark:         "约束条件/说明",
	Yes:            "Y",
	No:             "N",
	FilePrefix:     "数据字典",
	Font:           "宋体",
}

var en = Labels{
	SummaryHeading: "1.1. Table Summary",
	DetailHeading:  "1.2. Tables",
	BlockNumber:    "(%d)",
	TableName:      "Table",
	TableComment:   "Description",
	PrimaryKey:     "Primary key",
	OtherSortKeys:  "Other sort fields",
	IndexFields:    "Indexed fields",
	Seq:            "No.",
	Column:         "Column",
	DataType:       "Data type (precision)",
	Nullable:       "Nullable Y/N",
	Unique:         "Unique Y/N",
	Remark:         "Constraints / notes",
	Yes:            "Y",
	No:             "N",
	FilePrefix:     "data-dictionary-",
}

// Languages lists the supported label sets.
var Languages = []string{"zh", "en"}

// LabelsFor returns the label set for lang. An empty lang selects zh.
func LabelsFor(lang string) (Labels, error) {
	switch strings.ToLower(lang) {
	case "", "zh":
		return zh, nil
	case "en":
		return en, nil
	default:
		return Labels{}, fmt.Errorf("unsupported language %q (supported: %s)", lang, strings.Join(Languages, ", "))
	}
}

func (l Labels) yesNo(b bool) string {
	if b {
		return l.Yes
	}
	return l.No
}
