package algo

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 引用了不存在的航点 (ID 或下标)
	ErrNotFound = errors.New("航点不存在")
	// ErrInsufficientData 至少需要两个航点 (基地 + 一个目标点) 才能生成矩阵
	ErrInsufficientData = errors.New("至少需要两个航点 (UAV 基地和至少一个目标点)")
	// ErrInvalidConnection 连线两端相同，或者两点重合无法切换
	ErrInvalidConnection = errors.New("无效的连线")
)

// RangeError 变更会让某个航点超出基地的最大航程
type RangeError struct {
	Distance float64 // 实际距离 (km)
	MaxRange float64 // 允许的最大距离 (km)
	Base     bool    // 是否是移动基地导致的
}

func (e *RangeError) Error() string {
	if e.Base {
		return fmt.Sprintf("UAV 基地不能移动到距任一航点超过 %.1f km 的位置 (实际 %.2f km)", e.MaxRange, e.Distance)
	}
	return fmt.Sprintf("距基地的距离超过无人机最大航程 %.1f km (实际 %.2f km)", e.MaxRange, e.Distance)
}

// FormatError 导入文件中无法解析的一行
type FormatError struct {
	Line   int    // 行号，从 1 开始
	Text   string // 原始内容
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("第 %d 行格式错误: %s (%q)", e.Line, e.Reason, e.Text)
}
