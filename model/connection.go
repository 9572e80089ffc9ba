package model

// Connection 两个航点之间的一条连线 (无向)
// 始终保证 A < B，方便去重和排序
type Connection struct {
	A int `json:"a"`
	B int `json:"b"`
}

// NewConnection 创建一条规范化的连线 (小 ID 在前)
func NewConnection(a, b int) Connection {
	if a > b {
		a, b = b, a
	}
	return Connection{A: a, B: b}
}

// ActionCell 动作矩阵中的一个格子
// Enabled=false 表示两个点重合 (距离为 0)，不能切换
type ActionCell struct {
	Distance float64 `json:"distance"`
	Enabled  bool    `json:"enabled"`
	On       bool    `json:"on"`
}

// Snapshot 图的完整状态 (提供给前端渲染)
type Snapshot struct {
	Waypoints   []Waypoint     `json:"waypoints"`
	Distances   [][]float64    `json:"distances"`
	Actions     [][]ActionCell `json:"actions"`
	Connections []Connection   `json:"connections"`
	MaxRange    float64        `json:"max_range"`
}
