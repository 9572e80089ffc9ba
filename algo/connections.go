package algo

import (
	"cmp"
	"fmt"
	"slices"
	"uav-planner/model"
)

// ConnectionSet 当前地图上画出来的连线集合
// 每次重建矩阵时重置为 "所有距离不为 0 的点对"，之后由用户逐条开关
type ConnectionSet struct {
	valid  map[model.Connection]bool     // 可以切换的点对
	active map[model.Connection]struct{} // 当前打开的点对
}

// NewConnectionSet 创建空集合
func NewConnectionSet() *ConnectionSet {
	return &ConnectionSet{
		valid:  make(map[model.Connection]bool),
		active: make(map[model.Connection]struct{}),
	}
}

// Reset 根据距离矩阵从头重建
// dm 为 nil (航点不足两个) 时集合为空
func (c *ConnectionSet) Reset(dm *DistanceMatrix) {
	clear(c.valid)
	clear(c.active)

	ids := dm.IDs()
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if !Toggleable(dm.At(i, j)) {
				continue
			}
			conn := model.NewConnection(ids[i], ids[j])
			c.valid[conn] = true
			c.active[conn] = struct{}{}
		}
	}
}

// Toggle 打开或关闭两点之间的连线，重复设置同一状态不做任何事
func (c *ConnectionSet) Toggle(a, b int, on bool) error {
	if a == b {
		return fmt.Errorf("%d-%d: %w", a, b, ErrInvalidConnection)
	}
	conn := model.NewConnection(a, b)
	if !c.valid[conn] {
		return fmt.Errorf("%d-%d: %w", a, b, ErrInvalidConnection)
	}

	if on {
		c.active[conn] = struct{}{}
	} else {
		delete(c.active, conn)
	}
	return nil
}

// Has 两点之间是否有连线
func (c *ConnectionSet) Has(a, b int) bool {
	_, ok := c.active[model.NewConnection(a, b)]
	return ok
}

// Len 连线数量
func (c *ConnectionSet) Len() int {
	return len(c.active)
}

// Edges 返回所有连线，按 (A, B) 排序
func (c *ConnectionSet) Edges() []model.Connection {
	edges := make([]model.Connection, 0, len(c.active))
	for conn := range c.active {
		edges = append(edges, conn)
	}
	slices.SortFunc(edges, func(x, y model.Connection) int {
		if n := cmp.Compare(x.A, y.A); n != 0 {
			return n
		}
		return cmp.Compare(x.B, y.B)
	})
	return edges
}
