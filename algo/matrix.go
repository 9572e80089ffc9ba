package algo

import (
	"math"
	"uav-planner/model"
	"uav-planner/utils"

	"gonum.org/v1/gonum/mat"
)

// ZeroDistance 小于这个距离 (km) 的两点视为重合
// 与前端两位小数显示一致：显示为 0.00 的格子不能切换
const ZeroDistance = 0.005

// DistanceMatrix 所有航点两两之间的距离 (km)
// 对称且对角线为 0，底层用 gonum 的对称矩阵存储
type DistanceMatrix struct {
	ids []int // 行/列对应的航点 ID
	sym *mat.SymDense
}

// ActionsMatrix 动作矩阵：初始值与距离矩阵相同，重合点不可切换
type ActionsMatrix struct {
	values *DistanceMatrix
}

// BuildMatrices 根据当前航点重新生成距离矩阵和动作矩阵
// 少于两个航点时返回 ErrInsufficientData
func BuildMatrices(waypoints []model.Waypoint) (*DistanceMatrix, *ActionsMatrix, error) {
	n := len(waypoints)
	if n < 2 {
		return nil, nil, ErrInsufficientData
	}

	dm := &DistanceMatrix{
		ids: make([]int, n),
		sym: mat.NewSymDense(n, nil),
	}
	for i := 0; i < n; i++ {
		dm.ids[i] = waypoints[i].ID
		// 只算上三角，SymDense 自动对称
		for j := i + 1; j < n; j++ {
			dm.sym.SetSym(i, j, utils.HaversineDistance(waypoints[i].Point(), waypoints[j].Point()))
		}
	}

	return dm, &ActionsMatrix{values: dm}, nil
}

// Size 矩阵维度
func (m *DistanceMatrix) Size() int {
	if m == nil {
		return 0
	}
	return len(m.ids)
}

// At 第 i 行第 j 列的距离
func (m *DistanceMatrix) At(i, j int) float64 {
	return m.sym.At(i, j)
}

// IDs 行/列对应的航点 ID
func (m *DistanceMatrix) IDs() []int {
	if m == nil {
		return nil
	}
	return append([]int(nil), m.ids...)
}

// Between 按航点 ID 查询距离
func (m *DistanceMatrix) Between(a, b int) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.At(i, j), true
}

func (m *DistanceMatrix) index(id int) int {
	if m == nil {
		return -1
	}
	for i, v := range m.ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Rows 转成二维切片 (导出和 JSON 用)
func (m *DistanceMatrix) Rows() [][]float64 {
	n := m.Size()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			rows[i][j] = m.At(i, j)
		}
	}
	return rows
}

// Toggleable 距离不为 0 的格子才能切换
func Toggleable(d float64) bool {
	return !math.IsNaN(d) && d >= ZeroDistance
}

// Size 矩阵维度
func (a *ActionsMatrix) Size() int {
	if a == nil {
		return 0
	}
	return a.values.Size()
}

// Cell 动作矩阵的初始格子：可切换的格子默认打开
func (a *ActionsMatrix) Cell(i, j int) model.ActionCell {
	d := a.values.At(i, j)
	enabled := Toggleable(d)
	return model.ActionCell{Distance: d, Enabled: enabled, On: enabled}
}
