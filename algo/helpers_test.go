package algo

import (
	"math"

	"uav-planner/model"
	"uav-planner/utils"
)

const (
	baseLat = 50.0
	baseLng = 22.0
)

// north 在 (lat, lng) 正北方向 km 千米处的纬度
func north(lat, km float64) float64 {
	return lat + km/utils.EarthRadiusKm*180/math.Pi
}

// fixedColor 测试中固定普通航点的颜色
func fixedColor() string { return "red" }

func newTestStore() *Store {
	s := NewStore(DefaultMaxRange)
	s.pickColor = fixedColor
	return s
}

func names(ws []model.Waypoint) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Name
	}
	return out
}

// recordingListener 记录所有回调
type recordingListener struct {
	graphs     [][]model.Waypoint
	matrices   []*DistanceMatrix
	edges      [][]model.Connection
	violations []string
}

func (r *recordingListener) OnGraphChanged(ws []model.Waypoint) {
	r.graphs = append(r.graphs, ws)
}

func (r *recordingListener) OnMatricesChanged(dm *DistanceMatrix, edges []model.Connection) {
	r.matrices = append(r.matrices, dm)
	r.edges = append(r.edges, edges)
}

func (r *recordingListener) OnRangeViolation(msg string) {
	r.violations = append(r.violations, msg)
}

func nan() float64 { return math.NaN() }
