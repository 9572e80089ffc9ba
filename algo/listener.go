package algo

import "uav-planner/model"

// Listener 图状态变化的通知接口 (由展示层实现)
// 回调在引擎锁内同步执行，实现方不能再回调引擎
type Listener interface {
	// OnGraphChanged 每次航点集合变更成功后触发
	OnGraphChanged(waypoints []model.Waypoint)
	// OnMatricesChanged 每次矩阵重建或连线切换后触发；航点不足两个时 dm 为 nil
	OnMatricesChanged(dm *DistanceMatrix, connections []model.Connection)
	// OnRangeViolation 变更因超出航程被拒绝时触发
	OnRangeViolation(message string)
}

// Listeners 把通知转发给多个监听者
type Listeners []Listener

func (ls Listeners) OnGraphChanged(waypoints []model.Waypoint) {
	for _, l := range ls {
		l.OnGraphChanged(waypoints)
	}
}

func (ls Listeners) OnMatricesChanged(dm *DistanceMatrix, connections []model.Connection) {
	for _, l := range ls {
		l.OnMatricesChanged(dm, connections)
	}
}

func (ls Listeners) OnRangeViolation(message string) {
	for _, l := range ls {
		l.OnRangeViolation(message)
	}
}

type nopListener struct{}

func (nopListener) OnGraphChanged([]model.Waypoint)                       {}
func (nopListener) OnMatricesChanged(*DistanceMatrix, []model.Connection) {}
func (nopListener) OnRangeViolation(string)                               {}
