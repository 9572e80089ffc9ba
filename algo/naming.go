package algo

import "uav-planner/model"

// BaseName 基地的固定名称
const BaseName = "UAV BASE"

// PointName 根据下标计算航点名称
// 0 是基地，之后依次为 A..Z，超过 26 个后重新从 A 开始 (会出现重名，已知限制)
func PointName(index int) string {
	if IsBase(index) {
		return BaseName
	}
	return string(rune('A' + (index-1)%26))
}

// AssignNames 按顺序重新给所有航点命名，只依赖顺序，没有隐藏计数器
func AssignNames(waypoints []model.Waypoint) {
	for i := range waypoints {
		waypoints[i].Name = PointName(i)
	}
}
