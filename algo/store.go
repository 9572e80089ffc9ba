package algo

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"uav-planner/model"
	"uav-planner/utils"
)

// DefaultMaxRange 无人机单程最大航程 (km)
const DefaultMaxRange = 7.5

// Store 有序的航点集合
// 插入顺序决定命名，下标 0 永远是基地
type Store struct {
	waypoints []model.Waypoint
	nextID    int     // 下一个可用的 ID，删除后不回收
	maxRange  float64 // 最大航程 (km)
	pickColor func() string
}

// NewStore 创建一个空的航点集合，maxRange <= 0 时使用默认航程
func NewStore(maxRange float64) *Store {
	if maxRange <= 0 {
		maxRange = DefaultMaxRange
	}
	return &Store{
		maxRange:  maxRange,
		pickColor: randomColor,
	}
}

// randomColor 从调色板中随机选一个颜色
func randomColor() string {
	return model.Palette[rand.Intn(len(model.Palette))]
}

// IsBase 判断下标是否为基地
// 所有 "是不是基地" 的判断都走这里
func IsBase(index int) bool {
	return index == 0
}

// colorFor 根据角色决定颜色：基地固定蓝色，其余随机
func (s *Store) colorFor(index int) string {
	if IsBase(index) {
		return model.BaseColor
	}
	return s.pickColor()
}

// Len 航点数量
func (s *Store) Len() int {
	return len(s.waypoints)
}

// MaxRange 当前最大航程
func (s *Store) MaxRange() float64 {
	return s.maxRange
}

// SetMaxRange 修改最大航程，已有的航点不会重新校验
func (s *Store) SetMaxRange(r float64) {
	if r > 0 {
		s.maxRange = r
	}
}

// Waypoints 返回航点列表的副本
func (s *Store) Waypoints() []model.Waypoint {
	return slices.Clone(s.waypoints)
}

// Get 根据 ID 获取航点
func (s *Store) Get(id int) (model.Waypoint, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return model.Waypoint{}, false
	}
	return s.waypoints[idx], true
}

func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.waypoints, func(w model.Waypoint) bool { return w.ID == id })
}

// withinRange NaN 距离也视为超出航程
func (s *Store) withinRange(d float64) bool {
	return d <= s.maxRange
}

// Add 添加航点
// 非空时先校验候选点到基地的距离，超出航程则返回 *RangeError 且集合不变
func (s *Store) Add(lat, lng float64) (model.Waypoint, error) {
	if len(s.waypoints) > 0 {
		base := s.waypoints[0]
		d := utils.Distance(base.Lat, base.Lng, lat, lng)
		if !s.withinRange(d) {
			return model.Waypoint{}, &RangeError{Distance: d, MaxRange: s.maxRange}
		}
	}

	wp := model.Waypoint{
		ID:    s.nextID,
		Lat:   lat,
		Lng:   lng,
		Color: s.colorFor(len(s.waypoints)),
	}
	s.nextID++
	s.waypoints = append(s.waypoints, wp)
	AssignNames(s.waypoints)

	return s.waypoints[len(s.waypoints)-1], nil
}

// Move 移动航点
// 移动基地时要校验新位置到其它所有航点的距离；移动普通航点只校验到基地的距离
// 校验失败时位置保持不变，前端负责把图标拖回原处
func (s *Store) Move(id int, lat, lng float64) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("航点 %d: %w", id, ErrNotFound)
	}

	if IsBase(idx) {
		for i := 1; i < len(s.waypoints); i++ {
			other := s.waypoints[i]
			d := utils.Distance(lat, lng, other.Lat, other.Lng)
			if !s.withinRange(d) {
				return &RangeError{Distance: d, MaxRange: s.maxRange, Base: true}
			}
		}
	} else {
		base := s.waypoints[0]
		d := utils.Distance(base.Lat, base.Lng, lat, lng)
		if !s.withinRange(d) {
			return &RangeError{Distance: d, MaxRange: s.maxRange}
		}
	}

	s.waypoints[idx].Lat = lat
	s.waypoints[idx].Lng = lng
	// 移动不改变顺序，名字其实不会变
	AssignNames(s.waypoints)
	return nil
}

// Remove 删除指定下标的航点并返回被删除的航点
// 删除基地后，新的下标 0 自动成为基地并换成基地颜色
func (s *Store) Remove(index int) (model.Waypoint, error) {
	if index < 0 || index >= len(s.waypoints) {
		return model.Waypoint{}, fmt.Errorf("下标 %d: %w", index, ErrNotFound)
	}

	removed := s.waypoints[index]
	s.waypoints = slices.Delete(s.waypoints, index, index+1)

	if len(s.waypoints) > 0 && s.waypoints[0].Color != model.BaseColor {
		s.waypoints[0].Color = model.BaseColor
	}
	AssignNames(s.waypoints)

	return removed, nil
}

// RemoveByID 根据 ID 删除航点
func (s *Store) RemoveByID(id int) (model.Waypoint, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return model.Waypoint{}, fmt.Errorf("航点 %d: %w", id, ErrNotFound)
	}
	return s.Remove(idx)
}

// Clear 清空所有航点，ID 从 0 重新开始
func (s *Store) Clear() {
	s.waypoints = nil
	s.nextID = 0
}

// restore 导入时直接追加航点，不做航程校验
// 之前合法的图在航程配置变化后也必须能重新导入
func (s *Store) restore(wp model.Waypoint) bool {
	if s.indexOf(wp.ID) >= 0 || wp.ID < 0 || wp.ID == math.MaxInt {
		return false
	}
	if wp.Color == "" {
		wp.Color = s.colorFor(len(s.waypoints))
	}
	s.waypoints = append(s.waypoints, wp)
	if wp.ID >= s.nextID {
		s.nextID = wp.ID + 1
	}
	return true
}
