package model

// Point 代表一个经纬度点 (WGS84)
type Point struct {
	Lat float64 `json:"lat"` // 纬度
	Lng float64 `json:"lng"` // 经度
}

// Waypoint 对应地图上的一个航点
// 下标 0 的航点就是基地 (UAV BASE)，这是由位置决定的，不单独存标志位
type Waypoint struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Color string  `json:"color"` // 图标颜色，由前端选择对应的 marker 图标
}

// Point 返回航点坐标
func (w Waypoint) Point() Point {
	return Point{Lat: w.Lat, Lng: w.Lng}
}

// BaseColor 基地固定使用蓝色图标
const BaseColor = "blue"

// Palette 普通航点可选的颜色
var Palette = []string{
	"gold",
	"red",
	"green",
	"orange",
	"yellow",
	"violet",
	"grey",
	"black",
}
