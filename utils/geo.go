package utils

import (
	"math"
	"uav-planner/model"
)

// EarthRadiusKm 球面近似下的地球半径 (千米)
const EarthRadiusKm = 6371.0

// DegreesToRadians 角度转弧度
func DegreesToRadians(d float64) float64 {
	return d * math.Pi / 180.0
}

// HaversineDistance Haversine 公式 (直接计算两点间球面距离)
// 返回千米。不校验经纬度范围，越界的坐标按原样参与计算
func HaversineDistance(p1, p2 model.Point) float64 {
	lat1 := DegreesToRadians(p1.Lat)
	lat2 := DegreesToRadians(p2.Lat)

	dLat := lat2 - lat1
	dLon := DegreesToRadians(p2.Lng - p1.Lng)
	// a = sin²(Δlat/2) + cos(lat1) * cos(lat2) * sin²(Δlon/2)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// 对跖点附近浮点误差可能让 a 略大于 1
	a = math.Min(a, 1)

	// c = 2 * atan2(√a, √(1-a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Distance 与 HaversineDistance 相同，参数直接传经纬度
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	return HaversineDistance(model.Point{Lat: lat1, Lng: lon1}, model.Point{Lat: lat2, Lng: lon2})
}

// ValidCoordinate 判断经纬度是否在合法范围内
// 只在 API 层用来拒绝明显错误的输入，图引擎本身不做校验
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
