package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"uav-planner/algo"
	"uav-planner/model"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector 航点图和 HTTP 接口的 Prometheus 指标
// 实现了 algo.Listener，直接挂在引擎的通知上
type Collector struct {
	gatherer prometheus.Gatherer

	Waypoints       prometheus.Gauge
	Connections     prometheus.Gauge
	RangeViolations prometheus.Counter
	MatrixRebuilds  prometheus.Counter

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

var _ algo.Listener = (*Collector)(nil)

// NewCollector 在 reg 上注册指标，reg 为 nil 时使用全局注册表
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.Waypoints, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "waypoint_graph_waypoints",
		Help: "Current number of waypoints, including the base.",
	})); err != nil {
		return nil, err
	}
	if c.Connections, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "waypoint_graph_connections",
		Help: "Current number of active connections between waypoints.",
	})); err != nil {
		return nil, err
	}
	if c.RangeViolations, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waypoint_graph_range_violations_total",
		Help: "Mutations rejected because a waypoint would leave the base range.",
	})); err != nil {
		return nil, err
	}
	if c.MatrixRebuilds, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waypoint_graph_matrix_rebuilds_total",
		Help: "Distance matrix rebuilds with at least two waypoints.",
	})); err != nil {
		return nil, err
	}
	if c.HTTPRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Handled HTTP requests, labeled by method, route and status code.",
	}, []string{"method", "route", "code"})); err != nil {
		return nil, err
	}
	if c.HTTPDurations, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "route"})); err != nil {
		return nil, err
	}

	return c, nil
}

// register 注册指标；重复注册同类型指标时复用已有的
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("指标已注册且类型不兼容: %w", err)
		}
		var zero T
		return zero, err
	}
	return c, nil
}

func (c *Collector) OnGraphChanged(waypoints []model.Waypoint) {
	c.Waypoints.Set(float64(len(waypoints)))
}

func (c *Collector) OnMatricesChanged(dm *algo.DistanceMatrix, connections []model.Connection) {
	c.Connections.Set(float64(len(connections)))
	if dm != nil {
		c.MatrixRebuilds.Inc()
	}
}

func (c *Collector) OnRangeViolation(string) {
	c.RangeViolations.Inc()
}

// Middleware 记录每个请求的次数和耗时
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.HTTPDurations.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler 暴露 /metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
