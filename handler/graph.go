package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"uav-planner/algo"
	"uav-planner/utils"

	"github.com/gin-gonic/gin"
)

// maxImportSize 导入文件的大小上限
const maxImportSize = 10 << 20

// GraphHandler 航点图相关接口
// 引擎由 main 创建后注入，不使用包级全局变量
type GraphHandler struct {
	engine *algo.Engine
	hub    *EventHub
	log    *slog.Logger
}

// NewGraphHandler 创建航点图 handler
func NewGraphHandler(engine *algo.Engine, hub *EventHub, log *slog.Logger) *GraphHandler {
	return &GraphHandler{engine: engine, hub: hub, log: log}
}

// PositionRequest 添加/移动航点的请求
// 用指针区分 "没传" 和 0
type PositionRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// ToggleRequest 切换连线的请求
type ToggleRequest struct {
	A  *int  `json:"a" binding:"required"`
	B  *int  `json:"b" binding:"required"`
	On *bool `json:"on" binding:"required"`
}

// MaxRangeRequest 修改最大航程的请求
type MaxRangeRequest struct {
	MaxRange float64 `json:"max_range" binding:"required,gt=0"`
}

// GetGraph 获取图的完整状态
func (h *GraphHandler) GetGraph(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

// GetWaypoints 获取所有航点
func (h *GraphHandler) GetWaypoints(c *gin.Context) {
	waypoints := h.engine.Waypoints()
	c.JSON(http.StatusOK, gin.H{
		"count":     len(waypoints),
		"waypoints": waypoints,
	})
}

// AddWaypoint 添加航点 (地图点击)
func (h *GraphHandler) AddWaypoint(c *gin.Context) {
	lat, lng, ok := bindPosition(c)
	if !ok {
		return
	}

	wp, err := h.engine.AddWaypoint(lat, lng)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wp)
}

// MoveWaypoint 移动航点 (拖拽结束)
// 被拒绝时前端需要把图标拖回拖拽前的位置
func (h *GraphHandler) MoveWaypoint(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的航点 ID"})
		return
	}
	lat, lng, ok := bindPosition(c)
	if !ok {
		return
	}

	if err := h.engine.MoveWaypoint(id, lat, lng); err != nil {
		writeError(c, err)
		return
	}
	wp, _ := h.engine.Waypoint(id)
	c.JSON(http.StatusOK, wp)
}

// RemoveWaypoint 删除指定下标的航点
func (h *GraphHandler) RemoveWaypoint(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的下标"})
		return
	}

	removed, err := h.engine.RemoveWaypoint(index)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"removed":   removed,
		"waypoints": h.engine.Waypoints(),
	})
}

// ClearWaypoints 清空所有航点
func (h *GraphHandler) ClearWaypoints(c *gin.Context) {
	h.engine.Clear()
	c.Status(http.StatusNoContent)
}

// GetConnections 获取当前所有连线
func (h *GraphHandler) GetConnections(c *gin.Context) {
	connections := h.engine.Connections()
	c.JSON(http.StatusOK, gin.H{
		"count":       len(connections),
		"connections": connections,
	})
}

// ToggleConnection 打开或关闭一条连线 (动作矩阵中的复选框)
func (h *GraphHandler) ToggleConnection(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	if err := h.engine.ToggleConnection(*req.A, *req.B, *req.On); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": h.engine.Connections()})
}

// ExportGraph 下载 dataGraph.csv
func (h *GraphHandler) ExportGraph(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.engine.Export(&buf); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="dataGraph.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ImportGraph 上传导出文件，替换当前的图
// 支持 multipart 的 file 字段，或者直接把文件内容作为请求体
func (h *GraphHandler) ImportGraph(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	var r io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "缺少上传文件"})
			return
		}
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "读取上传文件失败"})
			return
		}
		defer f.Close()
		r = f
	}

	issues, err := h.engine.Import(r)
	if err != nil {
		h.log.Warn("导入失败", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取导入数据失败"})
		return
	}

	skipped := make([]gin.H, 0, len(issues))
	for _, issue := range issues {
		skipped = append(skipped, gin.H{"line": issue.Line, "reason": issue.Reason, "text": issue.Text})
	}
	c.JSON(http.StatusOK, gin.H{
		"waypoints": h.engine.Waypoints(),
		"skipped":   skipped,
	})
}

// GetMaxRange 获取最大航程
func (h *GraphHandler) GetMaxRange(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"max_range": h.engine.MaxRange()})
}

// SetMaxRange 修改最大航程，已有航点不重新校验
func (h *GraphHandler) SetMaxRange(c *gin.Context) {
	var req MaxRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}
	h.engine.SetMaxRange(req.MaxRange)
	h.log.Info("最大航程已修改", "max_range", req.MaxRange)
	c.JSON(http.StatusOK, gin.H{"max_range": h.engine.MaxRange()})
}

// Events SSE 事件流
// 连接建立后先推送一次完整快照，之后推送引擎的变化通知
func (h *GraphHandler) Events(c *gin.Context) {
	events, cancel := h.hub.Subscribe()
	defer cancel()

	c.SSEvent(EventSnapshot, h.engine.Snapshot())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, ev.Data)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// bindPosition 解析并校验坐标
func bindPosition(c *gin.Context) (float64, float64, bool) {
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return 0, 0, false
	}
	if !utils.ValidCoordinate(*req.Lat, *req.Lng) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "经纬度超出范围"})
		return 0, 0, false
	}
	return *req.Lat, *req.Lng, true
}

// writeError 把引擎错误转换成 HTTP 响应
func writeError(c *gin.Context, err error) {
	var rangeErr *algo.RangeError
	switch {
	case errors.As(err, &rangeErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     rangeErr.Error(),
			"distance":  rangeErr.Distance,
			"max_range": rangeErr.MaxRange,
		})
	case errors.Is(err, algo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, algo.ErrInvalidConnection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
