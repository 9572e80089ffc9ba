package algo

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"uav-planner/model"
)

// Engine 航点图引擎，整个程序只有一个实例，由 main 创建后注入各个 handler
// 所有操作通过同一把锁串行执行，外部看不到 "航点已更新但矩阵还是旧的" 的中间状态
type Engine struct {
	mu       sync.Mutex
	store    *Store
	dist     *DistanceMatrix
	actions  *ActionsMatrix
	conns    *ConnectionSet
	listener Listener
	log      *slog.Logger
}

// Option 引擎的可选配置
type Option func(*Engine)

// WithListener 设置状态变化的监听者
func WithListener(l Listener) Option {
	return func(e *Engine) {
		if l != nil {
			e.listener = l
		}
	}
}

// WithLogger 设置日志
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithColorPicker 替换普通航点的取色函数 (测试用)
func WithColorPicker(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.store.pickColor = fn
		}
	}
}

// NewEngine 创建引擎
func NewEngine(maxRange float64, opts ...Option) *Engine {
	e := &Engine{
		store:    NewStore(maxRange),
		conns:    NewConnectionSet(),
		listener: nopListener{},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddWaypoint 添加航点
func (e *Engine) AddWaypoint(lat, lng float64) (model.Waypoint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	wp, err := e.store.Add(lat, lng)
	if err != nil {
		e.reject("add", err)
		return model.Waypoint{}, err
	}
	e.log.Debug("航点已添加", "id", wp.ID, "name", wp.Name)
	e.changed()
	return wp, nil
}

// MoveWaypoint 移动航点 (拖拽结束)
func (e *Engine) MoveWaypoint(id int, lat, lng float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Move(id, lat, lng); err != nil {
		e.reject("move", err)
		return err
	}
	e.changed()
	return nil
}

// RemoveWaypoint 删除指定下标的航点
func (e *Engine) RemoveWaypoint(index int) (model.Waypoint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	wp, err := e.store.Remove(index)
	if err != nil {
		e.reject("remove", err)
		return model.Waypoint{}, err
	}
	e.changed()
	return wp, nil
}

// RemoveWaypointByID 根据 ID 删除航点
func (e *Engine) RemoveWaypointByID(id int) (model.Waypoint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	wp, err := e.store.RemoveByID(id)
	if err != nil {
		e.reject("remove", err)
		return model.Waypoint{}, err
	}
	e.changed()
	return wp, nil
}

// Clear 清空整个图
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.Clear()
	e.changed()
}

// ToggleConnection 打开或关闭两个航点之间的连线
func (e *Engine) ToggleConnection(a, b int, on bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range []int{a, b} {
		if _, ok := e.store.Get(id); !ok {
			e.log.Warn("切换连线失败：航点不存在", "id", id)
			return ErrNotFound
		}
	}
	if err := e.conns.Toggle(a, b, on); err != nil {
		e.log.Warn("切换连线失败", "a", a, "b", b, "err", err)
		return err
	}
	e.listener.OnMatricesChanged(e.dist, e.conns.Edges())
	return nil
}

// MaxRange 当前最大航程
func (e *Engine) MaxRange() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.MaxRange()
}

// SetMaxRange 修改最大航程，不会重新校验已有航点
func (e *Engine) SetMaxRange(r float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.SetMaxRange(r)
}

// Waypoints 返回当前所有航点
func (e *Engine) Waypoints() []model.Waypoint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Waypoints()
}

// Waypoint 根据 ID 获取航点
func (e *Engine) Waypoint(id int) (model.Waypoint, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(id)
}

// Connections 当前打开的连线
func (e *Engine) Connections() []model.Connection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conns.Edges()
}

// Snapshot 返回图的完整状态
func (e *Engine) Snapshot() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := model.Snapshot{
		Waypoints:   e.store.Waypoints(),
		Connections: e.conns.Edges(),
		MaxRange:    e.store.MaxRange(),
	}
	if e.dist == nil {
		return snap
	}

	snap.Distances = e.dist.Rows()
	ids := e.dist.IDs()
	n := e.actions.Size()
	snap.Actions = make([][]model.ActionCell, n)
	for i := 0; i < n; i++ {
		snap.Actions[i] = make([]model.ActionCell, n)
		for j := 0; j < n; j++ {
			cell := e.actions.Cell(i, j)
			cell.On = cell.Enabled && e.conns.Has(ids[i], ids[j])
			snap.Actions[i][j] = cell
		}
	}
	return snap
}

// Export 把当前图写成导出格式
func (e *Engine) Export(w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Encode(w, e.store.Waypoints())
}

// Import 解析导入文件并替换当前图
// 返回的问题列表包含所有被跳过的行
func (e *Engine) Import(r io.Reader) ([]*FormatError, error) {
	parsed, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return e.Load(parsed), nil
}

// Load 用解析结果替换当前图
// 导入不做航程校验；矩阵块不会被读回，而是按航点重新计算
func (e *Engine) Load(parsed *ParsedGraph) []*FormatError {
	e.mu.Lock()
	defer e.mu.Unlock()

	issues := append([]*FormatError(nil), parsed.Issues...)

	e.store.Clear()
	for _, pw := range parsed.Waypoints {
		if !e.store.restore(pw.Waypoint) {
			issues = append(issues, &FormatError{Line: pw.Line, Text: pw.Text, Reason: "重复或无效的航点 ID"})
		}
	}
	AssignNames(e.store.waypoints)

	e.log.Info("图已导入", "waypoints", e.store.Len(), "skipped", len(issues))
	e.changed()
	return issues
}

// changed 航点变化后的统一处理：通知展示层，重建矩阵和连线
func (e *Engine) changed() {
	e.listener.OnGraphChanged(e.store.Waypoints())
	e.rebuild()
}

func (e *Engine) rebuild() {
	dm, am, err := BuildMatrices(e.store.waypoints)
	if err != nil {
		// 航点不足两个：不显示矩阵
		e.log.Debug("跳过矩阵生成", "waypoints", e.store.Len(), "err", err)
		e.dist, e.actions = nil, nil
	} else {
		e.dist, e.actions = dm, am
	}
	e.conns.Reset(e.dist)
	e.listener.OnMatricesChanged(e.dist, e.conns.Edges())
}

// reject 记录被拒绝的变更，超出航程时通知展示层
func (e *Engine) reject(op string, err error) {
	var rangeErr *RangeError
	if errors.As(err, &rangeErr) {
		e.log.Info("变更被拒绝：超出航程", "op", op, "distance", rangeErr.Distance, "max_range", rangeErr.MaxRange)
		e.listener.OnRangeViolation(rangeErr.Error())
		return
	}
	e.log.Warn("变更失败", "op", op, "err", err)
}
