package algo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"uav-planner/model"
)

// 导出文件格式 (CSV 风格，不做转义)
//
//	Point Name,Latitude,Longitude,Color
//	<id>,<name>,<lat>,<lng>,<color>
//	Adjacency Matrix
//	<d00>,<d01>,...
const (
	Header          = "Point Name,Latitude,Longitude,Color"
	MatrixSentinel  = "Adjacency Matrix"
	headerFirstCell = "Point Name"
)

// ParsedWaypoint 导入文件中的一个航点，附带行号方便报错
type ParsedWaypoint struct {
	model.Waypoint
	Line int
	Text string
}

// ParsedGraph 解析结果
// Matrix 只做展示和校验用，导入时不会写回连线状态；解析失败的数字为 NaN
type ParsedGraph struct {
	Waypoints []ParsedWaypoint
	Matrix    [][]float64
	Issues    []*FormatError
}

// Encode 把航点列表写成导出格式
// 旧版本会把同一个矩阵写两遍 (邻接矩阵和动作矩阵)，两者数值相同，这里只写一次
func Encode(w io.Writer, waypoints []model.Waypoint) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, Header)
	for _, wp := range waypoints {
		fmt.Fprintf(bw, "%d,%s,%s,%s,%s\n", wp.ID, wp.Name, formatFloat(wp.Lat), formatFloat(wp.Lng), wp.Color)
	}

	fmt.Fprintln(bw, MatrixSentinel)
	for _, row := range matrixRows(waypoints) {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatFloat(v)
		}
		fmt.Fprintln(bw, strings.Join(cells, ","))
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("写入导出数据失败: %w", err)
	}
	return nil
}

// EncodeString 同 Encode，直接返回字符串
func EncodeString(waypoints []model.Waypoint) string {
	var sb strings.Builder
	_ = Encode(&sb, waypoints)
	return sb.String()
}

// matrixRows 导出用的距离矩阵，单个航点时是 1x1 的零矩阵
func matrixRows(waypoints []model.Waypoint) [][]float64 {
	dm, _, err := BuildMatrices(waypoints)
	if err != nil {
		if len(waypoints) == 1 {
			return [][]float64{{0}}
		}
		return nil
	}
	return dm.Rows()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Decode 逐行解析导入文件
// 空行忽略；分隔行之前是航点，之后是矩阵。无法解析的航点行会被跳过并记录在 Issues 中，
// 只有读取失败才返回 error。没有任何有效航点时得到一个空图
func Decode(r io.Reader) (*ParsedGraph, error) {
	pg := &ParsedGraph{}

	br := bufio.NewReader(r)

	inMatrix := false
	lineNo := 0
	for {
		raw, tooLong, err := nextLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取导入数据失败: %w", err)
		}
		lineNo++
		if tooLong {
			pg.Issues = append(pg.Issues, &FormatError{Line: lineNo, Reason: "行过长"})
			continue
		}
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == MatrixSentinel {
			inMatrix = true
			continue
		}

		if inMatrix {
			pg.Matrix = append(pg.Matrix, parseMatrixRow(trimmed))
			continue
		}

		if trimmed == Header {
			continue
		}
		wp, reason := parseWaypoint(trimmed)
		switch {
		case reason == "":
			pg.Waypoints = append(pg.Waypoints, ParsedWaypoint{Waypoint: wp, Line: lineNo, Text: line})
		case reason == headerFirstCell:
			// 列名行的重复
		default:
			pg.Issues = append(pg.Issues, &FormatError{Line: lineNo, Text: line, Reason: reason})
		}
	}

	return pg, nil
}

// maxLineBytes 单行长度上限，超出的行整行丢弃
const maxLineBytes = 4 * 1024 * 1024

// nextLine 读取一行 (不含换行符)。超长的行会被读完但不保留内容，tooLong 为 true
func nextLine(br *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		frag, isPrefix, err := br.ReadLine()
		if err != nil {
			// 最后一行没有换行符且正好跨越缓冲区边界
			if errors.Is(err, io.EOF) && (len(buf) > 0 || tooLong) {
				return string(buf), tooLong, nil
			}
			return "", false, err
		}
		if !tooLong {
			if len(buf)+len(frag) > maxLineBytes {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, frag...)
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

// parseWaypoint 解析 "id,name,lat,lng,color"，失败时返回原因
func parseWaypoint(line string) (model.Waypoint, string) {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if fields[0] == headerFirstCell || (len(fields) > 1 && fields[1] == headerFirstCell) {
		return model.Waypoint{}, headerFirstCell
	}
	if len(fields) < 4 {
		return model.Waypoint{}, "字段数量不足"
	}

	id, err := strconv.Atoi(fields[0])
	// MaxInt 会让后续分配的 ID 溢出
	if err != nil || id < 0 || id == math.MaxInt {
		return model.Waypoint{}, "无效的 ID"
	}
	lat, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || !finite(lat) {
		return model.Waypoint{}, "无效的纬度"
	}
	lng, err := strconv.ParseFloat(fields[3], 64)
	if err != nil || !finite(lng) {
		return model.Waypoint{}, "无效的经度"
	}

	wp := model.Waypoint{ID: id, Name: fields[1], Lat: lat, Lng: lng}
	if len(fields) > 4 {
		wp.Color = fields[4]
	}
	return wp, ""
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// parseMatrixRow 解析矩阵的一行，无法解析的值记为 NaN
func parseMatrixRow(line string) []float64 {
	fields := strings.Split(line, ",")
	row := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			v = math.NaN()
		}
		row[i] = v
	}
	return row
}
