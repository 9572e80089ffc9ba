package algo

import (
	"math"
	"strings"
	"testing"

	"uav-planner/model"
)

func TestEncode_Format(t *testing.T) {
	e := NewEngine(DefaultMaxRange, WithColorPicker(fixedColor))
	_, _ = e.AddWaypoint(50, 22)
	_, _ = e.AddWaypoint(50.01, 22)

	var sb strings.Builder
	if err := e.Export(&sb); err != nil {
		t.Fatalf("Export: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n")

	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), sb.String())
	}
	if lines[0] != Header {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "0,UAV BASE,50,22,blue" {
		t.Errorf("base line = %q", lines[1])
	}
	if lines[2] != "1,A,50.01,22,red" {
		t.Errorf("waypoint line = %q", lines[2])
	}
	if lines[3] != MatrixSentinel {
		t.Errorf("sentinel = %q", lines[3])
	}
	if !strings.HasPrefix(lines[4], "0,1.11") || !strings.HasSuffix(lines[5], ",0") {
		t.Errorf("unexpected matrix rows %q / %q", lines[4], lines[5])
	}
}

func TestEncode_SmallGraphs(t *testing.T) {
	if got := EncodeString(nil); got != Header+"\n"+MatrixSentinel+"\n" {
		t.Errorf("empty graph encoded as %q", got)
	}
	s := newTestStore()
	_, _ = s.Add(baseLat, baseLng)
	if got := EncodeString(s.Waypoints()); !strings.HasSuffix(got, MatrixSentinel+"\n0\n") {
		t.Errorf("single waypoint encoded as %q", got)
	}
}

func TestDecode_SkipsHeaderBlankAndMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		Header,
		"",
		"0,UAV BASE,50,22,blue",
		"Point Name,Latitude,Longitude,Color",
		"x,A,50.01,22,red",
		"2,B,abc,22,red",
		"3,C,50.02",
		"4,D,50.03,22.01,green",
		"   ",
		MatrixSentinel,
		"0,1.2,oops",
		"1.2,0,3",
	}, "\r\n")

	pg, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(pg.Waypoints) != 2 {
		t.Fatalf("expected 2 waypoints, got %+v", pg.Waypoints)
	}
	if pg.Waypoints[1].ID != 4 || pg.Waypoints[1].Color != "green" || pg.Waypoints[1].Lng != 22.01 {
		t.Errorf("unexpected waypoint %+v", pg.Waypoints[1])
	}
	if len(pg.Issues) != 3 {
		t.Fatalf("expected 3 issues, got %d: %v", len(pg.Issues), pg.Issues)
	}
	if pg.Issues[0].Line != 5 {
		t.Errorf("first issue line = %d, want 5", pg.Issues[0].Line)
	}
	if len(pg.Matrix) != 2 || !math.IsNaN(pg.Matrix[0][2]) || pg.Matrix[1][2] != 3 {
		t.Errorf("unexpected matrix %v", pg.Matrix)
	}
}

func TestDecode_NoWaypointsYieldsEmptyGraph(t *testing.T) {
	for _, input := range []string{"", Header + "\n", "garbage\nmore garbage\n", MatrixSentinel + "\n1,2\n"} {
		pg, err := Decode(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Decode(%q): %v", input, err)
		}
		if len(pg.Waypoints) != 0 {
			t.Errorf("Decode(%q): expected no waypoints, got %d", input, len(pg.Waypoints))
		}
	}
}

func TestDecode_LegacyDoubleMatrixBlock(t *testing.T) {
	input := Header + "\n0,UAV BASE,50,22,blue\n1,A,50.01,22,red\n" + MatrixSentinel +
		"\n0,1.1\n1.1,0\n0,1.1\n1.1,0\n"
	pg, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(pg.Waypoints) != 2 || len(pg.Matrix) != 4 {
		t.Fatalf("unexpected parse result: %d waypoints, %d rows", len(pg.Waypoints), len(pg.Matrix))
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	colors := []string{"gold", "violet", "black"}
	i := 0
	src := NewEngine(DefaultMaxRange, WithColorPicker(func() string {
		c := colors[i%len(colors)]
		i++
		return c
	}))
	_, _ = src.AddWaypoint(50.0, 22.0)
	_, _ = src.AddWaypoint(50.0123456789, 22.0312)
	_, _ = src.AddWaypoint(49.97, 21.98765)
	_, _ = src.AddWaypoint(50.03, 22.05)
	_, _ = src.RemoveWaypoint(1)

	var sb strings.Builder
	if err := src.Export(&sb); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := NewEngine(1) // 更小的航程也必须能导入
	issues, err := dst.Import(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}

	want, got := src.Snapshot(), dst.Snapshot()
	if len(got.Waypoints) != len(want.Waypoints) {
		t.Fatalf("waypoint count %d, want %d", len(got.Waypoints), len(want.Waypoints))
	}
	for k := range want.Waypoints {
		if got.Waypoints[k] != want.Waypoints[k] {
			t.Errorf("waypoint %d = %+v, want %+v", k, got.Waypoints[k], want.Waypoints[k])
		}
	}
	for r := range want.Distances {
		for c := range want.Distances[r] {
			if math.Abs(got.Distances[r][c]-want.Distances[r][c]) > 1e-9 {
				t.Errorf("distance [%d][%d] = %v, want %v", r, c, got.Distances[r][c], want.Distances[r][c])
			}
		}
	}

	// 新的 ID 必须大于导入的所有 ID
	wp, err := dst.AddWaypoint(50.0, 22.001)
	if err != nil {
		t.Fatalf("add after import: %v", err)
	}
	if wp.ID != 4 {
		t.Errorf("next id after import = %d, want 4", wp.ID)
	}
}

func TestEngineImport_DuplicateIDsReported(t *testing.T) {
	input := Header + "\n0,UAV BASE,50,22,blue\n0,A,50.01,22,red\n1,B,50.02,22,red\n"
	e := NewEngine(DefaultMaxRange)
	issues, err := e.Import(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(issues) != 1 || issues[0].Line != 3 {
		t.Fatalf("expected one duplicate issue on line 3, got %v", issues)
	}
	ws := e.Waypoints()
	if len(ws) != 2 || ws[1].ID != 1 || ws[1].Name != "A" {
		t.Fatalf("unexpected waypoints %+v", ws)
	}
}

func TestEngineImport_MaxIntIDRejected(t *testing.T) {
	input := Header + "\n9223372036854775807,UAV BASE,50,22,blue\n0,UAV BASE,50,22,blue\n"
	e := NewEngine(DefaultMaxRange, WithColorPicker(fixedColor))
	issues, err := e.Import(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(issues) != 1 || issues[0].Line != 2 {
		t.Fatalf("expected one issue on line 2, got %v", issues)
	}

	wp, err := e.AddWaypoint(50.01, 22)
	if err != nil {
		t.Fatalf("add after import: %v", err)
	}
	if wp.ID != 1 {
		t.Errorf("next id after import = %d, want 1", wp.ID)
	}

	var sb strings.Builder
	if err := e.Export(&sb); err != nil {
		t.Fatalf("Export: %v", err)
	}
	again := NewEngine(DefaultMaxRange)
	issues, err = again.Import(strings.NewReader(sb.String()))
	if err != nil || len(issues) != 0 {
		t.Fatalf("re-import: err=%v issues=%v", err, issues)
	}
	if got := len(again.Waypoints()); got != 2 {
		t.Errorf("re-imported %d waypoints, want 2", got)
	}
}

func TestStoreRestore_RefusesUnassignableIDs(t *testing.T) {
	s := newTestStore()
	for _, id := range []int{-1, math.MaxInt} {
		if s.restore(model.Waypoint{ID: id, Lat: 50, Lng: 22}) {
			t.Errorf("restore accepted id %d", id)
		}
	}
	if s.Len() != 0 {
		t.Fatalf("store not empty: %d", s.Len())
	}
}

func TestDecode_OverlongLineSkipped(t *testing.T) {
	input := Header + "\n0,UAV BASE,50,22,blue\n" +
		"1,A," + strings.Repeat("9", maxLineBytes) + ",22,red\n" +
		"2,B,50.01,22,red\n" + MatrixSentinel + "\n0,1\n1,0"

	pg, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(pg.Waypoints) != 2 || pg.Waypoints[1].ID != 2 {
		t.Fatalf("unexpected waypoints %+v", pg.Waypoints)
	}
	if len(pg.Issues) != 1 || pg.Issues[0].Line != 3 {
		t.Fatalf("expected one issue on line 3, got %v", pg.Issues)
	}
	if len(pg.Matrix) != 2 || pg.Matrix[1][0] != 1 {
		t.Errorf("unexpected matrix %v", pg.Matrix)
	}
}
