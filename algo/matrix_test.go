package algo

import (
	"errors"
	"math"
	"testing"

	"uav-planner/model"
	"uav-planner/utils"
)

func TestBuildMatrices_InsufficientData(t *testing.T) {
	for _, ws := range [][]model.Waypoint{nil, {{ID: 0, Lat: baseLat, Lng: baseLng}}} {
		dm, am, err := BuildMatrices(ws)
		if !errors.Is(err, ErrInsufficientData) {
			t.Fatalf("len %d: expected ErrInsufficientData, got %v", len(ws), err)
		}
		if dm != nil || am != nil {
			t.Fatalf("len %d: expected no matrices", len(ws))
		}
	}
}

func TestBuildMatrices_SymmetricWithZeroDiagonal(t *testing.T) {
	ws := []model.Waypoint{
		{ID: 0, Lat: baseLat, Lng: baseLng},
		{ID: 1, Lat: north(baseLat, 3), Lng: baseLng},
		{ID: 4, Lat: baseLat, Lng: baseLng + 0.05},
	}
	dm, am, err := BuildMatrices(ws)
	if err != nil {
		t.Fatalf("BuildMatrices: %v", err)
	}
	if dm.Size() != 3 || am.Size() != 3 {
		t.Fatalf("unexpected size %d/%d", dm.Size(), am.Size())
	}
	for i := 0; i < 3; i++ {
		if dm.At(i, i) != 0 {
			t.Errorf("diagonal [%d][%d] = %v", i, i, dm.At(i, i))
		}
		for j := 0; j < 3; j++ {
			if dm.At(i, j) != dm.At(j, i) {
				t.Errorf("asymmetric at %d,%d", i, j)
			}
			want := utils.HaversineDistance(ws[i].Point(), ws[j].Point())
			if math.Abs(dm.At(i, j)-want) > 1e-12 {
				t.Errorf("[%d][%d] = %v, want %v", i, j, dm.At(i, j), want)
			}
		}
	}
	if d, ok := dm.Between(1, 0); !ok || math.Abs(d-3) > 1e-9 {
		t.Errorf("Between(1, 0) = %v, %v", d, ok)
	}
	if _, ok := dm.Between(1, 99); ok {
		t.Errorf("Between with unknown id should fail")
	}
}

func TestActionsMatrix_DisablesZeroDistance(t *testing.T) {
	ws := []model.Waypoint{
		{ID: 0, Lat: baseLat, Lng: baseLng},
		{ID: 1, Lat: baseLat, Lng: baseLng}, // 与基地重合
		{ID: 2, Lat: north(baseLat, 2), Lng: baseLng},
	}
	_, am, err := BuildMatrices(ws)
	if err != nil {
		t.Fatalf("BuildMatrices: %v", err)
	}

	if c := am.Cell(0, 1); c.Enabled || c.On {
		t.Errorf("coincident pair should be disabled: %+v", c)
	}
	if c := am.Cell(1, 1); c.Enabled {
		t.Errorf("diagonal should be disabled: %+v", c)
	}
	if c := am.Cell(0, 2); !c.Enabled || !c.On {
		t.Errorf("distinct pair should start on: %+v", c)
	}
}

func TestDistanceMatrix_Rows(t *testing.T) {
	ws := []model.Waypoint{
		{ID: 0, Lat: baseLat, Lng: baseLng},
		{ID: 1, Lat: north(baseLat, 4), Lng: baseLng},
	}
	dm, _, _ := BuildMatrices(ws)
	rows := dm.Rows()
	if len(rows) != 2 || rows[0][0] != 0 || rows[0][1] != rows[1][0] {
		t.Fatalf("unexpected rows %v", rows)
	}
}
