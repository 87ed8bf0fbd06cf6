package complexnum

import "testing"

func TestMatrixGetSetRowMajor(t *testing.T) {
	m, err := NewMatrix[float64](2, 3, RowMajor)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	if err := m.Set(1, 2, 5, 6); err != nil {
		t.Fatalf("Set: %v", err)
	}
	re, im, err := m.Get(1, 2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if re != 5 || im != 6 {
		t.Errorf("Get(1,2) = (%v,%v), want (5,6)", re, im)
	}
	if _, _, err := m.Get(2, 0); err != ErrOutOfBounds {
		t.Errorf("Get(2,0) error = %v, want ErrOutOfBounds", err)
	}
}

func TestMatrixSetRowOrColumn(t *testing.T) {
	m, _ := NewMatrix[float64](2, 3, RowMajor)
	list := NewList[float64](5) // longer than cols=3; tail must be discarded
	for i := 0; i < 5; i++ {
		_ = list.Set(i, float64(i+1), 0)
	}
	if err := m.SetRowOrColumn(Row, 0, list); err != nil {
		t.Fatalf("SetRowOrColumn: %v", err)
	}
	for col := 0; col < 3; col++ {
		re, _, _ := m.Get(0, col)
		if re != float64(col+1) {
			t.Errorf("row0[%d] = %v, want %v", col, re, col+1)
		}
	}

	short := NewList[float64](2)
	if err := m.SetRowOrColumn(Row, 1, short); err != ErrInvalidInputLength {
		t.Errorf("SetRowOrColumn short list error = %v, want ErrInvalidInputLength", err)
	}
}

func TestMatrixColumnMajorIndexing(t *testing.T) {
	m, _ := NewMatrix[float64](2, 2, ColMajor)
	_ = m.Set(0, 0, 1, 0)
	_ = m.Set(1, 0, 2, 0)
	_ = m.Set(0, 1, 3, 0)
	_ = m.Set(1, 1, 4, 0)

	// In column-major storage, column 0 (values 1,2) is contiguous.
	re0, _, _ := m.Get(0, 0)
	re1, _, _ := m.Get(1, 0)
	if re0 != 1 || re1 != 2 {
		t.Errorf("column 0 = (%v,%v), want (1,2)", re0, re1)
	}
}

func TestMatrixSetColumn(t *testing.T) {
	m, _ := NewMatrix[float64](3, 2, RowMajor)
	list := NewList[float64](3)
	_ = list.Set(0, 10, 0)
	_ = list.Set(1, 20, 0)
	_ = list.Set(2, 30, 0)
	if err := m.SetRowOrColumn(Column, 1, list); err != nil {
		t.Fatalf("SetRowOrColumn: %v", err)
	}
	for row := 0; row < 3; row++ {
		re, _, _ := m.Get(row, 1)
		if re != float64((row+1)*10) {
			t.Errorf("col1[%d] = %v, want %v", row, re, (row+1)*10)
		}
	}
}
