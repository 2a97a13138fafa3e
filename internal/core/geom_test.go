package core

import "testing"

func TestRectFromCorners(t *testing.T) {
	r := RectFromCorners(5, 4, 2, 1)
	if r != NewRect(2, 1, 4, 4) {
		t.Errorf("RectFromCorners(5,4,2,1) = %+v, expected {2 1 4 4}", r)
	}

	single := RectFromCorners(3, 3, 3, 3)
	if single.W != 1 || single.H != 1 {
		t.Errorf("single cell rect = %+v, expected 1x1", single)
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(2, 3, 3, 2)

	if !r.Contains(2, 3) || !r.Contains(4, 4) {
		t.Error("corners should be inside")
	}
	if r.Contains(5, 3) || r.Contains(2, 5) || r.Contains(1, 3) {
		t.Error("points past the edges should be outside")
	}
	if !r.ContainsRect(NewRect(3, 3, 2, 2)) {
		t.Error("ContainsRect should accept an inner rect")
	}
	if r.ContainsRect(NewRect(3, 3, 3, 1)) {
		t.Error("ContainsRect should reject a rect crossing the right edge")
	}
}

func TestRectCenter2(t *testing.T) {
	tests := []struct {
		r      Rect
		cx, cy int
	}{
		{NewRect(0, 0, 1, 1), 0, 0},
		{NewRect(0, 0, 2, 2), 1, 1},
		{NewRect(2, 1, 3, 4), 6, 5},
		{NewRect(-3, 0, 2, 1), -5, 0},
	}

	for _, tc := range tests {
		cx, cy := tc.r.Center2()
		if cx != tc.cx || cy != tc.cy {
			t.Errorf("%+v.Center2() = (%d, %d), expected (%d, %d)", tc.r, cx, cy, tc.cx, tc.cy)
		}
	}
}

func TestRectOffsetAndEmpty(t *testing.T) {
	r := NewRect(1, 1, 2, 3).Offset(-2, 4)
	if r != NewRect(-1, 5, 2, 3) {
		t.Errorf("Offset = %+v, expected {-1 5 2 3}", r)
	}
	if r.Empty() {
		t.Error("2x3 rect should not be empty")
	}
	if !NewRect(0, 0, 0, 5).Empty() {
		t.Error("zero width rect should be empty")
	}
}

func TestClampMod(t *testing.T) {
	if Clamp(-2, 0, 9) != 0 || Clamp(12, 0, 9) != 9 || Clamp(4, 0, 9) != 4 {
		t.Error("Clamp out of range")
	}

	tests := []struct{ x, m, expected int }{
		{5, 4, 1},
		{-1, 4, 3},
		{-4, 4, 0},
		{-9, 4, 3},
	}
	for _, tc := range tests {
		if got := Mod(tc.x, tc.m); got != tc.expected {
			t.Errorf("Mod(%d, %d) = %d, expected %d", tc.x, tc.m, got, tc.expected)
		}
	}
}
