package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"prm-planner/internal/geom"
)

func TestMergeObstacles(t *testing.T) {
	big := geom.Rect{XMin: 0, XMax: 10, YMin: 0, YMax: 10}
	small := geom.Rect{XMin: 2, XMax: 3, YMin: 2, YMax: 3}
	apart := geom.Rect{XMin: 20, XMax: 30, YMin: 0, YMax: 10}
	overlapping := geom.Rect{XMin: 8, XMax: 12, YMin: 8, YMax: 12}

	tests := []struct {
		name string
		in   []geom.Rect
		want []geom.Rect
	}{
		{"empty", nil, nil},
		{"single", []geom.Rect{small}, []geom.Rect{small}},
		{"contained after container", []geom.Rect{big, small}, []geom.Rect{big}},
		{"contained before container", []geom.Rect{small, apart, big}, []geom.Rect{apart, big}},
		{"duplicates keep the first", []geom.Rect{big, big, small}, []geom.Rect{big}},
		{"overlap is kept", []geom.Rect{big, overlapping}, []geom.Rect{big, overlapping}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeObstacles(tt.in))
		})
	}
}

func TestMergeAdjacentObstacles(t *testing.T) {
	left := geom.Rect{XMin: 0, XMax: 2, YMin: 0, YMax: 4}
	right := geom.Rect{XMin: 2, XMax: 5, YMin: 0, YMax: 4}
	above := geom.Rect{XMin: 0, XMax: 5, YMin: 4, YMax: 6}
	shifted := geom.Rect{XMin: 2, XMax: 5, YMin: 1, YMax: 4}
	far := geom.Rect{XMin: 10, XMax: 11, YMin: 10, YMax: 11}

	tests := []struct {
		name string
		in   []geom.Rect
		want []geom.Rect
	}{
		{"empty", nil, nil},
		{"side by side", []geom.Rect{left, far, right}, []geom.Rect{{XMin: 0, XMax: 5, YMin: 0, YMax: 4}, far}},
		{"chain", []geom.Rect{above, left, right}, []geom.Rect{{XMin: 0, XMax: 5, YMin: 0, YMax: 6}}},
		{"partial edge is kept", []geom.Rect{left, shifted}, []geom.Rect{left, shifted}},
		{"gap is kept", []geom.Rect{left, far}, []geom.Rect{left, far}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeAdjacentObstacles(tt.in))
		})
	}
}

func TestMergeAdjacentObstacles_DoesNotModifyInput(t *testing.T) {
	in := []geom.Rect{
		{XMin: 0, XMax: 1, YMin: 0, YMax: 1},
		{XMin: 1, XMax: 2, YMin: 0, YMax: 1},
	}
	MergeAdjacentObstacles(in)
	assert.Equal(t, geom.Rect{XMin: 1, XMax: 2, YMin: 0, YMax: 1}, in[1])
}
