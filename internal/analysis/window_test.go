// SPDX-License-Identifier: MIT
package analysis

import (
	"slices"
	"testing"
)

func TestSampleWindow(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		writes  [][]float64
		latest  int
		want    []float64
		wantLen int
	}{
		{"underrun", [][]float64{{1, 2}}, 3, nil, 2},
		{"exact", [][]float64{{1, 2, 3}}, 3, []float64{1, 2, 3}, 3},
		{"wraps", [][]float64{{1, 2, 3}, {4, 5, 6, 7}}, 4, []float64{4, 5, 6, 7}, 5},
		{"across the seam", [][]float64{{1, 2, 3, 4}, {5, 6, 7}}, 5, []float64{3, 4, 5, 6, 7}, 5},
		{"oversized batch keeps tail", [][]float64{{1, 2, 3, 4, 5, 6, 7, 8}}, 5, []float64{4, 5, 6, 7, 8}, 5},
		{"many small batches", [][]float64{{1}, {2}, {3}, {4}, {5}, {6}, {7}}, 2, []float64{6, 7}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewSampleWindow(5)
			for _, batch := range tt.writes {
				w.Write(batch)
			}
			if w.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", w.Len(), tt.wantLen)
			}

			dst := make([]float64, tt.latest)
			ok := w.Latest(dst)
			if tt.want == nil {
				if ok {
					t.Errorf("Latest() = true on underrun, dst = %v", dst)
				}
				return
			}
			if !ok || !slices.Equal(dst, tt.want) {
				t.Errorf("Latest() = %v %v, want %v", ok, dst, tt.want)
			}
		})
	}
}

func TestSampleWindow_Reset(t *testing.T) {
	t.Parallel()
	w := NewSampleWindow(4)
	w.Write([]float64{1, 2, 3, 4})
	w.Reset()
	if w.Len() != 0 || w.Latest(make([]float64, 1)) {
		t.Error("window not empty after Reset")
	}
}

func TestSampleWindow_LatestAllocations(t *testing.T) {
	w := NewSampleWindow(4410)
	w.Write(make([]float64, 3000))
	w.Write(make([]float64, 3000))
	dst := make([]float64, 1024)

	allocs := testing.AllocsPerRun(100, func() {
		w.Latest(dst)
	})
	if allocs > 0 {
		t.Errorf("Latest allocated memory: got %.1f allocs, want 0", allocs)
	}
}

func BenchmarkSampleWindow(b *testing.B) {
	w := NewSampleWindow(4410)
	batch := make([]float64, 512)
	dst := make([]float64, 1024)
	b.ReportAllocs()
	for b.Loop() {
		w.Write(batch)
		w.Latest(dst)
	}
}
