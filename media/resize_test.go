package media

import (
	"errors"
	"testing"

	"github.com/reelcore/reel/avbridge"
)

func TestResizeStrategyApply(t *testing.T) {
	const srcW, srcH = 1600, 900

	tests := []struct {
		name         string
		strategy     ResizeStrategy
		srcW, srcH   int
		wantW, wantH int
		wantErr      bool
	}{
		{"exact", ResizeExact(640, 360), srcW, srcH, 640, 360, false},
		{"fit_width", ResizeFitWidth(800), srcW, srcH, 800, 450, false},
		{"fit_height", ResizeFitHeight(450), srcW, srcH, 800, 450, false},
		{"fit_width_bound_tighter", ResizeFit(800, 800), srcW, srcH, 800, 450, false},
		{"fit_height_bound_tighter", ResizeFit(3200, 225), srcW, srcH, 400, 225, false},
		{"zero_source_width", ResizeExact(100, 100), 0, srcH, 0, 0, true},
		{"zero_source_height", ResizeExact(100, 100), srcW, 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := tt.strategy.apply(tt.srcW, tt.srcH)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("apply(%d, %d) = (%d, %d, nil), want error", tt.srcW, tt.srcH, w, h)
				}
				if !errors.Is(err, avbridge.ErrInvalidResizeParameters) {
					t.Fatalf("apply error = %v, want ErrInvalidResizeParameters", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("apply(%d, %d) unexpected error: %v", tt.srcW, tt.srcH, err)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("apply(%d, %d) = (%d, %d), want (%d, %d)", tt.srcW, tt.srcH, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
