package x11

import "testing"

func TestMonitorAt(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, Name: "DP-1", X: 0, Y: 0, Width: 1920, Height: 1080},
		{ID: 1, Name: "HDMI-1", X: 1920, Y: 0, Width: 2560, Height: 1440},
	}
	cases := []struct {
		x, y int
		want int
	}{
		{10, 10, 0},
		{1919, 1079, 0},
		{1920, 0, 1},
		{4000, 1200, 1},
		{100, 1200, -1},
		{-1, 0, -1},
	}
	for _, tc := range cases {
		if got := monitorAt(monitors, tc.x, tc.y); got != tc.want {
			t.Fatalf("monitorAt(%d,%d) = %d, want %d", tc.x, tc.y, got, tc.want)
		}
	}
}
