package workspaces

import (
	"testing"

	"github.com/1broseidon/wsbar/internal/config"
)

func TestForMonitor(t *testing.T) {
	list := []Workspace{
		{ID: 1, Monitor: "DP-1"},
		{ID: 2, Monitor: "HDMI-A-1"},
		{ID: 3, Monitor: "gone"},
	}
	known := []string{"DP-1", "HDMI-A-1"}

	ids := func(ws []Workspace) []int {
		var out []int
		for _, w := range ws {
			out = append(out, w.ID)
		}
		return out
	}

	cases := []struct {
		name    string
		mode    config.VisibilityMode
		monitor string
		want    []int
	}{
		{"all", config.VisibilityAll, "DP-1", []int{1, 2, 3}},
		{"specific keeps orphans", config.VisibilityMonitorSpecific, "DP-1", []int{1, 3}},
		{"exclusive", config.VisibilityMonitorSpecificExclusive, "DP-1", []int{1}},
		{"unknown bar monitor", config.VisibilityMonitorSpecificExclusive, "", []int{1, 2, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(ForMonitor(list, tc.mode, tc.monitor, known))
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}
