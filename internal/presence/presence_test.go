package presence

import (
	"testing"

	"github.com/pawfessional/pawdesk/internal/api"
)

func TestOnline(t *testing.T) {
	roster := NewRoster([]int64{5, 9})

	cases := []struct {
		name  string
		staff api.Staff
		want  bool
	}{
		{"active and present", api.Staff{ID: 5, Status: "active"}, true},
		{"active but absent", api.Staff{ID: 7, Status: "active"}, false},
		{"inactive though pushed", api.Staff{ID: 9, Status: "inactive"}, false},
		{"empty status though pushed", api.Staff{ID: 9}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Online(tc.staff, roster); got != tc.want {
				t.Errorf("Online = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRosterReplacement(t *testing.T) {
	first := NewRoster([]int64{1, 2, 3})
	second := NewRoster([]int64{3})

	if !first.Contains(1) {
		t.Fatalf("first roster missing id 1")
	}
	if second.Contains(1) || second.Contains(2) {
		t.Fatalf("second roster retained ids from first push")
	}
	if !second.Contains(3) {
		t.Fatalf("second roster missing id 3")
	}
}

func TestRosterEmptyPush(t *testing.T) {
	roster := NewRoster(nil)
	if roster.Contains(1) {
		t.Fatalf("empty roster reported a member")
	}
	if Online(api.Staff{ID: 1, Status: "active"}, roster) {
		t.Fatalf("active staff online against empty roster")
	}
}

func TestCountOnline(t *testing.T) {
	staff := []api.Staff{
		{ID: 5, Status: "active"},
		{ID: 9, Status: "inactive"},
		{ID: 11, Status: "active"},
	}
	roster := NewRoster([]int64{5, 9})
	if got := CountOnline(staff, roster); got != 1 {
		t.Errorf("CountOnline = %d, want 1", got)
	}
}

func TestRosterClone(t *testing.T) {
	r := NewRoster([]int64{3, 8})
	c := r.Clone()
	delete(c, 3)

	if !r.Contains(3) {
		t.Fatalf("clone mutation reached the original roster")
	}
	if c.Contains(3) || !c.Contains(8) {
		t.Fatalf("clone = %v, want only id 8", c)
	}
}
