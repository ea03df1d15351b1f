package models

import (
	"testing"
)

func testWidgets(ids ...string) []WidgetConfig {
	widgets := make([]WidgetConfig, 0, len(ids))
	for _, id := range ids {
		widgets = append(widgets, WidgetConfig{
			ID:    id,
			Type:  "price-chart",
			Title: "Widget " + id,
			Size:  WidgetSizeMedium,
		})
	}
	return widgets
}

func widgetIDs(widgets []WidgetConfig) []string {
	ids := make([]string, len(widgets))
	for i, w := range widgets {
		ids[i] = w.ID
	}
	return ids
}

func assertOrder(t *testing.T, got []WidgetConfig, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length: got %d, want %d (%v vs %v)", len(got), len(want), widgetIDs(got), want)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("position %d: got %s, want %s (full order %v)", i, got[i].ID, want[i], widgetIDs(got))
		}
	}
}

func TestReorderWidgets(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		fromID  string
		toID    string
		want    []string
		wantErr bool
	}{
		{
			name:   "move first to third",
			input:  []string{"a", "b", "c", "d"},
			fromID: "a",
			toID:   "c",
			want:   []string{"b", "c", "a", "d"},
		},
		{
			name:   "move third to first",
			input:  []string{"a", "b", "c", "d"},
			fromID: "c",
			toID:   "a",
			want:   []string{"c", "a", "b", "d"},
		},
		{
			name:   "move first to last",
			input:  []string{"a", "b", "c", "d"},
			fromID: "a",
			toID:   "d",
			want:   []string{"b", "c", "d", "a"},
		},
		{
			name:   "move last to first",
			input:  []string{"a", "b", "c", "d"},
			fromID: "d",
			toID:   "a",
			want:   []string{"d", "a", "b", "c"},
		},
		{
			name:   "adjacent swap right",
			input:  []string{"a", "b", "c", "d"},
			fromID: "a",
			toID:   "b",
			want:   []string{"b", "a", "c", "d"},
		},
		{
			name:   "same source and target is a no-op",
			input:  []string{"a", "b", "c"},
			fromID: "b",
			toID:   "b",
			want:   []string{"a", "b", "c"},
		},
		{
			name:   "two widgets swap",
			input:  []string{"a", "b"},
			fromID: "b",
			toID:   "a",
			want:   []string{"b", "a"},
		},
		{
			name:    "unknown source id",
			input:   []string{"a", "b"},
			fromID:  "zz",
			toID:    "a",
			wantErr: true,
		},
		{
			name:    "unknown target id",
			input:   []string{"a", "b"},
			fromID:  "a",
			toID:    "zz",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := testWidgets(tt.input...)
			got, err := ReorderWidgets(input, tt.fromID, tt.toID)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got order %v", widgetIDs(got))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			assertOrder(t, got, tt.want)

			// The result must be a permutation: same id set, nothing gained or lost
			seen := make(map[string]int)
			for _, w := range got {
				seen[w.ID]++
			}
			for _, id := range tt.input {
				if seen[id] != 1 {
					t.Errorf("id %s appears %d times, want exactly 1", id, seen[id])
				}
			}

			// Input order must be untouched
			assertOrder(t, input, tt.input)
		})
	}
}

func TestAddWidget(t *testing.T) {
	base := testWidgets("a", "b")

	added := WidgetConfig{ID: "c", Type: "queue-monitor", Title: "Queues", Size: WidgetSizeLarge}
	got, err := AddWidget(base, added)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Exactly one widget appended, at the end
	if len(got) != len(base)+1 {
		t.Fatalf("length: got %d, want %d", len(got), len(base)+1)
	}
	assertOrder(t, got[:len(base)], []string{"a", "b"})
	if got[len(got)-1].ID != "c" {
		t.Errorf("appended id: got %s, want c", got[len(got)-1].ID)
	}
	if got[len(got)-1].Type != "queue-monitor" {
		t.Errorf("appended type: got %s, want queue-monitor", got[len(got)-1].Type)
	}

	// Input slice untouched
	if len(base) != 2 {
		t.Errorf("input mutated: length %d", len(base))
	}
}

func TestAddWidgetRejectsDuplicateID(t *testing.T) {
	base := testWidgets("a", "b")
	_, err := AddWidget(base, WidgetConfig{ID: "a", Type: "price-chart", Size: WidgetSizeSmall})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestAddWidgetRejectsInvalidWidget(t *testing.T) {
	tests := []struct {
		name   string
		widget WidgetConfig
	}{
		{"missing id", WidgetConfig{Type: "price-chart"}},
		{"missing type", WidgetConfig{ID: "x"}},
		{"bad size", WidgetConfig{ID: "x", Type: "price-chart", Size: "gigantic"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := AddWidget(nil, tt.widget); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestRemoveWidget(t *testing.T) {
	base := testWidgets("a", "b", "c")

	got, err := RemoveWidget(base, "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOrder(t, got, []string{"a", "c"})

	// Input untouched
	assertOrder(t, base, []string{"a", "b", "c"})
}

func TestRemoveWidgetUnknownID(t *testing.T) {
	base := testWidgets("a", "b")
	if _, err := RemoveWidget(base, "zz"); err == nil {
		t.Fatal("expected error for unknown widget id")
	}
}

func TestDashboardLayoutValidate(t *testing.T) {
	tests := []struct {
		name    string
		layout  DashboardLayout
		wantErr bool
	}{
		{
			name:   "valid layout",
			layout: DashboardLayout{ID: "lay_1", Name: "Main", UserID: "local", Widgets: testWidgets("a", "b")},
		},
		{
			name:   "empty widgets is valid",
			layout: DashboardLayout{ID: "lay_2", Name: "Empty", UserID: "local"},
		},
		{
			name:    "missing name",
			layout:  DashboardLayout{ID: "lay_3", UserID: "local"},
			wantErr: true,
		},
		{
			name:    "missing user id",
			layout:  DashboardLayout{ID: "lay_4", Name: "Main"},
			wantErr: true,
		},
		{
			name: "duplicate widget ids",
			layout: DashboardLayout{
				ID: "lay_5", Name: "Main", UserID: "local",
				Widgets: append(testWidgets("a", "b"), testWidgets("a")...),
			},
			wantErr: true,
		},
		{
			name: "invalid widget entry",
			layout: DashboardLayout{
				ID: "lay_6", Name: "Main", UserID: "local",
				Widgets: []WidgetConfig{{ID: "a"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCloneWidgetsDeepCopiesSettings(t *testing.T) {
	original := []WidgetConfig{
		{ID: "a", Type: "price-chart", Settings: map[string]interface{}{"pair": "btc-usd"}},
	}
	clone := CloneWidgets(original)
	clone[0].Settings["pair"] = "eth-usd"

	if original[0].Settings["pair"] != "btc-usd" {
		t.Errorf("settings shared between clone and original: %v", original[0].Settings)
	}
}

func TestLayoutSameScope(t *testing.T) {
	farmA := "farm-a"
	farmB := "farm-b"

	tests := []struct {
		name   string
		layout DashboardLayout
		userID string
		farmID *string
		want   bool
	}{
		{"same user no farm", DashboardLayout{UserID: "u1"}, "u1", nil, true},
		{"same user same farm", DashboardLayout{UserID: "u1", FarmID: &farmA}, "u1", &farmA, true},
		{"different user", DashboardLayout{UserID: "u1"}, "u2", nil, false},
		{"different farm", DashboardLayout{UserID: "u1", FarmID: &farmA}, "u1", &farmB, false},
		{"farm vs no farm", DashboardLayout{UserID: "u1", FarmID: &farmA}, "u1", nil, false},
		{"no farm vs farm", DashboardLayout{UserID: "u1"}, "u1", &farmA, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.layout.SameScope(tt.userID, tt.farmID); got != tt.want {
				t.Errorf("SameScope() = %v, want %v", got, tt.want)
			}
		})
	}
}
