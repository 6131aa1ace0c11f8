package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/piwi3910/roomfit/internal/model"
)

func TestResultPath(t *testing.T) {
	tests := []struct {
		in, outDir, want string
	}{
		{"/data/kitchen.json", "", "/data/kitchen.result.json"},
		{"/data/kitchen.json", "/out", "/out/kitchen.result.json"},
		{"bar", "", "bar.result.json"},
	}
	for _, tt := range tests {
		if got := ResultPath(tt.in, tt.outDir); got != tt.want {
			t.Errorf("ResultPath(%q, %q) = %q, want %q", tt.in, tt.outDir, got, tt.want)
		}
	}
	if !IsResultFile("/data/kitchen.result.json") || IsResultFile("/data/kitchen.json") {
		t.Error("IsResultFile misclassified")
	}
}

func TestSaveAndLoadResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "kitchen.result.json")
	result := model.Result{
		Feasible: true,
		Placements: []model.Placement{
			{Item: model.NewItem("fridge1", 800, 700), Center: orb.Point{400, 350}, Rotation: model.Rotation0},
			{Item: model.NewItem("shelf1", 500, 300), Center: orb.Point{150, 950}, Rotation: model.Rotation90},
		},
	}

	if err := SaveResult(path, result); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	loaded, err := LoadResult(path)
	if err != nil {
		t.Fatalf("LoadResult failed: %v", err)
	}

	if !loaded.Feasible || len(loaded.Placements) != 2 {
		t.Fatalf("unexpected result %+v", loaded)
	}
	p := loaded.Placements[1]
	if p.Item.Name != "shelf1" || p.Rotation != model.Rotation90 || !p.Center.Equal(orb.Point{150, 950}) {
		t.Errorf("unexpected placement %+v", p)
	}
}

func TestSaveResultInfeasibleKeepsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.result.json")
	if err := SaveResult(path, model.Result{Message: "cannot place item: fridge1", FailedItem: "fridge1"}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, `"placements": []`) {
		t.Errorf("placements should be an empty list:\n%s", text)
	}
	if !strings.Contains(text, `"message": "cannot place item: fridge1"`) {
		t.Errorf("message missing:\n%s", text)
	}
}

func TestLoadResultErrors(t *testing.T) {
	if _, err := LoadResult(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.result.json")
	if err := os.WriteFile(path, []byte(`{"placements":[{"item":"a","center":[0,0],"rotation":30}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadResult(path); err == nil {
		t.Error("expected error for unsupported rotation")
	}
}
