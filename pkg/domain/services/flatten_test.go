package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/vsinha/methodtree/pkg/domain/entities"
	testhelpers "github.com/vsinha/methodtree/pkg/infrastructure/testing"
)

func TestFlattenTree_CountAndOrder(t *testing.T) {
	root := testhelpers.BuildChairTree()

	flat, err := FlattenTree(root)
	if err != nil {
		t.Fatalf("FlattenTree failed: %v", err)
	}

	if len(flat) != root.CountNodes() {
		t.Fatalf("Expected %d items, got %d", root.CountNodes(), len(flat))
	}

	expected := []struct {
		id    string
		level int
	}{
		{testhelpers.ChairMakeMethodID, 0},
		{"SEAT", 1},
		{"FOAM", 2},
		{"FABRIC", 2},
		{"LEG", 1},
		{"TUBE", 2},
		{"CAP", 2},
		{"SCREW", 1},
	}

	for i, want := range expected {
		if flat[i].Data.ID != want.id || flat[i].Level != want.level {
			t.Errorf("Item %d: expected %s@%d, got %s@%d", i, want.id, want.level, flat[i].Data.ID, flat[i].Level)
		}
	}
}

func TestFlattenMethod_TopLevelMaterialsAtLevelZero(t *testing.T) {
	root := testhelpers.BuildChairTree()

	flat, err := FlattenMethod(root)
	if err != nil {
		t.Fatalf("FlattenMethod failed: %v", err)
	}

	if len(flat) != root.CountNodes()-1 {
		t.Fatalf("Expected %d items, got %d", root.CountNodes()-1, len(flat))
	}
	if flat[0].Data.ID != "SEAT" || flat[0].Level != 0 {
		t.Errorf("Expected SEAT at level 0 first, got %s@%d", flat[0].Data.ID, flat[0].Level)
	}
	if flat[1].Data.ID != "FOAM" || flat[1].Level != 1 {
		t.Errorf("Expected FOAM at level 1 second, got %s@%d", flat[1].Data.ID, flat[1].Level)
	}
}

func TestFlattenTree_PreOrderProperty(t *testing.T) {
	root := testhelpers.BuildChairTree()
	flat, err := FlattenTree(root)
	if err != nil {
		t.Fatalf("FlattenTree failed: %v", err)
	}

	position := make(map[string]int, len(flat))
	for i, item := range flat {
		position[item.Data.ID] = i
	}

	var check func(node *entities.MethodNode)
	check = func(node *entities.MethodNode) {
		for i, child := range node.Children {
			if position[child.ID] <= position[node.ID] {
				t.Errorf("Child %s emitted before parent %s", child.ID, node.ID)
			}
			if i+1 < len(node.Children) {
				next := node.Children[i+1]
				// Whole subtree of child precedes the next sibling
				end := position[child.ID] + child.CountNodes()
				if position[next.ID] != end {
					t.Errorf("Sibling %s at %d, expected right after subtree of %s (%d)", next.ID, position[next.ID], child.ID, end)
				}
			}
			check(child)
		}
	}
	check(root)
}

func TestFlattenTree_EmptyInputs(t *testing.T) {
	flat, err := FlattenTree(nil)
	if err != nil || len(flat) != 0 {
		t.Errorf("Expected empty result for nil root, got %d items, err %v", len(flat), err)
	}

	leaf := testhelpers.Root("LONELY")
	flat, err = FlattenTree(leaf)
	if err != nil || len(flat) != 1 {
		t.Errorf("Expected single item for childless root, got %d items, err %v", len(flat), err)
	}

	flat, err = FlattenMethod(leaf)
	if err != nil || len(flat) != 0 {
		t.Errorf("Expected no materials for childless make method, got %d items, err %v", len(flat), err)
	}
}

func TestFlattenTree_DoesNotMutateInput(t *testing.T) {
	root := testhelpers.BuildChairTree()
	before := root.Children[1].Children[0].Quantity.String()

	if _, err := FlattenTree(root); err != nil {
		t.Fatalf("FlattenTree failed: %v", err)
	}

	if root.Children[1].Children[0].Quantity.String() != before {
		t.Error("Expected input quantities to be untouched")
	}
	if len(root.Children) != 3 {
		t.Errorf("Expected root to still have 3 children, got %d", len(root.Children))
	}
}

func TestFlattenTree_CycleGuard(t *testing.T) {
	root := testhelpers.BuildChain("1", "1")
	a := root.Children[0]
	b := a.Children[0]
	b.Children = append(b.Children, a) // B -> A closes a loop

	_, err := FlattenTree(root)
	if !errors.Is(err, ErrCyclicTree) {
		t.Fatalf("Expected ErrCyclicTree, got %v", err)
	}

	_, err = FlattenMethod(root)
	if !errors.Is(err, ErrCyclicTree) {
		t.Fatalf("Expected ErrCyclicTree from FlattenMethod, got %v", err)
	}
}

func TestFlattenTree_DepthGuard(t *testing.T) {
	quantities := make([]string, MaxTreeDepth+1)
	for i := range quantities {
		quantities[i] = "1"
	}
	root := testhelpers.BuildChain(quantities...)

	_, err := FlattenTree(root)
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("Expected ErrMaxDepthExceeded, got %v", err)
	}
}

func TestFlattenTree_SharedChildIsNotACycle(t *testing.T) {
	seat := &entities.MethodNode{ID: "SEAT", ParentID: "CHAIR"}
	root := &entities.MethodNode{ID: "ROOT"}
	chair := &entities.MethodNode{ID: "CHAIR", Children: []*entities.MethodNode{seat}}
	stool := &entities.MethodNode{ID: "STOOL", Children: []*entities.MethodNode{seat}}
	root.Children = []*entities.MethodNode{chair, stool}

	flat, err := FlattenTree(root)
	if err != nil {
		t.Fatalf("Expected shared child to flatten, got %v", err)
	}

	var got []string
	for _, item := range flat {
		got = append(got, item.Data.ID+"@"+string(rune('0'+item.Level)))
	}
	expected := "ROOT@0 CHAIR@1 SEAT@2 STOOL@1 SEAT@2"
	if joined := strings.Join(got, " "); joined != expected {
		t.Errorf("Expected %s, got %s", expected, joined)
	}

	ids := GenerateBOMIDs(flat)
	if ids[2] != "1.1.1" || ids[4] != "1.2.1" {
		t.Errorf("Expected each occurrence numbered under its parent, got %v", ids)
	}
}
