package services

import (
	"errors"
	"fmt"

	"github.com/vsinha/methodtree/pkg/domain/entities"
)

// MaxTreeDepth bounds how deep a method tree may nest before flattening gives up
const MaxTreeDepth = 64

var (
	// ErrCyclicTree is returned when a node is its own ancestor
	ErrCyclicTree = errors.New("method tree contains a cycle")
	// ErrMaxDepthExceeded is returned when a tree nests deeper than MaxTreeDepth
	ErrMaxDepthExceeded = errors.New("method tree exceeds maximum depth")
)

// FlattenTree walks the tree rooted at root in pre-order and returns one item
// per node, the root itself at level 0. A nil root yields an empty slice.
// A node shared by two parents is emitted under each of them.
func FlattenTree(root *entities.MethodNode) ([]entities.FlatTreeItem[*entities.MethodNode], error) {
	if root == nil {
		return nil, nil
	}

	f := newFlattener(len(root.Children) + 1)
	if err := f.walk(root, 0); err != nil {
		return nil, err
	}
	return f.items, nil
}

// FlattenMethod flattens the materials of a make method: the root's children
// are emitted at level 0 and the root itself is omitted.
func FlattenMethod(root *entities.MethodNode) ([]entities.FlatTreeItem[*entities.MethodNode], error) {
	if root == nil || len(root.Children) == 0 {
		return nil, nil
	}

	f := newFlattener(len(root.Children))
	f.onPath[root] = true
	for _, child := range root.Children {
		if err := f.walk(child, 0); err != nil {
			return nil, err
		}
	}
	return f.items, nil
}

type flattener struct {
	items  []entities.FlatTreeItem[*entities.MethodNode]
	onPath map[*entities.MethodNode]bool
}

func newFlattener(expected int) *flattener {
	return &flattener{
		items:  make([]entities.FlatTreeItem[*entities.MethodNode], 0, expected),
		onPath: make(map[*entities.MethodNode]bool),
	}
}

func (f *flattener) walk(node *entities.MethodNode, level int) error {
	if node == nil {
		return nil
	}
	if level >= MaxTreeDepth {
		return fmt.Errorf("node %s at level %d: %w", node.ID, level, ErrMaxDepthExceeded)
	}
	if f.onPath[node] {
		return fmt.Errorf("node %s is its own ancestor: %w", node.ID, ErrCyclicTree)
	}
	f.onPath[node] = true
	defer delete(f.onPath, node)

	f.items = append(f.items, entities.FlatTreeItem[*entities.MethodNode]{Data: node, Level: level})
	for _, child := range node.Children {
		if err := f.walk(child, level+1); err != nil {
			return err
		}
	}
	return nil
}
