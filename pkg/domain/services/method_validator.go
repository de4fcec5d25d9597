package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/methodtree/pkg/domain/entities"
)

// MethodValidator checks the structural integrity of method material rows
type MethodValidator struct{}

// NewMethodValidator creates a new method validator
func NewMethodValidator() *MethodValidator {
	return &MethodValidator{}
}

// ValidationResult contains the results of method validation
type ValidationResult struct {
	HasCycles       bool
	CyclePaths      [][]string // make method ids, first id repeated at the end
	DuplicateIDs    []string
	NegativeQtyRows []string
	Errors          []string
}

// IsValid reports whether no errors were found
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidateMaterials performs validation on the material rows of one domain
func (v *MethodValidator) ValidateMaterials(rows []*entities.MaterialRow) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:      make([][]string, 0),
		DuplicateIDs:    make([]string, 0),
		NegativeQtyRows: make([]string, 0),
		Errors:          make([]string, 0),
	}

	// Build adjacency map for cycle detection
	adjacencyMap := v.buildAdjacencyMap(rows)

	cycles := v.detectCycles(adjacencyMap)
	result.HasCycles = len(cycles) > 0
	result.CyclePaths = cycles

	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if seen[row.ID] {
			result.DuplicateIDs = append(result.DuplicateIDs, row.ID)
		}
		seen[row.ID] = true

		if row.Quantity.IsNegative() {
			result.NegativeQtyRows = append(result.NegativeQtyRows, row.ID)
		}
	}

	for _, cycle := range result.CyclePaths {
		result.Errors = append(result.Errors, fmt.Sprintf("method cycle detected: %v", cycle))
	}
	if len(result.DuplicateIDs) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate material ids: %v", result.DuplicateIDs))
	}
	if len(result.NegativeQtyRows) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("negative quantities on materials: %v", result.NegativeQtyRows))
	}

	return result
}

// buildAdjacencyMap creates a map of make method -> nested make methods
func (v *MethodValidator) buildAdjacencyMap(rows []*entities.MaterialRow) map[string][]string {
	adjacencyMap := make(map[string][]string)

	for _, row := range rows {
		if row.MaterialMakeMethodID == "" {
			continue
		}

		children := adjacencyMap[row.MakeMethodID]
		found := false
		for _, child := range children {
			if child == row.MaterialMakeMethodID {
				found = true
				break
			}
		}
		if !found {
			adjacencyMap[row.MakeMethodID] = append(children, row.MaterialMakeMethodID)
		}
	}

	return adjacencyMap
}

// detectCycles uses DFS to find cycles in the make method graph
func (v *MethodValidator) detectCycles(adjacencyMap map[string][]string) [][]string {
	visited := make(map[string]bool)
	recursionStack := make(map[string]bool)
	cycles := make([][]string, 0)

	// Sorted start points keep reported cycles deterministic
	starts := make([]string, 0, len(adjacencyMap))
	for parent := range adjacencyMap {
		starts = append(starts, parent)
	}
	sort.Strings(starts)

	for _, parent := range starts {
		if !visited[parent] {
			v.dfsDetectCycle(parent, adjacencyMap, visited, recursionStack, nil, &cycles)
		}
	}

	return cycles
}

func (v *MethodValidator) dfsDetectCycle(
	current string,
	adjacencyMap map[string][]string,
	visited map[string]bool,
	recursionStack map[string]bool,
	path []string,
	cycles *[][]string,
) {
	visited[current] = true
	recursionStack[current] = true
	path = append(path, current)

	for _, child := range adjacencyMap[current] {
		if !visited[child] {
			v.dfsDetectCycle(child, adjacencyMap, visited, recursionStack, path, cycles)
			continue
		}
		if !recursionStack[child] {
			continue
		}

		for i, methodID := range path {
			if methodID == child {
				cycle := make([]string, 0, len(path)-i+1)
				cycle = append(cycle, path[i:]...)
				cycle = append(cycle, child)
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	recursionStack[current] = false
}
