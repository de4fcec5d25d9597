package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/methodtree/pkg/domain/entities"
	"github.com/vsinha/methodtree/pkg/domain/repositories"
)

// domainStore holds the rows of one domain with per-make-method and per-id indexes
type domainStore struct {
	materials        []entities.MaterialRow
	materialIndexes  map[string][]int
	materialIDs      map[string][]int
	nestedMethods    map[string]int
	operations       []entities.OperationRow
	operationIndexes map[string][]int
	operationIDs     map[string][]int
}

func newDomainStore(expectedMaterials int) *domainStore {
	return &domainStore{
		materials:        make([]entities.MaterialRow, 0, expectedMaterials),
		materialIndexes:  make(map[string][]int),
		materialIDs:      make(map[string][]int),
		nestedMethods:    make(map[string]int),
		operations:       make([]entities.OperationRow, 0),
		operationIndexes: make(map[string][]int),
		operationIDs:     make(map[string][]int),
	}
}

// MethodRepository provides in-memory method row storage for all domains
type MethodRepository struct {
	mu      sync.RWMutex
	domains map[entities.MethodDomain]*domainStore
}

// NewMethodRepository creates an in-memory method repository
func NewMethodRepository(expectedMaterials int) *MethodRepository {
	domains := make(map[entities.MethodDomain]*domainStore, 3)
	for _, domain := range entities.MethodDomains() {
		domains[domain] = newDomainStore(expectedMaterials)
	}
	return &MethodRepository{domains: domains}
}

// Verify interface compliance
var _ repositories.MethodRepository = (*MethodRepository)(nil)

func (r *MethodRepository) store(domain entities.MethodDomain) (*domainStore, error) {
	s, ok := r.domains[domain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repositories.ErrUnknownDomain, domain)
	}
	return s, nil
}

// LoadMaterials loads material rows into a domain. A row whose id is already
// stored replaces the stored row in place; rows sharing an id within one load
// are all kept.
func (r *MethodRepository) LoadMaterials(ctx context.Context, domain entities.MethodDomain, rows []*entities.MaterialRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.store(domain)
	if err != nil {
		return err
	}
	s.loadMaterials(rows)
	return nil
}

// LoadOperations loads operation rows into a domain with the same replace
// rules as LoadMaterials
func (r *MethodRepository) LoadOperations(ctx context.Context, domain entities.MethodDomain, rows []*entities.OperationRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.store(domain)
	if err != nil {
		return err
	}
	s.loadOperations(rows)
	return nil
}

// AddMaterial loads a single material row into a domain
func (r *MethodRepository) AddMaterial(domain entities.MethodDomain, row entities.MaterialRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.store(domain)
	if err != nil {
		return err
	}
	s.loadMaterials([]*entities.MaterialRow{&row})
	return nil
}

// replaceable snapshots the stored indexes of each id in a batch before any
// row of the batch is written
func replaceable(stored map[string][]int, ids []string) map[string][]int {
	pending := make(map[string][]int, len(ids))
	for _, id := range ids {
		if _, ok := pending[id]; !ok {
			pending[id] = append([]int(nil), stored[id]...)
		}
	}
	return pending
}

func (s *domainStore) loadMaterials(rows []*entities.MaterialRow) {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	pending := replaceable(s.materialIDs, ids)

	for _, row := range rows {
		if queue := pending[row.ID]; len(queue) > 0 {
			pending[row.ID] = queue[1:]
			s.replaceMaterial(queue[0], *row)
			continue
		}
		s.addMaterial(*row)
	}
}

func (s *domainStore) addMaterial(row entities.MaterialRow) {
	index := len(s.materials)
	s.materials = append(s.materials, row)
	s.materialIndexes[row.MakeMethodID] = append(s.materialIndexes[row.MakeMethodID], index)
	s.materialIDs[row.ID] = append(s.materialIDs[row.ID], index)
	s.addNested(row.MaterialMakeMethodID, 1)
}

func (s *domainStore) replaceMaterial(index int, row entities.MaterialRow) {
	old := s.materials[index]
	if old.MakeMethodID != row.MakeMethodID {
		s.materialIndexes[old.MakeMethodID] = removeIndex(s.materialIndexes[old.MakeMethodID], index)
		s.materialIndexes[row.MakeMethodID] = insertIndex(s.materialIndexes[row.MakeMethodID], index)
	}
	s.addNested(old.MaterialMakeMethodID, -1)
	s.addNested(row.MaterialMakeMethodID, 1)
	s.materials[index] = row
}

func (s *domainStore) addNested(makeMethodID string, delta int) {
	if makeMethodID == "" {
		return
	}
	s.nestedMethods[makeMethodID] += delta
	if s.nestedMethods[makeMethodID] <= 0 {
		delete(s.nestedMethods, makeMethodID)
	}
}

func (s *domainStore) loadOperations(rows []*entities.OperationRow) {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	pending := replaceable(s.operationIDs, ids)

	for _, row := range rows {
		if queue := pending[row.ID]; len(queue) > 0 {
			pending[row.ID] = queue[1:]
			s.replaceOperation(queue[0], *row)
			continue
		}
		s.addOperation(*row)
	}
}

func (s *domainStore) addOperation(row entities.OperationRow) {
	index := len(s.operations)
	s.operations = append(s.operations, row)
	s.operationIndexes[row.MakeMethodID] = append(s.operationIndexes[row.MakeMethodID], index)
	s.operationIDs[row.ID] = append(s.operationIDs[row.ID], index)
}

func (s *domainStore) replaceOperation(index int, row entities.OperationRow) {
	old := s.operations[index]
	if old.MakeMethodID != row.MakeMethodID {
		s.operationIndexes[old.MakeMethodID] = removeIndex(s.operationIndexes[old.MakeMethodID], index)
		s.operationIndexes[row.MakeMethodID] = insertIndex(s.operationIndexes[row.MakeMethodID], index)
	}
	s.operations[index] = row
}

// removeIndex and insertIndex keep an index list in ascending storage order
func removeIndex(indexes []int, index int) []int {
	for i, v := range indexes {
		if v == index {
			return append(indexes[:i], indexes[i+1:]...)
		}
	}
	return indexes
}

func insertIndex(indexes []int, index int) []int {
	i := sort.SearchInts(indexes, index)
	indexes = append(indexes, 0)
	copy(indexes[i+1:], indexes[i:])
	indexes[i] = index
	return indexes
}

// GetMaterials returns the materials owned by a make method, in load order
func (r *MethodRepository) GetMaterials(ctx context.Context, domain entities.MethodDomain, makeMethodID string) ([]*entities.MaterialRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, err := r.store(domain)
	if err != nil {
		return nil, err
	}

	indexes := s.materialIndexes[makeMethodID]
	rows := make([]*entities.MaterialRow, 0, len(indexes))
	for _, index := range indexes {
		row := s.materials[index]
		rows = append(rows, &row)
	}
	return rows, nil
}

// GetOperations returns the operations attached to a make method, in load order
func (r *MethodRepository) GetOperations(ctx context.Context, domain entities.MethodDomain, makeMethodID string) ([]*entities.OperationRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, err := r.store(domain)
	if err != nil {
		return nil, err
	}

	indexes := s.operationIndexes[makeMethodID]
	rows := make([]*entities.OperationRow, 0, len(indexes))
	for _, index := range indexes {
		row := s.operations[index]
		rows = append(rows, &row)
	}
	return rows, nil
}

// GetAllMaterials returns every material row of a domain
func (r *MethodRepository) GetAllMaterials(ctx context.Context, domain entities.MethodDomain) ([]*entities.MaterialRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, err := r.store(domain)
	if err != nil {
		return nil, err
	}

	rows := make([]*entities.MaterialRow, 0, len(s.materials))
	for i := range s.materials {
		row := s.materials[i]
		rows = append(rows, &row)
	}
	return rows, nil
}

// HasMakeMethod reports whether makeMethodID owns rows or is referenced as a nested method
func (r *MethodRepository) HasMakeMethod(ctx context.Context, domain entities.MethodDomain, makeMethodID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, err := r.store(domain)
	if err != nil {
		return false, err
	}

	if len(s.materialIndexes[makeMethodID]) > 0 || len(s.operationIndexes[makeMethodID]) > 0 {
		return true, nil
	}
	return s.nestedMethods[makeMethodID] > 0, nil
}
