package repositories

import (
	"context"
	"errors"

	"github.com/vsinha/methodtree/pkg/domain/entities"
)

var (
	// ErrMethodNotFound is returned when a make method has no rows in a domain
	ErrMethodNotFound = errors.New("make method not found")

	// ErrUnknownDomain is returned for a domain outside item, job and quote
	ErrUnknownDomain = errors.New("unknown method domain")
)

// MethodRepository provides access to the method rows of the item, job and
// quote domains. Rows come back in storage order; callers sort by Order.
type MethodRepository interface {
	// GetMaterials returns the materials owned directly by a make method
	GetMaterials(ctx context.Context, domain entities.MethodDomain, makeMethodID string) ([]*entities.MaterialRow, error)

	// GetOperations returns the operations attached to a make method
	GetOperations(ctx context.Context, domain entities.MethodDomain, makeMethodID string) ([]*entities.OperationRow, error)

	// GetAllMaterials returns every material row of a domain
	GetAllMaterials(ctx context.Context, domain entities.MethodDomain) ([]*entities.MaterialRow, error)

	// HasMakeMethod reports whether any material or operation references makeMethodID
	HasMakeMethod(ctx context.Context, domain entities.MethodDomain, makeMethodID string) (bool, error)

	// LoadMaterials stores rows in order. A row whose id is already stored
	// replaces it in place; rows sharing an id within one call are all kept.
	LoadMaterials(ctx context.Context, domain entities.MethodDomain, rows []*entities.MaterialRow) error
	LoadOperations(ctx context.Context, domain entities.MethodDomain, rows []*entities.OperationRow) error
}
