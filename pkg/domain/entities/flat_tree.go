package entities

// FlatTreeItem is one element of a pre-order flattened tree. Level is the
// zero-based depth below the synthetic root.
type FlatTreeItem[T any] struct {
	Data  T   `json:"data"`
	Level int `json:"level"`
}
