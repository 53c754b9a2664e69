package diary

import "fmt"

// DuplicateItemError is returned when an item label is already in use.
type DuplicateItemError struct {
	Label string
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("item %q already exists", e.Label)
}

// BlankLabelError is returned when an item label is empty after trimming.
type BlankLabelError struct{}

func (e *BlankLabelError) Error() string {
	return "item label cannot be blank"
}

// PreconditionError is the panic value raised when a caller passes a day or
// item index that the record never produced.
type PreconditionError struct {
	Op    string
	Index int
	Limit int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0,%d)", e.Op, e.Index, e.Limit)
}

func checkIndex(op string, index, limit int) {
	if index < 0 || index >= limit {
		panic(&PreconditionError{Op: op, Index: index, Limit: limit})
	}
}
