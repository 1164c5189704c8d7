package doctree

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPlacement is returned when an operation would break the
	// containment rules or create a cycle
	ErrInvalidPlacement = errors.New("invalid placement")
	// ErrUnknownNodeReference is returned for ids that are not live
	ErrUnknownNodeReference = errors.New("unknown node reference")
	// ErrSchemaMismatch is returned for unknown kinds, attribute keys or
	// values a node of that kind cannot hold
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// OpError carries the failed operation and the node it targeted
type OpError struct {
	Op     string
	NodeID NodeID
	Reason string
	Err    error
}

func (e *OpError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.NodeID, e.Err)
	if e.NodeID == "" {
		msg = fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opErr(op string, id NodeID, err error, reason string, args ...interface{}) error {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &OpError{Op: op, NodeID: id, Err: err, Reason: reason}
}
