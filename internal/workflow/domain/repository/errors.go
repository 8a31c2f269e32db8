package repository

import "errors"

var (
	// ErrNotFound is returned when a definition or version is not found
	ErrNotFound = errors.New("workflow not found")

	// ErrOptimisticLock is returned when optimistic locking fails
	ErrOptimisticLock = errors.New("optimistic lock: workflow was modified by another process")

	// ErrDuplicateWorkflowID is returned when a definition with the same workflowId already exists
	ErrDuplicateWorkflowID = errors.New("workflow with this workflowId already exists")
)
