package core

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a process-generated opaque identifier with a type prefix,
// e.g. "txn_5f4e…". IDs are unique within their collection.
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
