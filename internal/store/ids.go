package store

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a unique identifier such as "cmp_3f2a9c01b7de"
func NewID(prefix string) string {
	if prefix == "" {
		prefix = "id"
	}
	return prefix + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}
