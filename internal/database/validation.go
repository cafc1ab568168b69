package database

import (
	"fmt"
	"regexp"
)

var (
	// collectionNamePattern matches valid collection names: alphanumeric and underscore, starting with a letter
	collectionNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
)

const maxCollectionNameLength = 64

// ValidateCollectionName checks that a name is safe to use as a file name or row key
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}

	if len(name) > maxCollectionNameLength {
		return fmt.Errorf("collection name too long (max %d characters)", maxCollectionNameLength)
	}

	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("collection name must start with a letter and contain only alphanumeric characters and underscores")
	}

	return nil
}

// ParseCollection validates name and resolves it to a known collection
func ParseCollection(name string) (Collection, error) {
	if err := ValidateCollectionName(name); err != nil {
		return "", err
	}

	for _, c := range AllCollections {
		if string(c) == name {
			return c, nil
		}
	}

	return "", fmt.Errorf("unknown collection: %s", name)
}
