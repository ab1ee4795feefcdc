package refs

import (
	"context"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/id"
)

// ThreadNode is the slice of a comment the thread walk needs.
type ThreadNode struct {
	ID         id.ID
	ParentType string
	ParentID   id.ID
}

// ThreadFetcher loads a live comment's thread node by ID.
// Returns nil (no error) when no live comment exists.
type ThreadFetcher func(ctx context.Context, commentID id.ID) (*ThreadNode, error)

// ValidateThread walks upward from the candidate parent comment, computing
// the depth the new reply would land at and detecting cycles. One traversal
// per write; no repeated round-trips. parentID is the comment the new reply
// attaches to.
func ValidateThread(ctx context.Context, fetch ThreadFetcher, parentID id.ID) error {
	visited := make(map[id.ID]struct{})
	depth := 1 // the new reply itself

	current := parentID
	for {
		if _, seen := visited[current]; seen {
			return apperror.NewReferentialIntegrity("parentId", "comment thread contains a cycle").
				WithDetail("id", current)
		}
		visited[current] = struct{}{}

		node, err := fetch(ctx, current)
		if err != nil {
			return err
		}
		if node == nil {
			return apperror.NewReferentialIntegrity("parentId", "parent comment does not exist or is deleted").
				WithDetail("id", current)
		}

		depth++
		if depth > MaxThreadDepth {
			return apperror.NewReferentialIntegrity("parentId", "comment thread exceeds maximum depth").
				WithDetail("maxDepth", MaxThreadDepth)
		}

		if node.ParentType != "comment" {
			return nil // reached the thread root (task or activity)
		}
		current = node.ParentID
	}
}
