package comment

import (
	"collaborative-presentation-server/internal/domain"
	"sort"
)

// BuildForest reconstructs the comment forest from a flat comment set,
// purely from ParentCommentID links. It never mutates its input and is
// deterministic for a given set, so every reader derives the same view.
// When slideID is non-nil only threads rooted on that slide are returned;
// replies follow their root regardless of their own slide field. Comments
// whose parent is missing from the set are skipped rather than promoted
// to roots.
func BuildForest(comments []domain.Comment, slideID *string) []*domain.CommentNode {
	nodes := make(map[uint64]*domain.CommentNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &domain.CommentNode{Comment: c, Replies: []*domain.CommentNode{}}
	}

	roots := []*domain.CommentNode{}
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentCommentID == nil {
			if slideID != nil && (c.SlideID == nil || *c.SlideID != *slideID) {
				continue
			}
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*c.ParentCommentID]
		if !ok {
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}

	sortChronological(roots)
	return roots
}

func sortChronological(nodes []*domain.CommentNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].ID < nodes[j].ID
		}
		return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
	})
	for _, node := range nodes {
		sortChronological(node.Replies)
	}
}
