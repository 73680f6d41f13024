package service

import "github.com/nimbusfeed/socialmesh/internal/userinteraction/domain"

// reconstructTree rebuilds the nested reply tree from a flat list: group
// by parent id; any reply whose parent isn't in the returned set becomes
// a top-level node; each top-level node recurses, attaching children in
// creation order. O(n) via a hash index over ids.
func reconstructTree(flat []domain.Reply) ([]*domain.ReplyTree, map[string]*domain.ReplyTree) {
	byID := make(map[string]*domain.ReplyTree, len(flat))
	childrenOf := make(map[string][]*domain.ReplyTree, len(flat))

	for _, r := range flat {
		node := &domain.ReplyTree{Reply: r}
		byID[r.ID] = node
	}

	var roots []*domain.ReplyTree
	for _, r := range flat {
		node := byID[r.ID]
		if parent, ok := byID[r.ParentID]; ok {
			childrenOf[parent.ID] = append(childrenOf[parent.ID], node)
		} else {
			roots = append(roots, node)
		}
	}

	var attach func(*domain.ReplyTree)
	attach = func(node *domain.ReplyTree) {
		node.Children = childrenOf[node.ID]
		for _, child := range node.Children {
			attach(child)
		}
	}
	for _, root := range roots {
		attach(root)
	}

	return roots, byID
}
