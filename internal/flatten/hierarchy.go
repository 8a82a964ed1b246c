package flatten

import (
	"strconv"

	"github.com/mcncl/jsontab/internal/models"
)

type pendingNode struct {
	node  *models.TreeNode
	value models.Value
}

// Hierarchy builds the hierarchical view of v. Objects keep one child per key
// instead of being merged into their parent's columns, and arrays that hold
// objects become a nested table built the same way Table builds the flat
// view. Arrays without objects keep one child per item. Child keys follow
// the same key case as table columns.
func (f *Flattener) Hierarchy(v models.Value) *models.TreeNode {
	root := &models.TreeNode{}
	stack := []pendingNode{{node: root, value: v}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, value := top.node, top.value
		node.Size = value.Len()

		switch value.Kind {
		case models.Object:
			node.Kind = models.TreeObject
			node.Children = make([]*models.TreeNode, len(value.Members))
			keys := f.memberKeys(value.Members)
			for i, m := range value.Members {
				child := &models.TreeNode{Key: keys[i]}
				node.Children[i] = child
				stack = append(stack, pendingNode{node: child, value: m.Value})
			}
		case models.Array:
			if hasObject(value.Items) {
				node.Kind = models.TreeTable
				node.Table = f.Table(value)
				continue
			}
			node.Kind = models.TreeArray
			node.Children = make([]*models.TreeNode, len(value.Items))
			for i, item := range value.Items {
				child := &models.TreeNode{Key: strconv.Itoa(i)}
				node.Children[i] = child
				stack = append(stack, pendingNode{node: child, value: item})
			}
		default:
			node.Kind = models.TreeScalar
			node.Value = value
		}
	}
	return root
}

func hasObject(items []models.Value) bool {
	for _, item := range items {
		if item.Kind == models.Object {
			return true
		}
	}
	return false
}
