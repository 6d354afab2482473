package product

import (
	"sort"

	"github.com/mweidner/product-inventory-backend/pkg/db/models"
	"github.com/mweidner/product-inventory-backend/pkg/enums"
	pkgerrors "github.com/mweidner/product-inventory-backend/pkg/errors"
)

// refIdent returns the ident of the product an edge points at. Edges arriving
// from the API carry a stub ProductRef holding only the ident.
func refIdent(rel models.ProductRelationship) string {
	if rel.ProductRef == nil {
		return ""
	}
	return rel.ProductRef.Ident
}

// resolveRelationships rebinds the product's outgoing edges against the
// referenced products loaded for this request. An empty referenced set clears
// all edges. Every edge must resolve; unresolved idents fail the whole call.
func resolveRelationships(product *models.Product, referenced []*models.Product) error {
	if len(product.Relationships) == 0 {
		return nil
	}
	if len(referenced) == 0 {
		product.Relationships = nil
		return nil
	}

	byIdent := make(map[string]*models.Product, len(referenced))
	for _, ref := range referenced {
		byIdent[ref.Ident] = ref
	}

	resolved := make([]models.ProductRelationship, 0, len(product.Relationships))
	var missing []string
	for _, rel := range product.Relationships {
		ident := refIdent(rel)
		target, ok := byIdent[ident]
		if !ok {
			missing = append(missing, ident)
			continue
		}
		rel.ProductID = product.ID
		rel.ProductRefID = target.ID
		rel.ProductRef = target
		resolved = append(resolved, rel)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return pkgerrors.ProductsNotFound(missing)
	}

	product.Relationships = resolved
	return nil
}

// hasRootRelationship reports whether the product already carries an edge
// back to its tree root.
func hasRootRelationship(product *models.Product) bool {
	for _, rel := range product.Relationships {
		if rel.RelationshipType == enums.RelationshipTypeRoot {
			return true
		}
	}
	return false
}

// propagateRootReference walks the ownership tree below root and makes sure
// every reachable product carries a root edge back to it. Nodes already
// holding a root edge keep it, so repeated propagation is a no-op. A node
// reached twice means the edges form a cycle and the walk fails.
func propagateRootReference(root *models.Product) error {
	visited := make(map[string]struct{})
	stack := []*models.Product{root}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[node.Ident]; seen {
			return pkgerrors.CyclicRelationshipDetected(node.Ident)
		}
		visited[node.Ident] = struct{}{}

		if node.Ident != root.Ident && !hasRootRelationship(node) {
			node.Relationships = append(node.Relationships, models.ProductRelationship{
				ProductID:        node.ID,
				RelationshipType: enums.RelationshipTypeRoot,
				ProductRefID:     root.ID,
				ProductRef:       root,
			})
		}

		for i := len(node.Relationships) - 1; i >= 0; i-- {
			rel := node.Relationships[i]
			if rel.RelationshipType == enums.RelationshipTypeRoot || rel.ProductRef == nil {
				continue
			}
			stack = append(stack, rel.ProductRef)
		}
	}
	return nil
}

// bundledChildren returns the products hanging off the node's bundled edges,
// in edge order.
func bundledChildren(node *models.Product) []*models.Product {
	var children []*models.Product
	for _, rel := range node.Relationships {
		if rel.RelationshipType != enums.RelationshipTypeBundled || rel.ProductRef == nil {
			continue
		}
		children = append(children, rel.ProductRef)
	}
	return children
}

// deletePlan is the ordered outcome of planning a cascading delete: products
// appear children before parents so no delete ever leaves a dangling edge.
type deletePlan struct {
	products []*models.Product
}

// buildDeletePlan computes the deletion order for the tree under product.
// Only TERMINATED products may be deleted; the cascade follows bundled edges
// depth first and emits each subtree before its parent. Revisiting a node
// means the edges form a cycle and planning fails.
func buildDeletePlan(product *models.Product) (*deletePlan, error) {
	if product.Status != enums.ProductStatusTerminated {
		return nil, pkgerrors.InvalidProductDeleteStatus(product.Status.String())
	}

	type frame struct {
		node     *models.Product
		expanded bool
	}
	plan := &deletePlan{}
	visited := make(map[string]struct{})
	stack := []frame{{node: product}}

	for len(stack) > 0 {
		idx := len(stack) - 1
		if !stack[idx].expanded {
			node := stack[idx].node
			if _, seen := visited[node.Ident]; seen {
				return nil, pkgerrors.CyclicRelationshipDetected(node.Ident)
			}
			visited[node.Ident] = struct{}{}
			stack[idx].expanded = true

			children := bundledChildren(node)
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: children[i]})
			}
			continue
		}

		node := stack[idx].node
		stack = stack[:idx]
		plan.products = append(plan.products, node)
	}
	return plan, nil
}
