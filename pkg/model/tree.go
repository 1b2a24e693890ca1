package model

import (
	"strconv"

	"github.com/google/uuid"
)

// IDGenerator produces node ids. Ids need only be unique within one
// ingested document.
type IDGenerator func() string

// UUIDGenerator is the default IDGenerator.
func UUIDGenerator() string {
	return uuid.NewString()
}

// SequentialIDs returns an IDGenerator yielding prefix-0, prefix-1, ...
// It is mainly useful for deterministic output and tests.
func SequentialIDs(prefix string) IDGenerator {
	next := 0
	return func() string {
		id := prefix + "-" + strconv.Itoa(next)
		next++
		return id
	}
}

// Ingest builds a Forest from raw roots using the default sizes and uuid ids.
func Ingest(raws ...RawNode) (*Forest, error) {
	return IngestWith(DefaultSizes(), UUIDGenerator, raws...)
}

// IngestWith builds a Forest from raw roots. Every node gets a fresh id
// (depth-first, pre-order), Collapsible is set from the original child
// count, and FlexSize starts at sizes.Normal.
//
// A node without a name fails the whole ingestion; an empty document yields
// an empty forest.
func IngestWith(sizes Sizes, gen IDGenerator, raws ...RawNode) (*Forest, error) {
	if gen == nil {
		gen = UUIDGenerator
	}
	roots := make([]*TreeNode, 0, len(raws))
	for i := range raws {
		node, err := ingestNode(&raws[i], []int{i}, sizes, gen)
		if err != nil {
			return nil, err
		}
		roots = append(roots, node)
	}
	return &Forest{Roots: roots, sizes: sizes}, nil
}

func ingestNode(raw *RawNode, path []int, sizes Sizes, gen IDGenerator) (*TreeNode, error) {
	if raw.Name == "" {
		return nil, &IngestError{Path: append([]int(nil), path...), Reason: "missing name"}
	}

	node := &TreeNode{
		ID:          gen(),
		Name:        raw.Name,
		Fields:      raw.Fields,
		Collapsible: len(raw.Children) > 0,
		FlexSize:    sizes.Normal,
	}
	if len(raw.Children) > 0 {
		node.Children = make([]*TreeNode, 0, len(raw.Children))
	}
	for i := range raw.Children {
		child, err := ingestNode(&raw.Children[i], append(path, i), sizes, gen)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// FindByID returns the first node carrying id in a depth-first search.
func FindByID(roots []*TreeNode, id string) (*TreeNode, bool) {
	for _, root := range roots {
		if n, ok := findNode(root, id); ok {
			return n, true
		}
	}
	return nil, false
}

func findNode(n *TreeNode, id string) (*TreeNode, bool) {
	if n == nil {
		return nil, false
	}
	if n.ID == id {
		return n, true
	}
	for _, c := range n.Children {
		if found, ok := findNode(c, id); ok {
			return found, true
		}
	}
	return nil, false
}

// SetCollapsed returns a copy of n with the collapsed flag set.
//
// The non-recursive form changes only n, so descendants keep whatever
// state they had: expanding a node reveals one level. The recursive form
// applies the flag to the whole subtree: collapsing a branch hides
// everything beneath it, and a later single-level expand shows only the
// direct children.
func SetCollapsed(n *TreeNode, collapsed, recursive bool) *TreeNode {
	if n == nil {
		return nil
	}
	c := n.clone()
	c.Collapsed = collapsed
	if recursive {
		for i, child := range c.Children {
			c.Children[i] = SetCollapsed(child, collapsed, true)
		}
	}
	return c
}

// SetDetailVisible returns a copy of n with the detail flag set and its
// FlexSize swapped to the matching footprint.
func SetDetailVisible(n *TreeNode, visible bool, sizes Sizes) *TreeNode {
	if n == nil {
		return nil
	}
	c := n.clone()
	c.DetailVisible = visible
	c.FlexSize = sizes.For(visible)
	return c
}
