// Package model provides the immutable document tree used by the table
// editing engine.
//
// A document is a tree of Nodes. Every node has a NodeType (taken from a
// Schema), an attribute set, and either a Fragment of child nodes or, for
// text nodes, a string. Nodes are never modified in place; every edit
// produces a new tree that shares unchanged subtrees with the old one.
//
// # Positions
//
// Positions are integer offsets into a flattened token stream of the tree:
//   - entering or leaving a non-leaf node counts as one token
//   - a leaf node counts as one token
//   - each rune of text counts as one token
//
// So a node's size is 1 for leaves, the rune count for text, and
// content size + 2 otherwise. Node.Resolve turns an offset into a
// ResolvedPos which exposes the ancestor path of the offset.
//
// # Content Expressions
//
// NodeSpec.Content uses a small expression language:
//
//	paragraph+                        one or more paragraphs
//	block*                            any number of nodes from group "block"
//	table_row[columns=.columns]+      rows whose "columns" attr equals the parent's
//	table_cell{.columns}              exactly parent.columns cells
//	heading{2}                        exactly two headings
//
// The expressions drive both validation (Node.Check) and
// NodeType.CreateAndFill.
package model
