// Package transform implements document steps: atomic, invertible,
// position-mapped edits of a model.Node tree.
//
// # Steps
//
// A Step applies to the document it was created for. Applying it yields a
// Result carrying either the new document or the reason the step no longer
// fits. Every step can:
//   - produce its inverse, for undo
//   - describe how it moves positions (GetMap), so that other positions
//     can be translated across it
//   - rebase itself through a Mapping produced by other steps (Map)
//
// # Mapping
//
// A StepMap is a list of independent (start, oldSize, newSize) ranges.
// A Mapping chains several StepMaps. Positions are mapped with an
// association: AssocBefore keeps a position with the content before it,
// AssocAfter with the content after it. Mirrored map pairs (a step and
// its inverse) let positions inside deleted content be recovered.
//
// # Serialization
//
// Steps encode to JSON objects tagged with "stepType". Step types register
// a decoder with RegisterStep; StepFromJSON dispatches on the tag.
package transform
