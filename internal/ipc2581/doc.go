// Package ipc2581 reads IPC-2581 design-exchange documents.
//
// A document is decoded into a generic element tree (Node) that keeps every
// element, attribute and child in document order. Typed views on Document
// (Layers, Packages, Components, LogicalNets, PadStacks, ...) pick out the
// structures the board importer needs without committing to the full schema.
//
// Element lookups match on local names only, so documents that use the
// IPC-2581 default namespace, a prefixed namespace, or no namespace at all are
// read the same way.
package ipc2581
