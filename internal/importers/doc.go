// Package importers turns a parsed IPC-2581 document into a stored board graph.
//
// # Pipeline
//
// One call to Importer.Import is one database transaction:
//
//	duplicate-board guard → layers → board (+outline) → packages + pins
//	  → components (placement, then BOM) → nets (netlist, then pad stacks)
//	  → net-pins (netlist, then pad stacks) → routing geometry → commit
//
// The same entity is often described more than once in a document. Each of
// these cases is handled as two ordered passes into one insert-if-absent keyed
// by natural name, and the first writer wins:
//
//   - components come from <Component> placements, then <BomItem><RefDes>
//   - nets come from <LogicalNet>, then from <PadStack net="...">
//   - net-pins come from <LogicalNet> pin references, then from pad stacks
//
// # Skip versus abort
//
// References that cannot be resolved (unknown package, component, pin, net or
// layer) are skipped and reported in Result.Diagnostics. Storage failures and
// unparsable numbers abort the whole import and roll back; they are returned
// as *PhaseError naming the phase that failed. A board whose name already
// exists yields ErrBoardExists and writes nothing.
//
// # Example Usage
//
//	importer := importers.NewImporter(importers.NewRepositoryStore(boards.NewRepository(db)), log)
//	result, err := importer.ImportFile(ctx, "board.cvg")
//	if errors.Is(err, importers.ErrBoardExists) {
//		// already imported
//	}
package importers
