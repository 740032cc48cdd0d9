// Package graph implements the node graph that composites a document.
//
// A Graph is an arena of Nodes connected output-to-input. Evaluation is per
// chunk: given a frame, a chunk position and a resolution, nodes upstream of
// the output run in topological order and the output node's image is the
// composited chunk.
//
// # Loops
//
// A RepeatStart/RepeatEnd pair marks a loop region: the nodes reachable
// forward from the start and backward from the end. The region is metadata
// computed from the graph; the graph itself stays acyclic. During
// evaluation the end node runs its region Count times, feeding the value
// reaching the end back into the start. When regions nest, a node belongs
// to the innermost region containing it.
//
// # Disposal
//
// Images can be disposed while a render is in flight. Evaluate reports that
// as an empty ChunkResult rather than an error.
package graph
