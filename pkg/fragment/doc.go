// Package fragment defines the content cards laid out by fragmentgrid and
// their JSON file format.
//
// A [Fragment] carries text content, optional notes, tags, an optional
// reading [Direction], and visibility flags. Fragments are owned by an
// external store; the layout engine treats them as read-only input.
//
// # File Format
//
// Fragment files are JSON documents with a top-level "fragments" array:
//
//	{
//	  "fragments": [
//	    {"id": "a", "content": "hello", "tags": [{"name": "x"}]},
//	    {"id": "b", "content": "縦書き", "direction": "vertical"}
//	  ]
//	}
//
// Use [ReadFile] and [WriteFile] for files, or [Read] and [Write] for
// arbitrary readers and writers. [Validate] checks identity constraints.
package fragment
