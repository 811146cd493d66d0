// Package io reads and writes chart datasets and change batches.
//
// # Dataset Format
//
// A dataset is an array of flat node objects, the node data array of a tree
// model. One property holds the key, another the key of the parent; every
// other property is an attribute:
//
//	[
//	  {"key": 0, "name": "Ban Ki-moon", "title": "Secretary-General"},
//	  {"key": 1, "boss": 0, "name": "Patricia O'Brien", "nation": "Ireland"}
//	]
//
// The property names come from [Properties] and default to "key" and "boss".
// Keys may be numbers or strings; 1 and "1" are different keys. A missing,
// null, or empty parent makes the record a root. Attribute values must be
// scalars and are stored as strings.
//
// A saved model object with a "nodeDataArray" member is accepted as well. Its
// "nodeParentKeyProperty" and "nodeKeyProperty" members, when present,
// override the configured property names:
//
//	{"class": "TreeModel", "nodeParentKeyProperty": "boss", "nodeDataArray": [...]}
//
// The same structure is accepted in YAML.
//
// # Import and Export
//
// [ReadJSON] and [ReadYAML] decode from any io.Reader and check the forest
// invariant: unique keys and no reporting cycles. [ImportFile] picks the
// decoder from the file extension. [WriteJSON], [WriteYAML], and [ExportFile]
// are their inverses.
//
// # Batch Format
//
// A change batch uses the incremental data names of the diagram model:
//
//	{
//	  "modifiedNodeData": [{"key": 1, "boss": 0, "name": "B2"}],
//	  "insertedNodeKeys": [],
//	  "removedNodeKeys": [3]
//	}
//
// Use [ReadBatch] and [WriteBatch]. Batches are not validated against any
// dataset; unresolved keys are reported when the batch is applied.
package io
