// Package document holds the structure of a pixel-art document: a root
// Folder of StructureMembers (Layers and Folders), each identified by a
// UUID that is unique within the document.
//
// The tree is only ever mutated by changes (package changes); everything
// in this package is plain data plus lookup helpers.
package document
