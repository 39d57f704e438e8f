// Package fileset implements the TokenList file table: the ordered list of
// source paths a translation unit's tokens are indexed into (spec §3,
// TokenList's "file table").
//
// Ingestion hands every token a small file index rather than a full path so
// that Token stays compact; diagnostics and the XML dump resolve the index
// back to a path through a Table.
package fileset

// Table is the ordered table of file paths for one TokenList.
//
// The zero Table is empty and ready to use.
type Table struct {
	paths []string
	index map[string]int
}

// Index returns the file index for path, adding it to the table if it is
// not already present. Indices are stable for the lifetime of the Table:
// once assigned, a path never changes index.
func (t *Table) Index(path string) int {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if i, ok := t.index[path]; ok {
		return i
	}
	i := len(t.paths)
	t.paths = append(t.paths, path)
	t.index[path] = i
	return i
}

// Path returns the path registered at idx, or "" if idx is out of range.
func (t *Table) Path(idx int) string {
	if idx < 0 || idx >= len(t.paths) {
		return ""
	}
	return t.paths[idx]
}

// Len returns the number of distinct paths registered so far.
func (t *Table) Len() int {
	return len(t.paths)
}

// Paths returns the table's paths in index order. The caller must not
// mutate the returned slice.
func (t *Table) Paths() []string {
	return t.paths
}
