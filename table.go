// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package expa

import "github.com/bpowers/expa/internal/index"

// Table is one named, typed collection of rows.
type Table struct {
	Name      string
	Structure Structure
	Rows      []Row
}

// TableFile is the top-level logical value a read produces and a write
// consumes: an ordered list of tables.
type TableFile struct {
	Tables []Table

	dirBuilt bool
	dir      *index.Directory
}

// Lookup finds a table by name. Beyond the small handful of tables a typical
// container holds, this is the supplemented feature described for
// TableFile: an in-memory minimal perfect hash directory (internal/index)
// built lazily on first use and cached for the life of the TableFile, so
// repeated lookups on a wide container don't pay for a linear scan each
// time. The directory is advisory -- its candidate index is always
// confirmed against the stored name before being trusted, so duplicate
// names or build failures fall back to a correct (if slower) linear scan.
func (tf *TableFile) Lookup(name string) (*Table, bool) {
	if !tf.dirBuilt {
		tf.buildDirectory()
	}

	if tf.dir != nil {
		if i, ok := tf.dir.Lookup(name); ok && i >= 0 && i < len(tf.Tables) && tf.Tables[i].Name == name {
			return &tf.Tables[i], true
		}
	}

	for i := range tf.Tables {
		if tf.Tables[i].Name == name {
			return &tf.Tables[i], true
		}
	}
	return nil, false
}

func (tf *TableFile) buildDirectory() {
	tf.dirBuilt = true
	names := make([]string, len(tf.Tables))
	for i, t := range tf.Tables {
		names[i] = t.Name
	}
	dir, err := index.Build(names)
	if err != nil {
		// duplicate table names: Lookup falls back to a linear scan.
		return
	}
	tf.dir = dir
}
