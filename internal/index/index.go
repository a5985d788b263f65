// Copyright 2023 The bit Authors and Caleb Spare. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package index builds an in-memory minimal perfect hash directory over a
// fixed set of table names, so a parsed container with many tables can look
// one up by name in O(1) instead of scanning linearly. It's the "hash,
// displace, and compress" algorithm from
// http://cmph.sourceforge.net/papers/esa09.pdf, the same one the wider bit
// library uses to index on-disk key/value records -- here it indexes
// in-memory table positions instead, and the result is never persisted: a
// TableFile's directory is rebuilt each time a file is read.
package index

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"

	"github.com/dgryski/go-farm"

	"github.com/bpowers/expa/internal/bitset"
	"github.com/bpowers/expa/internal/unsafestring"
)

// ErrDuplicateName is returned by Build when two tables share a name; the
// directory can't distinguish between them, so callers should fall back to
// a linear scan for files where this occurs.
var ErrDuplicateName = errors.New("expa: duplicate table name")

// Directory is an immutable hash table that provides constant-time lookups
// of a table's position given its name.
type Directory struct {
	positions  []int
	level0     []uint32 // power-of-2 sized
	level0Mask uint32
	level1     []uint32 // power-of-2 sized, >= len(names)
	level1Mask uint32
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << (32 - bits.LeadingZeros32(uint32(n-1)))
}

// Build constructs a Directory mapping each of names to its index in the
// slice. names must not contain duplicates.
func Build(names []string) (*Directory, error) {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, n)
		}
		seen[n] = struct{}{}
	}

	var (
		entryLen      = len(names)
		level0        = make([]uint32, nextPow2(entryLen/4))
		level0Mask    = uint32(len(level0) - 1)
		level1        = make([]uint32, nextPow2(entryLen))
		level1Mask    = uint32(len(level1) - 1)
		sparseBuckets = make([][]int, len(level0))
	)

	positions := make([]int, entryLen)
	for i, name := range names {
		key := unsafestring.ToBytes(name)
		n := uint32(farm.Hash64WithSeed(key, 0)) & level0Mask
		sparseBuckets[n] = append(sparseBuckets[n], i)
		positions[i] = i
	}

	var buckets []bucket
	for n, vals := range sparseBuckets {
		if len(vals) > 0 {
			buckets = append(buckets, bucket{n, vals})
		}
	}
	sort.Sort(bySize(buckets))

	occ := bitset.New(int64(len(level1)))
	var tmpOcc []uint32
	for _, b := range buckets {
		seed := uint64(1)
	trySeed:
		tmpOcc = tmpOcc[:0]
		for _, i := range b.vals {
			key := unsafestring.ToBytes(names[i])
			n := uint32(farm.Hash64WithSeed(key, seed)) & level1Mask
			if occ.IsSet(int64(n)) {
				for _, n := range tmpOcc {
					occ.Clear(int64(n))
				}
				seed++
				goto trySeed
			}
			occ.Set(int64(n))
			tmpOcc = append(tmpOcc, n)
			level1[n] = uint32(i)
		}
		level0[b.n] = uint32(seed)
	}

	return &Directory{
		positions:  positions,
		level0:     level0,
		level0Mask: level0Mask,
		level1:     level1,
		level1Mask: level1Mask,
	}, nil
}

// Lookup returns the index into the original names slice for name, and
// whether name may be present. Like any perfect hash table, it does not
// store the names themselves: for a non-empty Directory, looking up a name
// that wasn't in the build set still returns some in-range position with
// ok==true. Callers that need certainty should compare the name at the
// returned position themselves, which TableFile.Lookup does.
func (d *Directory) Lookup(name string) (int, bool) {
	if d == nil || len(d.positions) == 0 {
		return 0, false
	}
	key := unsafestring.ToBytes(name)
	i0 := uint32(farm.Hash64WithSeed(key, 0)) & d.level0Mask
	seed := uint64(d.level0[i0])
	i1 := uint32(farm.Hash64WithSeed(key, seed)) & d.level1Mask
	n := d.level1[i1]
	if int(n) >= len(d.positions) {
		return 0, false
	}
	return d.positions[n], true
}

type bucket struct {
	n    int
	vals []int
}

type bySize []bucket

func (s bySize) Len() int           { return len(s) }
func (s bySize) Less(i, j int) bool { return len(s[i].vals) > len(s[j].vals) }
func (s bySize) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
