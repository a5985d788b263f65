// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// gen-fixtures writes a structures/ schema folder and a pair of sample
// 32-bit and 64-bit dialect EXPA files under an output directory, for
// manually exercising the reader/writer outside the unit test suite. It is
// not part of the library's API surface.
package main

import (
	crand "crypto/rand"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/bpowers/expa"
)

const (
	partyCount   = 8
	monsterCount = 64
)

func newRand() *rand.Rand {
	var seedBytes [8]byte
	if _, err := crand.Read(seedBytes[:]); err != nil {
		panic(err)
	}
	seed := int64(binary.LittleEndian.Uint64(seedBytes[:]))
	return rand.New(rand.NewSource(seed))
}

func writeSchema(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s): %w", dir, err)
	}

	index := `{
  "party\\.mbe$": "party.json",
  "monsters\\.mbe$": "monsters.json"
}`
	if err := os.WriteFile(filepath.Join(dir, "structure.json"), []byte(index), 0o644); err != nil {
		return err
	}

	party := `{
  "party": {
    "id": "int32",
    "name": "string",
    "level": "int16",
    "active": "bool"
  }
}`
	if err := os.WriteFile(filepath.Join(dir, "party.json"), []byte(party), 0o644); err != nil {
		return err
	}

	monsters := `{
  "monsters": {
    "id": "int32",
    "name": "string",
    "hp": "int32",
    "resistances": "int array"
  }
}`
	return os.WriteFile(filepath.Join(dir, "monsters.json"), []byte(monsters), 0o644)
}

func randomPartyTable(rng *rand.Rand) expa.Table {
	s := expa.Structure{Fields: []expa.StructureEntry{
		{Name: "id", Type: expa.INT32},
		{Name: "name", Type: expa.STRING},
		{Name: "level", Type: expa.INT16},
		{Name: "active", Type: expa.BOOL},
	}}
	rows := make([]expa.Row, partyCount)
	for i := range rows {
		rows[i] = expa.Row{
			expa.Int32Value(int32(i)),
			expa.StringValue(fmt.Sprintf("hero-%d", i)),
			expa.Int16Value(int16(rng.Intn(100))),
			expa.BoolValue(rng.Intn(2) == 0),
		}
	}
	return expa.Table{Name: "party", Structure: s, Rows: rows}
}

func randomMonstersTable(rng *rand.Rand) expa.Table {
	s := expa.Structure{Fields: []expa.StructureEntry{
		{Name: "id", Type: expa.INT32},
		{Name: "name", Type: expa.STRING},
		{Name: "hp", Type: expa.INT32},
		{Name: "resistances", Type: expa.INT_ARRAY},
	}}
	rows := make([]expa.Row, monsterCount)
	for i := range rows {
		resist := make([]int32, rng.Intn(4))
		for j := range resist {
			resist[j] = int32(rng.Intn(8))
		}
		rows[i] = expa.Row{
			expa.Int32Value(int32(i)),
			expa.StringValue(fmt.Sprintf("monster-%d", i)),
			expa.Int32Value(int32(rng.Intn(1000))),
			expa.IntArrayValue(resist),
		}
	}
	return expa.Table{Name: "monsters", Structure: s, Rows: rows}
}

func main() {
	outDir := flag.String("out", "testdata", "output directory for structures/ and sample .mbe files")
	flag.Parse()

	if err := writeSchema(filepath.Join(*outDir, "structures")); err != nil {
		log.Fatalf("writeSchema: %v", err)
	}

	rng := newRand()
	tf := &expa.TableFile{Tables: []expa.Table{
		randomPartyTable(rng),
		randomMonstersTable(rng),
	}}

	if err := expa.WriteExpa32(tf, filepath.Join(*outDir, "party.mbe")); err != nil {
		log.Fatalf("WriteExpa32: %v", err)
	}
	if err := expa.WriteExpa64(tf, filepath.Join(*outDir, "monsters.mbe")); err != nil {
		log.Fatalf("WriteExpa64: %v", err)
	}

	fmt.Printf("wrote fixtures under %s\n", *outDir)
}
