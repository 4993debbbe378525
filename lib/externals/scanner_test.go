package externals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scanAll(sc Scanner, pending *Pending, sources ...string) []string {
	var found []string
	for _, src := range sources {
		sc.Scan(src, pending, func(c *Chunk) { found = append(found, c.Name) })
	}
	return found
}

func testChunks() []*Chunk {
	return []*Chunk{
		{Name: "button", Modules: []string{"Button"}},
		{Name: "table", Modules: []string{"Table", "TableColumn"}},
	}
}

func TestCallFormScanner(t *testing.T) {
	sc := NewScanner("main", true)
	pending := NewPending(testChunks()...)

	found := scanAll(sc, pending, `var p = require("main"); p.Button`)
	assert.Equal(t, []string{"button"}, found)
	assert.Equal(t, []string{"table"}, pending.Names())

	found = scanAll(sc, pending, `var p = require("main"); p.Table`)
	assert.Equal(t, []string{"table"}, found)
	assert.Zero(t, pending.Len())
}

func TestCallFormScannerVariants(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected []string
	}{
		{"validator property", "var lib = require(\"main\");\nlib.Validator.TableColumn(x);", []string{"table"}},
		{"esbuild interop wrapper", "\nvar import_main = __toESM(require(\"main\"));\nimport_main.Button;", []string{"button"}},
		{"const binding with single quotes", "const m = require('main');\nm.Button;", []string{"button"}},
		{"declaration order", "var p = require(\"main\");\np.Table; p.Button;", []string{"button", "table"}},
		{"other alias does not count", "var p = require(\"main\");\nq.Button;", nil},
		{"no binding", "p.Button;", nil},
		{"other library", "var p = require(\"mainly\");\np.Button;", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := scanAll(NewScanner("main", true), NewPending(testChunks()...), tt.source)
			assert.Equal(t, tt.expected, found)
		})
	}
}

func TestImportFormScanner(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected []string
	}{
		{"named imports", `import { Button, TableColumn } from "main";`, []string{"button", "table"}},
		{"default and named", "import React from 'react';\nimport Main, { Table } from 'main';", []string{"table"}},
		{"only the import list counts", "import { Button } from \"main\";\nconsole.log(Table);", []string{"button"}},
		{"multiline list", "import {\n  Button,\n} from \"main\"", []string{"button"}},
		{"other library", `import { Button } from "other";`, nil},
		{"no braces", `import * as main from "main";`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := scanAll(NewScanner("main", false), NewPending(testChunks()...), tt.source)
			assert.Equal(t, tt.expected, found)
		})
	}
}

func TestScannerEscapesNames(t *testing.T) {
	sc := NewScanner("@scope/ui.kit", false)
	pending := NewPending(&Chunk{Name: "dollar", Modules: []string{"$Button"}})

	assert.Empty(t, scanAll(sc, pending, `import { $Button } from "@scope/uiXkit";`))
	assert.Equal(t, []string{"dollar"}, scanAll(sc, pending, `import { $Button } from "@scope/ui.kit";`))
}
