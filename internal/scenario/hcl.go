package scenario

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// fileRoot mirrors the top-level blocks of a scenario file. The schema
// is closed: unknown blocks or attributes fail decoding.
type fileRoot struct {
	Name     string          `hcl:"name,optional"`
	Stations []*stationBlock `hcl:"station,block"`
	Lines    []*lineBlock    `hcl:"line,block"`
	Trains   []*trainBlock   `hcl:"train,block"`
	Packages []*packageBlock `hcl:"package,block"`
}

type stationBlock struct {
	Name string `hcl:"name,label"`
}

type lineBlock struct {
	Name     string `hcl:"name,label"`
	From     string `hcl:"from"`
	To       string `hcl:"to"`
	Duration int    `hcl:"duration"`
}

type trainBlock struct {
	Name     string `hcl:"name,label"`
	Capacity int    `hcl:"capacity"`
	At       string `hcl:"at"`
}

type packageBlock struct {
	Name   string `hcl:"name,label"`
	Weight int    `hcl:"weight"`
	From   string `hcl:"from"`
	To     string `hcl:"to"`
}

// LoadHCL reads a scenario file:
//
//	station "A" {}
//	line "E1" {
//	  from     = "A"
//	  to       = "B"
//	  duration = 30
//	}
//	train "Q1" {
//	  capacity = 6
//	  at       = "B"
//	}
//	package "K1" {
//	  weight = 5
//	  from   = "A"
//	  to     = "C"
//	}
func LoadHCL(path string) (*Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(path, file)
}

// ParseHCL decodes a scenario from source held in memory; filename is
// only used in diagnostics.
func ParseHCL(src []byte, filename string) (*Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(filename, file)
}

func decode(path string, file *hcl.File) (*Scenario, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	s := &Scenario{Name: root.Name}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	for _, b := range root.Stations {
		s.Stations = append(s.Stations, b.Name)
	}
	for _, b := range root.Lines {
		s.Lines = append(s.Lines, Line{Name: b.Name, From: b.From, To: b.To, Duration: b.Duration})
	}
	for _, b := range root.Trains {
		s.Trains = append(s.Trains, Train{Name: b.Name, Capacity: b.Capacity, Start: b.At})
	}
	for _, b := range root.Packages {
		s.Packages = append(s.Packages, Package{Name: b.Name, Weight: b.Weight, From: b.From, To: b.To})
	}
	return s, nil
}
