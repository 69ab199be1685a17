// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package ooxml reads parts and relationships out of Office Open XML
// packages (.docx, .pptx).
package ooxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/beevik/etree"
)

// Package is an opened OOXML archive.
type Package struct {
	zr *zip.Reader
}

// Open reads an OOXML archive held in memory.
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open OOXML package: %w", err)
	}
	return &Package{zr: zr}, nil
}

func (p *Package) file(name string) *zip.File {
	name = strings.TrimPrefix(name, "/")
	for _, f := range p.zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Names lists the parts in archive order.
func (p *Package) Names() []string {
	names := make([]string, len(p.zr.File))
	for i, f := range p.zr.File {
		names[i] = f.Name
	}
	return names
}

// Has reports whether the package contains the named part.
func (p *Package) Has(name string) bool { return p.file(name) != nil }

// Read returns the bytes of the named part.
func (p *Package) Read(name string) ([]byte, error) {
	f := p.file(name)
	if f == nil {
		return nil, fmt.Errorf("%s: not found in package", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Document parses the named part as XML.
func (p *Package) Document(name string) (*etree.Document, error) {
	data, err := p.Read(name)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return doc, nil
}

// Relationship is one entry of a part's .rels file. Target is resolved to a
// package path unless the relationship is external.
type Relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

// External reports whether Target points outside the package.
func (r Relationship) External() bool { return strings.EqualFold(r.TargetMode, "External") }

// Relationships returns the relationships of part keyed by ID. A part
// without a .rels file has none.
func (p *Package) Relationships(part string) map[string]Relationship {
	rels := make(map[string]Relationship)
	doc, err := p.Document(RelsPath(part))
	if err != nil {
		return rels
	}
	for _, el := range doc.FindElements("//Relationship") {
		r := Relationship{
			ID:         el.SelectAttrValue("Id", ""),
			Type:       el.SelectAttrValue("Type", ""),
			Target:     el.SelectAttrValue("Target", ""),
			TargetMode: el.SelectAttrValue("TargetMode", ""),
		}
		if !r.External() {
			r.Target = Resolve(part, r.Target)
		}
		rels[r.ID] = r
	}
	return rels
}

// RelsPath returns the .rels path that describes part.
func RelsPath(part string) string {
	dir, base := path.Split(part)
	return dir + "_rels/" + base + ".rels"
}

// Resolve resolves a relationship target against the part that owns it.
func Resolve(part, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(part), target)
}
