// Copyright 2021 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package manifest describes a composite view in YAML:
//
//	release_consumed: true
//	rate: 10MB
//	segments:
//	  - path: a.bin
//	  - path: b.bin
//	    offset: 4KB
//	    length: 1MB
//	  - path: s3://bucket/key
//
// Each segment is a local file or an S3 object, optionally narrowed to
// [offset, offset+length). Sizes take a unit suffix (B, KB, MB, ...; all
// powers of 1024, case-insensitive). The optional rate throttles reads of every segment;
// see throttleio.ParseRate for its syntax.
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/grailbio/segio/errors"
	"github.com/grailbio/segio/fileio"
	"github.com/grailbio/segio/throttleio"
	"gopkg.in/yaml.v3"
)

// Size is a byte count written with an optional unit suffix.
type Size struct{ datasize.ByteSize }

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return errors.E(errors.Invalid, fmt.Sprintf("line %d: size must be a scalar", value.Line))
	}
	text := strings.ToLower(strings.TrimSpace(value.Value))
	if err := s.ByteSize.UnmarshalText([]byte(text)); err != nil {
		return errors.E(errors.Invalid, fmt.Sprintf("line %d: size %q", value.Line, value.Value), err)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Size) MarshalYAML() (interface{}, error) {
	return s.ByteSize.String(), nil
}

// Segment is one entry of a manifest.
type Segment struct {
	// Path is a local path or an s3://bucket/key URL.
	Path string `yaml:"path"`
	// Offset is the first byte of the resource to include.
	Offset *Size `yaml:"offset,omitempty"`
	// Length is the number of bytes to include. If nil, the segment
	// extends to the end of the resource.
	Length *Size `yaml:"length,omitempty"`
}

// Bounded tells whether the segment covers part of its resource.
func (s Segment) Bounded() bool { return s.Offset != nil || s.Length != nil }

// Manifest is a parsed manifest.
type Manifest struct {
	// ReleaseConsumed closes each segment once reading moves past it.
	ReleaseConsumed bool `yaml:"release_consumed,omitempty"`
	// Rate, if set, limits the read rate of each segment.
	Rate     string    `yaml:"rate,omitempty"`
	Segments []Segment `yaml:"segments"`
}

// Parse parses and validates a manifest.
func Parse(b []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	m := new(Manifest)
	if err := dec.Decode(m); err != nil {
		if err == io.EOF {
			return nil, errors.E(errors.Invalid, "manifest: empty")
		}
		return nil, errors.E(errors.Invalid, "manifest", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads and parses a manifest from r.
func Load(r io.Reader) (*Manifest, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.E("manifest: read", err)
	}
	return Parse(b)
}

// LoadFile reads and parses the manifest at path.
func LoadFile(path string) (_ *Manifest, err error) {
	f, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer fileio.CloseAndReport(f, &err)
	return Load(f)
}

func (m *Manifest) validate() error {
	if len(m.Segments) == 0 {
		return errors.E(errors.Invalid, "manifest: no segments")
	}
	for i, s := range m.Segments {
		if s.Path == "" {
			return errors.E(errors.Invalid, fmt.Sprintf("manifest: segment %d has no path", i))
		}
		if api, _, path := fileio.SpellCorrectS3(s.Path); api == fileio.S3API {
			if _, _, ok := fileio.ParseS3(path); !ok {
				return errors.E(errors.Invalid, fmt.Sprintf("manifest: segment %d: bad S3 path %q", i, s.Path))
			}
		}
	}
	if m.Rate != "" {
		if _, err := throttleio.ParseRate(m.Rate); err != nil {
			return errors.E("manifest", err)
		}
	}
	return nil
}

// Marshal encodes m as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}

// WriteFile writes m to path.
func (m *Manifest) WriteFile(path string) error {
	b, err := m.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0666)
}
