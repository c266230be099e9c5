// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package index holds the minimal, read-only subject (reference) dictionary
// and subject-id map a BatchSeed shares across workers. Building the actual
// seed/k-mer search index from an on-disk index base path is the alignment
// kernel's concern and is out of scope here; Store only models the
// reference-name/length dictionary every alignment output needs regardless
// of kernel internals, the same dictionary encoding/bam and
// encoding/bamprovider already carry as a *sam.Header.
package index

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// Store is a read-only dictionary of subject (reference) names and
// lengths. It is immutable after construction and safe to share across
// goroutines without synchronization.
type Store struct {
	names []string
	lens  []int
}

// NewStore builds a Store from a BAM/SAM header's reference dictionary.
func NewStore(header *sam.Header) *Store {
	refs := header.Refs()
	s := &Store{
		names: make([]string, len(refs)),
		lens:  make([]int, len(refs)),
	}
	for i, ref := range refs {
		s.names[i] = ref.Name()
		s.lens[i] = ref.Len()
	}
	return s
}

// NumSubjects returns the number of subjects (references) in the index.
func (s *Store) NumSubjects() int { return len(s.names) }

// Name returns the name of subject id i.
func (s *Store) Name(i int) (string, error) {
	if i < 0 || i >= len(s.names) {
		return "", errors.E("index: subject id out of range", i)
	}
	return s.names[i], nil
}

// Len returns the length, in bases, of subject id i.
func (s *Store) Len(i int) (int, error) {
	if i < 0 || i >= len(s.lens) {
		return 0, errors.E("index: subject id out of range", i)
	}
	return s.lens[i], nil
}
