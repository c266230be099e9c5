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

package main

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/bio/encoding/fasta"
	"github.com/grailbio/hts/sam"
)

// loadSubjectDict builds the reference-name/length dictionary an
// align/index.Store needs from the reference FASTA alongside the index
// base path (indexPath + ".fa"). Building the actual seed/k-mer search
// structure from the index base path is the alignment kernel's concern and
// is out of scope here.
func loadSubjectDict(ctx context.Context, indexPath string) (header *sam.Header, err error) {
	fastaPath := indexPath + ".fa"
	in, err := file.Open(ctx, fastaPath)
	if err != nil {
		return nil, errors.E(err, "failed to open reference dictionary", fastaPath)
	}
	defer file.CloseAndReport(ctx, in, &err)
	data, err := fasta.New(in.Reader(ctx))
	if err != nil {
		return nil, errors.E(err, "failed to parse reference dictionary", fastaPath)
	}
	names := data.SeqNames()
	refs := make([]*sam.Reference, len(names))
	for i, name := range names {
		length, lenErr := data.Len(name)
		if lenErr != nil {
			return nil, errors.E(lenErr, "failed to measure reference sequence", name)
		}
		ref, refErr := sam.NewReference(name, "", "", int(length), nil, nil)
		if refErr != nil {
			return nil, errors.E(refErr, "failed to register reference sequence", name)
		}
		refs[i] = ref
	}
	header, err = sam.NewHeader(nil, refs)
	if err != nil {
		return nil, errors.E(err, "failed to build reference dictionary header")
	}
	return header, nil
}
