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

// Package align implements the batched search driver for srprism-align: the
// subsystem that partitions a read stream into batches, runs per-batch
// alignment concurrently under a bounded worker budget, and appends the
// per-batch outputs into one ordered final output.
//
// The alignment kernel itself (seeding, extension, scoring) is out of scope;
// Batch is an opaque unit of work produced by a BatchBuilder and driven by
// the Driver.
package align
