// Copyright 2026 Datamere Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search provides semantic retrieval over ingested datasets.
//
// The Service type implements two entry points:
//   - Plain search: embed a query, search the vector index with headroom,
//     keep the best hit per dataset, cut off below a minimum score.
//   - Conversational ask: rewrite the question against chat history,
//     retrieve context and delegate answer synthesis to the AI collaborator.
//
// Results carry the parent dataset's display fields so callers never need a
// second lookup to render them.
package search
