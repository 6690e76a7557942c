/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists board layouts. It defines the versioned JSON
// wire document, the merge policy against the caller's default layout, and
// interchangeable byte stores (file with atomic writes and backups,
// SQLite, Postgres) all keyed by one fixed layout key. Persistence fails
// closed: a corrupt or mismatched document falls back to defaults and is
// logged, never surfaced as a user error.
package storage
