// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package checksum computes and verifies SHA256 checksums for grid files.
//
// The manifest sidecar records the checksum of the grid it describes so a
// reader can detect a grid that was replaced or truncated after build:
//
//	sum, err := checksum.File(gridPath)
//	...
//	if err := checksum.Verify(gridPath, manifest.Checksum); err != nil {
//	    return err
//	}
//
// Checksums are rendered as lowercase hex, the same form sha256sum prints.
package checksum
