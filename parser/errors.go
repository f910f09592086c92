// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

import "errors"

// ErrNoSyntax is a sentinel error that may be passed to a warning reporter.
// The error the reporter receives will be wrapped with source position that
// indicates the file that had no syntax statement.
var ErrNoSyntax = errors.New("no syntax specified; defaulting to proto2 syntax")

// ErrRequiredInProto3 is passed to a warning reporter for each required
// field in a proto3 file. Such fields are accepted.
var ErrRequiredInProto3 = errors.New("required fields are not allowed in proto3")

var (
	// ErrInvalidSyntax is the underlying error of a *reporter.SemanticError
	// for a syntax statement naming neither proto2 nor proto3.
	ErrInvalidSyntax = errors.New("invalid syntax version")
	// ErrDuplicatePackage is the underlying error of a
	// *reporter.SemanticError for a second package statement.
	ErrDuplicatePackage = errors.New("package is already declared")
)
