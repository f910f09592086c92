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

// Package cases provides functions for inter-converting between different
// case styles.
package cases

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CamelCase converts snake_case field names to camelCase. The first rune is
// kept as is, and every underscore followed by a lowercase ASCII letter is
// replaced by that letter in uppercase. Other underscores are kept.
func CamelCase(str string) string {
	if str == "" {
		return str
	}
	_, sz := utf8.DecodeRuneInString(str)
	buf := new(strings.Builder)
	buf.Grow(len(str))
	buf.WriteString(str[:sz])
	rest := str[sz:]
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c == '_' && i+1 < len(rest) && rest[i+1] >= 'a' && rest[i+1] <= 'z' {
			buf.WriteByte(rest[i+1] - 'a' + 'A')
			i++
			continue
		}
		buf.WriteByte(c)
	}
	return buf.String()
}

// JSONName computes the default JSON name of a field the way protoc does:
// underscores are dropped and the letter after each one is uppercased.
func JSONName(str string) string {
	buf := new(strings.Builder)
	buf.Grow(len(str))
	upper := false
	for _, r := range str {
		if r == '_' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r = unicode.ToUpper(r)
		}
		upper = false
		buf.WriteRune(r)
	}
	return buf.String()
}

// LowerFirst lowercases the first rune of str.
func LowerFirst(str string) string {
	return mapFirst(str, unicode.ToLower)
}

// UpperFirst uppercases the first rune of str.
func UpperFirst(str string) string {
	return mapFirst(str, unicode.ToUpper)
}

func mapFirst(str string, fn func(rune) rune) string {
	r, sz := utf8.DecodeRuneInString(str)
	if sz == 0 {
		return str
	}
	return string(fn(r)) + str[sz:]
}
