// Copyright 2025 Advanced Micro Devices, Inc.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//       http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package baseutils

import (
	"strings"
	"testing"
)

func TestMakeRFC1123Compliant(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Alice.Smith@example.com", "alice.smith-example.com"},
		{"system user", "system-user"},
		{"--already--messy..", "already-messy"},
		{strings.Repeat("a", 100), strings.Repeat("a", 63)},
		{"UPPER", "upper"},
	}
	for _, test := range tests {
		if got := MakeRFC1123Compliant(test.input); got != test.expected {
			t.Errorf("MakeRFC1123Compliant(%q) = %q, want %q", test.input, got, test.expected)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc" {
		t.Errorf("Truncate() = %q, want %q", got, "abc")
	}
	if got := Truncate("ab", 3); got != "ab" {
		t.Errorf("Truncate() = %q, want %q", got, "ab")
	}
}

func TestValueOrDefault(t *testing.T) {
	if got := ValueOrDefault[int](nil); got != 0 {
		t.Errorf("ValueOrDefault(nil) = %d, want 0", got)
	}
	if got := ValueOrDefault(Pointer(int32(5))); got != 5 {
		t.Errorf("ValueOrDefault(&5) = %d, want 5", got)
	}
}
