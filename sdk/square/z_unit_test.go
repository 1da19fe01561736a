// Copyright 2026 Zintix Labs
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

package square

import "testing"

func TestMagicConstant(t *testing.T) {
	cases := []struct {
		n    int
		want int64
	}{
		{1, 1},
		{3, 15},
		{4, 34},
		{5, 65},
		{6, 111},
		{10, 505},
		{1000, 500000500},
	}
	for _, c := range cases {
		if got := MagicConstant(c.n); got != c.want {
			t.Fatalf("MagicConstant(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestNewAndAt(t *testing.T) {
	s := New(3)
	if s.Order != 3 || len(s.Cells) != 9 {
		t.Fatalf("unexpected shape: order=%d len=%d", s.Order, len(s.Cells))
	}
	s.Cells[1*3+2] = 7
	if s.At(1, 2) != 7 {
		t.Fatalf("At(1,2) = %d, want 7", s.At(1, 2))
	}
	if s.Magic() != 15 {
		t.Fatalf("Magic() = %d, want 15", s.Magic())
	}
}

func TestFingerprint(t *testing.T) {
	a := &Square{Order: 3, Cells: []uint32{8, 1, 6, 3, 5, 7, 4, 9, 2}}
	b := &Square{Order: 3, Cells: []uint32{8, 1, 6, 3, 5, 7, 4, 9, 2}}
	c := &Square{Order: 3, Cells: []uint32{6, 1, 8, 7, 5, 3, 2, 9, 4}}

	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("equal cells should share a fingerprint")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatalf("different variants should differ")
	}
}
