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

package core

import (
	"slices"
	"testing"
)

func TestCoreDeterminism(t *testing.T) {
	c1 := New(Default().New(7))
	c2 := New(Default().New(7))
	for i := 0; i < 5; i++ {
		if c1.Uint32() != c2.Uint32() {
			t.Fatalf("Uint32 mismatch at %d", i)
		}
	}
	if c1.Uint64() != c2.Uint64() {
		t.Fatalf("Uint64 mismatch")
	}
	if c1.IntN(10) != c2.IntN(10) {
		t.Fatalf("IntN mismatch")
	}
	if c1.UintN(10) != c2.UintN(10) {
		t.Fatalf("UintN mismatch")
	}
}

func TestLCGRecurrence(t *testing.T) {
	// 直接對照遞推式：輸出是推進後狀態的高 32 位。
	seed := int64(12345)
	c := New(Default().New(seed))
	state := uint64(seed)*lcgMultiplier + lcgIncrement
	if got, want := c.Uint32(), uint32(state>>32); got != want {
		t.Fatalf("first draw: got %d, want %d", got, want)
	}
	state = state*lcgMultiplier + lcgIncrement
	if got, want := c.Uint32(), uint32(state>>32); got != want {
		t.Fatalf("second draw: got %d, want %d", got, want)
	}
}

func TestBoundedSampling(t *testing.T) {
	c := New(Default().New(42))
	if got := c.IntN(0); got != -1 {
		t.Fatalf("IntN(0) should return -1, got %d", got)
	}
	if got := c.UintN(0); got != 0 {
		t.Fatalf("UintN(0) should return 0, got %d", got)
	}
	for i := 0; i < 1000; i++ {
		if v := c.IntN(8); v < 0 || v >= 8 {
			t.Fatalf("IntN(8) out of range: %d", v)
		}
		if f := c.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %v", f)
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	c := New(Default().New(99))
	for i := 0; i < 3; i++ {
		c.Uint32()
	}
	snap, err := c.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	want := []uint32{c.Uint32(), c.Uint32(), c.Uint32()}

	if err := c.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got := []uint32{c.Uint32(), c.Uint32(), c.Uint32()}
	if !slices.Equal(want, got) {
		t.Fatalf("restore did not reproduce sequence: want %v, got %v", want, got)
	}

	if err := c.Restore([]byte{1, 2, 3}); err == nil {
		t.Fatalf("short snapshot should be rejected")
	}
}

func TestCorePickAndShuffle(t *testing.T) {
	c := New(Default().New(9))
	if got := c.Pick(nil); got != -1 {
		t.Fatalf("expected -1 for empty pick, got %d", got)
	}

	src := []int{1, 2, 3, 4}
	c.ShuffleInts(src)
	if len(src) != 4 {
		t.Fatalf("unexpected length after shuffle")
	}
	want := []int{1, 2, 3, 4}
	got := slices.Clone(src)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		t.Fatalf("shuffle changed elements: %v", src)
	}
}
