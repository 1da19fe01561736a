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

package verify

import (
	"slices"
	"testing"
)

// 經典三階魔方陣（De La Loubère 起手）
var lo3 = []uint32{
	8, 1, 6,
	3, 5, 7,
	4, 9, 2,
}

// Dürer 的四階魔方陣（Melencolia I, 1514）
var durer4 = []uint32{
	16, 3, 2, 13,
	5, 10, 11, 8,
	9, 6, 7, 12,
	4, 15, 14, 1,
}

func TestCheckKnownSquares(t *testing.T) {
	v := New()
	if !v.Check(1, []uint32{1}) {
		t.Fatalf("order 1 should pass")
	}
	if !v.Check(3, lo3) {
		t.Fatalf("canonical order 3 should pass")
	}
	if !v.Check(4, durer4) {
		t.Fatalf("durer order 4 should pass")
	}
}

func TestCheckShortCircuits(t *testing.T) {
	v := New()

	// 長度不符：正常 false
	if v.Check(3, lo3[:8]) {
		t.Fatalf("length mismatch should fail")
	}
	if v.Check(0, nil) {
		t.Fatalf("order 0 should fail")
	}

	// 排列破壞：重複值
	dup := slices.Clone(lo3)
	dup[0] = 1
	if v.Check(3, dup) {
		t.Fatalf("duplicate value should fail")
	}

	// 值域之外
	out := slices.Clone(lo3)
	out[0] = 10
	if v.Check(3, out) {
		t.Fatalf("out of range value should fail")
	}
	zero := slices.Clone(lo3)
	zero[0] = 0
	if v.Check(3, zero) {
		t.Fatalf("zero value should fail")
	}

	// 排列完好但列和壞掉：交換不同列的兩格
	swapped := slices.Clone(lo3)
	swapped[0], swapped[3] = swapped[3], swapped[0]
	if v.Check(3, swapped) {
		t.Fatalf("cross-row swap should fail")
	}

	// 同列交換：列和仍對，行和壞掉
	colswap := slices.Clone(lo3)
	colswap[0], colswap[1] = colswap[1], colswap[0]
	if v.Check(3, colswap) {
		t.Fatalf("in-row swap should fail on columns")
	}
}

func TestCheckIsPure(t *testing.T) {
	v := New()
	grid := slices.Clone(lo3)
	first := v.Check(3, grid)
	second := v.Check(3, grid)
	if first != second {
		t.Fatalf("check is not idempotent")
	}
	if !slices.Equal(grid, lo3) {
		t.Fatalf("check mutated the grid")
	}
}

func TestVerifierReuseAcrossOrders(t *testing.T) {
	// presence 表跨階數重用：先大後小、再大，epoch 技巧不能殘留舊狀態。
	v := New()
	if !v.Check(4, durer4) {
		t.Fatalf("order 4 should pass")
	}
	if !v.Check(3, lo3) {
		t.Fatalf("order 3 after order 4 should pass")
	}
	if !v.Check(4, durer4) {
		t.Fatalf("order 4 again should pass")
	}
	bad := slices.Clone(durer4)
	bad[0] = 5
	if v.Check(4, bad) {
		t.Fatalf("duplicate after reuse should fail")
	}
}

func TestPackageLevelCheck(t *testing.T) {
	if !Check(3, lo3) {
		t.Fatalf("package level check should pass")
	}
}
