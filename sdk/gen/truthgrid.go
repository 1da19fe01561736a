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

package gen

import (
	"github.com/zintix-labs/magiclab/sdk/buf"
	"github.com/zintix-labs/magiclab/sdk/core"
)

// TruthGridGenerator 以 truth grid 法填雙偶階（n ≡ 0 mod 4）魔方陣。
//
// 作法：先按自然序 1..n² 鋪格，落在 4×4 區塊對角（r%4 == c%4 或
// r%4 + c%4 == 3）的格子取補值 n²+1−k，其餘保留原值。這個保留/取補
// 樣板本身就構成魔方陣；亂數只用來挑對稱變體，不影響正確性。
//
// 變體抽樣順序固定為 transpose、flipR、flipC（各一個 bit），共 8 種
// 等價變體；套用到目標座標時先翻轉再轉置。順序是重現性合約的一部分，
// 改動任何一處都會讓同一顆種子長出不同的方陣。
type TruthGridGenerator struct {
	core    *core.Core
	scratch *buf.Scratch
}

func (g *TruthGridGenerator) Generate(n int, cells []uint32) {
	doTranspose := g.core.Bit()
	doFlipR := g.core.Bit()
	doFlipC := g.core.Bit()

	truth := g.scratch.GrowTruth(n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			r4, c4 := r%4, c%4
			truth[r*n+c] = r4 == c4 || r4+c4 == 3
		}
	}

	nn := uint32(n * n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			val := uint32(r*n+c) + 1
			if truth[r*n+c] {
				val = nn + 1 - val
			}

			tr, tc := r, c
			if doFlipR {
				tr = n - 1 - tr
			}
			if doFlipC {
				tc = n - 1 - tc
			}
			if doTranspose {
				tr, tc = tc, tr
			}
			cells[tr*n+tc] = val
		}
	}
}
