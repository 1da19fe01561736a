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

import "github.com/zintix-labs/magiclab/sdk/buf"

// LuxGenerator 以 Conway LUX 法填單偶階（n ≡ 2 mod 4）魔方陣。
//
// 令 m = n/2（必為奇數）、k = m/2：
//  1. 先用 Siamese 法做一張 m 階底方陣，底方陣的值決定 2×2 區塊的填入順序。
//  2. m×m 的字母樣板：第 0..k 列為 L、第 k+1 列為 U、其餘列為 X；
//     再把正中央 (k,k) 的 L 與其正下方 (k+1,k) 的 U 互換。
//  3. 每個字母決定該 2×2 區塊內 start..start+3 的走位（start = (base-1)*4 + 1）：
//
//     L:  . 1      U:  1 4      X:  1 4
//         2 3          2 3          3 2
//         4 .
//     （L 依 右上、左下、右下、左上；U 依 左上、左下、右下、右上；
//       X 依 左上、右下、左下、右上。）
//
// 字母樣板與區塊走位是此路徑唯一需要小心的地方：樣板錯一格，接縫上的
// 列/行和就會壞掉但整張圖看起來仍然合理。此樣板以六階典型解逐格驗證
// （見 z_unit_test.go），並對 10、14、18 階做性質驗證，是本倉庫的權威定義。
type LuxGenerator struct {
	odd     OddGenerator
	scratch *buf.Scratch
}

func (g *LuxGenerator) Generate(n int, cells []uint32) {
	m := n / 2
	k := m / 2

	base := g.scratch.GrowBase(m)
	g.odd.Generate(m, base)

	lux := g.scratch.GrowLux(m)
	for r := 0; r < m; r++ {
		var letter byte
		switch {
		case r <= k:
			letter = 'L'
		case r == k+1:
			letter = 'U'
		default:
			letter = 'X'
		}
		for c := 0; c < m; c++ {
			lux[r*m+c] = letter
		}
	}
	// 中央互換，否則主對角線差 ±2
	lux[k*m+k] = 'U'
	lux[(k+1)*m+k] = 'L'

	for r := 0; r < m; r++ {
		for c := 0; c < m; c++ {
			start := (base[r*m+c]-1)*4 + 1

			// 2×2 區塊在 n×n 網格內的四個角
			tl := (2 * r * n) + 2*c
			tr := tl + 1
			bl := tl + n
			br := bl + 1

			switch lux[r*m+c] {
			case 'L':
				cells[tr] = start
				cells[bl] = start + 1
				cells[br] = start + 2
				cells[tl] = start + 3
			case 'U':
				cells[tl] = start
				cells[bl] = start + 1
				cells[br] = start + 2
				cells[tr] = start + 3
			case 'X':
				cells[tl] = start
				cells[br] = start + 1
				cells[bl] = start + 2
				cells[tr] = start + 3
			}
		}
	}
}
