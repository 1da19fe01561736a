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

package buf

// Scratch 保存生成過程需要的暫存空間，跨呼叫重用以避免重複配置。
//
// 語意（重要）：
//   - Scratch 內容只在「單次生成呼叫」內有效，每次 Grow 都會整塊歸零/重寫。
//   - 最終交付的 Square cells 永遠是新配置的，不會指進 Scratch；
//     因此 Forge 重用 Scratch 不影響「結果所有權整塊移交」的合約。
//   - 同一個 Scratch 不可被多 goroutine 同時使用（與 Forge 同壽命、同鎖）。
type Scratch struct {
	base  []uint32 // LUX 用的奇數階底方陣（m×m）
	truth []bool   // 偶倍四階的 truth grid（n×n）
	lux   []byte   // LUX 字母樣板（m×m）
}

// GrowBase 回傳長度 m*m、已歸零的底方陣暫存。
func (s *Scratch) GrowBase(m int) []uint32 {
	need := m * m
	if cap(s.base) < need {
		s.base = make([]uint32, need)
	}
	s.base = s.base[:need]
	for i := range s.base {
		s.base[i] = 0
	}
	return s.base
}

// GrowTruth 回傳長度 n*n 的 truth grid 暫存，內容由呼叫端整塊重寫。
func (s *Scratch) GrowTruth(n int) []bool {
	need := n * n
	if cap(s.truth) < need {
		s.truth = make([]bool, need)
	}
	s.truth = s.truth[:need]
	return s.truth
}

// GrowLux 回傳長度 m*m 的字母樣板暫存，內容由呼叫端整塊重寫。
func (s *Scratch) GrowLux(m int) []byte {
	need := m * m
	if cap(s.lux) < need {
		s.lux = make([]byte, need)
	}
	s.lux = s.lux[:need]
	return s.lux
}
