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

// Package gen 實作三條魔方陣生成路徑與階數分類器。
//
// 三條路徑對應階數的三個剩餘類：
//   - 奇數階（Siamese / De La Loubère）：純決定性，無亂數、無失敗路徑。
//   - 單偶階 n ≡ 2 (mod 4)（Conway LUX）：在 m = n/2 的奇數階底方陣上鋪 2×2 區塊。
//   - 雙偶階 n ≡ 0 (mod 4)（truth grid）：自然序列 + 對角保留/取補，亂數只挑對稱變體。
//
// 每條路徑都是 O(n²) 單次填格；正確性由構造保證，亂數從不影響正確性。
package gen

import (
	"github.com/zintix-labs/magiclab/errs"
	"github.com/zintix-labs/magiclab/sdk/buf"
	"github.com/zintix-labs/magiclab/sdk/core"
)

// Class 為階數分類結果。
type Class uint8

const (
	ClassInvalid    Class = iota // n < 1 或 n == 2（二階魔方陣不存在）
	ClassTrivial                 // n == 1，結果恆為 [1]，不經過生成器
	ClassOdd                     // n 為奇數且 n > 1
	ClassSinglyEven              // n ≡ 2 (mod 4) 且 n > 2
	ClassDoublyEven              // n ≡ 0 (mod 4)
)

var classMap = map[Class]string{
	ClassInvalid:    "invalid",
	ClassTrivial:    "trivial",
	ClassOdd:        "odd",
	ClassSinglyEven: "singly_even",
	ClassDoublyEven: "doubly_even",
}

func ClassName(c Class) string {
	if str, ok := classMap[c]; ok {
		return str
	}
	return ""
}

// Classify 依階數剩餘類路由。上限檢查（OrderTooLarge）是呼叫端策略，不在這裡。
func Classify(n int) Class {
	switch {
	case n < 1 || n == 2:
		return ClassInvalid
	case n == 1:
		return ClassTrivial
	case n%2 != 0:
		return ClassOdd
	case n%4 != 0:
		return ClassSinglyEven
	default:
		return ClassDoublyEven
	}
}

// Deterministic 回報該分類的生成路徑是否為純決定性。
// 自檢失敗時，決定性路徑重試只會重現同一個缺陷，必須立即回報；
// 只有雙偶階允許換一組變體做有限次重試。
func Deterministic(c Class) bool {
	return c != ClassDoublyEven
}

// Generator 為單一路徑的生成器。
// Generate 將 1..n² 填入 cells（長度 n*n、已歸零、row-major）；
// n 的合法性由上層分類器保證，熱路徑不再檢查。
type Generator interface {
	Generate(n int, cells []uint32)
}

// Builder 依亂數核心與暫存空間建出生成器。
// 奇數階路徑不消耗亂數，builder 簽名仍統一收 core，忽略即可。
type Builder func(c *core.Core, s *buf.Scratch) Generator

// Registry 將 Class 與 Builder 綁定。
//
// 與設定檔目錄（catalog）同樣採「註冊期寫入、執行期唯讀」：
// 組裝階段註冊完成後不再變更，執行期無鎖讀取。
type Registry struct {
	builders map[Class]Builder
}

// NewRegistry 建立空的 Registry。
func NewRegistry() *Registry {
	return &Registry{builders: map[Class]Builder{}}
}

// Register 綁定一條路徑；重複註冊同一 Class 直接視為錯誤（避免行為不確定）。
func (r *Registry) Register(c Class, b Builder) error {
	if b == nil {
		return errs.NewFatal("nil generator builder")
	}
	if _, ok := r.builders[c]; ok {
		return errs.Fatalf("duplicate generator class: %s", ClassName(c))
	}
	r.builders[c] = b
	return nil
}

// IsExist 回報該分類是否已有 builder。
func (r *Registry) IsExist(c Class) bool {
	_, ok := r.builders[c]
	return ok
}

// Build 依分類建出生成器。
func (r *Registry) Build(c Class, rng *core.Core, s *buf.Scratch) (Generator, error) {
	b, ok := r.builders[c]
	if !ok {
		return nil, errs.Fatalf("generator not registered: %s", ClassName(c))
	}
	return b(rng, s), nil
}

// DefaultRegistry 回傳綁好三條標準路徑的 Registry。
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(ClassOdd, func(_ *core.Core, _ *buf.Scratch) Generator {
		return &OddGenerator{}
	})
	_ = r.Register(ClassSinglyEven, func(_ *core.Core, s *buf.Scratch) Generator {
		return &LuxGenerator{scratch: s}
	})
	_ = r.Register(ClassDoublyEven, func(c *core.Core, s *buf.Scratch) Generator {
		return &TruthGridGenerator{core: c, scratch: s}
	})
	return r
}
