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

package spec

import (
	"fmt"

	"github.com/zintix-labs/magiclab/errs"
)

// PresetSetting 包含啟動一座 Forge 所需的所有高階設定。
//
// MaxOrder 是呼叫端策略，不是引擎常數：引擎本身對任何合法階數都能生成，
// 上限只是讓部署方控制單次請求的記憶體與延遲上界。
type PresetSetting struct {
	PresetName string         `yaml:"preset_name"  json:"preset_name"`
	PresetId   PID            `yaml:"preset_id"    json:"preset_id"`
	MaxOrder   int            `yaml:"max_order"    json:"max_order"`
	SelfCheck  bool           `yaml:"self_check"   json:"self_check"`
	RetryLimit int            `yaml:"retry_limit"  json:"retry_limit"`
	Render     RenderSetting  `yaml:"render"       json:"render"`
	Fixed      map[string]any `yaml:"fixed"        json:"fixed"`
}

// RenderSetting 控制 CLI 端的輸出版面。
type RenderSetting struct {
	CellGap int `yaml:"cell_gap" json:"cell_gap"`
}

// init 補預設值並執行基本檢查。
func (ps *PresetSetting) init() error {
	if ps.RetryLimit == 0 {
		ps.RetryLimit = defaultRetryLimit
	}
	if ps.Render.CellGap == 0 {
		ps.Render.CellGap = defaultCellGap
	}
	return ps.valid()
}

const (
	defaultRetryLimit = 8
	defaultCellGap    = 1
)

// valid 執行最基本的設定檔檢查，如需更多驗證可在此擴充。
func (ps *PresetSetting) valid() error {

	if ps.PresetName == "" {
		return errs.NewFatal("empty preset_name")
	}

	// MaxOrder 必填：上限是部署方策略，留空視為設定檔缺漏而非「無上限」
	if ps.MaxOrder < 1 {
		return errs.NewFatal(fmt.Sprintf("preset_name: %s err:invalid max_order %d", ps.PresetName, ps.MaxOrder))
	}

	if ps.RetryLimit < 1 {
		return errs.NewFatal(fmt.Sprintf("preset_name: %s err:invalid retry_limit %d", ps.PresetName, ps.RetryLimit))
	}

	if ps.Render.CellGap < 1 {
		return errs.NewFatal(fmt.Sprintf("preset_name: %s err:invalid cell_gap %d", ps.PresetName, ps.Render.CellGap))
	}

	return nil
}
