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

import "testing"

const yamlPreset = `
preset_name: classic
preset_id: 1
max_order: 1000
self_check: true
retry_limit: 4
render:
  cell_gap: 2
`

const jsonPreset = `{
  "preset_name": "classic",
  "preset_id": 1,
  "max_order": 1000
}`

func TestGetPresetSettingByYAML(t *testing.T) {
	ps, err := GetPresetSettingByYAML([]byte(yamlPreset))
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if ps.PresetName != "classic" || ps.PresetId != 1 {
		t.Fatalf("identity mismatch: %+v", ps)
	}
	if ps.MaxOrder != 1000 || !ps.SelfCheck || ps.RetryLimit != 4 {
		t.Fatalf("policy mismatch: %+v", ps)
	}
	if ps.Render.CellGap != 2 {
		t.Fatalf("render mismatch: %+v", ps.Render)
	}
}

func TestGetPresetSettingByJSONDefaults(t *testing.T) {
	ps, err := GetPresetSettingByJSON([]byte(jsonPreset))
	if err != nil {
		t.Fatalf("decode json: %v", err)
	}
	// 未填欄位補預設值
	if ps.RetryLimit != defaultRetryLimit {
		t.Fatalf("retry_limit default = %d", ps.RetryLimit)
	}
	if ps.Render.CellGap != defaultCellGap {
		t.Fatalf("cell_gap default = %d", ps.Render.CellGap)
	}
	if ps.SelfCheck {
		t.Fatalf("self_check should default to off")
	}
}

func TestPresetSettingValidation(t *testing.T) {
	bad := []string{
		`{"preset_id": 1, "max_order": 100}`,                            // 缺 preset_name
		`{"preset_name": "x", "preset_id": 1}`,                          // 缺 max_order
		`{"preset_name": "x", "preset_id": 1, "max_order": -3}`,         // 負上限
		`{"preset_name": "x", "max_order": 8, "retry_limit": -1}`,       // 負重試
		`{"preset_name": "x", "max_order": 8, "render":{"cell_gap":-1}}`, // 負間距
	}
	for _, raw := range bad {
		if _, err := GetPresetSettingByJSON([]byte(raw)); err == nil {
			t.Fatalf("expected validation error for %s", raw)
		}
	}

	if _, err := GetPresetSettingByYAML([]byte("\t bad yaml")); err == nil {
		t.Fatalf("expected yaml decode error")
	}
}

func TestDecodeFixed(t *testing.T) {
	type extras struct {
		Note string `yaml:"note"`
	}
	ps, err := GetPresetSettingByYAML([]byte(yamlPreset + "fixed:\n  note: hello\n"))
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}

	var ex extras
	if err := DecodeFixed(ps, &ex); err != nil {
		t.Fatalf("decode fixed: %v", err)
	}
	if ex.Note != "hello" {
		t.Fatalf("note = %q", ex.Note)
	}

	// 未知欄位要報錯
	ps.Fixed = map[string]any{"typo": true}
	if err := DecodeFixed(ps, &ex); err == nil {
		t.Fatalf("unknown field should fail")
	}
}
