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

package catalog

import (
	"testing"
	"testing/fstest"
)

const presetYAML = `
preset_name: classic
preset_id: 1
max_order: 100
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"classic.yaml": &fstest.MapFile{Data: []byte(presetYAML)},
		"alt.json":     &fstest.MapFile{Data: []byte(`{"preset_name":"alt","preset_id":2,"max_order":50}`)},
		"notes.txt":    &fstest.MapFile{Data: []byte("ignored")},
	}
}

func TestRegisterAndLookup(t *testing.T) {
	c, err := New(testFS())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	err = c.Register(
		Entry{PID: 1, Name: "Classic", ConfigName: "classic.yaml"},
		Entry{PID: 2, Name: "alt", ConfigName: "alt.json"},
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// 名稱查找大小寫與空白不敏感
	if _, ok := c.GetByName("  CLASSIC "); !ok {
		t.Fatalf("name lookup should normalize")
	}
	if got := c.IDs(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("ids = %v", got)
	}

	ps, err := c.PresetSettingById(1)
	if err != nil {
		t.Fatalf("setting by id: %v", err)
	}
	if ps.PresetName != "classic" || ps.MaxOrder != 100 {
		t.Fatalf("setting mismatch: %+v", ps)
	}
	if _, err := c.PresetSettingByName("alt"); err != nil {
		t.Fatalf("setting by name: %v", err)
	}
	if _, err := c.PresetSettingById(9); err == nil {
		t.Fatalf("unknown id should fail")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	c, err := New(testFS())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := c.Register(Entry{PID: 1, Name: "classic", ConfigName: "classic.yaml"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := c.Register(Entry{PID: 1, Name: "other", ConfigName: "alt.json"}); err == nil {
		t.Fatalf("duplicate id should fail")
	}
	if err := c.Register(Entry{PID: 3, Name: "classic", ConfigName: "alt.json"}); err == nil {
		t.Fatalf("duplicate name should fail")
	}
	if err := c.Register(Entry{PID: 3, Name: "third", ConfigName: "missing.yaml"}); err == nil {
		t.Fatalf("missing config should fail")
	}
	if err := c.Register(Entry{PID: 3, Name: "third", ConfigName: "notes.txt"}); err == nil {
		t.Fatalf("non yaml/json config should fail")
	}

	c.Freeze()
	if !c.IsFrozen() {
		t.Fatalf("catalog should report frozen")
	}
	if err := c.Register(Entry{PID: 4, Name: "late", ConfigName: "alt.json"}); err == nil {
		t.Fatalf("register after freeze should fail")
	}
}

func TestMultiFSRejectsBadLayout(t *testing.T) {
	nested := fstest.MapFS{
		"sub/deep.yaml": &fstest.MapFile{Data: []byte(presetYAML)},
	}
	if _, err := New(nested); err == nil {
		t.Fatalf("nested config FS should fail")
	}

	a := fstest.MapFS{"same.yaml": &fstest.MapFile{Data: []byte(presetYAML)}}
	b := fstest.MapFS{"same.yaml": &fstest.MapFile{Data: []byte(presetYAML)}}
	if _, err := New(a, b); err == nil {
		t.Fatalf("duplicate config across FS should fail")
	}

	if _, err := New(); err == nil {
		t.Fatalf("no fs should fail")
	}
}
