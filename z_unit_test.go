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

package magiclab

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/magiclab/catalog"
	"github.com/zintix-labs/magiclab/dto"
	"github.com/zintix-labs/magiclab/sdk/buf"
	"github.com/zintix-labs/magiclab/sdk/core"
	"github.com/zintix-labs/magiclab/sdk/gen"
	"github.com/zintix-labs/magiclab/sdk/verify"
)

const alphaYAML = `preset_name: alpha
preset_id: 1
max_order: 64
self_check: true
retry_limit: 8
`

const betaYAML = `preset_name: beta
preset_id: 2
max_order: 16
self_check: false
`

func newTestLab(t *testing.T) *Magiclab {
	t.Helper()
	cfg := fstest.MapFS{
		"alpha.yaml": &fstest.MapFile{Data: []byte(alphaYAML)},
		"beta.yaml":  &fstest.MapFile{Data: []byte(betaYAML)},
	}
	lab, err := NewAuto(core.Default(), Configs(cfg), gen.DefaultRegistry())
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	return lab
}

func TestNewAutoSummaryAndLookup(t *testing.T) {
	lab := newTestLab(t)

	sum, err := lab.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(sum) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(sum))
	}
	if sum[0].Name != "alpha" || sum[0].MaxOrder != 64 || !sum[0].SelfCheck {
		t.Fatalf("unexpected summary: %+v", sum[0])
	}

	if _, ok := lab.EntryById(1); !ok {
		t.Fatalf("pid 1 not found")
	}
	if _, ok := lab.EntryByName("BETA"); !ok {
		t.Fatalf("name lookup should be case-insensitive")
	}
	if _, ok := lab.EntryById(99); ok {
		t.Fatalf("pid 99 should not exist")
	}

	// 凍結後禁止再註冊
	if err := lab.Register(catalog.Entry{PID: 3, Name: "gamma", ConfigName: "alpha.yaml"}); err == nil {
		t.Fatalf("register after freeze should fail")
	}
}

func TestNewAutoRejectsDuplicatePresetID(t *testing.T) {
	cfg := fstest.MapFS{
		"a.yaml": &fstest.MapFile{Data: []byte(alphaYAML)},
		"b.yaml": &fstest.MapFile{Data: []byte(alphaYAML)},
	}
	if _, err := NewAuto(core.Default(), Configs(cfg), gen.DefaultRegistry()); err == nil {
		t.Fatalf("duplicate preset id should fail")
	}
}

func TestForgeSeedReproducible(t *testing.T) {
	lab := newTestLab(t)

	// 雙偶階走隨機變體；同 seed 必須逐格一致
	f1, err := lab.NewForgeWithSeed(1, 42)
	if err != nil {
		t.Fatalf("new forge: %v", err)
	}
	f2, err := lab.NewForgeWithSeed(1, 42)
	if err != nil {
		t.Fatalf("new forge: %v", err)
	}
	a, err := f1.GenerateInternal(8)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := f2.GenerateInternal(8)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for i := range a.Square.Cells {
		if a.Square.Cells[i] != b.Square.Cells[i] {
			t.Fatalf("cell %d differs: %d vs %d", i, a.Square.Cells[i], b.Square.Cells[i])
		}
	}
	if a.Class != "doubly_even" {
		t.Fatalf("expected doubly_even, got %s", a.Class)
	}

	v := verify.New()
	if !v.Check(8, a.Square.Cells) {
		t.Fatalf("square failed independent check")
	}
}

func TestForgeRejectsBadOrders(t *testing.T) {
	lab := newTestLab(t)
	f, err := lab.NewForgeWithSeed(1, 7)
	if err != nil {
		t.Fatalf("new forge: %v", err)
	}

	if _, err := f.GenerateInternal(2); err == nil {
		t.Fatalf("order 2 should fail")
	}
	if _, err := f.GenerateInternal(0); err == nil {
		t.Fatalf("order 0 should fail")
	}
	if _, err := f.GenerateInternal(65); err == nil {
		t.Fatalf("order above preset limit should fail")
	}
}

func TestForgeSnapshotReplay(t *testing.T) {
	lab := newTestLab(t)
	f, err := lab.NewForgeWithSeed(1, 1234)
	if err != nil {
		t.Fatalf("new forge: %v", err)
	}

	snap, err := f.SnapshotCore()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	a, err := f.GenerateInternal(12)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if err := f.RestoreCore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	b, err := f.GenerateInternal(12)
	if err != nil {
		t.Fatalf("generate after restore: %v", err)
	}

	if a.Square.Fingerprint() != b.Square.Fingerprint() {
		t.Fatalf("replay should reproduce the same square")
	}
}

func TestVerifierSmallBatch(t *testing.T) {
	lab := newTestLab(t)
	vr, err := lab.NewVerifierWithSeed(1, 99)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	st, used, err := vr.Verify(1, 10, 3, false)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if used <= 0 {
		t.Fatalf("used time should be positive")
	}
	// 1..10 去掉 2 => 9 個可生成階數
	if st.Summary.Rounds != 9*3 {
		t.Fatalf("expected %d rounds, got %d", 9*3, st.Summary.Rounds)
	}
	if !st.AllValid() {
		t.Fatalf("all squares should be valid: %+v", st.Summary)
	}

	// 邊界：壞參數
	if _, _, err := vr.Verify(0, 10, 1, false); err == nil {
		t.Fatalf("min order 0 should fail")
	}
	if _, _, err := vr.Verify(5, 4, 1, false); err == nil {
		t.Fatalf("inverted range should fail")
	}
	if _, _, err := vr.Verify(1, 65, 1, false); err == nil {
		t.Fatalf("range above preset limit should fail")
	}
	if _, _, err := vr.Verify(2, 2, 1, false); err == nil {
		t.Fatalf("range with no generable order should fail")
	}
}

func TestVerifierMPMergesWorkers(t *testing.T) {
	lab := newTestLab(t)
	vr, err := lab.NewVerifierWithSeed(1, 7)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	st, _, err := vr.VerifyMP(3, 5, 4, 2, false)
	if err != nil {
		t.Fatalf("verify mp: %v", err)
	}
	// 3,4,5 三個階數 × 4 張 × 2 workers
	if st.Summary.Rounds != 3*4*2 {
		t.Fatalf("expected %d rounds, got %d", 3*4*2, st.Summary.Rounds)
	}
	if !st.AllValid() {
		t.Fatalf("all squares should be valid")
	}
}

func TestVerifierTimingEstimator(t *testing.T) {
	lab := newTestLab(t)
	vr, err := lab.NewVerifierWithSeed(1, 11)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	st, est, _, err := vr.VerifyTiming(3, 4, 5, 2, false)
	if err != nil {
		t.Fatalf("verify timing: %v", err)
	}
	if est == nil {
		t.Fatalf("estimator missing")
	}
	if est.Samples != st.Summary.Rounds {
		t.Fatalf("estimator samples %d != rounds %d", est.Samples, st.Summary.Rounds)
	}
}

func TestSeedMakerUniqueNonNegative(t *testing.T) {
	sm := newSeedMaker(5)
	seen := make(map[int64]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		s := sm.next()
		if s < 0 {
			t.Fatalf("seed must be non-negative: %d", s)
		}
		if _, dup := seen[s]; dup {
			t.Fatalf("duplicate seed at round %d", i)
		}
		seen[s] = struct{}{}
	}
}

func TestRuntimeGenerateVerifyBatch(t *testing.T) {
	lab := newTestLab(t)
	rt, err := lab.BuildRuntime(1)
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	defer rt.Close()

	ctx := context.Background()

	// Generate：pid 路由
	res, err := rt.Generate(ctx, &dto.SquareRequest{PresetId: 1, Order: 5})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Order != 5 || res.Magic != 65 || len(res.Cells) != 25 {
		t.Fatalf("unexpected result: n=%d magic=%d cells=%d", res.Order, res.Magic, len(res.Cells))
	}
	if res.State.StartCoreSnapB64U == "" || res.State.AfterCoreSnapB64U == "" {
		t.Fatalf("snapshots must be returned")
	}

	// Generate：名稱兜底路由
	if _, err := rt.Generate(ctx, &dto.SquareRequest{PresetName: "beta", Order: 4}); err != nil {
		t.Fatalf("generate by name: %v", err)
	}
	if _, err := rt.Generate(ctx, &dto.SquareRequest{Order: 3}); err == nil {
		t.Fatalf("missing preset should fail")
	}

	// Verify：回放剛生成的盤面
	vres, err := rt.Verify(&buf.VerifyRequest{Order: 5, Cells: res.Cells})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !vres.Valid || vres.Magic != 65 {
		t.Fatalf("unexpected verify result: %+v", vres)
	}

	// Verify：壞盤面
	bad := append([]uint32(nil), res.Cells...)
	bad[0], bad[1] = bad[1], bad[0]
	vres, err = rt.Verify(&buf.VerifyRequest{Order: 5, Cells: bad})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if vres.Valid {
		t.Fatalf("tampered square should be invalid")
	}
	// Verify：長度不符是正常的 false，不是錯誤
	vres, err = rt.Verify(&buf.VerifyRequest{Order: 3, Cells: []uint32{1, 2}})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if vres.Valid {
		t.Fatalf("length mismatch must verify as invalid")
	}
	if _, err := rt.Verify(&buf.VerifyRequest{Order: 0, Cells: nil}); err == nil {
		t.Fatalf("order 0 should fail")
	}

	// Batch：小批次
	report, err := rt.Batch(ctx, &buf.BatchRequest{PresetId: 1, MinOrder: 3, MaxOrder: 5, Samples: 2})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if report.Summary.Rounds != 3*2 {
		t.Fatalf("expected %d rounds, got %d", 3*2, report.Summary.Rounds)
	}

	// Batch：超出上限
	if _, err := rt.Batch(ctx, &buf.BatchRequest{PresetId: 1, MinOrder: 1, MaxOrder: 64, Samples: maxBatchSamples + 1}); err == nil {
		t.Fatalf("oversized batch should fail")
	}
}

func TestRuntimeClose(t *testing.T) {
	lab := newTestLab(t)
	rt, err := lab.BuildRuntime(1)
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}

	rt.Close()
	rt.Close() // 重複呼叫安全

	if !rt.Closed() {
		t.Fatalf("runtime should be closed")
	}
	if _, err := rt.Generate(context.Background(), &dto.SquareRequest{PresetId: 1, Order: 3}); err == nil {
		t.Fatalf("generate after close should fail")
	}
	if _, err := rt.Batch(context.Background(), &buf.BatchRequest{PresetId: 1, MaxOrder: 3, MinOrder: 3, Samples: 1}); err == nil {
		t.Fatalf("batch after close should fail")
	}
}

func TestDevForgeReplay(t *testing.T) {
	lab := newTestLab(t)
	d, err := lab.NewDevForge(1, 2024)
	if err != nil {
		t.Fatalf("new dev forge: %v", err)
	}

	rep, err := d.Generates(8, 3)
	if err != nil {
		t.Fatalf("generates: %v", err)
	}
	if rep.Rounds != 3 || rep.Valid != 3 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.Before == "" || rep.After == "" {
		t.Fatalf("report must carry snapshots")
	}

	// 以 before 快照回放，第一張必須逐格一致
	rep2, err := d.RestoreGenerates(rep.Before, 8, 3)
	if err != nil {
		t.Fatalf("restore generates: %v", err)
	}
	for i := range rep.Results[0].Cells {
		if rep.Results[0].Cells[i] != rep2.Results[0].Cells[i] {
			t.Fatalf("replay differs at cell %d", i)
		}
	}

	// Dev 批次驗證
	vrep, err := d.Verify(3, 6, 2)
	if err != nil {
		t.Fatalf("dev verify: %v", err)
	}
	if vrep.Stat == nil || !vrep.Stat.AllValid() {
		t.Fatalf("dev verify should produce a fully valid report")
	}
	vrep2, err := d.RestoreVerify(vrep.Before, 3, 6, 2)
	if err != nil {
		t.Fatalf("restore verify: %v", err)
	}
	if vrep2.After != vrep.After {
		t.Fatalf("restored run should end on the same snapshot")
	}
}
