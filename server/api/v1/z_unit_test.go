package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/magiclab"
	"github.com/zintix-labs/magiclab/dto"
	"github.com/zintix-labs/magiclab/sdk/core"
	"github.com/zintix-labs/magiclab/sdk/gen"
	"github.com/zintix-labs/magiclab/sdk/verify"
	"github.com/zintix-labs/magiclab/server/svrcfg"
	"github.com/zintix-labs/magiclab/stats"
)

const testPresetYAML = `preset_name: alpha
preset_id: 1
max_order: 64
self_check: true
retry_limit: 8
`

func newTestHandlers(t *testing.T) (*SquareHandler, *VerifyHandler) {
	t.Helper()
	cfgFS := fstest.MapFS{
		"alpha.yaml": &fstest.MapFile{Data: []byte(testPresetYAML)},
	}
	lab, err := magiclab.NewAuto(core.Default(), magiclab.Configs(cfgFS), gen.DefaultRegistry())
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	sh, err := NewSquareHandler(&svrcfg.SvrCfg{ForgeBufSize: 1, Magiclab: lab})
	if err != nil {
		t.Fatalf("new square handler: %v", err)
	}
	vh, err := NewVerifyHandler(lab)
	if err != nil {
		t.Fatalf("new verify handler: %v", err)
	}
	return sh, vh
}

func TestSquareGet(t *testing.T) {
	sh, _ := newTestHandlers(t)

	q := httptest.NewRequest(http.MethodGet, "/v1/square?pid=1&n=5", nil)
	w := httptest.NewRecorder()
	sh.Square(w, q)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var res dto.SquareResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Order != 5 || res.Magic != 65 || len(res.Cells) != 25 {
		t.Fatalf("unexpected result: n=%d magic=%d cells=%d", res.Order, res.Magic, len(res.Cells))
	}
	if !verify.New().Check(res.Order, res.Cells) {
		t.Fatalf("returned square is not magic")
	}
	if res.State.StartCoreSnapB64U == "" || res.State.AfterCoreSnapB64U == "" {
		t.Fatalf("square_state must carry both snapshots")
	}
}

func TestSquareRejectsOrderTwo(t *testing.T) {
	sh, _ := newTestHandlers(t)

	q := httptest.NewRequest(http.MethodGet, "/v1/square?pid=1&n=2", nil)
	w := httptest.NewRecorder()
	sh.Square(w, q)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSquareReplayBySnapshot(t *testing.T) {
	sh, _ := newTestHandlers(t)

	q := httptest.NewRequest(http.MethodGet, "/v1/square?pid=1&n=8", nil)
	w := httptest.NewRecorder()
	sh.Square(w, q)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var first dto.SquareResult
	if err := json.NewDecoder(w.Body).Decode(&first); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// 帶 start_b64u 回放，必須重現同一張
	body, _ := json.Marshal(map[string]any{
		"pid":       1,
		"n":         8,
		"core_snap": first.State.StartCoreSnapB64U,
	})
	q2 := httptest.NewRequest(http.MethodPost, "/v1/square", bytes.NewReader(body))
	w2 := httptest.NewRecorder()
	sh.Square(w2, q2)
	if w2.Code != http.StatusOK {
		t.Fatalf("replay status %d, body %s", w2.Code, w2.Body.String())
	}
	var second dto.SquareResult
	if err := json.NewDecoder(w2.Body).Decode(&second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range first.Cells {
		if first.Cells[i] != second.Cells[i] {
			t.Fatalf("replay differs at cell %d", i)
		}
	}
}

func TestVerifyPost(t *testing.T) {
	sh, _ := newTestHandlers(t)

	q := httptest.NewRequest(http.MethodGet, "/v1/square?pid=1&n=4", nil)
	w := httptest.NewRecorder()
	sh.Square(w, q)
	var res dto.SquareResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}

	post := func(order int, cells []uint32) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]any{"n": order, "cells": cells})
		q := httptest.NewRequest(http.MethodPost, "/v1/verify", bytes.NewReader(body))
		w := httptest.NewRecorder()
		sh.Verify(w, q)
		return w
	}

	// 原盤面：valid
	w2 := post(4, res.Cells)
	if w2.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w2.Code, w2.Body.String())
	}
	var vr dto.VerifyResult
	if err := json.NewDecoder(w2.Body).Decode(&vr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !vr.Valid || vr.Magic != 34 {
		t.Fatalf("unexpected verify result: %+v", vr)
	}

	// 破壞一格：invalid 但仍是 200
	bad := append([]uint32(nil), res.Cells...)
	bad[0], bad[4] = bad[4], bad[0]
	w3 := post(4, bad)
	if w3.Code != http.StatusOK {
		t.Fatalf("status %d", w3.Code)
	}
	if err := json.NewDecoder(w3.Body).Decode(&vr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if vr.Valid {
		t.Fatalf("tampered square reported valid")
	}

	// 長度不符：正常的 false，不是請求錯誤
	w4 := post(4, res.Cells[:3])
	if w4.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w4.Code, w4.Body.String())
	}
	if err := json.NewDecoder(w4.Body).Decode(&vr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if vr.Valid {
		t.Fatalf("length mismatch reported valid")
	}
}

func TestBatchGet(t *testing.T) {
	sh, _ := newTestHandlers(t)

	q := httptest.NewRequest(http.MethodGet, "/v1/batch?pid=1&min_order=3&max_order=5&samples=2", nil)
	w := httptest.NewRecorder()
	sh.Batch(w, q)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var report stats.VerifyReport
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Summary.Rounds != 3*2 {
		t.Fatalf("expected %d rounds, got %d", 3*2, report.Summary.Rounds)
	}
	if report.Summary.Valid != report.Summary.Rounds {
		t.Fatalf("expected all valid: %+v", report.Summary)
	}

	// 超出單請求上限
	q2 := httptest.NewRequest(http.MethodGet, "/v1/batch?pid=1&min_order=1&max_order=64&samples=99999", nil)
	w2 := httptest.NewRecorder()
	sh.Batch(w2, q2)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w2.Code)
	}
}

func TestPresetsList(t *testing.T) {
	sh, _ := newTestHandlers(t)

	q := httptest.NewRequest(http.MethodGet, "/v1/presets", nil)
	w := httptest.NewRecorder()
	sh.Presets(w, q)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "alpha") {
		t.Fatalf("presets response missing preset name: %s", w.Body.String())
	}
}

func TestVerifyRunEndpoint(t *testing.T) {
	_, vh := newTestHandlers(t)

	q := httptest.NewRequest(http.MethodGet, "/v1/verifyrun?pid=1&max_order=5&samples=2&seed=7", nil)
	w := httptest.NewRecorder()
	vh.VerifyRun(w, q)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Stats    *stats.VerifyReport `json:"stats"`
		UsedTime int64               `json:"used_ms"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// 1..5 去掉 2 => 4 個階數 × 2 張
	if resp.Stats.Summary.Rounds != 4*2 {
		t.Fatalf("expected %d rounds, got %d", 4*2, resp.Stats.Summary.Rounds)
	}

	// pid 缺省：400
	q2 := httptest.NewRequest(http.MethodGet, "/v1/verifyrun?max_order=5&samples=2", nil)
	w2 := httptest.NewRecorder()
	vh.VerifyRun(w2, q2)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w2.Code)
	}

	// 未知 pid：400
	q3 := httptest.NewRequest(http.MethodGet, "/v1/verifyrun?pid=9&max_order=5&samples=2", nil)
	w3 := httptest.NewRecorder()
	vh.VerifyRun(w3, q3)
	if w3.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w3.Code)
	}
}

func TestVerifyTimingEndpoint(t *testing.T) {
	_, vh := newTestHandlers(t)

	q := httptest.NewRequest(http.MethodGet, "/v1/verifytiming?pid=1&min_order=3&max_order=4&samples=3&workers=2&seed=5", nil)
	w := httptest.NewRecorder()
	vh.VerifyTiming(w, q)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Stats    *stats.VerifyReport    `json:"stats"`
		Est      *stats.EstimatorTiming `json:"est"`
		UsedTime int64                  `json:"used_ms"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// 2 個階數 × 3 張 × 2 workers
	if resp.Stats.Summary.Rounds != 2*3*2 {
		t.Fatalf("expected %d rounds, got %d", 2*3*2, resp.Stats.Summary.Rounds)
	}
	if resp.Est == nil || resp.Est.Samples != resp.Stats.Summary.Rounds {
		t.Fatalf("estimator samples mismatch: %+v", resp.Est)
	}

	// timing 模式張數上限
	q2 := httptest.NewRequest(http.MethodGet, "/v1/verifytiming?pid=1&max_order=4&samples=20000", nil)
	w2 := httptest.NewRecorder()
	vh.VerifyTiming(w2, q2)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w2.Code)
	}
}

func TestRunByJson(t *testing.T) {
	_, vh := newTestHandlers(t)

	cfg := map[string]any{
		"preset_name": "alpha",
		"preset_id":   1,
		"max_order":   64,
		"self_check":  true,
		"retry_limit": 8,
	}
	body, _ := json.Marshal(map[string]any{
		"min_order": 3,
		"max_order": 5,
		"samples":   2,
		"cfg":       cfg,
		"seed":      11,
	})
	q := httptest.NewRequest(http.MethodPost, "/v1/verifybycfg", bytes.NewReader(body))
	w := httptest.NewRecorder()
	vh.RunByJson(w, q)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var report stats.VerifyReport
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Summary.Rounds != 3*2 {
		t.Fatalf("expected %d rounds, got %d", 3*2, report.Summary.Rounds)
	}

	// cfg 指向未註冊的預設集：400
	cfg["preset_id"] = 9
	cfg["preset_name"] = "ghost"
	body2, _ := json.Marshal(map[string]any{
		"min_order": 3, "max_order": 5, "samples": 1, "cfg": cfg, "seed": 11,
	})
	q2 := httptest.NewRequest(http.MethodPost, "/v1/verifybycfg", bytes.NewReader(body2))
	w2 := httptest.NewRecorder()
	vh.RunByJson(w2, q2)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w2.Code)
	}
}

func TestStatReplay(t *testing.T) {
	sh, _ := newTestHandlers(t)

	// 先生成一張真魔方陣當樣本
	q := httptest.NewRequest(http.MethodGet, "/v1/square?pid=1&n=3", nil)
	w := httptest.NewRecorder()
	sh.Square(w, q)
	var res dto.SquareResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}

	bad := append([]uint32(nil), res.Cells...)
	bad[0], bad[4] = bad[4], bad[0]

	body, _ := json.Marshal(DistStat{
		PresetName: "alpha",
		Orders:     []int{3, 3},
		Boards:     [][]uint32{res.Cells, bad},
		Attempts:   []int{1, 1},
	})
	q2 := httptest.NewRequest(http.MethodPost, "/v1/stat", bytes.NewReader(body))
	w2 := httptest.NewRecorder()
	Stat(w2, q2)
	if w2.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w2.Code, w2.Body.String())
	}
	var report stats.VerifyReport
	if err := json.NewDecoder(w2.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Summary.Rounds != 2 || report.Summary.Valid != 1 || report.Summary.Invalid != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}

	// GET：405
	q3 := httptest.NewRequest(http.MethodGet, "/v1/stat", nil)
	w3 := httptest.NewRecorder()
	Stat(w3, q3)
	if w3.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w3.Code)
	}
}
