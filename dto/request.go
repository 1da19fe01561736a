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

package dto

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/magiclab/corefmt"
	"github.com/zintix-labs/magiclab/errs"
	"github.com/zintix-labs/magiclab/sdk/buf"
	"github.com/zintix-labs/magiclab/spec"
)

type SquareRequest struct {
	PresetName string   `json:"preset"`              // 預設集名稱
	PresetId   spec.PID `json:"pid"`                 // 預設集編號
	Order      int      `json:"n"`                   // 要求的階數
	CoreSnap   string   `json:"core_snap,omitempty"` // 可選：base64url 的 PRNG 快照（回放/續玩）
}

type VerifyRequest struct {
	Order int      `json:"n"`
	Cells []uint32 `json:"cells"`
}

type BatchRequest struct {
	PresetName string   `json:"preset"`
	PresetId   spec.PID `json:"pid"`
	MinOrder   int      `json:"min_order"`
	MaxOrder   int      `json:"max_order"`
	Samples    int      `json:"samples"`
}

// 防止 body 過大（預設 1MiB；verify 的 cells 在 n=500 附近約 2MB JSON，放寬到 8MiB）
const (
	maxBody       = 1 << 20
	maxVerifyBody = 8 << 20
)

// DecodeSquareRequest 會把 HTTP 請求解碼成 SquareRequest。
//
// 支援：
//   - GET：從 query string 讀取參數（preset/pid/n/core_snap）。
//   - POST：從 JSON body 反序列化。
//
// core_snap 語意：
//   - 缺省：新的一張（Forge 沿用自身流水）。
//   - 有值：回放（帶當初回傳的 start_b64u 重現同一張）或
//     續玩（帶上一張的 after_b64u 延續流水）。
//
// 注意：
//   - 這裡只負責「解碼（decode）」與基本型別轉換，不做任何階數合法性校驗；
//     合法性（n 範圍、preset 是否存在）應由上層（Forge/Runtime）決定。
//   - POST 會對 body 做大小限制並開啟 DisallowUnknownFields()，
//     對未知欄位採用嚴格拒絕，以避免靜默丟資料。
func DecodeSquareRequest(r *http.Request) (*SquareRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}

	req := new(SquareRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.PresetName = q.Get("preset")
		req.CoreSnap = q.Get("core_snap")

		if s := q.Get("pid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid pid: %v", err))
			}
			req.PresetId = spec.PID(u)
		}

		if s := q.Get("n"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid n: %v", err))
			}
			req.Order = v
		}

		return req, nil

	case http.MethodPost:
		body := io.LimitReader(r.Body, maxBody)
		dec := json.NewDecoder(body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(req); err != nil {
			return nil, errs.Warnf("invalid json: %v", err)
		}
		return req, nil

	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// Parse 把 wire 格式轉成內部請求：base64url 快照解碼成 raw bytes。
func (sr *SquareRequest) Parse() (*buf.SquareRequest, error) {
	req := &buf.SquareRequest{
		PresetName: sr.PresetName,
		PresetId:   sr.PresetId,
		Order:      sr.Order,
	}
	if sr.CoreSnap != "" {
		snap, err := corefmt.DecodeBase64URL(sr.CoreSnap)
		if err != nil {
			return nil, errs.NewWarn("core snap decode failed " + err.Error())
		}
		req.CoreSnap = snap
	}
	return req, nil
}

// DecodeVerifyRequest 會把 HTTP 請求解碼成 VerifyRequest（僅支援 POST JSON）。
// cells 體積可觀，不提供 query string 形式。
func DecodeVerifyRequest(r *http.Request) (*VerifyRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return nil, errs.NewWarn("method not allowed")
	}

	req := new(VerifyRequest)
	body := io.LimitReader(r.Body, maxVerifyBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return nil, errs.Warnf("invalid json: %v", err)
	}
	return req, nil
}

// Parse 把 wire 格式轉成內部校驗請求。
func (vr *VerifyRequest) Parse() *buf.VerifyRequest {
	return &buf.VerifyRequest{
		Order: vr.Order,
		Cells: vr.Cells,
	}
}

// DecodeBatchRequest 會把 HTTP 請求解碼成 BatchRequest。
func DecodeBatchRequest(r *http.Request) (*BatchRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}

	req := new(BatchRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.PresetName = q.Get("preset")

		if s := q.Get("pid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid pid: %v", err))
			}
			req.PresetId = spec.PID(u)
		}
		var err error
		if req.MinOrder, err = atoiDefault(q.Get("min_order"), 1); err != nil {
			return nil, errs.Warnf("invalid min_order: %v", err)
		}
		if req.MaxOrder, err = atoiDefault(q.Get("max_order"), 0); err != nil {
			return nil, errs.Warnf("invalid max_order: %v", err)
		}
		if req.Samples, err = atoiDefault(q.Get("samples"), 1); err != nil {
			return nil, errs.Warnf("invalid samples: %v", err)
		}
		return req, nil

	case http.MethodPost:
		body := io.LimitReader(r.Body, maxBody)
		dec := json.NewDecoder(body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(req); err != nil {
			return nil, errs.Warnf("invalid json: %v", err)
		}
		return req, nil

	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// Parse 把 wire 格式轉成內部批次請求。
func (br *BatchRequest) Parse() *buf.BatchRequest {
	return &buf.BatchRequest{
		PresetName: br.PresetName,
		PresetId:   br.PresetId,
		MinOrder:   br.MinOrder,
		MaxOrder:   br.MaxOrder,
		Samples:    br.Samples,
	}
}

func atoiDefault(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
