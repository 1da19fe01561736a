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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/magiclab/corefmt"
	"github.com/zintix-labs/magiclab/sdk/buf"
	"github.com/zintix-labs/magiclab/sdk/square"
)

func TestDecodeSquareRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/square?preset=classic&pid=7&n=5", nil)
	req, err := DecodeSquareRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.PresetName != "classic" || req.PresetId != 7 || req.Order != 5 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeSquareRequestPOST(t *testing.T) {
	payload := map[string]any{
		"preset": "classic",
		"pid":    9,
		"n":      8,
	}
	data, _ := json.Marshal(payload)
	r := httptest.NewRequest(http.MethodPost, "/square", bytes.NewReader(data))
	req, err := DecodeSquareRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.PresetId != 9 || req.Order != 8 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeSquareRequestRejectsUnknownFields(t *testing.T) {
	data := []byte(`{"pid":1,"preset":"classic","n":3,"unknown":true}`)
	r := httptest.NewRequest(http.MethodPost, "/square", bytes.NewReader(data))
	if _, err := DecodeSquareRequest(r); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestSquareRequestParseSnap(t *testing.T) {
	snap := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	wire := &SquareRequest{Order: 4, CoreSnap: corefmt.EncodeBase64URL(snap)}
	req, err := wire.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !bytes.Equal(req.CoreSnap, snap) {
		t.Fatalf("snap round trip failed: %v", req.CoreSnap)
	}

	bad := &SquareRequest{Order: 4, CoreSnap: "!!not base64url!!"}
	if _, err := bad.Parse(); err == nil {
		t.Fatalf("bad snap should fail")
	}
}

func TestDecodeVerifyRequest(t *testing.T) {
	data := []byte(`{"n":3,"cells":[8,1,6,3,5,7,4,9,2]}`)
	r := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewReader(data))
	req, err := DecodeVerifyRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Order != 3 || len(req.Cells) != 9 {
		t.Fatalf("unexpected request: %+v", req)
	}

	// verify 僅允許 POST
	get := httptest.NewRequest(http.MethodGet, "/verify?n=3", nil)
	if _, err := DecodeVerifyRequest(get); err == nil {
		t.Fatalf("GET verify should fail")
	}
}

func TestDecodeBatchRequestDefaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/batch?preset=classic&max_order=20", nil)
	req, err := DecodeBatchRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.MinOrder != 1 || req.MaxOrder != 20 || req.Samples != 1 {
		t.Fatalf("defaults not applied: %+v", req)
	}
}

func TestNewSquareResultDTO(t *testing.T) {
	sq := &square.Square{Order: 3, Cells: []uint32{8, 1, 6, 3, 5, 7, 4, 9, 2}}
	sr := &buf.SquareResult{
		PresetName: "classic",
		PresetId:   1,
		Class:      "odd",
		Attempts:   1,
		Square:     sq,
		State: buf.SquareState{
			StartCoreSnap: []byte{1, 2, 3},
			AfterCoreSnap: []byte{4, 5, 6},
		},
	}
	dto, err := NewSquareResultDTO(sr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Order != 3 || dto.Magic != 15 || dto.Class != "odd" {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	if dto.State.StartCoreSnapB64U == "" || dto.State.AfterCoreSnapB64U == "" {
		t.Fatalf("snapshots must round trip: %+v", dto.State)
	}

	if _, err := NewSquareResultDTO(nil); err == nil {
		t.Fatalf("nil result should fail")
	}
	if _, err := NewSquareResultDTO(&buf.SquareResult{}); err == nil {
		t.Fatalf("missing square should fail")
	}
}
