package v1

import (
	"crypto/rand"
	"encoding/json"
	"math"
	"math/big"
	"net/http"

	"github.com/zintix-labs/magiclab/errs"
	"github.com/zintix-labs/magiclab/server/httperr"
)

// RunByJson 傳入 JSON預設集格式 以及希望驗證的階數範圍與張數
func (vh *VerifyHandler) RunByJson(w http.ResponseWriter, r *http.Request) {
	type VerifyRequestByJson struct {
		MinOrder      int             `json:"min_order"`
		MaxOrder      int             `json:"max_order"`
		Samples       int             `json:"samples"`
		PresetSetting json.RawMessage `json:"cfg"`
		Seed          *int64          `json:"seed,omitempty"`
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// 1. decode request
	req := new(VerifyRequestByJson)
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20) // 5MB
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		httperr.Errs(w, errs.Wrap(err, "json decode failed"))
		return
	}

	// 2. vaild orders
	if req.MinOrder < 1 {
		req.MinOrder = 1
	}
	if req.MaxOrder < req.MinOrder {
		httperr.Errs(w, errs.NewWarn("max_order must >= min_order"))
		return
	}
	if req.Samples < 1 {
		httperr.Errs(w, errs.NewWarn("samples must be at least 1"))
		return
	}
	if req.Seed == nil {
		rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			httperr.Errs(w, errs.NewWarn("seed generate failed"))
			return
		}
		v := rnd.Int64()
		req.Seed = &v
	}

	// 4. NewVerifier
	vr, err := vh.Magiclab.NewVerifierByJSON(req.PresetSetting, *req.Seed)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	result, _, err := vr.Verify(req.MinOrder, req.MaxOrder, req.Samples, false)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	// 6. 回傳Json
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
