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

package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindConstructors(t *testing.T) {
	cases := []struct {
		err  *E
		kind Kind
		lv   ErrLevel
	}{
		{NewInvalidOrder("order 2 impossible"), KindInvalidOrder, Warn},
		{NewOrderTooLarge("order 5000 over limit"), KindOrderTooLarge, Warn},
		{NewInternal("self check failed"), KindInternal, Fatal},
	}
	for _, c := range cases {
		if c.err.Kind != c.kind {
			t.Fatalf("expected kind %d, got %d", c.kind, c.err.Kind)
		}
		if c.err.ErrLv != c.lv {
			t.Fatalf("expected level %d, got %d", c.lv, c.err.ErrLv)
		}
		if !strings.Contains(c.err.Error(), "kind="+KindName(c.kind)) {
			t.Fatalf("kind missing from message: %s", c.err.Error())
		}
	}
}

func TestWrapKeepsLevelAndKind(t *testing.T) {
	inner := NewInvalidOrder("bad order")
	w := Wrap(inner, "generate failed")
	if w.ErrLv != Warn {
		t.Fatalf("wrap should keep level, got %d", w.ErrLv)
	}
	if w.Kind != KindInvalidOrder {
		t.Fatalf("wrap should keep kind, got %d", w.Kind)
	}
	if !errors.Is(w, inner) {
		t.Fatalf("wrapped error should unwrap to cause")
	}
}

func TestWrapForeignErrorIsFatal(t *testing.T) {
	w := Wrap(fmt.Errorf("io failure"), "read config")
	if w.ErrLv != Fatal {
		t.Fatalf("foreign cause should be fatal, got %d", w.ErrLv)
	}
	if w.Kind != KindNone {
		t.Fatalf("foreign cause should carry no kind, got %d", w.Kind)
	}
}

func TestIsKindThroughWrapChain(t *testing.T) {
	err := Wrap(Wrap(NewOrderTooLarge("n over max"), "forge"), "runtime")
	if !IsKind(err, KindOrderTooLarge) {
		t.Fatalf("kind should survive a wrap chain")
	}
	if IsKind(err, KindInternal) {
		t.Fatalf("wrong kind matched")
	}
	if IsKind(errors.New("plain"), KindInternal) {
		t.Fatalf("plain error should not match any kind")
	}
}
