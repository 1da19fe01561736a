package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/magiclab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// VerifyReport 批次驗證統計報告
type VerifyReport struct {
	Summary *SummaryReport `json:"Summary"`
	Orders  []*OrderReport `json:"Orders"`
	Dist    *DistReport    `json:"Dist"`
	isDone  bool
}

type SummaryReport struct {
	PresetName  string   `json:"PresetName"`
	PresetId    spec.PID `json:"PresetId"`
	MinOrder    int      `json:"MinOrder"`
	MaxOrder    int      `json:"MaxOrder"`
	Rounds      int      `json:"Rounds"`
	Valid       int      `json:"Valid"`
	Invalid     int      `json:"Invalid"`
	Failed      int      `json:"Failed"`
	ValidRate   float64  `json:"ValidRate"`
	ValidCI     CI       `json:"ValidCI"`
	Unique      int      `json:"Unique"`
	Attempts    int      `json:"Attempts"`
	AvgAttempts float64  `json:"AvgAttempts"`
}

// OrderReport 單一階數的統計
//
// 紀錄時只累積整數計數，Done() 才一次性換算比率與信賴區間
type OrderReport struct {
	Order      int     `json:"Order"`
	Class      string  `json:"Class"`
	Rounds     int     `json:"Rounds"`
	Valid      int     `json:"Valid"`
	Invalid    int     `json:"Invalid"`
	Failed     int     `json:"Failed"`
	ValidRate  float64 `json:"ValidRate"`
	ValidCI    CI      `json:"ValidCI"`
	Unique     int     `json:"Unique"`
	UniqueRate float64 `json:"UniqueRate"`
	Attempts   int     `json:"Attempts"`
	AvgGenUs   float64 `json:"AvgGenUs"` // 平均生成耗時（微秒）
}

// DistReport 生成次數（attempts）落點統計
//
// 只有雙偶階會重試，所以這張表等價於「重試行為的分布」
type DistReport struct {
	AttemptBucket  []string  `json:"AttemptBucket"`
	AttemptCollect []int     `json:"AttemptCollect"`
	AttemptDist    []float64 `json:"AttemptDist"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 所有紀錄過程因為性能原因只處理整數計數，統計完成後
//
// 請使用 Done 來一次性計算比率、平均值與信賴區間
func (s *VerifyReport) Done() {
	if s.isDone {
		return
	}

	// Orders
	for _, o := range s.Orders {
		if o.Rounds > 0 {
			o.ValidRate = float64(o.Valid) / float64(o.Rounds)
		}
		_, o.ValidCI = proportionCICP(o.Valid, o.Rounds, 0.95)
		if o.Valid > 0 {
			o.UniqueRate = float64(o.Unique) / float64(o.Valid)
		}
	}

	// Summary
	if s.Summary.Rounds > 0 {
		s.Summary.ValidRate = float64(s.Summary.Valid) / float64(s.Summary.Rounds)
	}
	_, s.Summary.ValidCI = proportionCICP(s.Summary.Valid, s.Summary.Rounds, 0.95)
	if s.Summary.Valid > 0 {
		s.Summary.AvgAttempts = float64(s.Summary.Attempts) / float64(s.Summary.Valid)
	}

	// Dist
	if s.Summary.Rounds > 0 {
		rf := float64(s.Summary.Rounds)
		dist := make([]float64, len(s.Dist.AttemptCollect))
		for i, c := range s.Dist.AttemptCollect {
			dist[i] = float64(c) / rf
		}
		s.Dist.AttemptDist = dist
	}

	s.isDone = true
}

// AllValid 回報是否所有生成結果都通過校驗且沒有生成失敗
func (s *VerifyReport) AllValid() bool {
	return s.Summary.Invalid == 0 && s.Summary.Failed == 0
}

func (s *VerifyReport) WriteWith(w io.Writer, rep VerifyReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

func (s *VerifyReport) StdOut(ut time.Duration) {
	s.Done()
	formatDuration(ut, s.Summary.Rounds)
	sk, sm := s.fmtBasic()
	str := fmtTable(s.Summary.PresetName, sk, sm)
	fmt.Println(str)
	ok, om := s.fmtOrders()
	fmt.Println(fmtTable("Per-Order", ok, om))
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, rounds int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(rounds) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\nsps : %d squares/sec\n", sec, sps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		s = s % 60
		p.Printf("used: %dm %ds\nsps : %d squares/sec\n", m, s, sps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\nsps : %d squares/sec\n", h, m, s, sps)
}

// StdOut

func (s *VerifyReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Preset Name":  p.Sprintf("%s", s.Summary.PresetName),
		"Preset ID":    fmt.Sprintf("%d", s.Summary.PresetId),
		"Orders":       p.Sprintf("[%d,%d]", s.Summary.MinOrder, s.Summary.MaxOrder),
		"Total Rounds": p.Sprintf("%d", s.Summary.Rounds),
		"Valid":        p.Sprintf("%d", s.Summary.Valid),
		"Valid Rate":   p.Sprintf("%.4f %%", 100.0*s.Summary.ValidRate),
		"Valid 95% CI": p.Sprintf("[%.4f%%,%.4f%%]", 100.0*s.Summary.ValidCI.Lo, 100.0*s.Summary.ValidCI.Hi),
		"Invalid":      p.Sprintf("%d", s.Summary.Invalid),
		"Failed":       p.Sprintf("%d", s.Summary.Failed),
		"Unique":       p.Sprintf("%d", s.Summary.Unique),
		"Avg Attempts": p.Sprintf("%.3f", s.Summary.AvgAttempts),
	}
	keys := []string{"Preset Name", "Preset ID", "Orders", "Total Rounds", "Valid", "Valid Rate", "Valid 95% CI", "Invalid", "Failed", "Unique", "Avg Attempts"}
	return keys, basic
}

func (s *VerifyReport) fmtOrders() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	keys := make([]string, 0, len(s.Orders))
	msg := make(map[string]string, len(s.Orders))
	for _, o := range s.Orders {
		k := p.Sprintf("n=%d (%s)", o.Order, o.Class)
		v := p.Sprintf("valid %d/%d | unique %d | avg %.1fµs", o.Valid, o.Rounds, o.Unique, o.AvgGenUs)
		if o.Failed > 0 {
			v += p.Sprintf(" | failed %d", o.Failed)
		}
		keys = append(keys, k)
		msg[k] = v
	}
	return keys, msg
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
