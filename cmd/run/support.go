package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"math"
	"math/big"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/magiclab"
	"github.com/zintix-labs/magiclab/demo"
	"github.com/zintix-labs/magiclab/sdk/verify"
	"github.com/zintix-labs/magiclab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	preset string
	order  int
	seed   int64
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.StringVar(&cfg.preset, "preset", "classic", "preset name")
	flag.IntVar(&cfg.order, "n", 5, "square order")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")

	flag.Parse()

	// given seed illeagel -> default seed
	if cfg.seed < 1 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed.Int64()
	}
}

// 這裡生成一張方陣並輸出到終端
func executeForge() {
	if cfg.order < 1 {
		log.Fatal("value err : n must > 0")
	}

	lab, err := demo.NewMagicLab()
	if err != nil {
		log.Fatal(err)
	}
	ent, ok := lab.EntryByName(cfg.preset)
	if !ok {
		log.Fatalf("preset not found: %s", cfg.preset)
	}
	f, err := lab.NewForgeWithSeed(ent.PID, cfg.seed)
	if err != nil {
		log.Fatal(err)
	}
	sr, err := f.GenerateInternal(cfg.order)
	if err != nil {
		log.Fatal(err)
	}

	// CellGap 是版面策略，留在設定檔；由 catalog 解碼取得
	gap := cellGap(lab, ent.PID)
	printGrid(sr.Square.Order, sr.Square.Cells, gap)

	// 獨立校驗，不信任 Forge 自檢的結論
	green := "\033[1;32m"
	red := "\033[1;31m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	v := verify.New()
	if v.Check(sr.Square.Order, sr.Square.Cells) {
		p.Printf("%s[PRESET:%s] [N:%d] [CLASS:%s] [ATTEMPTS:%d] [M:%d] valid%s\n",
			green, ent.Name, sr.Square.Order, sr.Class, sr.Attempts, sr.Square.Magic(), reset)
	} else {
		p.Printf("%s[PRESET:%s] [N:%d] [CLASS:%s] [ATTEMPTS:%d] invalid%s\n",
			red, ent.Name, sr.Square.Order, sr.Class, sr.Attempts, reset)
	}
}

func cellGap(lab *magiclab.Magiclab, id spec.PID) int {
	ps, err := lab.PresetSettingById(id)
	if err != nil {
		return 1
	}
	return ps.Render.CellGap
}

// printGrid 將盤面以等寬欄位輸出；欄寬以最大值的顯示寬度為準。
func printGrid(n int, cells []uint32, gap int) {
	p := message.NewPrinter(language.English)
	w := 0
	for _, v := range cells {
		if cw := runewidth.StringWidth(p.Sprintf("%d", v)); cw > w {
			w = cw
		}
	}
	sep := strings.Repeat(" ", gap)
	var b strings.Builder
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			s := p.Sprintf("%d", cells[r*n+c])
			if c > 0 {
				b.WriteString(sep)
			}
			b.WriteString(strings.Repeat(" ", w-runewidth.StringWidth(s)))
			b.WriteString(s)
		}
		b.WriteByte('\n')
	}
	fmt.Print(b.String())
}
