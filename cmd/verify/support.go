package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"math"
	"math/big"
	"strconv"

	"github.com/zintix-labs/magiclab/demo"
	"github.com/zintix-labs/magiclab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	name      string
	id        spec.PID
	worker    int
	minOrder  int
	maxOrder  int
	samples   int
	timing    bool
	seed      int64
	pprofmode string
}

type pidFlag struct{ p *spec.PID }

func (f pidFlag) String() string { return fmt.Sprint(uint(*f.p)) }
func (f pidFlag) Set(s string) error {
	u, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return err
	}
	*f.p = spec.PID(uint(u))
	return nil
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.Var(pidFlag{&cfg.id}, "preset", "target preset id")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.IntVar(&cfg.minOrder, "min", 1, "minimum square order")
	flag.IntVar(&cfg.maxOrder, "max", 64, "maximum square order")
	flag.IntVar(&cfg.samples, "samples", 1000, "samples per order")
	flag.BoolVar(&cfg.timing, "timing", false, "estimate generation latency quantiles")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

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

// 這裡解析並分支要執行的驗證器
func executeVerifier() {
	cfg.valid() // 基本檢查

	lab, err := demo.NewMagicLab()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.id == 0 {
		// 未指定預設集時取目錄第一個
		ids := lab.IDs()
		if len(ids) == 0 {
			log.Fatal("no preset registered")
		}
		cfg.id = ids[0]
	}
	vr, err := lab.NewVerifierWithSeed(cfg.id, cfg.seed)
	if err != nil {
		log.Fatal(err)
	}
	ent, _ := lab.EntryById(cfg.id)
	cfg.name = ent.Name
	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)

	if cfg.timing { // 批次驗證 + 生成耗時分位數
		p.Printf("%s[WORKERS:%d] [PRESET:%s] [ORDERS:%d..%d] [SAMPLES:%d] [TIMING]%s\n", green, cfg.worker, cfg.name, cfg.minOrder, cfg.maxOrder, cfg.samples, reset)
		st, est, used, err := vr.VerifyTiming(cfg.minOrder, cfg.maxOrder, cfg.samples, cfg.worker, true)
		if err != nil {
			log.Fatal(err)
		}
		st.StdOut(used)
		est.Out()
	} else if cfg.worker == 1 { // 單線程
		p.Printf("%s[PRESET:%s] [ORDERS:%d..%d] [SAMPLES:%d]%s\n", green, cfg.name, cfg.minOrder, cfg.maxOrder, cfg.samples, reset)
		st, used, err := vr.Verify(cfg.minOrder, cfg.maxOrder, cfg.samples, true)
		if err != nil {
			log.Fatal(err)
		}
		st.StdOut(used)
	} else {
		p.Printf("%s[WORKERS:%d] [PRESET:%s] [ORDERS:%d..%d] [SAMPLES:%d]%s\n", green, cfg.worker, cfg.name, cfg.minOrder, cfg.maxOrder, cfg.worker*cfg.samples, reset)
		st, used, err := vr.VerifyMP(cfg.minOrder, cfg.maxOrder, cfg.samples, cfg.worker, true) // 併發
		if err != nil {
			log.Fatal(err)
		}
		st.StdOut(used)
	}
}

func (cfg *config) valid() {
	p := message.NewPrinter(language.English)

	// 工作協程檢查(併發數)
	if cfg.worker < 1 {
		log.Fatal("value err : workers must > 0")
	}

	// 階數範圍檢查
	if cfg.minOrder < 1 {
		log.Fatal("value err : min order must > 0")
	}
	if cfg.maxOrder < cfg.minOrder {
		log.Fatal("value err : max order must >= min order")
	}

	// 張數檢查
	if cfg.samples < 1 {
		log.Fatal("value err : samples must > 0")
	}

	// 耗時估計的時候，每個階數最高不超過15000張(無意義)
	// 分位數在上萬筆之後已經穩定，直接跑長批次驗證即可
	if cfg.timing && cfg.samples > 15000 {
		p.Printf("too much samples for timing : %d resized to 15k samples per order\n", cfg.samples)
		cfg.samples = 15000
	}
}
