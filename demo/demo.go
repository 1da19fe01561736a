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

package demo

import (
	"github.com/zintix-labs/magiclab"
	"github.com/zintix-labs/magiclab/catalog"
	"github.com/zintix-labs/magiclab/demo/demo_configs"
	"github.com/zintix-labs/magiclab/errs"
	"github.com/zintix-labs/magiclab/sdk/core"
	"github.com/zintix-labs/magiclab/sdk/gen"
	"github.com/zintix-labs/magiclab/server/logger"
	"github.com/zintix-labs/magiclab/server/svrcfg"
)

func New() (*catalog.Catalog, error) {
	return catalog.New(demo_configs.FS)
}

func NewServerConfig() (*svrcfg.SvrCfg, error) {
	lab, err := magiclab.NewAuto(
		core.Default(),
		magiclab.Configs(demo_configs.FS),
		gen.DefaultRegistry(),
	)
	if err != nil {
		return nil, errs.NewFatal("new magiclab failed:" + err.Error())
	}
	scfg := &svrcfg.SvrCfg{
		Log:          logger.NewDefaultAsyncLogger(logger.ModeDev),
		ForgeBufSize: 1,
		Magiclab:     lab,
	}
	return scfg, nil
}

func NewMagicLab() (*magiclab.Magiclab, error) {
	return magiclab.NewAuto(
		core.Default(),
		magiclab.Configs(demo_configs.FS),
		gen.DefaultRegistry(),
	)
}
