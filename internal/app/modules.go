package app

import (
	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/modules/concat"
	"github.com/vk/pipegraph/modules/csvload"
	"github.com/vk/pipegraph/modules/csvsave"
	"github.com/vk/pipegraph/modules/regextool"
)

// coreModules is the definitive list of all plugin modules that are
// compiled into the pipegraph binary.
var coreModules = []plugin.Module{
	&csvload.Module{},
	&regextool.Module{},
	&concat.Module{},
	&csvsave.Module{},
}
