package app

import (
	"github.com/vk/gradegrid/internal/registry"
	"github.com/vk/gradegrid/modules/checkstyle"
	"github.com/vk/gradegrid/modules/filenames"
	"github.com/vk/gradegrid/modules/interactive"
	"github.com/vk/gradegrid/modules/ipo"
	"github.com/vk/gradegrid/modules/javalyzer"
)

// coreModules is the definitive list of all delegates that are compiled into
// the gradegrid binary.
var coreModules = []registry.Module{
	&filenames.Module{},
	&javalyzer.Module{},
	&ipo.Module{},
	&interactive.Module{},
	&checkstyle.Module{},
}
