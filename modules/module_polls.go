package modules

import (
	"github.com/lunawell/tally/modules/polls"
)

func init() {
	Add(&polls.Module{})
}
