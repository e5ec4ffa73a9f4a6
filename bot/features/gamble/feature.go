package gamble

import (
	"honorbot/service"
)

// Persistent component ids for the lucky draw button.
const ButtonLuckyDrawID = "gamble_lucky_draw"

type Feature struct {
	wagerService     service.WagerService
	cfg              service.WagerConfig
	luckyDrawEnabled bool
}

func New(wagerService service.WagerService, cfg service.WagerConfig, luckyDrawEnabled bool) *Feature {
	return &Feature{
		wagerService:     wagerService,
		cfg:              cfg,
		luckyDrawEnabled: luckyDrawEnabled,
	}
}

// LuckyDrawEnabled reports whether the lucky draw surface is switched on
func (f *Feature) LuckyDrawEnabled() bool {
	return f.luckyDrawEnabled
}
