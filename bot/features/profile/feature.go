package profile

import (
	"honorbot/service"
)

type Feature struct {
	userService        service.UserService
	accrualService     service.AccrualService
	leaderboardService service.LeaderboardService
}

func New(userService service.UserService, accrualService service.AccrualService, leaderboardService service.LeaderboardService) *Feature {
	return &Feature{
		userService:        userService,
		accrualService:     accrualService,
		leaderboardService: leaderboardService,
	}
}
