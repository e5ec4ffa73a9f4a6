package checkin

import (
	"honorbot/service"
)

// ButtonClaimID is the persistent component id for the check-in button.
// Persistent means the button keeps working after restarts: routing goes by
// custom id alone, no in-memory session.
const ButtonClaimID = "checkin_claim"

type Feature struct {
	accrualService service.AccrualService
}

func New(accrualService service.AccrualService) *Feature {
	return &Feature{
		accrualService: accrualService,
	}
}
