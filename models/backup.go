package models

import (
	"time"
)

// AccountRecord is the serialized form of a UserAccount used by the
// backup export/import surface. Field names match the persisted layout so a
// previously exported file can always be re-imported.
type AccountRecord struct {
	UserID              int64     `json:"userId"`
	DisplayName         string    `json:"displayName"`
	Balance             int64     `json:"balance"`
	LastRewardAt        time.Time `json:"lastRewardAt"`
	DailyRewardCount    int       `json:"dailyRewardCount"`
	DailyWindowStart    time.Time `json:"dailyWindowStart"`
	LastCheckinAt       time.Time `json:"lastCheckinAt"`
	CheckinStreak       int       `json:"checkinStreak"`
	LastWagerAt         time.Time `json:"lastWagerAt"`
	DailyWagerCount     int       `json:"dailyWagerCount"`
	BalanceAtMonthStart int64     `json:"balanceAtMonthStart"`
	MonthSnapshotAt     time.Time `json:"monthSnapshotAt"`
	CreatedAt           time.Time `json:"createdAt"`
}

// ImportReport summarizes a bulk import. Individual record failures do not
// abort the batch; they are counted and logged instead.
type ImportReport struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}
