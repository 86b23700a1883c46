package dto

type ZoneOutput struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	BranchID    int64  `json:"branchId"`
	State       string `json:"state"`
	StateLabel  string `json:"stateLabel"`
	IconName    string `json:"iconName"`
	IsAvailable bool   `json:"isAvailable"`
}

type LoadOutput struct {
	Zones  []ZoneOutput `json:"zones"`
	Notice string       `json:"notice,omitempty"`
}

// FilterOutput.State is empty for the "all zones" filter.
type FilterOutput struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	State  string `json:"state,omitempty"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
}

type ZoneQuery struct {
	Search string
	State  string
}
