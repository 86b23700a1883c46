package dto

type EntryOutput struct {
	InventaryID int64  `json:"inventaryId"`
	Date        string `json:"date"`
	ZoneID      int64  `json:"zoneId"`
	ZoneName    string `json:"zoneName"`
	BranchID    int64  `json:"branchId"`
}

type LoadOutput struct {
	BranchID int64         `json:"branchId"`
	Bound    bool          `json:"bound"`
	Entries  []EntryOutput `json:"entries"`
}
