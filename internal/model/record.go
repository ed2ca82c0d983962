package model

import "fmt"

// PendingRow is a sheet row whose target columns are not fully populated.
// Row is the 1-based sheet row number; column indices are 0-based and come
// from the header row resolved at scan time.
type PendingRow struct {
	ProfileURL string
	Row        int
	AdsCol     int
	DaysCol    int
	OverallCol int
}

// Experience is a single employment entry on a profile.
type Experience struct {
	Title       string
	CompanyLink string
}

// Profile holds the looked-up profile data for one identifier. Experiences
// are ordered most recent first, as returned by the lookup service.
type Profile struct {
	URL         string
	Experiences []Experience
}

// Company is an enriched company record. AllTimeAds and Last30Ads start at
// zero and are attached by the ad-count stage.
type Company struct {
	ID         string
	Name       string
	AllTimeAds int
	Last30Ads  int
}

// RowUpdate is the final write unit for one pending row: the three cell
// values plus the positions they go back to.
type RowUpdate struct {
	ProfileURL string
	AllTime    int
	Last30     int
	Flag       string
	Row        int
	AdsCol     int
	DaysCol    int
	OverallCol int
}

// ColumnLetter converts a 0-based column index into its A1-notation letter.
// The store contract caps sheets at 26 columns (reads cover A1:Z), so
// indices outside 0-25 indicate a programming error.
func ColumnLetter(index int) string {
	if index < 0 || index > 25 {
		panic(fmt.Sprintf("model: column index %d out of A-Z range", index))
	}
	return string(rune('A' + index))
}
