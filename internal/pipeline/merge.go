package pipeline

import (
	"strings"

	"github.com/sells-group/adwatch/internal/model"
)

// Merge joins the batch's pending rows with their looked-up profiles and
// collected companies into one update per row, in original batch order.
// Profiles arrive unordered, so rows are re-associated by identifier;
// companies are matched by numeric company ID. Rows with no profile or
// no matching company get zero metrics and a "n" flag. Merge is pure:
// identical inputs always produce identical output.
func Merge(batch []model.PendingRow, profiles []model.Profile, companies []model.Company) []model.RowUpdate {
	profileByURL := make(map[string]model.Profile, len(profiles))
	for _, p := range profiles {
		key := canonicalProfileURL(p.URL)
		if key == "" {
			continue
		}
		// first match wins on duplicates
		if _, ok := profileByURL[key]; !ok {
			profileByURL[key] = p
		}
	}

	companyByID := make(map[string]model.Company, len(companies))
	for _, c := range companies {
		if c.ID == "" {
			continue
		}
		if _, ok := companyByID[c.ID]; !ok {
			companyByID[c.ID] = c
		}
	}

	updates := make([]model.RowUpdate, 0, len(batch))
	for _, row := range batch {
		var allTime, last30 int

		if p, ok := profileByURL[canonicalProfileURL(row.ProfileURL)]; ok {
			if id := CompanyID(firstCompanyLink(p)); id != "" {
				if c, ok := companyByID[id]; ok {
					allTime = c.AllTimeAds
					last30 = c.Last30Ads
				}
			}
		}

		flag := "n"
		if allTime > 0 || last30 > 0 {
			flag = "y"
		}

		updates = append(updates, model.RowUpdate{
			ProfileURL: row.ProfileURL,
			AllTime:    allTime,
			Last30:     last30,
			Flag:       flag,
			Row:        row.Row,
			AdsCol:     row.AdsCol,
			DaysCol:    row.DaysCol,
			OverallCol: row.OverallCol,
		})
	}
	return updates
}

// canonicalProfileURL normalizes a profile URL for matching: lowercase,
// query string stripped, trailing slash trimmed.
func canonicalProfileURL(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/")
}
