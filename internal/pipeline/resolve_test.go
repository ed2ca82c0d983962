package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/adwatch/internal/model"
)

func TestNormalizeCompanyURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"tracking params stripped",
			"https://www.linkedin.com/company/1234/?trk=profile",
			"https://www.linkedin.com/company/1234",
		},
		{
			"trailing slash trimmed",
			"https://www.linkedin.com/company/acme-corp/",
			"https://www.linkedin.com/company/acme-corp",
		},
		{
			"extra path segments dropped",
			"https://www.linkedin.com/company/acme-corp/about/",
			"https://www.linkedin.com/company/acme-corp",
		},
		{
			"no company segment",
			"https://www.linkedin.com/in/somebody",
			"",
		},
		{
			"empty slug",
			"https://www.linkedin.com/company/",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCompanyURL(tt.in))
		})
	}
}

func TestResolveCompanyURL(t *testing.T) {
	withLink := func(link string) model.Profile {
		return model.Profile{
			URL:         "https://www.linkedin.com/in/x",
			Experiences: []model.Experience{{CompanyLink: link}},
		}
	}

	assert.Equal(t, "https://www.linkedin.com/company/987",
		ResolveCompanyURL(withLink("https://www.linkedin.com/company/987?refId=abc")))

	assert.Empty(t, ResolveCompanyURL(model.Profile{}), "no experiences")
	assert.Empty(t, ResolveCompanyURL(withLink("")), "empty link")
	assert.Empty(t, ResolveCompanyURL(withLink("N/A")), "placeholder link")
	assert.Empty(t, ResolveCompanyURL(withLink("https://example.com/company/1")), "wrong host")

	// Only the first experience is consulted.
	p := model.Profile{
		Experiences: []model.Experience{
			{CompanyLink: ""},
			{CompanyLink: "https://www.linkedin.com/company/999"},
		},
	}
	assert.Empty(t, ResolveCompanyURL(p))
}

func TestCompanyID(t *testing.T) {
	assert.Equal(t, "1234", CompanyID("https://www.linkedin.com/company/1234"))
	assert.Equal(t, "1234", CompanyID("https://www.linkedin.com/company/1234/?trk=x"))
	assert.Empty(t, CompanyID("https://www.linkedin.com/company/acme-corp"), "non-numeric slug")
	assert.Empty(t, CompanyID(""))
}
