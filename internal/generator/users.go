package generator

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"formbricks-seeder/internal/common/validation"
	"formbricks-seeder/internal/models"
)

var emailDomains = []string{"company.com", "business.io", "enterprise.ai", "startup.tech"}

// roleQuota is filled in order; every user past the quota is a viewer.
var roleQuota = []struct {
	role  models.Role
	count int
}{
	{role: models.RoleOwner, count: 2},
	{role: models.RoleManager, count: 3},
	{role: models.RoleAdmin, count: 2},
}

var nonLocalChars = regexp.MustCompile(`[^a-z0-9]+`)

// AssignRoles returns n roles: 2 owners, 3 managers, 2 admins, then viewers.
// For n < 7 the quota is cut short in the same order.
func AssignRoles(n int) []models.Role {
	roles := make([]models.Role, 0, n)
	for _, q := range roleQuota {
		for i := 0; i < q.count && len(roles) < n; i++ {
			roles = append(roles, q.role)
		}
	}
	for len(roles) < n {
		roles = append(roles, models.RoleViewer)
	}
	return roles
}

// generateUsers builds n users with unique, valid emails.
func generateUsers(n int, rng *rand.Rand, faker *gofakeit.Faker) []models.User {
	roles := AssignRoles(n)
	users := make([]models.User, 0, n)
	seen := make(map[string]struct{}, n)

	for i := 0; i < n; i++ {
		first := faker.FirstName()
		last := faker.LastName()
		domain := emailDomains[rng.Intn(len(emailDomains))]

		email := uniqueEmail(localPart(first, last), domain, seen)
		users = append(users, models.User{
			Name:         fmt.Sprintf("%s %s", first, last),
			Email:        email,
			Role:         roles[i],
			Organization: faker.Company(),
		})
	}
	return users
}

func localPart(first, last string) string {
	clean := func(s string) string {
		return strings.Trim(nonLocalChars.ReplaceAllString(strings.ToLower(s), ""), ".")
	}
	f, l := clean(first), clean(last)
	switch {
	case f == "" && l == "":
		return "user"
	case f == "":
		return l
	case l == "":
		return f
	}
	return f + "." + l
}

func uniqueEmail(local, domain string, seen map[string]struct{}) string {
	email := fmt.Sprintf("%s@%s", local, domain)
	for n := 2; ; n++ {
		if _, dup := seen[email]; !dup && validation.ValidateEmail(email) {
			break
		}
		email = fmt.Sprintf("%s%d@%s", local, n, domain)
	}
	seen[email] = struct{}{}
	return email
}
