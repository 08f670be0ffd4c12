package auth

import (
	"strings"

	"github.com/createconomy/cemvp/internal/models"
)

// RoleConfig lists the addresses and domains that map to elevated roles
type RoleConfig struct {
	AdminEmails        []string
	AdminEmailDomains  []string
	SellerEmailDomains []string
	DefaultRole        models.Role
}

// RoleClassifier assigns a role to a newly seen email address
type RoleClassifier struct {
	adminEmails   map[string]struct{}
	adminDomains  map[string]struct{}
	sellerDomains map[string]struct{}
	defaultRole   models.Role
}

// NewRoleClassifier creates a new RoleClassifier. Matching is case-insensitive.
func NewRoleClassifier(cfg RoleConfig) *RoleClassifier {
	defaultRole := cfg.DefaultRole
	if defaultRole == "" {
		defaultRole = models.RoleUser
	}
	return &RoleClassifier{
		adminEmails:   lowerSet(cfg.AdminEmails),
		adminDomains:  lowerSet(cfg.AdminEmailDomains),
		sellerDomains: lowerSet(cfg.SellerEmailDomains),
		defaultRole:   defaultRole,
	}
}

// Classify returns the role for email. Exact admin addresses win over admin
// domains, which win over seller domains.
func (c *RoleClassifier) Classify(email string) models.Role {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, ok := c.adminEmails[email]; ok {
		return models.RoleAdmin
	}

	domain := emailDomain(email)
	if domain == "" {
		return c.defaultRole
	}
	if _, ok := c.adminDomains[domain]; ok {
		return models.RoleAdmin
	}
	if _, ok := c.sellerDomains[domain]; ok {
		return models.RoleSeller
	}

	return c.defaultRole
}

// emailDomain returns the text between the first and second "@", or "" when there is no "@"
func emailDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
