package google

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	admin "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/option"
)

func (c *Config) Validate() error {
	var errors []string
	if c.ClientID == "" {
		errors = append(errors, "ClientID is required")
	}
	if c.ClientSecret == "" {
		errors = append(errors, "ClientSecret is required")
	}
	if c.ServiceAccountConfigJsonPath == "" && len(c.AllowedGroups) > 0 {
		errors = append(errors, "ServiceAccountConfigJsonPath is required to check AllowedGroups")
	}
	if c.Issuer == "" {
		errors = append(errors, "Issuer is required")
	}
	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, ", "))
	}
	return nil
}

// Warnings lists settings that are valid but probably not intended.
func (c *Config) Warnings() []string {
	var warnings []string
	if len(c.AllowedDomains) == 0 {
		warnings = append(warnings, "AllowedDomains is empty, all domains will be allowed")
	}
	if len(c.AllowedGroups) == 0 {
		warnings = append(warnings, "AllowedGroups is empty, all groups will be allowed")
	}
	if len(c.Scopes) == 0 {
		warnings = append(warnings, "Scopes is empty")
	}
	return warnings
}

func NewAuthFromConfig(ctx context.Context, config *Config) (*Auth, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	provider, err := oidc.NewProvider(ctx, config.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create oidc provider: %w", err)
	}

	auth := &Auth{
		allowedDomains: config.AllowedDomains,
		allowedGroups:  config.AllowedGroups,
		cookieSecure:   config.CookieSecure,
		oauthConfig: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       config.Scopes,
			Endpoint:     google.Endpoint,
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: config.ClientID}),
	}

	if len(config.AllowedGroups) > 0 {
		adminService, err := newAdminService(ctx, config.ServiceAccountConfigJsonPath)
		if err != nil {
			return nil, err
		}
		auth.isMember = func(ctx context.Context, group, email string) (bool, error) {
			res, err := adminService.Members.HasMember(group, email).Context(ctx).Do()
			if err != nil {
				return false, err
			}
			return res.IsMember, nil
		}
	}
	return auth, nil
}

func newAdminService(ctx context.Context, serviceAccountPath string) (*admin.Service, error) {
	data, err := os.ReadFile(serviceAccountPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account config: %w", err)
	}
	jwtConfig, err := google.JWTConfigFromJSON(data, admin.AdminDirectoryGroupMemberReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT config: %w", err)
	}
	adminService, err := admin.NewService(ctx, option.WithTokenSource(jwtConfig.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create admin service: %w", err)
	}
	return adminService, nil
}
