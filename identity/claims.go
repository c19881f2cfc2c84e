package identity

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-patient-portal/internal/utils"
)

// RolePlatformAdmin grants access to the admin overview.
const RolePlatformAdmin = "PlatformAdmin"

// TokenExpiry reads the exp claim of a JWT access token without verifying it.
// Opaque tokens and tokens without exp get now + one hour.
func TokenExpiry(rawToken string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return time.Now().Add(tokenLifetime)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Now().Add(tokenLifetime)
	}
	return exp.Time
}

// AccessTokenRoles reads rolesClaim from a JWT access token without verifying
// it. The API verifies the token; the portal only uses roles for display and
// navigation.
func AccessTokenRoles(rawToken, rolesClaim string) []string {
	if rolesClaim == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return nil
	}
	return RolesFromClaims(claims, rolesClaim)
}

// RolesFromClaims returns the string values of claims[rolesClaim], which may
// be a single string or a list.
func RolesFromClaims(claims map[string]any, rolesClaim string) []string {
	if rolesClaim == "" {
		return nil
	}
	return utils.ToStringSlice(claims[rolesClaim])
}

// HasRole reports whether role is among roles.
func HasRole(roles []string, role string) bool {
	return slices.Contains(roles, role)
}

func mergeRoles(a, b []string) []string {
	merged := slices.Clone(a)
	for _, r := range b {
		if !slices.Contains(merged, r) {
			merged = append(merged, r)
		}
	}
	return merged
}

func stringClaim(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}
