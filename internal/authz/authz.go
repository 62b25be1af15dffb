// Package authz resolves the caller identity from authorizer claims.
package authz

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimUsername is the Cognito claim carrying the user name.
const ClaimUsername = "cognito:username"

// Public is the identity used when the request carries no user claim.
const Public = "public"

// Resolve returns the user name claim, or Public when claims is nil, lacks the
// claim, or holds an empty value. It never fails.
func Resolve(claims map[string]string) string {
	if v, ok := claims[ClaimUsername]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return Public
}

// --- small utils ---

// headerLookup returns the value of a header key from a map.
func headerLookup(h map[string]string, key string) string {
	if len(h) == 0 {
		return ""
	}
	lk := strings.ToLower(key)
	for k, v := range h {
		if strings.ToLower(k) == lk {
			return v
		}
	}
	return ""
}

// flatten converts a decoded claims object into string values.
func flatten(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch s := v.(type) {
		case string:
			out[k] = s
		case nil:
		default:
			out[k] = fmt.Sprint(s)
		}
	}
	return out
}

// claimsFrom normalizes the shapes API Gateway uses for the "claims" entry.
func claimsFrom(raw any) map[string]string {
	switch c := raw.(type) {
	case map[string]string:
		return c
	case map[string]any:
		return flatten(c)
	case string:
		var m map[string]any
		if json.Unmarshal([]byte(c), &m) == nil {
			return flatten(m)
		}
	}
	return nil
}

// ClaimsFromAPIGWv1 extracts the Cognito authorizer claims from a REST (v1)
// proxy request. It returns nil when the request was not authorized.
func ClaimsFromAPIGWv1(req events.APIGatewayProxyRequest) map[string]string {
	if m := req.RequestContext.Authorizer; m != nil {
		return claimsFrom(m["claims"])
	}
	return nil
}

// ClaimsFromBearer reads the claims of the bearer token in the Authorization
// header without verifying its signature. Only the local server uses it; in
// Lambda the API Gateway authorizer has already verified the token.
func ClaimsFromBearer(headers map[string]string) map[string]string {
	auth := strings.TrimSpace(headerLookup(headers, "Authorization"))
	if auth == "" {
		return nil
	}
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		auth = strings.TrimSpace(auth[len("bearer "):])
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(auth, claims); err != nil {
		return nil
	}
	return flatten(claims)
}
