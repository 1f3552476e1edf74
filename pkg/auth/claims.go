package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/clubscouncil/portal-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT. Club
// accounts authenticate with their club id as the uid.
type AccessTokenPayload struct {
	UID  string
	Role enums.CallerRole
	JTI  string
}

// AccessTokenClaims represents the typed JWT issued by the identity service.
type AccessTokenClaims struct {
	UID  string           `json:"uid"`
	Role enums.CallerRole `json:"role"`
	jwt.RegisteredClaims
}
