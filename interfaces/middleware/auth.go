package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"trend-finder/domain/dto"
	"trend-finder/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// Auth accepts requests carrying a bearer JWT signed with secretKey (HS256).
// An empty secretKey rejects every request.
func Auth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

		authorization := ctx.Request.Header.Get("Authorization")
		if authorization == "" || secretKey == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		auth := strings.Split(authorization, "Bearer ")
		if len(auth) != 2 || auth[1] == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		claims, token, err := getClaim(auth[1], secretKey)
		if err == nil && token != nil && token.Valid {
			ctx.Set("subject", claims.Subject)
			ctx.Next()
			return
		}

		abort(err, &res)
		logger.GetLogger().WithField("error", err).Warn("Rejected bearer token")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
	}
}

func abort(err error, res *dto.Res) {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			res.ResponseMessage = "That's not even a token"
		} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			// Token is either expired or not active yet
			res.ResponseMessage = "Timing is everything"
		} else {
			res.ResponseMessage = fmt.Sprintf("Couldn't handle this token: %v", err)
		}
	}
}

func getClaim(raw string, secretKey string) (jwt.StandardClaims, *jwt.Token, error) {
	var claims jwt.StandardClaims
	token, err := jwt.ParseWithClaims(
		raw,
		&claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(secretKey), nil
		},
	)
	return claims, token, err
}
