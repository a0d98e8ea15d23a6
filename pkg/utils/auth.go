package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/fundraise-go/pkg/types"
)

func claimsFromContext(c *gin.Context) (*types.Claims, error) {
	claimsVal, exists := c.Get("claims")
	if !exists {
		return nil, errors.New("user claims not found in context")
	}

	claims, ok := claimsVal.(*types.Claims)
	if !ok {
		return nil, errors.New("invalid user claims type")
	}
	return claims, nil
}

var GetUserIDFromContext = func(c *gin.Context) (string, error) {
	claims, err := claimsFromContext(c)
	if err != nil {
		return "", err
	}
	if claims.UID() == "" {
		return "", errors.New("user id claim is empty")
	}
	return claims.UID(), nil
}
