package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newPermRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	route := gin.New()
	route.GET("/images", ValidPerms("images", PERM_R), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return route
}

func TestValidPermsMissingAuthHeader(t *testing.T) {
	route := newPermRouter()
	{
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/images", nil)
		route.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	{
		// Header present but not of the "Bearer <token>" shape.
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/images", nil)
		req.Header.Set("Authorization", "Bearertoken")
		route.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestConvertAuthClaimToAccount(t *testing.T) {
	claim := AuthClaim{
		Sub:               "sub",
		Exp:               100,
		PreferredUsername: "user",
		RealmRoles:        []string{"UPLOADER"},
	}
	account := claim.ConvertAuthClaimToAccount()
	assert.Equal(t, "sub", account.ID)
	assert.Equal(t, "user", account.Username)
	assert.Equal(t, int64(100), account.ExpTime)
	assert.Equal(t, []string{"UPLOADER"}, account.SystemRoles)
}
