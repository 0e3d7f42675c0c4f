package http

import (
	"errors"
	"net/http"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"
	"liyu1981.xyz/energy-dashboard-service/pkg/auth"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

var signupRequestSchema = z.Struct(z.Shape{
	"name":     z.String().Trim().Required(z.Message("Name is required")).Min(2, z.Message("Name must be at least 2 characters")),
	"email":    z.String().Trim().Required(z.Message("Email is required")).Email(z.Message("Please provide a valid email")),
	"password": z.String().Required(z.Message("Password is required")).Min(6, z.Message("Password must be at least 6 characters")),
})

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var loginRequestSchema = z.Struct(z.Shape{
	"email":    z.String().Trim().Required(z.Message("Email is required")).Email(z.Message("Please provide a valid email")),
	"password": z.String().Required(z.Message("Password is required")),
})

func userResponse(u models.User) gin.H {
	return gin.H{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"role":      u.Role,
		"lastLogin": u.LastLogin,
		"createdAt": u.CreatedAt,
	}
}

func (rs *RestfulServer) Signup(c *gin.Context) {
	var req SignupRequest
	if errs := signupRequestSchema.Parse(zhttp.Request(c.Request), &req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": errs})
		return
	}

	res, err := rs.Auth.Signup(c.Request.Context(), auth.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User already exists with this email"})
			return
		}
		fail(c, "creating user", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      userResponse(res.User),
	})
}

func (rs *RestfulServer) Login(c *gin.Context) {
	var req LoginRequest
	if errs := loginRequestSchema.Parse(zhttp.Request(c.Request), &req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": errs})
		return
	}

	res, err := rs.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
			return
		}
		fail(c, "logging in", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      userResponse(res.User),
	})
}

func (rs *RestfulServer) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": userResponse(*user)})
}

func (rs *RestfulServer) Logout(c *gin.Context) {
	if err := rs.Auth.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		fail(c, "logging out", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
