package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/novalearn/novalearn/core"
	"github.com/novalearn/novalearn/core/auth"
	"github.com/novalearn/novalearn/core/lms"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    []byte(core.Conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	IsStudent    bool   `json:"is_student,omitempty"`    // -> STUDENT DASHBOARD
	IsInstructor bool   `json:"is_instructor,omitempty"` // -> INSTRUCTOR DASHBOARD
	IsAdmin      bool   `json:"is_admin,omitempty"`      // -> ADMIN DASHBOARD
	IsContent    bool   `json:"is_content,omitempty"`    // -> CONTENT DASHBOARD
}

func GetUserClaims(usr lms.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   usr.ID,
			Audience:  "NovaLearn",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email:        usr.Email,
		Role:         usr.Role,
		IsStudent:    usr.Role == lms.RoleStudent,
		IsInstructor: usr.Role == lms.RoleInstructor,
		IsAdmin:      usr.Role == lms.RoleAdmin,
		IsContent:    usr.Role == lms.RoleContent,
	}
}

// authenticate verifies credentials against the Domain Store, then records
// the merged identity on the Auth Session. The two error messages are kept
// distinct to match the legacy client, a minor information disclosure noted
// in its docs.
func authenticate(email, pwd string, store *lms.Store, hasher auth.Hasher, session *auth.Session) (*Claims, error) {
	usr, err := store.GetUserByEmail(email)
	if err != nil {
		if errors.Cause(err) == lms.ErrNotFound {
			return nil, errNoAccount
		}
		return nil, errors.Wrap(err, "finding user by email")
	}
	if usr.Password == "" || hasher.Compare(usr.Password, pwd) != nil {
		return nil, errIncorrectPassword
	}
	if usr.Disabled {
		return nil, errAccountDisabled
	}
	if _, err = session.Login(usr.Email, usr.Role, usr.ID); err != nil {
		return nil, errors.Wrap(err, "recording session identity")
	}
	return GetUserClaims(usr), nil
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (*Claims, error) {
	token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token)
	if !ok {
		return nil, errors.New("JWT token not found in echo.Context")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("claims not found in JWT token")
	}
	return claims, nil
}
