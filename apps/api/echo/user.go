package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/novalearn/novalearn/core/auth"
	"github.com/novalearn/novalearn/core/lms"
)

type userApi struct {
	store   *lms.Store
	session *auth.Session
	hasher  auth.Hasher
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := userApi{
		store:   opts.Store,
		session: opts.Session,
		hasher:  opts.Hasher,
	}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/register", api.register)
	ug.POST("/login", api.login)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/logout", api.logout)
	ag.GET("/session", api.getSession)
	ag.GET("", api.query, roleMiddleware(lms.RoleAdmin))
	ag.PUT("/:id", api.update, roleMiddleware(lms.RoleAdmin))
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data lms.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.store); err != nil {
		return err
	}

	hashed, err := api.hasher.Hash(data.Password)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	data.Password = hashed

	usr, err := api.store.AddUser(data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	if _, err = api.store.AddActivity("user_registered", usr.Email+" registered", lms.ActivityExtra{UserID: usr.ID, Role: usr.Role}); err != nil {
		return errors.Wrap(err, "recording activity")
	}

	return ctx.JSON(http.StatusCreated, usr.Sanitized())
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(data.Email, data.Password, api.store, api.hasher, api.session)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	usr, err := api.store.GetUserByEmail(data.Email)
	if err != nil {
		return errors.Wrap(err, "reloading user")
	}
	if _, err = api.store.AddActivity("user_login", usr.Email+" signed in", lms.ActivityExtra{UserID: usr.ID, Role: usr.Role}); err != nil {
		return errors.Wrap(err, "recording activity")
	}

	ident, _ := api.session.Current()
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr.Sanitized(), Ident: ident})
}

func (api *userApi) logout(ctx echo.Context) error {
	if err := api.session.Logout(); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Signed out."})
}

func (api *userApi) getSession(ctx echo.Context) error {
	ident, ok := api.session.Current()
	return ctx.JSON(http.StatusOK, SessionResponse{Authenticated: ok, Identity: ident})
}

func (api *userApi) query(ctx echo.Context) error {
	users := api.store.Users()
	out := make([]lms.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	return ctx.JSON(http.StatusOK, out)
}

func (api *userApi) update(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.store.GetUserByID(id); err != nil {
		return errHttpNotFound
	}

	var patch lms.UserPatch
	if err := ctx.Bind(&patch); err != nil {
		return errors.Wrap(err, "binding to UserPatch")
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	if patch.Password != nil {
		hashed, err := api.hasher.Hash(*patch.Password)
		if err != nil {
			return errors.Wrap(err, "hashing password")
		}
		patch.Password = &hashed
	}

	if err := api.store.UpdateUser(id, patch); err != nil {
		return errors.Wrap(err, "updating user")
	}
	usr, err := api.store.GetUserByID(id)
	if err != nil {
		return errors.Wrap(err, "reloading user")
	}
	return ctx.JSON(http.StatusOK, usr.Sanitized())
}
