package app

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/DJKwan1228/phonebook/internal/phonebook"
	"github.com/DJKwan1228/phonebook/internal/sec"
	"github.com/DJKwan1228/phonebook/internal/storage"
	"github.com/DJKwan1228/phonebook/internal/storage/db"
)

type handler struct {
	auth     *sec.Authenticator
	sessions *sec.SessionManager
	records  *phonebook.Service
	logger   *slog.Logger
}

func (h handler) register(e *echo.Echo) {
	e.GET("/", h.home)
	e.GET("/login", h.loginForm)
	e.POST("/login", h.login)
	e.GET("/register", h.registerForm)
	e.POST("/register", h.registerAccount)
	e.GET("/logout", h.logout)

	protected := e.Group("", h.sessions.Middleware)
	protected.GET("/phonebook", h.phonebook)
	protected.GET("/create", h.editForm)
	protected.POST("/create", h.upsert)
	protected.GET("/delete", h.deleteForm)
	protected.POST("/deleteRecord", h.deleteRecord)
	protected.GET("/cancel", h.cancel)
	protected.GET("/excelExport", h.excelExport)
}

func (h handler) home(c echo.Context) error {
	return c.Render(http.StatusOK, "home", h.pageData(c, nil))
}

func (h handler) loginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login", h.pageData(c, nil))
}

func (h handler) login(c echo.Context) error {
	identifier := c.FormValue("identifier")
	password := c.FormValue("password")

	_, cookie, err := h.auth.Login(c.Request().Context(), identifier, password)
	switch {
	case errors.Is(err, sec.ErrInvalidCredentials), errors.Is(err, sec.ErrMissingCredentials):
		return c.Redirect(http.StatusFound, "/login")
	case err != nil:
		return h.serverError(c, "login failed", err)
	}

	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, "/phonebook")
}

func (h handler) registerForm(c echo.Context) error {
	return c.Render(http.StatusOK, "register", h.pageData(c, nil))
}

func (h handler) registerAccount(c echo.Context) error {
	identifier := c.FormValue("identifier")
	password := c.FormValue("password")

	_, cookie, err := h.auth.Register(c.Request().Context(), identifier, password)
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		return c.Render(http.StatusConflict, "register", h.pageData(c, map[string]any{
			"Error": "That identifier is already taken. Try logging in instead.",
		}))
	case errors.Is(err, sec.ErrMissingCredentials), errors.Is(err, storage.ErrInvalidIdentifier):
		return c.Render(http.StatusBadRequest, "register", h.pageData(c, map[string]any{
			"Error": "An identifier and password are both required.",
		}))
	case err != nil:
		return h.serverError(c, "registration failed", err)
	}

	// auto-login on register
	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, "/phonebook")
}

func (h handler) logout(c echo.Context) error {
	if cookie, err := c.Cookie(sec.CookieName); err == nil && cookie != nil {
		if err := h.auth.Logout(c.Request().Context(), cookie.Value); err != nil {
			return h.serverError(c, "logout failed", err)
		}
	}
	c.SetCookie(h.sessions.ClearCookie())
	return c.Redirect(http.StatusFound, "/")
}

func (h handler) phonebook(c echo.Context) error {
	identity := sec.GetAuthenticatedUser(c.Request().Context())
	record, err := h.records.Record(c.Request().Context(), identity.UserID)
	if err != nil {
		return h.serverError(c, "failed to read contact record", err)
	}
	return c.Render(http.StatusOK, "phonebook", h.pageData(c, map[string]any{
		"Identity":  identity,
		"Record":    record,
		"HasRecord": !record.IsZero(),
	}))
}

func (h handler) editForm(c echo.Context) error {
	identity := sec.GetAuthenticatedUser(c.Request().Context())
	record, err := h.records.Record(c.Request().Context(), identity.UserID)
	if err != nil {
		return h.serverError(c, "failed to read contact record", err)
	}
	return c.Render(http.StatusOK, "create", h.pageData(c, map[string]any{
		"Identity": identity,
		"Record":   record,
	}))
}

func (h handler) upsert(c echo.Context) error {
	identity := sec.GetAuthenticatedUser(c.Request().Context())
	record := db.Contact{
		Name:   c.FormValue("name"),
		Mobile: c.FormValue("mobile"),
		Email:  c.FormValue("email"),
	}
	if err := h.records.Upsert(c.Request().Context(), identity.UserID, record); err != nil {
		return h.serverError(c, "failed to save contact record", err)
	}
	return c.Redirect(http.StatusFound, "/phonebook")
}

func (h handler) deleteForm(c echo.Context) error {
	identity := sec.GetAuthenticatedUser(c.Request().Context())
	record, err := h.records.Record(c.Request().Context(), identity.UserID)
	if err != nil {
		return h.serverError(c, "failed to read contact record", err)
	}
	return c.Render(http.StatusOK, "delete", h.pageData(c, map[string]any{
		"Identity": identity,
		"Record":   record,
	}))
}

func (h handler) deleteRecord(c echo.Context) error {
	identity := sec.GetAuthenticatedUser(c.Request().Context())
	if err := h.records.Clear(c.Request().Context(), identity.UserID); err != nil {
		return h.serverError(c, "failed to clear contact record", err)
	}
	return c.Redirect(http.StatusFound, "/phonebook")
}

func (h handler) cancel(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/phonebook")
}

func (h handler) excelExport(c echo.Context) error {
	identity := sec.GetAuthenticatedUser(c.Request().Context())
	data, err := h.records.Export(c.Request().Context(), identity)
	if err != nil {
		return h.serverError(c, "failed to export contact record", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+phonebook.ExportFilename+`"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// serverError logs the cause and returns a generic failure. Storage and
// hashing errors are never surfaced to the client.
func (h handler) serverError(c echo.Context, msg string, err error) error {
	h.logger.ErrorContext(c.Request().Context(), msg, slog.Any("error", err))
	return echo.NewHTTPError(http.StatusInternalServerError, "something went wrong")
}

// pageData merges the per-request CSRF token into the template data.
func (h handler) pageData(c echo.Context, data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	data["CSRF"] = c.Get(middleware.DefaultCSRFConfig.ContextKey)
	return data
}
