package pressfront

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pressfront/forms"
	"github.com/eringen/pressfront/views"
)

// apiResponse is the body of every /api/* response.
type apiResponse struct {
	OK    bool   `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

const tooManySubmissions = "Too many submissions. Please try again later."

func (a *App) apiError(c echo.Context, err error) error {
	code := forms.HTTPStatus(err)
	if code >= 500 {
		a.Log.WithError(err).Error("form submission failed")
	}
	return c.JSON(code, apiResponse{Error: forms.Message(err)})
}

// handleAPIContact accepts {"name","email","subject","message"}.
func (a *App) handleAPIContact(c echo.Context) error {
	var in forms.ContactInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: "Invalid request body"})
	}
	if !a.submitLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, apiResponse{Error: tooManySubmissions})
	}
	if err := a.Forms.SubmitContact(c.Request().Context(), in); err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{OK: true})
}

// handleAPIComments accepts {"postId","name","email","message"} plus optional
// "authUser" and "authPass" for the authenticated comments endpoint.
func (a *App) handleAPIComments(c echo.Context) error {
	var in forms.CommentInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: "Invalid request body"})
	}
	if !a.submitLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, apiResponse{Error: tooManySubmissions})
	}
	if err := a.Forms.SubmitComment(c.Request().Context(), in); err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{OK: true})
}

// handleContactForm is the HTML contact form. Failures re-render the form
// with the visitor's input; success redirects with a flash.
func (a *App) handleContactForm(c echo.Context) error {
	var in forms.ContactInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	if !a.submitLimiter.Allow(c.RealIP()) {
		return a.renderContact(c, http.StatusTooManyRequests, in, &views.Flash{Message: tooManySubmissions})
	}
	if err := a.Forms.SubmitContact(c.Request().Context(), in); err != nil {
		code := forms.HTTPStatus(err)
		if code >= 500 {
			a.Log.WithError(err).Error("contact form submission failed")
		}
		return a.renderContact(c, code, in, &views.Flash{Message: forms.Message(err)})
	}
	if err := setFlash(c, true, "Thank you! Your message was sent."); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/contact/")
}

// handleCommentForm is the HTML comment form on a post page. The outcome is
// shown as a flash above the comments.
func (a *App) handleCommentForm(c echo.Context) error {
	back := views.PostPath(c.Param("slug")) + "#comments"

	var in forms.CommentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	if a.Config.CommentAuth {
		in.AuthUser = a.Config.WordPressUser
		in.AuthPass = a.Config.WordPressPass
	}

	ok, msg := true, "Comment submitted! It may need approval before it appears."
	switch {
	case !a.submitLimiter.Allow(c.RealIP()):
		ok, msg = false, tooManySubmissions
	default:
		if err := a.Forms.SubmitComment(c.Request().Context(), in); err != nil {
			if forms.HTTPStatus(err) >= 500 {
				a.Log.WithError(err).Error("comment form submission failed")
			}
			ok, msg = false, forms.Message(err)
		}
	}
	if err := setFlash(c, ok, msg); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, back)
}
