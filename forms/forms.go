// Package forms validates contact and comment submissions and forwards them
// to WordPress.
package forms

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	reTag = regexp.MustCompile(`<[^>]+>`)

	spamPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<script`),
		regexp.MustCompile(`(?i)</?iframe`),
		regexp.MustCompile(`(?i)\bunion\b`),
		regexp.MustCompile(`(?i)\bselect\b`),
		regexp.MustCompile(`(?i)\bdrop table\b`),
		regexp.MustCompile(`(?i)\binsert\b`),
		regexp.MustCompile(`(?i)\bupdate\b`),
		regexp.MustCompile(`(?i)\bdelete\b`),
	}

	validate = validator.New()
)

var (
	// ErrSpam means the message matched the blocklist.
	ErrSpam = errors.New("forms: content rejected as spam")
	// ErrNotConfigured means the WordPress endpoint for the form is unknown.
	ErrNotConfigured = errors.New("forms: endpoint not configured")
	// ErrAuthMissing means the endpoint needs credentials that are not set.
	ErrAuthMissing = errors.New("forms: credentials missing")
)

// ContactInput is a contact form submission.
type ContactInput struct {
	Name    string `json:"name" form:"name" validate:"required,max=200"`
	Email   string `json:"email" form:"email" validate:"required,max=254"`
	Subject string `json:"subject" form:"subject" validate:"max=300"`
	Message string `json:"message" form:"message" validate:"required,max=10000"`
}

// CommentInput is a comment submission. With AuthUser and AuthPass set the
// comment goes through the authenticated REST endpoint.
type CommentInput struct {
	PostID   int    `json:"postId" form:"post_id" validate:"required,gt=0"`
	Name     string `json:"name" form:"name" validate:"required,max=200"`
	Email    string `json:"email" form:"email" validate:"required,max=254"`
	Message  string `json:"message" form:"message" validate:"required,max=10000"`
	AuthUser string `json:"authUser,omitempty" form:"-"`
	AuthPass string `json:"authPass,omitempty" form:"-"`
}

// ValidationError carries the message shown to the visitor.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Sanitize removes anything that looks like a tag and trims the result.
func Sanitize(s string) string {
	return strings.TrimSpace(reTag.ReplaceAllString(s, ""))
}

// IsSpam reports whether s matches the blocklist.
func IsSpam(s string) bool {
	for _, p := range spamPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func (in ContactInput) clean() ContactInput {
	return ContactInput{
		Name:    Sanitize(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: Sanitize(in.Subject),
		Message: Sanitize(in.Message),
	}
}

func (in CommentInput) clean() CommentInput {
	out := in
	out.Name = Sanitize(in.Name)
	out.Email = strings.TrimSpace(in.Email)
	out.Message = Sanitize(in.Message)
	return out
}

// Validate checks required fields and lengths after sanitizing, then the
// blocklist against both the raw and the sanitized message.
func (in ContactInput) Validate() (ContactInput, error) {
	c := in.clean()
	if err := check(c, "Name, email, and message are required."); err != nil {
		return c, err
	}
	if IsSpam(in.Message) || IsSpam(c.Message) {
		return c, ErrSpam
	}
	return c, nil
}

// Validate is the comment counterpart of ContactInput.Validate.
func (in CommentInput) Validate() (CommentInput, error) {
	c := in.clean()
	if err := check(c, "Missing required fields"); err != nil {
		return c, err
	}
	if IsSpam(in.Message) || IsSpam(c.Message) {
		return c, ErrSpam
	}
	return c, nil
}

func check(v any, requiredMsg string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{Message: requiredMsg}
	var tooLong string
	missing := false
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, fe.Field())
		if fe.Tag() == "max" {
			if tooLong == "" {
				tooLong = fe.Field()
			}
			continue
		}
		missing = true
	}
	if !missing && tooLong != "" {
		ve.Message = fmt.Sprintf("%s is too long.", tooLong)
	}
	return ve
}

// Message returns the text shown to the visitor for err.
func Message(err error) string {
	var ve *ValidationError
	var ue *UpstreamError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrSpam):
		return "Content rejected: looks like spam."
	case errors.Is(err, ErrNotConfigured):
		var ce *ConfigError
		if errors.As(err, &ce) {
			return ce.Message
		}
		return "Form endpoint not configured."
	case errors.Is(err, ErrAuthMissing):
		return "Authentication missing. Set WORDPRESS_BASIC_AUTH_USER/PASSWORD."
	case errors.As(err, &ue):
		if ue.Body != "" {
			return ue.Body
		}
		if ue.Form == FormContact {
			return "Failed to submit form"
		}
		return "Failed to submit comment"
	}
	return "Unexpected error submitting form"
}

// HTTPStatus maps err to the status returned by the JSON endpoints.
// Contact failures pass the WordPress status through; comment failures are 500.
func HTTPStatus(err error) int {
	var ve *ValidationError
	var ue *UpstreamError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve), errors.Is(err, ErrSpam), errors.Is(err, ErrNotConfigured), errors.Is(err, ErrAuthMissing):
		return http.StatusBadRequest
	case errors.As(err, &ue):
		if ue.Form == FormContact && ue.Status >= 400 {
			return ue.Status
		}
	}
	return http.StatusInternalServerError
}
