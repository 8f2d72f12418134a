package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Form names used in errors and logs.
const (
	FormContact = "contact"
	FormComment = "comment"
)

// ConfigError is an ErrNotConfigured with a visitor-facing explanation.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return "forms: " + e.Message }

func (e *ConfigError) Unwrap() error { return ErrNotConfigured }

// UpstreamError is a failed submission to WordPress.
type UpstreamError struct {
	Form   string
	URL    string
	Status int // 0 when no response arrived
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("forms: %s: %s: %v", e.Form, e.URL, e.Err)
	}
	return fmt.Sprintf("forms: %s: %s returned %d", e.Form, e.URL, e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Config configures a Proxy.
type Config struct {
	APIBase    string // WordPress REST base, e.g. https://example.com/wp-json/wp/v2
	FormID     string // WPForms form id for the contact form
	User       string // basic auth for the WPForms endpoint
	Password   string
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
}

// Proxy forwards validated submissions to WordPress. No retries are made.
type Proxy struct {
	apiBase  string
	siteBase string
	formID   string
	user     string
	password string
	http     *http.Client
	log      logrus.FieldLogger
}

// NewProxy creates a Proxy. Missing settings surface as errors on submit.
func NewProxy(cfg Config) *Proxy {
	base := strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	p := &Proxy{
		apiBase:  base,
		siteBase: siteBase(base),
		formID:   strings.TrimSpace(cfg.FormID),
		user:     cfg.User,
		password: cfg.Password,
		http:     cfg.HTTPClient,
		log:      cfg.Logger,
	}
	if p.http == nil {
		p.http = &http.Client{Timeout: 15 * time.Second}
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	return p
}

func siteBase(apiBase string) string {
	if i := strings.Index(apiBase, "/wp-json"); i >= 0 {
		return apiBase[:i]
	}
	return apiBase
}

// SubmitContact creates a WPForms entry with fields 1-4 set to name, email,
// subject and message.
func (p *Proxy) SubmitContact(ctx context.Context, in ContactInput) error {
	if p.apiBase == "" || p.formID == "" {
		return &ConfigError{Message: "Contact API not configured. Set WORDPRESS_API_URL and WPFORM_ID."}
	}
	if p.user == "" || p.password == "" {
		return ErrAuthMissing
	}
	c, err := in.Validate()
	if err != nil {
		return err
	}
	payload := map[string]map[string]string{
		"fields": {
			"1": c.Name,
			"2": c.Email,
			"3": c.Subject,
			"4": c.Message,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	u := p.apiBase + "/wpforms/v1/forms/" + url.PathEscape(p.formID) + "/entries"
	return p.post(ctx, FormContact, u, "application/json", body, p.user, p.password)
}

// SubmitComment posts a comment. With credentials it uses the REST
// /comments endpoint; without, the classic wp-comments-post.php form handler
// as an anonymous top-level comment.
func (p *Proxy) SubmitComment(ctx context.Context, in CommentInput) error {
	c, err := in.Validate()
	if err != nil {
		return err
	}
	if p.apiBase == "" {
		return &ConfigError{Message: "API base not configured"}
	}

	if c.AuthUser != "" && c.AuthPass != "" {
		body, err := json.Marshal(struct {
			Post        int    `json:"post"`
			AuthorName  string `json:"author_name"`
			AuthorEmail string `json:"author_email"`
			Content     string `json:"content"`
		}{c.PostID, c.Name, c.Email, c.Message})
		if err != nil {
			return err
		}
		return p.post(ctx, FormComment, p.apiBase+"/comments", "application/json", body, c.AuthUser, c.AuthPass)
	}

	if p.siteBase == "" {
		return &ConfigError{Message: "Site base not configured for comment proxy"}
	}
	form := url.Values{}
	form.Set("comment", c.Message)
	form.Set("author", c.Name)
	form.Set("email", c.Email)
	form.Set("comment_post_ID", strconv.Itoa(c.PostID))
	form.Set("comment_parent", "0")
	return p.post(ctx, FormComment, p.siteBase+"/wp-comments-post.php",
		"application/x-www-form-urlencoded", []byte(form.Encode()), "", "")
}

func (p *Proxy) post(ctx context.Context, formName, u, contentType string, body []byte, user, pass string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return &UpstreamError{Form: formName, URL: u, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	if user != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		p.log.WithFields(logrus.Fields{"form": formName, "url": u}).WithError(err).Error("submission failed")
		return &UpstreamError{Form: formName, URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		p.log.WithFields(logrus.Fields{"form": formName, "url": u, "status": resp.StatusCode}).Warn("submission rejected")
		return &UpstreamError{Form: formName, URL: u, Status: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}
	io.Copy(io.Discard, resp.Body)
	p.log.WithFields(logrus.Fields{"form": formName}).Info("submission forwarded")
	return nil
}
