package gateway

import (
	"context"
	"net/url"
	"strings"
)

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Login authenticates and stores the token and profile in the session.
func (c *Client) Login(ctx context.Context, creds Credentials) (*User, error) {
	var out authResponse
	if err := c.post(ctx, "login", "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	return out.User, c.session.Set(out.Token, out.User)
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, reg Registration) (*User, error) {
	var out authResponse
	if err := c.post(ctx, "register", "/auth/register", reg, &out); err != nil {
		return nil, err
	}
	return out.User, c.session.Set(out.Token, out.User)
}

// Logout clears the session. The backend keeps no server-side session,
// so nothing is sent.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Profile fetches the current user's profile and refreshes the cached copy.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var u User
	if err := c.get(ctx, "profile", "/users/profile", nil, &u); err != nil {
		return nil, err
	}
	if err := c.session.SetUser(&u); err != nil {
		c.log.Warn("cache profile failed", "op", "profile", "error", err)
	}
	return &u, nil
}

// UpdateProfile changes the editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*User, error) {
	var u User
	if err := c.put(ctx, "update profile", "/users/profile", upd, &u); err != nil {
		return nil, err
	}
	if err := c.session.SetUser(&u); err != nil {
		c.log.Warn("cache profile failed", "op", "update profile", "error", err)
	}
	return &u, nil
}

// SearchTeachers lists teachers whose name or email matches query.
func (c *Client) SearchTeachers(ctx context.Context, query string) ([]User, error) {
	q := url.Values{}
	if query = strings.TrimSpace(query); query != "" {
		q.Set("q", query)
	}
	var out []User
	err := c.get(ctx, "search teachers", "/users/teachers", q, &out)
	return out, err
}

// CreateAssociationRequest asks teacherID to take the current student.
func (c *Client) CreateAssociationRequest(ctx context.Context, teacherID, message string) (*AssociationRequest, error) {
	in := map[string]string{"profesorId": teacherID}
	if message != "" {
		in["mensaje"] = message
	}
	var out AssociationRequest
	if err := c.post(ctx, "create association request", "/association-requests", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAssociationRequests returns the requests sent or received by the
// current user. status filters when non-empty.
func (c *Client) ListAssociationRequests(ctx context.Context, status string) ([]AssociationRequest, error) {
	q := url.Values{}
	if status != "" {
		q.Set("estado", status)
	}
	var out []AssociationRequest
	err := c.get(ctx, "list association requests", "/association-requests", q, &out)
	return out, err
}

// RespondAssociationRequest accepts or rejects a pending request.
func (c *Client) RespondAssociationRequest(ctx context.Context, id string, accept bool) (*AssociationRequest, error) {
	status := RequestRejected
	if accept {
		status = RequestAccepted
	}
	var out AssociationRequest
	if err := c.put(ctx, "respond association request", "/association-requests/"+escape(id), map[string]string{"estado": status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelAssociationRequest withdraws a request the student sent.
func (c *Client) CancelAssociationRequest(ctx context.Context, id string) error {
	return c.delete(ctx, "cancel association request", "/association-requests/"+escape(id))
}
