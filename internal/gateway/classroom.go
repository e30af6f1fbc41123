package gateway

import (
	"context"
	"net/url"
)

func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	var out []Group
	err := c.get(ctx, "list groups", "/groups", nil, &out)
	return out, err
}

func (c *Client) GetGroup(ctx context.Context, id string) (*Group, error) {
	var out Group
	if err := c.get(ctx, "get group", "/groups/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateGroup(ctx context.Context, g Group) (*Group, error) {
	var out Group
	if err := c.post(ctx, "create group", "/groups", g, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateGroup(ctx context.Context, g Group) (*Group, error) {
	var out Group
	if err := c.put(ctx, "update group", "/groups/"+escape(g.ID), g, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	return c.delete(ctx, "delete group", "/groups/"+escape(id))
}

// ListAnnouncements returns announcements visible to the user, optionally
// limited to one group.
func (c *Client) ListAnnouncements(ctx context.Context, groupID string) ([]Announcement, error) {
	q := url.Values{}
	if groupID != "" {
		q.Set("grupoId", groupID)
	}
	var out []Announcement
	err := c.get(ctx, "list announcements", "/announcements", q, &out)
	return out, err
}

func (c *Client) CreateAnnouncement(ctx context.Context, a Announcement) (*Announcement, error) {
	var out Announcement
	if err := c.post(ctx, "create announcement", "/announcements", a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAnnouncement(ctx context.Context, a Announcement) (*Announcement, error) {
	var out Announcement
	if err := c.put(ctx, "update announcement", "/announcements/"+escape(a.ID), a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAnnouncement(ctx context.Context, id string) error {
	return c.delete(ctx, "delete announcement", "/announcements/"+escape(id))
}

// MarkAnnouncementRead records a read receipt for the current user.
func (c *Client) MarkAnnouncementRead(ctx context.Context, id string) error {
	return c.post(ctx, "mark announcement read", "/announcements/"+escape(id)+"/read", nil, nil)
}
