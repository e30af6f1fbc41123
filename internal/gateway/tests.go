package gateway

import "context"

func (c *Client) ListTemplates(ctx context.Context) ([]Template, error) {
	var out []Template
	err := c.get(ctx, "list templates", "/templates", nil, &out)
	return out, err
}

func (c *Client) GetTemplate(ctx context.Context, id string) (*Template, error) {
	var out Template
	if err := c.get(ctx, "get template", "/templates/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTemplate(ctx context.Context, t Template) (*Template, error) {
	var out Template
	if err := c.post(ctx, "create template", "/templates", t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTemplate(ctx context.Context, t Template) (*Template, error) {
	var out Template
	if err := c.put(ctx, "update template", "/templates/"+escape(t.ID), t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.delete(ctx, "delete template", "/templates/"+escape(id))
}

func (c *Client) ListTests(ctx context.Context) ([]Test, error) {
	var out []Test
	err := c.get(ctx, "list tests", "/tests", nil, &out)
	return out, err
}

// GetTest fetches a test with its questions, time limit and instructions.
func (c *Client) GetTest(ctx context.Context, id string) (*Test, error) {
	var out Test
	if err := c.get(ctx, "get test", "/tests/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTest(ctx context.Context, t Test) (*Test, error) {
	var out Test
	if err := c.post(ctx, "create test", "/tests", t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTest(ctx context.Context, t Test) (*Test, error) {
	var out Test
	if err := c.put(ctx, "update test", "/tests/"+escape(t.ID), t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTest(ctx context.Context, id string) error {
	return c.delete(ctx, "delete test", "/tests/"+escape(id))
}

// SubmitTest sends a finished assigned test for grading.
func (c *Client) SubmitTest(ctx context.Context, testID string, sub TestSubmission) (*SubmissionResult, error) {
	var out SubmissionResult
	if err := c.post(ctx, "submit test", "/tests/"+escape(testID)+"/submit", sub, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAssignments returns the assignments of the current user: tests to
// take for students, tests handed out for teachers.
func (c *Client) ListAssignments(ctx context.Context) ([]Assignment, error) {
	var out []Assignment
	err := c.get(ctx, "list assignments", "/assignments", nil, &out)
	return out, err
}

func (c *Client) CreateAssignment(ctx context.Context, a Assignment) (*Assignment, error) {
	var out Assignment
	if err := c.post(ctx, "create assignment", "/assignments", a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAssignment(ctx context.Context, a Assignment) (*Assignment, error) {
	var out Assignment
	if err := c.put(ctx, "update assignment", "/assignments/"+escape(a.ID), a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAssignment(ctx context.Context, id string) error {
	return c.delete(ctx, "delete assignment", "/assignments/"+escape(id))
}

// Progress returns a student's aggregate progress.
func (c *Client) Progress(ctx context.Context, studentID string) (*Progress, error) {
	var out Progress
	if err := c.get(ctx, "progress", "/progress/"+escape(studentID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
