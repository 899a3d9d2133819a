package api

import (
	"context"
	"fmt"
)

// ListCourses returns the full course catalog.
func (c *Client) ListCourses(ctx context.Context, token string) ([]Course, error) {
	var courses []Course
	if err := c.getJSON(ctx, "/courses", token, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Enroll requests enrollment of the caller in a course. The enrollment
// starts pending until a manager approves it.
func (c *Client) Enroll(ctx context.Context, token string, courseID int) error {
	return c.postJSON(ctx, fmt.Sprintf("/courses/%d/enroll", courseID), token, nil, nil)
}

// MyEnrollments lists the caller's own enrollments with progress.
func (c *Client) MyEnrollments(ctx context.Context, token string) ([]Enrollment, error) {
	var out []Enrollment
	if err := c.getJSON(ctx, "/enrollments/me", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TeamEnrollments lists enrollments across a manager's team.
func (c *Client) TeamEnrollments(ctx context.Context, token string) ([]Enrollment, error) {
	var out []Enrollment
	if err := c.getJSON(ctx, "/enrollments/team", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PendingEnrollments lists the team enrollments awaiting approval.
func (c *Client) PendingEnrollments(ctx context.Context, token string) ([]Enrollment, error) {
	var out []Enrollment
	if err := c.getJSON(ctx, "/enrollments/pending", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApproveEnrollment approves one pending enrollment.
func (c *Client) ApproveEnrollment(ctx context.Context, token string, enrollmentID int) error {
	return c.postJSON(ctx, fmt.Sprintf("/enrollments/%d/approve", enrollmentID), token, nil, nil)
}

// AssignCourse enrolls a direct report in a course, pre-approved.
func (c *Client) AssignCourse(ctx context.Context, token string, req AssignRequest) error {
	return c.postJSON(ctx, "/enrollments/assign", token, req, nil)
}

// Notifications lists the caller's notifications, newest first.
func (c *Client) Notifications(ctx context.Context, token string) ([]Notification, error) {
	var out []Notification
	if err := c.getJSON(ctx, "/enrollments/notifications", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotificationRead flags one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, token string, notificationID int) error {
	return c.postJSON(ctx, fmt.Sprintf("/enrollments/notifications/%d/read", notificationID), token, nil, nil)
}
