package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// GetProfile returns the caller's profile. A brand-new account may have an
// empty profile rather than a 404.
func (c *Client) GetProfile(ctx context.Context, token string) (*Profile, error) {
	var profile Profile
	if err := c.getJSON(ctx, "/profiles/me", token, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile replaces the caller's profile fields.
func (c *Client) UpdateProfile(ctx context.Context, token string, profile Profile) (*Profile, error) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPut, "/profiles/me", token,
		bytes.NewReader(raw), "application/json")
	if err != nil {
		return nil, err
	}
	var updated Profile
	if err := decode(resp, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UploadAvatar sends a profile picture as multipart form data and returns
// the updated profile, which carries the new picture URL.
func (c *Client) UploadAvatar(ctx context.Context, token, filename string, file io.Reader) (*Profile, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/profiles/me/avatar", token,
		&body, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var updated Profile
	if err := decode(resp, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Countries lists the selectable countries.
func (c *Client) Countries(ctx context.Context, token string) ([]NamedRef, error) {
	var out []NamedRef
	if err := c.getJSON(ctx, "/profiles/countries", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cities lists the cities of one country.
func (c *Client) Cities(ctx context.Context, token string, countryID int) ([]NamedRef, error) {
	var out []NamedRef
	if err := c.getJSON(ctx, fmt.Sprintf("/profiles/cities?country_id=%d", countryID), token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EducationLevels lists the selectable education levels.
func (c *Client) EducationLevels(ctx context.Context, token string) ([]NamedRef, error) {
	var out []NamedRef
	if err := c.getJSON(ctx, "/profiles/education-levels", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Dependents lists the caller's dependents.
func (c *Client) Dependents(ctx context.Context, token string) ([]Dependent, error) {
	var out []Dependent
	if err := c.getJSON(ctx, "/profiles/me/dependents", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddDependent attaches a dependent to the caller's profile.
func (c *Client) AddDependent(ctx context.Context, token string, dep Dependent) (*Dependent, error) {
	var created Dependent
	if err := c.postJSON(ctx, "/profiles/me/dependents", token, dep, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteDependent removes one dependent by id.
func (c *Client) DeleteDependent(ctx context.Context, token string, dependentID int) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/profiles/me/dependents/%d", dependentID), token, nil, "")
	if err != nil {
		return err
	}
	return check(resp)
}
