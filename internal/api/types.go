package api

// User is the identity payload returned by login and /users/me.
type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginResult is the successful response of the password grant.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// Course is a catalog entry.
type Course struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Provider          string `json:"provider"`
	Description       string `json:"description"`
	Duration          int    `json:"duration"`
	DurationUnit      string `json:"duration_unit"`
	Skills            string `json:"skills"`
	Competencies      string `json:"competencies"`
	ImageURL          string `json:"image_url"`
	AssignedByManager bool   `json:"assigned_by_manager"`
}

// Enrollment ties a user to a course with an approval status and progress.
type Enrollment struct {
	ID         int     `json:"id"`
	CourseID   int     `json:"course_id"`
	EmployeeID int     `json:"employee_id"`
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"`
	Deadline   string  `json:"deadline,omitempty"`
	Course     *Course `json:"course,omitempty"`
	Employee   *User   `json:"employee,omitempty"`
}

// Notification is a per-user message produced by enrollment activity.
type Notification struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// Profile holds the editable personal details of the signed-in user.
type Profile struct {
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Bio               string `json:"bio"`
	PhoneNumber       string `json:"phone_number"`
	DateOfBirth       string `json:"date_of_birth"`
	AddressLine1      string `json:"address_line1"`
	AddressLine2      string `json:"address_line2"`
	PostalCode        string `json:"postal_code"`
	CountryID         *int   `json:"country_id"`
	CityID            *int   `json:"city_id"`
	EducationLevelID  *int   `json:"education_level_id"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

// NamedRef is a reference-data row (country, city, education level).
type NamedRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Dependent is a family member attached to a profile.
type Dependent struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	DateOfBirth  string `json:"date_of_birth"`
}

// InviteRequest asks the service to email an invitation. Role is only
// honored for admin callers and is omitted entirely otherwise.
type InviteRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

// AssignRequest enrolls a team member in a course on their behalf.
type AssignRequest struct {
	CourseID   int    `json:"course_id"`
	EmployeeID int    `json:"employee_id"`
	Deadline   string `json:"deadline,omitempty"`
}
