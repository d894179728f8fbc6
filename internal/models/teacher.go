package models

// SecondaryAdmin is a teacher bound to one scope. UserID is the login
// identity (unique within the scope); Subjects is the authorization boundary
// for attendance and notes.
type SecondaryAdmin struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	UserID      string   `json:"userId"`
	Password    string   `json:"password"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	FatherName  string   `json:"fatherName"`
	FatherPhone string   `json:"fatherPhone"`
	MotherName  string   `json:"motherName"`
	MotherPhone string   `json:"motherPhone"`
	Photo       string   `json:"photo,omitempty"`
	Subjects    []string `json:"subjects"`
	CreatedAt   string   `json:"createdAt"`
}

// TeacherInfo is the credential-free projection students may see.
type TeacherInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	UserID   string   `json:"userId"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Photo    string   `json:"photo,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
}
