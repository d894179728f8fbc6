package models

// Student is one roster entry. IDs are zero-padded sequence numbers unique
// within the scope only; the rollNumber/email/secretPassword tuple is the
// student's login credential.
type Student struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	RollNumber         string   `json:"rollNumber"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone"`
	FatherName         string   `json:"fatherName"`
	FatherPhone        string   `json:"fatherPhone"`
	MotherName         string   `json:"motherName"`
	MotherPhone        string   `json:"motherPhone"`
	SecretPassword     string   `json:"secretPassword"`
	Photo              string   `json:"photo,omitempty"`
	AssignedActivities []string `json:"assignedActivities"`
	Remarks            string   `json:"remarks,omitempty"`
	CreatedAt          string   `json:"createdAt"`
}

// Activity is an extracurricular item students can be assigned to.
type Activity struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Details   string `json:"details"`
	CreatedAt string `json:"createdAt"`
}

// StudentActivity is an activity projected onto one student's dashboard.
type StudentActivity struct {
	Activity
	Status string `json:"status"`
}
