package dto

// UpdateProfileInput replaces the student's academic profile. Absent numeric fields are cleared.
type UpdateProfileInput struct {
	Name            *string  `json:"name" binding:"omitempty,min=1,max=100"`
	GraduationYear  *int     `json:"graduationYear" binding:"omitempty,min=2020,max=2030"`
	GPA             *float64 `json:"gpa" binding:"omitempty,min=0,max=4"`
	SATScore        *int     `json:"satScore" binding:"omitempty,min=400,max=1600"`
	ACTScore        *int     `json:"actScore" binding:"omitempty,min=1,max=36"`
	TargetCountries []string `json:"targetCountries" binding:"omitempty,max=20,dive,max=100"`
	IntendedMajors  []string `json:"intendedMajors" binding:"omitempty,max=20,dive,max=100"`
}
