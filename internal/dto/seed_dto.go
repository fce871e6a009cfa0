package dto

// SeedResult reports what a seeding run inserted.
type SeedResult struct {
	AdminCreated bool `json:"admin_created"`
	Lessons      int  `json:"lessons"`
	News         int  `json:"news"`
}
