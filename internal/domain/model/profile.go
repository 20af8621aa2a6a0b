package model

// Profile is the read surface the discovery ranking needs. Profile CRUD
// itself lives in the surrounding identity service.
type Profile struct {
	UserID      int64    `json:"user_id"`
	DisplayName string   `json:"display_name"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	Activities  []string `json:"activities"`
	SkillLevel  int      `json:"skill_level"`
	// PlayDays holds the weekdays (0=Sunday .. 6=Saturday) the user
	// marked as available.
	PlayDays []int `json:"play_days"`
}
