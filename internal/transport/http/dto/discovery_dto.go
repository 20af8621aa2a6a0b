package dto

type CandidateResponse struct {
	UserID      int64    `json:"user_id"`
	DisplayName string   `json:"display_name"`
	Activities  []string `json:"activities"`
	SkillLevel  int      `json:"skill_level"`
	DistanceKM  float64  `json:"distance_km"`
	Score       float64  `json:"score"`
}

type DiscoveryResponse struct {
	Candidates []CandidateResponse `json:"candidates"`
}
