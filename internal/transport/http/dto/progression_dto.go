package dto

type ProgressionResponse struct {
	UserID  int64 `json:"user_id"`
	TotalXP int64 `json:"total_xp"`
}
