package model

type RecommendationRequest struct {
	RequiredUserIDs []string `json:"required_user_ids" validate:"max=500,dive,user_id"`
	OptionalUserIDs []string `json:"optional_user_ids" validate:"max=500,dive,user_id"`
	DurationMin     int      `json:"duration_min" validate:"required,min=1,max=1440"`
}
