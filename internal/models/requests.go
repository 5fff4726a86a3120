package models

type UserSubData struct {
	Email string `json:"email" form:"email"`
}

type ChatRequest struct {
	Message string `json:"message" form:"message"`
}

type ChatResponse struct {
	Message   string   `json:"message"`
	ToolsUsed []string `json:"tools_used"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SubscribersResponse struct {
	Total       int          `json:"total"`
	Unique      int          `json:"unique"`
	Subscribers []Subscriber `json:"subscribers"`
}
