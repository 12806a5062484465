package ai

import "github.com/nhle/onetask/internal/model"

// Endpoint paths relative to the service base URL.
const (
	pathPrioritizeTask = "/prioritize-task"
	pathPrioritizeList = "/prioritize-list"
	pathGetSuggestion  = "/get-suggestion"
)

type prioritizeTaskRequest struct {
	TaskTitle     string       `json:"taskTitle"`
	ExistingTasks []model.Task `json:"existingTasks"`
	UserPriority  *string      `json:"userPriority"`
}

type prioritizeTaskResponse struct {
	Position *int `json:"position"`
}

type prioritizeListRequest struct {
	Tasks []model.Task `json:"tasks"`
}

type prioritizeListResponse struct {
	PrioritizedTasks []model.Task `json:"prioritizedTasks"`
}

// SuggestionRequest describes the task links are wanted for.
type SuggestionRequest struct {
	TaskTitle    string         `json:"taskTitle"`
	DueDate      *model.Date    `json:"dueDate"`
	Priority     model.Priority `json:"priority"`
	UserLocation string         `json:"userLocation"`
}

type suggestionResponse struct {
	Links []model.SuggestedLink `json:"links"`
}
