package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskRescoreAll recalculates every live lead's score.
const TaskRescoreAll = "leads.rescore_all"

type RescoreAllPayload struct {
	PageSize int `json:"page_size"`
}

func NewRescoreAllTask(payload RescoreAllPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRescoreAll, data), nil
}

func ParseRescoreAllPayload(task *asynq.Task) (RescoreAllPayload, error) {
	var payload RescoreAllPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RescoreAllPayload{}, err
	}
	return payload, nil
}
