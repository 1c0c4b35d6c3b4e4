// Package scheduler is the asynq-backed queue between the conversation path
// and notification delivery. The orchestrator enqueues exactly one task per
// confirmed lead; the worker drains the queue off the request path.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadConfirmedNotify = "lead.confirmed.notify"

type LeadConfirmedNotifyPayload struct {
	LeadID    string `json:"leadId"`
	CompanyID int64  `json:"companyId"`
	Summary   string `json:"summary"`
}

func NewLeadConfirmedNotifyTask(payload LeadConfirmedNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadConfirmedNotify, data), nil
}

func ParseLeadConfirmedNotifyPayload(task *asynq.Task) (LeadConfirmedNotifyPayload, error) {
	var payload LeadConfirmedNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadConfirmedNotifyPayload{}, err
	}
	return payload, nil
}
